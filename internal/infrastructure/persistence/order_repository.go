package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates an order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(order).Error
}

// SaveWithLock updates the order header guarded by its version, bumping
// it on success. New payment rows are inserted alongside; existing ones
// are left untouched.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND company_id = ? AND version = ?", order.ID, order.CompanyID, order.Version).
		Updates(map[string]any{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"subtotal":       order.Subtotal,
			"discount":       order.Discount,
			"delivery_fee":   order.DeliveryFee,
			"total":          order.Total,
			"notes":          order.Notes,
			"version":        order.Version + 1,
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.WrapDomainError(shared.CodeConcurrentUpdate,
			"order was modified by another transaction", shared.ErrConcurrentUpdate)
	}
	order.Version++

	if len(order.Payments) > 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&order.Payments).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) List(ctx context.Context, companyID uuid.UUID, filter trade.OrderFilter) (shared.Paginated[*trade.Order], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&trade.Order{}).
		Where("company_id = ?", companyID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*trade.Order]{}, err
	}

	var orders []*trade.Order
	if err := paginate(query.Order(sortClause(filter.Filter, withSortFields("status", "total"), "created_at")), filter.Filter).
		Preload("Items").
		Preload("Payments").
		Find(&orders).Error; err != nil {
		return shared.Paginated[*trade.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Filter), nil
}

// ReplaceItems swaps the order's item rows and rewrites the totals the
// domain recomputed. Runs inside the caller's transaction scope.
func (r *GormOrderRepository) ReplaceItems(ctx context.Context, order *trade.Order) error {
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", order.ID).
		Delete(&trade.OrderItem{}).Error; err != nil {
		return err
	}
	if len(order.Items) > 0 {
		if err := r.db.WithContext(ctx).Create(&order.Items).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND company_id = ?", order.ID, order.CompanyID).
		Updates(map[string]any{
			"subtotal":   order.Subtotal,
			"discount":   order.Discount,
			"total":      order.Total,
			"updated_at": order.UpdatedAt,
		}).Error
}
