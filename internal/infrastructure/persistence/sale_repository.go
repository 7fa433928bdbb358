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

// GormSaleRepository implements SaleRepository using GORM.
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a sale repository.
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(sale).Error
}

func (r *GormSaleRepository) SaveWithLock(ctx context.Context, sale *trade.Sale) error {
	result := r.db.WithContext(ctx).
		Model(&trade.Sale{}).
		Where("id = ? AND company_id = ? AND version = ?", sale.ID, sale.CompanyID, sale.Version).
		Updates(map[string]any{
			"status":         sale.Status,
			"payment_status": sale.PaymentStatus,
			"subtotal":       sale.Subtotal,
			"discount":       sale.Discount,
			"total":          sale.Total,
			"notes":          sale.Notes,
			"version":        sale.Version + 1,
			"updated_at":     sale.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.WrapDomainError(shared.CodeConcurrentUpdate,
			"sale was modified by another transaction", shared.ErrConcurrentUpdate)
	}
	sale.Version++

	if len(sale.Payments) > 0 {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&sale.Payments).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormSaleRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*trade.Sale, error) {
	var sale trade.Sale
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (r *GormSaleRepository) List(ctx context.Context, companyID uuid.UUID, filter trade.SaleFilter) (shared.Paginated[*trade.Sale], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&trade.Sale{}).
		Where("company_id = ?", companyID)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*trade.Sale]{}, err
	}

	var sales []*trade.Sale
	if err := paginate(query.Order(sortClause(filter.Filter, withSortFields("status", "total"), "created_at")), filter.Filter).
		Preload("Items").
		Preload("Payments").
		Find(&sales).Error; err != nil {
		return shared.Paginated[*trade.Sale]{}, err
	}
	return shared.NewPaginated(sales, total, filter.Filter), nil
}
