package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// GormPurchaseRepository implements PurchaseRepository using GORM.
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a purchase repository.
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

func (r *GormPurchaseRepository) Save(ctx context.Context, purchase *trade.Purchase) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(purchase).Error
}

func (r *GormPurchaseRepository) SaveWithLock(ctx context.Context, purchase *trade.Purchase) error {
	result := r.db.WithContext(ctx).
		Model(&trade.Purchase{}).
		Where("id = ? AND company_id = ? AND version = ?", purchase.ID, purchase.CompanyID, purchase.Version).
		Updates(map[string]any{
			"status":     purchase.Status,
			"total":      purchase.Total,
			"notes":      purchase.Notes,
			"version":    purchase.Version + 1,
			"updated_at": purchase.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.WrapDomainError(shared.CodeConcurrentUpdate,
			"purchase was modified by another transaction", shared.ErrConcurrentUpdate)
	}
	purchase.Version++
	return nil
}

func (r *GormPurchaseRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*trade.Purchase, error) {
	var purchase trade.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("company_id = ? AND id = ?", companyID, id).
		First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *GormPurchaseRepository) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*trade.Purchase], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&trade.Purchase{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*trade.Purchase]{}, err
	}

	var purchases []*trade.Purchase
	if err := paginate(query.Order(sortClause(filter, withSortFields("status", "total"), "created_at")), filter).
		Preload("Items").
		Find(&purchases).Error; err != nil {
		return shared.Paginated[*trade.Purchase]{}, err
	}
	return shared.NewPaginated(purchases, total, filter), nil
}
