package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormWarehouseRepository implements WarehouseRepository using GORM.
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a warehouse repository.
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *catalog.Warehouse) error {
	return r.db.WithContext(ctx).Save(warehouse).Error
}

func (r *GormWarehouseRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*catalog.Warehouse, error) {
	var warehouse catalog.Warehouse
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&warehouse).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &warehouse, nil
}

func (r *GormWarehouseRepository) FindDefault(ctx context.Context, companyID uuid.UUID) (*catalog.Warehouse, error) {
	var warehouse catalog.Warehouse
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_default = ?", companyID, true).
		First(&warehouse).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &warehouse, nil
}

// ClearDefault unsets the default flag for all of the company's
// warehouses. Runs inside the same transaction that marks the new one.
func (r *GormWarehouseRepository) ClearDefault(ctx context.Context, companyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&catalog.Warehouse{}).
		Where("company_id = ? AND is_default = ?", companyID, true).
		Update("is_default", false).Error
}

func (r *GormWarehouseRepository) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Warehouse], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&catalog.Warehouse{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*catalog.Warehouse]{}, err
	}

	var warehouses []*catalog.Warehouse
	if err := paginate(query.Order(sortClause(filter, withSortFields("name"), "name")), filter).
		Find(&warehouses).Error; err != nil {
		return shared.Paginated[*catalog.Warehouse]{}, err
	}
	return shared.NewPaginated(warehouses, total, filter), nil
}

func (r *GormWarehouseRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&catalog.Warehouse{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
