package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormMoneyCategoryRepository implements MoneyCategoryRepository using GORM.
type GormMoneyCategoryRepository struct {
	db *gorm.DB
}

// NewGormMoneyCategoryRepository creates a money category repository.
func NewGormMoneyCategoryRepository(db *gorm.DB) *GormMoneyCategoryRepository {
	return &GormMoneyCategoryRepository{db: db}
}

func (r *GormMoneyCategoryRepository) Save(ctx context.Context, category *finance.MoneyCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *GormMoneyCategoryRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*finance.MoneyCategory, error) {
	var category finance.MoneyCategory
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *GormMoneyCategoryRepository) FindByName(ctx context.Context, companyID uuid.UUID, name string) (*finance.MoneyCategory, error) {
	var category finance.MoneyCategory
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ?", companyID, name).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *GormMoneyCategoryRepository) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*finance.MoneyCategory], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&finance.MoneyCategory{}).
		Where("company_id = ?", companyID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*finance.MoneyCategory]{}, err
	}

	var categories []*finance.MoneyCategory
	if err := paginate(query.Order(sortClause(filter, withSortFields("name"), "name")), filter).
		Find(&categories).Error; err != nil {
		return shared.Paginated[*finance.MoneyCategory]{}, err
	}
	return shared.NewPaginated(categories, total, filter), nil
}

func (r *GormMoneyCategoryRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&finance.MoneyCategory{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
