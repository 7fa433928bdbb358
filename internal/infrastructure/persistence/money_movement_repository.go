package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormMoneyMovementRepository implements MoneyMovementRepository using GORM.
type GormMoneyMovementRepository struct {
	db *gorm.DB
}

// NewGormMoneyMovementRepository creates a money movement repository.
func NewGormMoneyMovementRepository(db *gorm.DB) *GormMoneyMovementRepository {
	return &GormMoneyMovementRepository{db: db}
}

func (r *GormMoneyMovementRepository) Save(ctx context.Context, movement *finance.MoneyMovement) error {
	return r.db.WithContext(ctx).Save(movement).Error
}

func (r *GormMoneyMovementRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*finance.MoneyMovement, error) {
	var movement finance.MoneyMovement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

func (r *GormMoneyMovementRepository) FindByReference(ctx context.Context, companyID uuid.UUID, referenceType finance.MoneyReferenceType, referenceID uuid.UUID) ([]*finance.MoneyMovement, error) {
	var movements []*finance.MoneyMovement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND reference_type = ? AND reference_id = ?", companyID, referenceType, referenceID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *GormMoneyMovementRepository) List(ctx context.Context, companyID uuid.UUID, filter finance.MovementFilter) (shared.Paginated[*finance.MoneyMovement], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&finance.MoneyMovement{}).
		Where("company_id = ?", companyID)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*finance.MoneyMovement]{}, err
	}

	var movements []*finance.MoneyMovement
	if err := paginate(query.Order(sortClause(filter.Filter, withSortFields("amount", "type"), "created_at")), filter.Filter).
		Find(&movements).Error; err != nil {
		return shared.Paginated[*finance.MoneyMovement]{}, err
	}
	return shared.NewPaginated(movements, total, filter.Filter), nil
}

func (r *GormMoneyMovementRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&finance.MoneyMovement{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormMoneyMovementRepository) Summary(ctx context.Context, companyID uuid.UUID, from, to time.Time) (*finance.LedgerSummary, error) {
	var row struct {
		TotalIn  decimal.Decimal
		TotalOut decimal.Decimal
	}
	query := r.db.WithContext(ctx).
		Model(&finance.MoneyMovement{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) as total_in, COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) as total_out",
			finance.MoneyIn, finance.MoneyOut).
		Where("company_id = ?", companyID)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at < ?", to)
	}
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	return &finance.LedgerSummary{
		TotalIn:  row.TotalIn,
		TotalOut: row.TotalOut,
		Net:      row.TotalIn.Sub(row.TotalOut),
	}, nil
}
