package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormActivityRepository implements ActivityRepository using GORM.
// Append-only: the audit trail is never rewritten.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates an activity repository.
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) Append(ctx context.Context, activity *audit.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *GormActivityRepository) Latest(ctx context.Context, limit int) ([]*audit.Activity, error) {
	var activities []*audit.Activity
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *GormActivityRepository) List(ctx context.Context, companyID uuid.UUID, filter audit.ActivityFilter) (shared.Paginated[*audit.Activity], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&audit.Activity{}).
		Where("company_id = ?", companyID)

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Entity != nil {
		query = query.Where("entity = ?", *filter.Entity)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*audit.Activity]{}, err
	}

	var activities []*audit.Activity
	if err := paginate(query.Order(sortClause(filter.Filter, withSortFields("action", "entity"), "created_at")), filter.Filter).
		Find(&activities).Error; err != nil {
		return shared.Paginated[*audit.Activity]{}, err
	}
	return shared.NewPaginated(activities, total, filter.Filter), nil
}
