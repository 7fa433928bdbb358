package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Activity is one append-only audit line describing who did what.
type Activity struct {
	shared.BaseEntity
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_activities_company" json:"company_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Action    string    `gorm:"size:64;not null" json:"action"`
	Entity    string    `gorm:"size:64;not null" json:"entity"`
	EntityID  uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Detail    string    `gorm:"size:1000" json:"detail"`
}

func (Activity) TableName() string { return "activities" }

// NewActivity creates an audit line.
func NewActivity(companyID, userID uuid.UUID, action, entity string, entityID uuid.UUID, detail string) *Activity {
	return &Activity{
		BaseEntity: shared.NewBaseEntity(),
		CompanyID:  companyID,
		UserID:     userID,
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		Detail:     detail,
	}
}

// ActivityFilter narrows audit queries.
type ActivityFilter struct {
	shared.Filter
	UserID *uuid.UUID
	Entity *string
	From   *time.Time
	To     *time.Time
}

// ActivityRepository appends and reads audit lines. Append-only.
type ActivityRepository interface {
	Append(ctx context.Context, activity *Activity) error
	List(ctx context.Context, companyID uuid.UUID, filter ActivityFilter) (shared.Paginated[*Activity], error)
	// Latest returns up to limit newest lines across all companies,
	// newest first. Used to warm the in-memory ring at startup.
	Latest(ctx context.Context, limit int) ([]*Activity, error)
}
