package shared

import "github.com/google/uuid"

// BaseAggregateRoot adds optimistic locking to an entity. Repositories bump
// Version on every successful save and reject stale writes with
// ErrConcurrentUpdate.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1" json:"version"`
}

// NewBaseAggregateRoot creates an aggregate root at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// TenantAggregateRoot scopes an aggregate to a company. Every query and
// mutation on tenant aggregates must filter by CompanyID.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`
}

// NewTenantAggregateRoot creates a tenant-scoped aggregate root.
func NewTenantAggregateRoot(companyID, createdBy uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		CompanyID:         companyID,
		CreatedBy:         createdBy,
	}
}
