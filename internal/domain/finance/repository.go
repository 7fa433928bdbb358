package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// MovementFilter narrows money ledger queries.
type MovementFilter struct {
	shared.Filter
	Type          *MoneyType
	CategoryID    *uuid.UUID
	ReferenceType *MoneyReferenceType
	From          *time.Time
	To            *time.Time
}

// LedgerSummary aggregates the ledger over a period.
type LedgerSummary struct {
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
	Net      decimal.Decimal `json:"net"`
}

// MoneyMovementRepository persists cash ledger entries.
type MoneyMovementRepository interface {
	Save(ctx context.Context, movement *MoneyMovement) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*MoneyMovement, error)
	FindByReference(ctx context.Context, companyID uuid.UUID, referenceType MoneyReferenceType, referenceID uuid.UUID) ([]*MoneyMovement, error)
	List(ctx context.Context, companyID uuid.UUID, filter MovementFilter) (shared.Paginated[*MoneyMovement], error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	Summary(ctx context.Context, companyID uuid.UUID, from, to time.Time) (*LedgerSummary, error)
}

// MoneyCategoryRepository persists ledger categories.
type MoneyCategoryRepository interface {
	Save(ctx context.Context, category *MoneyCategory) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*MoneyCategory, error)
	FindByName(ctx context.Context, companyID uuid.UUID, name string) (*MoneyCategory, error)
	List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*MoneyCategory], error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}
