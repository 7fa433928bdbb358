package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// StockBalanceRepository persists per-warehouse balances. ApplyDelta is the
// only mutation path: it upserts the row and increments the quantity in a
// single statement so concurrent callers inside separate transactions cannot
// lose updates.
type StockBalanceRepository interface {
	// ApplyDelta adds delta (negative for exits) to the balance of the given
	// product and warehouse, creating the row at zero first if absent.
	// Returns the balance after the increment.
	ApplyDelta(ctx context.Context, companyID, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*StockBalance, error)
	Find(ctx context.Context, companyID, productID, warehouseID uuid.UUID) (*StockBalance, error)
	ListByProduct(ctx context.Context, companyID, productID uuid.UUID) ([]*StockBalance, error)
	ListByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[*StockBalance], error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	shared.Filter
	ProductID     *uuid.UUID
	WarehouseID   *uuid.UUID
	ReferenceType *ReferenceType
	From          *time.Time
	To            *time.Time
}

// StockMovementRepository appends and reads the movement ledger. There is no
// update or delete: the ledger is append-only.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*StockMovement, error)
	FindByReference(ctx context.Context, companyID, referenceID uuid.UUID) ([]*StockMovement, error)
	List(ctx context.Context, companyID uuid.UUID, filter MovementFilter) (shared.Paginated[*StockMovement], error)
	// SumByProduct returns the signed movement total per warehouse for a
	// product, used to reconcile the ledger against balances.
	SumByProduct(ctx context.Context, companyID, productID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}
