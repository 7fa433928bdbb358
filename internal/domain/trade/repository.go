package trade

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	shared.Filter
	Status        *OrderStatus
	PaymentStatus *PaymentStatus
	WarehouseID   *uuid.UUID
}

// OrderRepository persists orders with their items and payments.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	// SaveWithLock persists the order only if the stored version matches,
	// returning shared.ErrConcurrentUpdate otherwise.
	SaveWithLock(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Order, error)
	List(ctx context.Context, companyID uuid.UUID, filter OrderFilter) (shared.Paginated[*Order], error)
	ReplaceItems(ctx context.Context, order *Order) error
}

// SaleFilter narrows sale listings.
type SaleFilter struct {
	shared.Filter
	Status      *SaleStatus
	WarehouseID *uuid.UUID
}

// SaleRepository persists sales with their items and payments.
type SaleRepository interface {
	Save(ctx context.Context, sale *Sale) error
	SaveWithLock(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Sale, error)
	List(ctx context.Context, companyID uuid.UUID, filter SaleFilter) (shared.Paginated[*Sale], error)
}

// PurchaseRepository persists purchases with their items.
type PurchaseRepository interface {
	Save(ctx context.Context, purchase *Purchase) error
	SaveWithLock(ctx context.Context, purchase *Purchase) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Purchase, error)
	List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*Purchase], error)
}
