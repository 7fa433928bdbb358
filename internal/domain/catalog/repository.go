package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
	ActiveOnly bool
}

// ProductRepository persists products, scoped by company.
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]*Product, error)
	FindByName(ctx context.Context, companyID uuid.UUID, name string) (*Product, error)
	List(ctx context.Context, companyID uuid.UUID, filter ProductFilter) (shared.Paginated[*Product], error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

// CategoryRepository persists product categories.
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, companyID uuid.UUID, name string) (*Category, error)
	List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*Category], error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}

// WarehouseRepository persists warehouses.
type WarehouseRepository interface {
	Save(ctx context.Context, warehouse *Warehouse) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Warehouse, error)
	FindDefault(ctx context.Context, companyID uuid.UUID) (*Warehouse, error)
	ClearDefault(ctx context.Context, companyID uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*Warehouse], error)
	Delete(ctx context.Context, companyID, id uuid.UUID) error
}
