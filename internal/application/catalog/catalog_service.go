// Package catalog manages master data: products, product categories and
// warehouses.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/txn"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/shared"
)

// ProductInput carries product create/update fields.
type ProductInput struct {
	Name       string
	SKU        string
	Barcode    string
	CategoryID *uuid.UUID
	Unit       string
	SalePrice  decimal.Decimal
	CostPrice  decimal.Decimal
	TrackStock *bool
	Notes      string
}

// Service manages the catalog.
type Service struct {
	scope      txn.Scope
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	warehouses catalog.WarehouseRepository
	logger     *zap.Logger
}

// NewService wires the catalog service.
func NewService(scope txn.Scope, products catalog.ProductRepository, categories catalog.CategoryRepository, warehouses catalog.WarehouseRepository, logger *zap.Logger) *Service {
	return &Service{
		scope:      scope,
		products:   products,
		categories: categories,
		warehouses: warehouses,
		logger:     logger,
	}
}

func guardCategory(ctx context.Context, repos txn.Repositories, companyID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	_, err := repos.Categories().FindByID(ctx, companyID, *categoryID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.CodeCategoryNotFound,
			fmt.Sprintf("category %s not found", categoryID))
	}
	return err
}

// CreateProduct validates and persists a product. Names are unique per
// company.
func (s *Service) CreateProduct(ctx context.Context, companyID, userID uuid.UUID, input ProductInput) (*catalog.Product, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		existing, err := repos.Products().FindByName(ctx, companyID, input.Name)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.WrapDomainError(shared.CodeDuplicateName,
				fmt.Sprintf("product %q already exists", input.Name), shared.ErrDuplicateName)
		}
		product, err = catalog.NewProduct(companyID, userID, input.Name, input.SalePrice, input.CostPrice)
		if err != nil {
			return err
		}
		product.SKU = input.SKU
		product.Barcode = input.Barcode
		product.Notes = input.Notes
		if input.Unit != "" {
			product.Unit = input.Unit
		}
		if input.TrackStock != nil {
			product.TrackStock = *input.TrackStock
		}
		if input.CategoryID != nil {
			if err := guardCategory(ctx, repos, companyID, input.CategoryID); err != nil {
				return err
			}
			product.AssignCategory(input.CategoryID)
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"product.create", "product", product.ID, product.Name))
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies edits to an existing product.
func (s *Service) UpdateProduct(ctx context.Context, companyID, productID, userID uuid.UUID, input ProductInput) (*catalog.Product, error) {
	var product *catalog.Product
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		product, err = repos.Products().FindByID(ctx, companyID, productID)
		if err != nil {
			return err
		}
		if input.Name != "" && input.Name != product.Name {
			existing, err := repos.Products().FindByName(ctx, companyID, input.Name)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			if existing != nil && existing.ID != product.ID {
				return shared.WrapDomainError(shared.CodeDuplicateName,
					fmt.Sprintf("product %q already exists", input.Name), shared.ErrDuplicateName)
			}
			if err := product.Rename(input.Name); err != nil {
				return err
			}
		}
		if err := product.SetPrices(input.SalePrice, input.CostPrice); err != nil {
			return err
		}
		product.SKU = input.SKU
		product.Barcode = input.Barcode
		product.Notes = input.Notes
		if input.Unit != "" {
			product.Unit = input.Unit
		}
		if input.TrackStock != nil {
			product.TrackStock = *input.TrackStock
		}
		if err := guardCategory(ctx, repos, companyID, input.CategoryID); err != nil {
			return err
		}
		product.AssignCategory(input.CategoryID)
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"product.update", "product", product.ID, product.Name))
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct fetches one product.
func (s *Service) GetProduct(ctx context.Context, companyID, productID uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, companyID, productID)
}

// ListProducts pages through the catalog.
func (s *Service) ListProducts(ctx context.Context, companyID uuid.UUID, filter catalog.ProductFilter) (shared.Paginated[*catalog.Product], error) {
	filter.Normalize()
	return s.products.List(ctx, companyID, filter)
}

// DeactivateProduct hides a product from sale, keeping its history.
func (s *Service) DeactivateProduct(ctx context.Context, companyID, productID, userID uuid.UUID) error {
	return s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		product, err := repos.Products().FindByID(ctx, companyID, productID)
		if err != nil {
			return err
		}
		product.Deactivate()
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"product.deactivate", "product", product.ID, product.Name))
	})
}

// CreateCategory adds a product category with a per-company unique name.
func (s *Service) CreateCategory(ctx context.Context, companyID, userID uuid.UUID, name, description string) (*catalog.Category, error) {
	var category *catalog.Category
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		existing, err := repos.Categories().FindByName(ctx, companyID, name)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.WrapDomainError(shared.CodeDuplicateName,
				fmt.Sprintf("category %q already exists", name), shared.ErrDuplicateName)
		}
		category, err = catalog.NewCategory(companyID, userID, name, description)
		if err != nil {
			return err
		}
		return repos.Categories().Save(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories pages through product categories.
func (s *Service) ListCategories(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Category], error) {
	filter.Normalize()
	return s.categories.List(ctx, companyID, filter)
}

// DeleteCategory removes a category; products keep a dangling reference and
// render as uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, companyID, categoryID uuid.UUID) error {
	return s.categories.Delete(ctx, companyID, categoryID)
}

// CreateWarehouse adds a stock location. The first warehouse of a company
// becomes the default.
func (s *Service) CreateWarehouse(ctx context.Context, companyID, userID uuid.UUID, name, address string) (*catalog.Warehouse, error) {
	var warehouse *catalog.Warehouse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		warehouse, err = catalog.NewWarehouse(companyID, userID, name, address)
		if err != nil {
			return err
		}
		if _, err := repos.Warehouses().FindDefault(ctx, companyID); errors.Is(err, shared.ErrNotFound) {
			warehouse.MarkDefault()
		} else if err != nil {
			return err
		}
		if err := repos.Warehouses().Save(ctx, warehouse); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"warehouse.create", "warehouse", warehouse.ID, warehouse.Name))
	})
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

// SetDefaultWarehouse moves the default flag, clearing the previous holder
// in the same transaction.
func (s *Service) SetDefaultWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID) (*catalog.Warehouse, error) {
	var warehouse *catalog.Warehouse
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		warehouse, err = repos.Warehouses().FindByID(ctx, companyID, warehouseID)
		if err != nil {
			return err
		}
		if err := repos.Warehouses().ClearDefault(ctx, companyID); err != nil {
			return err
		}
		warehouse.MarkDefault()
		return repos.Warehouses().Save(ctx, warehouse)
	})
	if err != nil {
		return nil, err
	}
	return warehouse, nil
}

// ListWarehouses pages through warehouses.
func (s *Service) ListWarehouses(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Warehouse], error) {
	filter.Normalize()
	return s.warehouses.List(ctx, companyID, filter)
}

// GetWarehouse fetches one warehouse.
func (s *Service) GetWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID) (*catalog.Warehouse, error) {
	return s.warehouses.FindByID(ctx, companyID, warehouseID)
}

// DeactivateWarehouse retires a warehouse.
func (s *Service) DeactivateWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID) error {
	return s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		warehouse, err := repos.Warehouses().FindByID(ctx, companyID, warehouseID)
		if err != nil {
			return err
		}
		warehouse.Deactivate()
		return repos.Warehouses().Save(ctx, warehouse)
	})
}
