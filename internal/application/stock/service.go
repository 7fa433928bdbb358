// Package stock implements the stock ledger: atomic balance increments
// paired with append-only movement history. The exported primitives
// RegisterExit and RegisterEntry operate on a caller-provided transaction
// handle so order and sale flows can compose them into their own units of
// work; Transfer and ManualAdjust open their own transactions.
package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/txn"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// Item is one product/quantity pair in a ledger operation.
type Item struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
}

// RegisterExit appends an OUT movement per item and atomically decrements
// each matching balance via upsert-with-increment. It performs no
// sufficiency check itself: callers validate availability before invoking
// it, inside the same transaction.
func RegisterExit(ctx context.Context, repos txn.Repositories, companyID, warehouseID, userID uuid.UUID, items []Item, referenceType inventory.ReferenceType, referenceID *uuid.UUID, notes string) ([]*inventory.StockMovement, error) {
	if referenceType == "" {
		referenceType = inventory.ReferenceSale
	}
	movements := make([]*inventory.StockMovement, 0, len(items))
	for _, item := range items {
		movement, err := inventory.NewStockMovement(companyID, item.ProductID, warehouseID, userID,
			inventory.MovementOut, referenceType, referenceID, item.Quantity, notes)
		if err != nil {
			return nil, err
		}
		if err := repos.StockMovements().Append(ctx, movement); err != nil {
			return nil, err
		}
		if _, err := repos.StockBalances().ApplyDelta(ctx, companyID, item.ProductID, warehouseID, item.Quantity.Neg()); err != nil {
			return nil, err
		}
		countMovement(ctx, inventory.MovementOut, referenceType)
		movements = append(movements, movement)
	}
	return movements, nil
}

// RegisterEntry is the symmetric IN operation: one movement per item, each
// balance incremented by the item quantity.
func RegisterEntry(ctx context.Context, repos txn.Repositories, companyID, warehouseID, userID uuid.UUID, items []Item, referenceType inventory.ReferenceType, referenceID *uuid.UUID, notes string) ([]*inventory.StockMovement, error) {
	movements := make([]*inventory.StockMovement, 0, len(items))
	for _, item := range items {
		movement, err := inventory.NewStockMovement(companyID, item.ProductID, warehouseID, userID,
			inventory.MovementIn, referenceType, referenceID, item.Quantity, notes)
		if err != nil {
			return nil, err
		}
		if err := repos.StockMovements().Append(ctx, movement); err != nil {
			return nil, err
		}
		if _, err := repos.StockBalances().ApplyDelta(ctx, companyID, item.ProductID, warehouseID, item.Quantity); err != nil {
			return nil, err
		}
		countMovement(ctx, inventory.MovementIn, referenceType)
		movements = append(movements, movement)
	}
	return movements, nil
}

// CheckAvailability verifies every requested quantity is covered by the
// current balance at the warehouse, failing with INSUFFICIENT_STOCK naming
// the first offending product. Run inside the transaction that will
// withdraw the stock.
func CheckAvailability(ctx context.Context, repos txn.Repositories, companyID, warehouseID uuid.UUID, items []Item) error {
	for _, item := range items {
		if !item.Quantity.IsPositive() {
			return shared.ErrValidation("quantity", "must be positive")
		}
		available := decimal.Zero
		balance, err := repos.StockBalances().Find(ctx, companyID, item.ProductID, warehouseID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if balance != nil {
			available = balance.Quantity
		}
		if item.Quantity.GreaterThan(available) {
			return shared.WrapDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("product %s: requested %s, available %s at warehouse %s",
					item.ProductID, item.Quantity, available, warehouseID),
				shared.ErrInsufficientStock)
		}
	}
	return nil
}

// TransferInput moves quantity of one product between two warehouses.
type TransferInput struct {
	ProductID       uuid.UUID
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	Quantity        decimal.Decimal
	Notes           string
}

// AdjustInput corrects a balance outside any document flow.
type AdjustInput struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Type        inventory.MovementType
	Quantity    decimal.Decimal
	Notes       string
}

// Service exposes the stock ledger operations.
type Service struct {
	scope     txn.Scope
	balances  inventory.StockBalanceRepository
	movements inventory.StockMovementRepository
	logger    *zap.Logger
}

// NewService wires the stock ledger service.
func NewService(scope txn.Scope, balances inventory.StockBalanceRepository, movements inventory.StockMovementRepository, logger *zap.Logger) *Service {
	return &Service{
		scope:     scope,
		balances:  balances,
		movements: movements,
		logger:    logger,
	}
}

// Transfer moves stock between warehouses: one OUT at the source and one IN
// at the destination, sharing a reference id so the pair stays traceable,
// both inside one transaction.
func (s *Service) Transfer(ctx context.Context, companyID, userID uuid.UUID, input TransferInput) ([]*inventory.StockMovement, error) {
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, shared.ErrValidation("to_warehouse_id", "source and destination must differ")
	}
	if !input.Quantity.IsPositive() {
		return nil, shared.ErrValidation("quantity", "must be positive")
	}

	var result []*inventory.StockMovement
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		items := []Item{{ProductID: input.ProductID, Quantity: input.Quantity}}
		if err := CheckAvailability(ctx, repos, companyID, input.FromWarehouseID, items); err != nil {
			return err
		}
		pairID := uuid.New()
		out, err := RegisterExit(ctx, repos, companyID, input.FromWarehouseID, userID,
			items, inventory.ReferenceTransfer, &pairID, input.Notes)
		if err != nil {
			return err
		}
		in, err := RegisterEntry(ctx, repos, companyID, input.ToWarehouseID, userID,
			items, inventory.ReferenceTransfer, &pairID, input.Notes)
		if err != nil {
			return err
		}
		result = append(out, in...)
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"stock.transfer", "product", input.ProductID,
			fmt.Sprintf("moved %s from %s to %s", input.Quantity, input.FromWarehouseID, input.ToWarehouseID)))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("stock transferred",
		zap.String("company_id", companyID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.String("quantity", input.Quantity.String()))
	return result, nil
}

// ManualAdjust corrects a balance with an untagged movement. OUT
// adjustments require sufficient stock.
func (s *Service) ManualAdjust(ctx context.Context, companyID, userID uuid.UUID, input AdjustInput) (*inventory.StockMovement, error) {
	var result *inventory.StockMovement
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		items := []Item{{ProductID: input.ProductID, Quantity: input.Quantity}}
		var (
			movements []*inventory.StockMovement
			err       error
		)
		switch input.Type {
		case inventory.MovementOut:
			if err := CheckAvailability(ctx, repos, companyID, input.WarehouseID, items); err != nil {
				return err
			}
			movements, err = RegisterExit(ctx, repos, companyID, input.WarehouseID, userID,
				items, inventory.ReferenceAdjust, nil, input.Notes)
		case inventory.MovementIn:
			movements, err = RegisterEntry(ctx, repos, companyID, input.WarehouseID, userID,
				items, inventory.ReferenceAdjust, nil, input.Notes)
		default:
			return shared.ErrValidation("type", "must be IN or OUT")
		}
		if err != nil {
			return err
		}
		result = movements[0]
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"stock.adjust", "product", input.ProductID,
			fmt.Sprintf("%s adjustment of %s", input.Type, input.Quantity)))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Balance returns the current balance for one product at one warehouse,
// treating a missing row as zero.
func (s *Service) Balance(ctx context.Context, companyID, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	balance, err := s.balances.Find(ctx, companyID, productID, warehouseID)
	if errors.Is(err, shared.ErrNotFound) {
		return inventory.NewStockBalance(companyID, productID, warehouseID), nil
	}
	return balance, err
}

// ProductBalances lists a product's balances across warehouses.
func (s *Service) ProductBalances(ctx context.Context, companyID, productID uuid.UUID) ([]*inventory.StockBalance, error) {
	return s.balances.ListByProduct(ctx, companyID, productID)
}

// Movements lists movement history.
func (s *Service) Movements(ctx context.Context, companyID uuid.UUID, filter inventory.MovementFilter) (shared.Paginated[*inventory.StockMovement], error) {
	filter.Normalize()
	return s.movements.List(ctx, companyID, filter)
}
