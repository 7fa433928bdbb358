// Package txn defines the unit-of-work contract used by application
// services. Every multi-table mutation runs inside a single database
// transaction obtained from a Scope; partial application is impossible
// because any returned error rolls the whole unit back.
package txn

import (
	"context"

	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/trade"
)

// Repositories is the transaction-scoped data access handle passed to a
// unit of work. All repositories returned from one Repositories value share
// the same underlying transaction.
type Repositories interface {
	StockBalances() inventory.StockBalanceRepository
	StockMovements() inventory.StockMovementRepository
	Orders() trade.OrderRepository
	Sales() trade.SaleRepository
	Purchases() trade.PurchaseRepository
	MoneyMovements() finance.MoneyMovementRepository
	MoneyCategories() finance.MoneyCategoryRepository
	Products() catalog.ProductRepository
	Categories() catalog.CategoryRepository
	Warehouses() catalog.WarehouseRepository
	Activities() audit.ActivityRepository
}

// Scope opens transactions. Execute commits when fn returns nil and rolls
// back when it returns an error or panics.
type Scope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
