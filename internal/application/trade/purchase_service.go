package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	financeapp "github.com/retailcore/backend/internal/application/finance"
	"github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/application/txn"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// PurchaseItemInput is one requested purchase line.
type PurchaseItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// CreatePurchaseInput carries a new purchase request.
type CreatePurchaseInput struct {
	WarehouseID  uuid.UUID
	SupplierName string
	Items        []PurchaseItemInput
	Notes        string
}

// PurchaseService mirrors the sale lifecycle on the inbound side: receiving
// books stock in and money out, cancellation reverses both.
type PurchaseService struct {
	scope     txn.Scope
	purchases trade.PurchaseRepository
	logger    *zap.Logger
}

// NewPurchaseService wires the purchase service.
func NewPurchaseService(scope txn.Scope, purchases trade.PurchaseRepository, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{scope: scope, purchases: purchases, logger: logger}
}

func purchaseStockItems(purchase *trade.Purchase) []stock.Item {
	items := make([]stock.Item, 0, len(purchase.Items))
	for _, it := range purchase.Items {
		items = append(items, stock.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

// Create persists a RECEIVED purchase, books the stock in, and records the
// money-out ledger entry, all in one transaction.
func (s *PurchaseService) Create(ctx context.Context, companyID, userID uuid.UUID, input CreatePurchaseInput) (*trade.Purchase, error) {
	var purchase *trade.Purchase
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		if _, err := loadActiveWarehouse(ctx, repos, companyID, input.WarehouseID); err != nil {
			return err
		}
		items := make([]trade.PurchaseItem, 0, len(input.Items))
		stockItems := make([]stock.Item, 0, len(input.Items))
		for _, in := range input.Items {
			product, err := repos.Products().FindByID(ctx, companyID, in.ProductID)
			if err != nil {
				return err
			}
			items = append(items, trade.PurchaseItem{
				BaseEntity: shared.NewBaseEntity(),
				ProductID:  in.ProductID,
				Quantity:   in.Quantity,
				UnitCost:   in.UnitCost,
			})
			if product.TrackStock {
				stockItems = append(stockItems, stock.Item{ProductID: in.ProductID, Quantity: in.Quantity})
			}
		}
		var err error
		purchase, err = trade.NewPurchase(companyID, userID, input.WarehouseID,
			input.SupplierName, items, input.Notes)
		if err != nil {
			return err
		}
		if err := repos.Purchases().Save(ctx, purchase); err != nil {
			return err
		}
		if _, err := stock.RegisterEntry(ctx, repos, companyID, input.WarehouseID, userID,
			stockItems, inventory.ReferencePurchase, &purchase.ID, "purchase received"); err != nil {
			return err
		}
		if purchase.Total.IsPositive() {
			entry, err := finance.NewSystemMoneyMovement(companyID, userID, finance.MoneyOut,
				purchase.Total, "cash", finance.MoneyRefPurchase, purchase.ID,
				fmt.Sprintf("purchase %s", purchase.ID))
			if err != nil {
				return err
			}
			if err := repos.MoneyMovements().Save(ctx, entry); err != nil {
				return err
			}
			financeapp.CountMoneyMovement(ctx, entry)
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"purchase.create", "purchase", purchase.ID, fmt.Sprintf("total %s", purchase.Total)))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase received",
		zap.String("company_id", companyID.String()),
		zap.String("purchase_id", purchase.ID.String()),
		zap.String("total", purchase.Total.String()))
	return purchase, nil
}

// Cancel reverses a purchase: the received quantities leave the warehouse
// (they must still be available) and a compensating money-in entry zeroes
// the purchase's net ledger contribution.
func (s *PurchaseService) Cancel(ctx context.Context, companyID, purchaseID, userID uuid.UUID) (*trade.Purchase, error) {
	var purchase *trade.Purchase
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		purchase, err = repos.Purchases().FindByID(ctx, companyID, purchaseID)
		if err != nil {
			return err
		}
		if err := purchase.Cancel(); err != nil {
			return err
		}
		items, err := trackedStockItems(ctx, repos, companyID, purchaseStockItems(purchase))
		if err != nil {
			return err
		}
		if err := stock.CheckAvailability(ctx, repos, companyID, purchase.WarehouseID, items); err != nil {
			return err
		}
		if _, err := stock.RegisterExit(ctx, repos, companyID, purchase.WarehouseID, userID,
			items, inventory.ReferencePurchase, &purchase.ID, "purchase canceled"); err != nil {
			return err
		}
		entries, err := repos.MoneyMovements().FindByReference(ctx, companyID, finance.MoneyRefPurchase, purchase.ID)
		if err != nil {
			return err
		}
		net := decimal.Zero
		for _, e := range entries {
			net = net.Add(e.SignedAmount())
		}
		if net.IsNegative() {
			reversal, err := finance.NewSystemMoneyMovement(companyID, userID, finance.MoneyIn,
				net.Neg(), "cash", finance.MoneyRefPurchase, purchase.ID,
				fmt.Sprintf("reversal of purchase %s", purchase.ID))
			if err != nil {
				return err
			}
			if err := repos.MoneyMovements().Save(ctx, reversal); err != nil {
				return err
			}
			financeapp.CountMoneyMovement(ctx, reversal)
		}
		if err := repos.Purchases().SaveWithLock(ctx, purchase); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"purchase.cancel", "purchase", purchase.ID, ""))
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// Get fetches one purchase within the tenant scope.
func (s *PurchaseService) Get(ctx context.Context, companyID, purchaseID uuid.UUID) (*trade.Purchase, error) {
	return s.purchases.FindByID(ctx, companyID, purchaseID)
}

// List pages through purchases.
func (s *PurchaseService) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*trade.Purchase], error) {
	filter.Normalize()
	return s.purchases.List(ctx, companyID, filter)
}
