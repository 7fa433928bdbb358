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

// CreateSaleInput carries a new sale request.
type CreateSaleInput struct {
	WarehouseID  uuid.UUID
	CustomerName string
	Items        []trade.ItemInput
	Payments     []trade.PaymentInput
	Discount     decimal.Decimal
	Notes        string
}

// SaleService drives the sale lifecycle. A sale commits four effects in one
// transaction: the sale rows, the stock exit movements, the payment rows,
// and the money-in ledger entry. Cancellation reverses the stock and
// neutralizes the ledger with a compensating entry in one transaction.
type SaleService struct {
	scope  txn.Scope
	sales  trade.SaleRepository
	logger *zap.Logger
}

// NewSaleService wires the sale service.
func NewSaleService(scope txn.Scope, sales trade.SaleRepository, logger *zap.Logger) *SaleService {
	return &SaleService{scope: scope, sales: sales, logger: logger}
}

func saleStockItems(sale *trade.Sale) []stock.Item {
	items := make([]stock.Item, 0, len(sale.Items))
	for _, it := range sale.Items {
		items = append(items, stock.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

// Create persists a COMPLETED sale, withdraws its stock, records its
// payments, and books the collected amount into the money ledger.
func (s *SaleService) Create(ctx context.Context, companyID, userID uuid.UUID, input CreateSaleInput) (*trade.Sale, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		if _, err := loadActiveWarehouse(ctx, repos, companyID, input.WarehouseID); err != nil {
			return err
		}
		orderItems, stockItems, err := resolveItems(ctx, repos, companyID, input.Items)
		if err != nil {
			return err
		}
		saleItems := make([]trade.SaleItem, 0, len(orderItems))
		for _, it := range orderItems {
			saleItems = append(saleItems, trade.SaleItem{
				BaseEntity: shared.NewBaseEntity(),
				ProductID:  it.ProductID,
				Quantity:   it.Quantity,
				BasePrice:  it.BasePrice,
				CostPrice:  it.CostPrice,
			})
		}
		if err := stock.CheckAvailability(ctx, repos, companyID, input.WarehouseID, stockItems); err != nil {
			return err
		}
		sale, err = trade.NewSale(companyID, userID, input.WarehouseID, input.CustomerName,
			saleItems, input.Payments, input.Discount, input.Notes)
		if err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return err
		}
		if _, err := stock.RegisterExit(ctx, repos, companyID, input.WarehouseID, userID,
			stockItems, inventory.ReferenceSale, &sale.ID, "sale"); err != nil {
			return err
		}
		if collected := sale.PaidAmount(); collected.IsPositive() {
			method := sale.Payments[0].PaymentMethod
			entry, err := finance.NewSystemMoneyMovement(companyID, userID, finance.MoneyIn,
				collected, method, finance.MoneyRefSale, sale.ID,
				fmt.Sprintf("sale %s", sale.ID))
			if err != nil {
				return err
			}
			if err := repos.MoneyMovements().Save(ctx, entry); err != nil {
				return err
			}
			financeapp.CountMoneyMovement(ctx, entry)
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"sale.create", "sale", sale.ID, fmt.Sprintf("total %s", sale.Total)))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale completed",
		zap.String("company_id", companyID.String()),
		zap.String("sale_id", sale.ID.String()),
		zap.String("total", sale.Total.String()))
	return sale, nil
}

// Cancel reverses a sale: the item quantities return to the warehouse (or
// an override warehouse), the status flips to CANCELED, and a compensating
// money-out entry zeroes the sale's net contribution to the ledger. A
// second cancellation fails without writing anything.
func (s *SaleService) Cancel(ctx context.Context, companyID, saleID, userID uuid.UUID, warehouseID *uuid.UUID) (*trade.Sale, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		if err := sale.Cancel(); err != nil {
			return err
		}
		target := sale.WarehouseID
		if warehouseID != nil {
			target = *warehouseID
		}
		returned, err := trackedStockItems(ctx, repos, companyID, saleStockItems(sale))
		if err != nil {
			return err
		}
		if _, err := stock.RegisterEntry(ctx, repos, companyID, target, userID,
			returned, inventory.ReferenceSale, &sale.ID, "sale canceled"); err != nil {
			return err
		}

		// Neutralize whatever the sale has contributed to the money ledger
		// so a canceled sale always nets to zero.
		entries, err := repos.MoneyMovements().FindByReference(ctx, companyID, finance.MoneyRefSale, sale.ID)
		if err != nil {
			return err
		}
		net := decimal.Zero
		method := "cash"
		for _, e := range entries {
			net = net.Add(e.SignedAmount())
			if e.Type == finance.MoneyIn {
				method = e.PaymentMethod
			}
		}
		if net.IsPositive() {
			reversal, err := finance.NewSystemMoneyMovement(companyID, userID, finance.MoneyOut,
				net, method, finance.MoneyRefSale, sale.ID,
				fmt.Sprintf("reversal of sale %s", sale.ID))
			if err != nil {
				return err
			}
			if err := repos.MoneyMovements().Save(ctx, reversal); err != nil {
				return err
			}
			financeapp.CountMoneyMovement(ctx, reversal)
		}
		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"sale.cancel", "sale", sale.ID, ""))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sale canceled",
		zap.String("company_id", companyID.String()),
		zap.String("sale_id", sale.ID.String()))
	return sale, nil
}

// AddPayment records a payment against the sale total and books it into the
// money ledger in the same transaction.
func (s *SaleService) AddPayment(ctx context.Context, companyID, saleID, userID uuid.UUID, amount decimal.Decimal, method string) (*trade.Sale, error) {
	var sale *trade.Sale
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		sale, err = repos.Sales().FindByID(ctx, companyID, saleID)
		if err != nil {
			return err
		}
		if _, err := sale.AddPayment(amount, method, userID); err != nil {
			return err
		}
		entry, err := finance.NewSystemMoneyMovement(companyID, userID, finance.MoneyIn,
			amount, method, finance.MoneyRefSale, sale.ID,
			fmt.Sprintf("payment on sale %s", sale.ID))
		if err != nil {
			return err
		}
		if err := repos.MoneyMovements().Save(ctx, entry); err != nil {
			return err
		}
		financeapp.CountMoneyMovement(ctx, entry)
		if err := repos.Sales().SaveWithLock(ctx, sale); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"sale.payment", "sale", sale.ID, fmt.Sprintf("%s via %s", amount, method)))
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Get fetches one sale within the tenant scope.
func (s *SaleService) Get(ctx context.Context, companyID, saleID uuid.UUID) (*trade.Sale, error) {
	return s.sales.FindByID(ctx, companyID, saleID)
}

// List pages through sales.
func (s *SaleService) List(ctx context.Context, companyID uuid.UUID, filter trade.SaleFilter) (shared.Paginated[*trade.Sale], error) {
	filter.Normalize()
	return s.sales.List(ctx, companyID, filter)
}
