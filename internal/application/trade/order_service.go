// Package trade orchestrates order, sale and purchase flows. Every mutation
// that touches more than one table runs in a single transaction obtained
// from txn.Scope, composing the stock ledger primitives and the money
// ledger so the effects commit or roll back together.
package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/application/txn"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// CreateOrderInput carries a new order request.
type CreateOrderInput struct {
	WarehouseID uuid.UUID
	Items       []trade.ItemInput
	Discount    decimal.Decimal
	DeliveryFee decimal.Decimal
	Notes       string
}

// OrderService drives the order state machine and its stock side effects.
type OrderService struct {
	scope  txn.Scope
	orders trade.OrderRepository
	logger *zap.Logger
}

// NewOrderService wires the order service.
func NewOrderService(scope txn.Scope, orders trade.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{scope: scope, orders: orders, logger: logger}
}

// loadActiveWarehouse fetches a warehouse and rejects inactive ones.
func loadActiveWarehouse(ctx context.Context, repos txn.Repositories, companyID, warehouseID uuid.UUID) (*catalog.Warehouse, error) {
	warehouse, err := repos.Warehouses().FindByID(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if !warehouse.Active {
		return nil, shared.ErrValidation("warehouse_id", "warehouse is inactive")
	}
	return warehouse, nil
}

// resolveItems loads the referenced products and snapshots price and cost
// per line. Lines with no explicit base price fall back to the product's
// sale price.
func resolveItems(ctx context.Context, repos txn.Repositories, companyID uuid.UUID, inputs []trade.ItemInput) ([]trade.OrderItem, []stock.Item, error) {
	if len(inputs) == 0 {
		return nil, nil, shared.ErrValidation("items", "must not be empty")
	}
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	orderItems := make([]trade.OrderItem, 0, len(inputs))
	stockItems := make([]stock.Item, 0, len(inputs))
	for _, in := range inputs {
		product, ok := byID[in.ProductID]
		if !ok {
			return nil, nil, shared.ErrEntityNotFound("product", in.ProductID.String())
		}
		if !in.Quantity.IsPositive() {
			return nil, nil, shared.ErrValidation("quantity", "must be positive")
		}
		price := product.SalePrice
		if in.BasePrice != nil {
			price = *in.BasePrice
		}
		orderItems = append(orderItems, trade.OrderItem{
			BaseEntity: shared.NewBaseEntity(),
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
			BasePrice:  price,
			CostPrice:  product.CostPrice,
		})
		if product.TrackStock {
			stockItems = append(stockItems, stock.Item{ProductID: in.ProductID, Quantity: in.Quantity})
		}
	}
	return orderItems, stockItems, nil
}

func orderStockItems(order *trade.Order) []stock.Item {
	items := make([]stock.Item, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, stock.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return items
}

// trackedStockItems drops lines whose product does not track stock.
// Movements rebuilt from a persisted document must cover exactly the
// lines that moved stock when the document was created.
func trackedStockItems(ctx context.Context, repos txn.Repositories, companyID uuid.UUID, items []stock.Item) ([]stock.Item, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}
	tracked := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		tracked[p.ID] = p.TrackStock
	}
	out := make([]stock.Item, 0, len(items))
	for _, it := range items {
		if tracked[it.ProductID] {
			out = append(out, it)
		}
	}
	return out, nil
}

// Create validates availability and persists a PENDING order with snapshot
// items. Stock does not move until the order is confirmed.
func (s *OrderService) Create(ctx context.Context, companyID, userID uuid.UUID, input CreateOrderInput) (*trade.Order, error) {
	var order *trade.Order
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		if _, err := loadActiveWarehouse(ctx, repos, companyID, input.WarehouseID); err != nil {
			return err
		}
		items, stockItems, err := resolveItems(ctx, repos, companyID, input.Items)
		if err != nil {
			return err
		}
		if err := stock.CheckAvailability(ctx, repos, companyID, input.WarehouseID, stockItems); err != nil {
			return err
		}
		order, err = trade.NewOrder(companyID, userID, input.WarehouseID, items,
			input.Discount, input.DeliveryFee, input.Notes)
		if err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"order.create", "order", order.ID, fmt.Sprintf("total %s", order.Total)))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("company_id", companyID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()))
	return order, nil
}

// UpdateStatus advances the state machine. Crossing into the reserving
// states withdraws the item quantities; leaving them by cancellation
// returns exactly what was withdrawn, tagged with the order id.
func (s *OrderService) UpdateStatus(ctx context.Context, companyID, orderID, userID uuid.UUID, next trade.OrderStatus) (*trade.Order, error) {
	var order *trade.Order
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		wasReserving := order.ReservesStock()
		if err := order.TransitionTo(next); err != nil {
			return err
		}
		items, err := trackedStockItems(ctx, repos, companyID, orderStockItems(order))
		if err != nil {
			return err
		}
		switch {
		case !wasReserving && order.ReservesStock():
			if err := stock.CheckAvailability(ctx, repos, companyID, order.WarehouseID, items); err != nil {
				return err
			}
			if _, err := stock.RegisterExit(ctx, repos, companyID, order.WarehouseID, userID,
				items, inventory.ReferenceOrder, &order.ID, "order confirmed"); err != nil {
				return err
			}
		case wasReserving && !order.ReservesStock():
			if _, err := stock.RegisterEntry(ctx, repos, companyID, order.WarehouseID, userID,
				items, inventory.ReferenceOrder, &order.ID, "order canceled"); err != nil {
				return err
			}
		}
		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"order.status", "order", order.ID, string(next)))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ReplaceItems swaps an order's item set. When the order holds reserved
// stock, the old quantities are returned and the new ones withdrawn inside
// the same transaction, so a failure leaves the reservation untouched.
func (s *OrderService) ReplaceItems(ctx context.Context, companyID, orderID, userID uuid.UUID, inputs []trade.ItemInput) (*trade.Order, error) {
	var order *trade.Order
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		reserving := order.ReservesStock()
		if reserving {
			returned, err := trackedStockItems(ctx, repos, companyID, orderStockItems(order))
			if err != nil {
				return err
			}
			if _, err := stock.RegisterEntry(ctx, repos, companyID, order.WarehouseID, userID,
				returned, inventory.ReferenceOrder, &order.ID, "order items replaced"); err != nil {
				return err
			}
		}
		items, stockItems, err := resolveItems(ctx, repos, companyID, inputs)
		if err != nil {
			return err
		}
		if err := order.ReplaceItems(items); err != nil {
			return err
		}
		if reserving {
			if err := stock.CheckAvailability(ctx, repos, companyID, order.WarehouseID, stockItems); err != nil {
				return err
			}
			if _, err := stock.RegisterExit(ctx, repos, companyID, order.WarehouseID, userID,
				stockItems, inventory.ReferenceOrder, &order.ID, "order items replaced"); err != nil {
				return err
			}
		}
		if err := repos.Orders().ReplaceItems(ctx, order); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"order.items", "order", order.ID, fmt.Sprintf("%d lines, total %s", len(order.Items), order.Total)))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AddPayment records a payment against the order total.
func (s *OrderService) AddPayment(ctx context.Context, companyID, orderID, userID uuid.UUID, amount decimal.Decimal, method string) (*trade.Order, error) {
	var order *trade.Order
	err := s.scope.Execute(ctx, func(ctx context.Context, repos txn.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, companyID, orderID)
		if err != nil {
			return err
		}
		if _, err := order.AddPayment(amount, method, userID); err != nil {
			return err
		}
		if err := repos.Orders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		return repos.Activities().Append(ctx, audit.NewActivity(companyID, userID,
			"order.payment", "order", order.ID, fmt.Sprintf("%s via %s", amount, method)))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get fetches one order within the tenant scope.
func (s *OrderService) Get(ctx context.Context, companyID, orderID uuid.UUID) (*trade.Order, error) {
	return s.orders.FindByID(ctx, companyID, orderID)
}

// List pages through orders.
func (s *OrderService) List(ctx context.Context, companyID uuid.UUID, filter trade.OrderFilter) (shared.Paginated[*trade.Order], error) {
	filter.Normalize()
	return s.orders.List(ctx, companyID, filter)
}
