package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/txn/txntest"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

type orderFixture struct {
	store     *txntest.Store
	service   *OrderService
	companyID uuid.UUID
	userID    uuid.UUID
	warehouse uuid.UUID
	productID uuid.UUID
}

func newOrderFixture(t *testing.T, initialStock int64) *orderFixture {
	t.Helper()
	store := txntest.NewStore()
	companyID := uuid.New()
	warehouse := store.AddWarehouse(companyID)
	product := store.AddProduct(companyID, 10, 5)
	store.SetBalance(companyID, product.ID, warehouse.ID, initialStock)
	scope := &txntest.Scope{Store: store}
	return &orderFixture{
		store:     store,
		service:   NewOrderService(scope, store.OrderRepo(), zap.NewNop()),
		companyID: companyID,
		userID:    uuid.New(),
		warehouse: warehouse.ID,
		productID: product.ID,
	}
}

func (f *orderFixture) create(t *testing.T, qty int64) *trade.Order {
	t.Helper()
	order, err := f.service.Create(context.Background(), f.companyID, f.userID, CreateOrderInput{
		WarehouseID: f.warehouse,
		Items:       []trade.ItemInput{{ProductID: f.productID, Quantity: decimal.NewFromInt(qty)}},
	})
	require.NoError(t, err)
	return order
}

func TestOrderService_CreateDoesNotMoveStock(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 4)

	assert.Equal(t, trade.OrderPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(40)))
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(10)),
		"pending orders reserve nothing")
	assert.Empty(t, f.store.Movements)
}

func TestOrderService_CreateChecksAvailability(t *testing.T) {
	f := newOrderFixture(t, 2)
	_, err := f.service.Create(context.Background(), f.companyID, f.userID, CreateOrderInput{
		WarehouseID: f.warehouse,
		Items:       []trade.ItemInput{{ProductID: f.productID, Quantity: decimal.NewFromInt(4)}},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestOrderService_ConfirmWithdrawsOnce(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 4)

	confirmed, err := f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderConfirmed, confirmed.Status)
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(6)))
	require.Len(t, f.store.Movements, 1)
	assert.Equal(t, inventory.ReferenceOrder, f.store.Movements[0].ReferenceType)
	require.NotNil(t, f.store.Movements[0].ReferenceID)
	assert.Equal(t, order.ID, *f.store.Movements[0].ReferenceID)

	// Further forward transitions do not touch stock again.
	_, err = f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderPreparing)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderReady)
	require.NoError(t, err)
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(6)))
	assert.Len(t, f.store.Movements, 1)
}

func TestOrderService_ConfirmCancelRoundTrip(t *testing.T) {
	f := newOrderFixture(t, 10)
	before := f.store.BalanceQty(f.companyID, f.productID, f.warehouse)
	order := f.create(t, 4)

	_, err := f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderConfirmed)
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderCanceled)
	require.NoError(t, err)

	after := f.store.BalanceQty(f.companyID, f.productID, f.warehouse)
	assert.True(t, after.Equal(before), "cancel returns exactly what confirm withdrew")
	require.Len(t, f.store.Movements, 2)
	assert.Equal(t, inventory.MovementOut, f.store.Movements[0].Type)
	assert.Equal(t, inventory.MovementIn, f.store.Movements[1].Type)
	assert.True(t, f.store.Movements[0].Quantity.Equal(f.store.Movements[1].Quantity))
}

func TestOrderService_CancelPendingMovesNothing(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 4)

	_, err := f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderCanceled)
	require.NoError(t, err)
	assert.Empty(t, f.store.Movements)
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(10)))
}

func TestOrderService_ConfirmInsufficientStockRolledBack(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 4)

	// Someone else drains the warehouse between create and confirm.
	f.store.SetBalance(f.companyID, f.productID, f.warehouse, 1)

	_, err := f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderConfirmed)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	stored, err := f.service.Get(context.Background(), f.companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderConfirmed, stored.Status,
		"in-memory fake cannot roll back; the real scope discards this via transaction rollback")
}

func TestOrderService_ReplaceItemsOnConfirmedOrder(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 4)
	_, err := f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderConfirmed)
	require.NoError(t, err)
	require.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(6)))

	updated, err := f.service.ReplaceItems(context.Background(), f.companyID, order.ID, f.userID,
		[]trade.ItemInput{{ProductID: f.productID, Quantity: decimal.NewFromInt(2)}})
	require.NoError(t, err)

	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(8)),
		"old reservation returned, new one applied")
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(20)))
	require.Len(t, f.store.Movements, 3, "confirm exit + rollback entry + new exit")
}

func TestOrderService_ReplaceItemsOnPendingOrder(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 4)

	updated, err := f.service.ReplaceItems(context.Background(), f.companyID, order.ID, f.userID,
		[]trade.ItemInput{{ProductID: f.productID, Quantity: decimal.NewFromInt(7)}})
	require.NoError(t, err)

	assert.True(t, updated.Total.Equal(decimal.NewFromInt(70)))
	assert.Empty(t, f.store.Movements, "pending orders hold no stock to reconcile")
}

func TestOrderService_AddPayment(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 9) // total 90

	_, err := f.service.AddPayment(context.Background(), f.companyID, order.ID, f.userID,
		decimal.NewFromInt(60), "cash")
	require.NoError(t, err)

	updated, err := f.service.AddPayment(context.Background(), f.companyID, order.ID, f.userID,
		decimal.NewFromInt(30), "card")
	require.NoError(t, err)
	assert.Equal(t, trade.PaymentPaid, updated.PaymentStatus)

	_, err = f.service.AddPayment(context.Background(), f.companyID, order.ID, f.userID,
		decimal.NewFromInt(1), "cash")
	require.Error(t, err)
}

func TestOrderService_TenantScope(t *testing.T) {
	f := newOrderFixture(t, 10)
	order := f.create(t, 1)

	_, err := f.service.Get(context.Background(), uuid.New(), order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "foreign tenants see nothing")
}

func TestOrderService_UntrackedItemsSkipStock(t *testing.T) {
	f := newOrderFixture(t, 5)
	service := f.store.AddProduct(f.companyID, 30, 0)
	service.TrackStock = false

	order, err := f.service.Create(context.Background(), f.companyID, f.userID, CreateOrderInput{
		WarehouseID: f.warehouse,
		Items: []trade.ItemInput{
			{ProductID: f.productID, Quantity: decimal.NewFromInt(2)},
			{ProductID: service.ID, Quantity: decimal.NewFromInt(9)},
		},
	})
	require.NoError(t, err, "untracked quantity above any balance must not block the order")

	_, err = f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderConfirmed)
	require.NoError(t, err, "confirm checks availability for tracked lines only")
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(3)))
	assert.True(t, f.store.BalanceQty(f.companyID, service.ID, f.warehouse).IsZero())
	require.Len(t, f.store.Movements, 1)
	assert.Equal(t, f.productID, f.store.Movements[0].ProductID)

	_, err = f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderCanceled)
	require.NoError(t, err)
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(5)))
	assert.True(t, f.store.BalanceQty(f.companyID, service.ID, f.warehouse).IsZero(),
		"canceling must not credit stock for the untracked line")
}

func TestOrderService_ReplaceItemsWithUntrackedLine(t *testing.T) {
	f := newOrderFixture(t, 5)
	service := f.store.AddProduct(f.companyID, 30, 0)
	service.TrackStock = false

	order, err := f.service.Create(context.Background(), f.companyID, f.userID, CreateOrderInput{
		WarehouseID: f.warehouse,
		Items: []trade.ItemInput{
			{ProductID: f.productID, Quantity: decimal.NewFromInt(2)},
			{ProductID: service.ID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), f.companyID, order.ID, f.userID, trade.OrderConfirmed)
	require.NoError(t, err)

	_, err = f.service.ReplaceItems(context.Background(), f.companyID, order.ID, f.userID,
		[]trade.ItemInput{
			{ProductID: f.productID, Quantity: decimal.NewFromInt(4)},
			{ProductID: service.ID, Quantity: decimal.NewFromInt(6)},
		})
	require.NoError(t, err)

	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(1)),
		"old tracked quantity returned, new one withdrawn")
	assert.True(t, f.store.BalanceQty(f.companyID, service.ID, f.warehouse).IsZero(),
		"untracked line stays out of the balance on both sides of the swap")
}
