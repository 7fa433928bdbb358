package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func testOrderItems(qty, price int64) []OrderItem {
	return []OrderItem{
		{
			BaseEntity: shared.NewBaseEntity(),
			ProductID:  uuid.New(),
			Quantity:   decimal.NewFromInt(qty),
			BasePrice:  decimal.NewFromInt(price),
			CostPrice:  decimal.NewFromInt(price / 2),
		},
	}
}

func TestNewOrder_ComputesTotals(t *testing.T) {
	items := []OrderItem{
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(2), BasePrice: decimal.NewFromInt(30)},
		{ProductID: uuid.New(), Quantity: decimal.NewFromInt(1), BasePrice: decimal.NewFromInt(50)},
	}
	order, err := NewOrder(uuid.New(), uuid.New(), uuid.New(), items,
		decimal.NewFromInt(10), decimal.NewFromInt(5), "")
	require.NoError(t, err)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(110)), "subtotal = Σ qty×price")
	assert.True(t, order.Total.Equal(decimal.NewFromInt(105)), "total = subtotal - discount + delivery fee")
	assert.Equal(t, OrderPending, order.Status)
	assert.Equal(t, PaymentOpen, order.PaymentStatus)
	for _, it := range order.Items {
		assert.Equal(t, order.ID, it.OrderID)
	}
}

func TestNewOrder_Validation(t *testing.T) {
	tests := []struct {
		name        string
		items       []OrderItem
		discount    decimal.Decimal
		deliveryFee decimal.Decimal
	}{
		{"empty items", nil, decimal.Zero, decimal.Zero},
		{"negative discount", testOrderItems(1, 10), decimal.NewFromInt(-1), decimal.Zero},
		{"negative delivery fee", testOrderItems(1, 10), decimal.Zero, decimal.NewFromInt(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOrder(uuid.New(), uuid.New(), uuid.New(), tt.items, tt.discount, tt.deliveryFee, "")
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, shared.CodeValidation, domainErr.Code)
		})
	}
}

func TestOrder_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to confirmed", OrderPending, OrderConfirmed, true},
		{"confirmed to preparing", OrderConfirmed, OrderPreparing, true},
		{"preparing to ready", OrderPreparing, OrderReady, true},
		{"ready to delivered", OrderReady, OrderDelivered, true},
		{"pending to canceled", OrderPending, OrderCanceled, true},
		{"ready to canceled", OrderReady, OrderCanceled, true},
		{"pending to preparing skips confirm", OrderPending, OrderPreparing, false},
		{"delivered to canceled", OrderDelivered, OrderCanceled, false},
		{"confirmed back to pending", OrderConfirmed, OrderPending, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder(uuid.New(), uuid.New(), uuid.New(), testOrderItems(1, 10), decimal.Zero, decimal.Zero, "")
			require.NoError(t, err)
			order.Status = tt.from

			err = order.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, order.Status)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.from, order.Status, "failed transition must not change state")
			}
		})
	}
}

func TestOrder_CancelTwice(t *testing.T) {
	order, err := NewOrder(uuid.New(), uuid.New(), uuid.New(), testOrderItems(1, 10), decimal.Zero, decimal.Zero, "")
	require.NoError(t, err)

	require.NoError(t, order.TransitionTo(OrderCanceled))
	err = order.TransitionTo(OrderCanceled)
	assert.ErrorIs(t, err, shared.ErrAlreadyCanceled)
}

func TestOrder_ReservesStock(t *testing.T) {
	order, err := NewOrder(uuid.New(), uuid.New(), uuid.New(), testOrderItems(1, 10), decimal.Zero, decimal.Zero, "")
	require.NoError(t, err)
	assert.False(t, order.ReservesStock())

	require.NoError(t, order.TransitionTo(OrderConfirmed))
	assert.True(t, order.ReservesStock())

	require.NoError(t, order.TransitionTo(OrderPreparing))
	assert.True(t, order.ReservesStock())
}

func TestOrder_AddPayment(t *testing.T) {
	newOrder := func(t *testing.T) *Order {
		// subtotal 100, discount 10 -> total 90
		items := []OrderItem{{ProductID: uuid.New(), Quantity: decimal.NewFromInt(10), BasePrice: decimal.NewFromInt(10)}}
		order, err := NewOrder(uuid.New(), uuid.New(), uuid.New(), items, decimal.NewFromInt(10), decimal.Zero, "")
		require.NoError(t, err)
		return order
	}

	t.Run("partial then full", func(t *testing.T) {
		order := newOrder(t)
		_, err := order.AddPayment(decimal.NewFromInt(60), "cash", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, PaymentPending, order.PaymentStatus)

		_, err = order.AddPayment(decimal.NewFromInt(30), "card", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, PaymentPaid, order.PaymentStatus)
	})

	t.Run("exceeding total rejected, rows unchanged", func(t *testing.T) {
		order := newOrder(t)
		_, err := order.AddPayment(decimal.NewFromInt(60), "cash", uuid.New())
		require.NoError(t, err)

		_, err = order.AddPayment(decimal.NewFromInt(60), "cash", uuid.New())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodePaymentExceedsTotal, domainErr.Code)
		assert.Len(t, order.Payments, 1)
		assert.True(t, order.PaidAmount().Equal(decimal.NewFromInt(60)))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		order := newOrder(t)
		_, err := order.AddPayment(decimal.Zero, "cash", uuid.New())
		assert.Error(t, err)
	})
}

func TestOrder_ReplaceItems(t *testing.T) {
	order, err := NewOrder(uuid.New(), uuid.New(), uuid.New(), testOrderItems(2, 10), decimal.Zero, decimal.Zero, "")
	require.NoError(t, err)

	newItems := []OrderItem{{ProductID: uuid.New(), Quantity: decimal.NewFromInt(3), BasePrice: decimal.NewFromInt(7)}}
	require.NoError(t, order.ReplaceItems(newItems))
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(21)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(21)))

	order.Status = OrderDelivered
	err = order.ReplaceItems(testOrderItems(1, 5))
	assert.Error(t, err, "terminal orders are immutable")
}
