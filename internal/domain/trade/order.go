package trade

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderReady     OrderStatus = "READY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

// PaymentStatus tracks how much of a document's total has been collected.
type PaymentStatus string

const (
	PaymentOpen    PaymentStatus = "OPEN"
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// orderTransitions is the forward path of the state machine. CANCELED is
// handled separately: it is reachable from any non-terminal state.
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderPending:   OrderConfirmed,
	OrderConfirmed: OrderPreparing,
	OrderPreparing: OrderReady,
	OrderReady:     OrderDelivered,
}

// Order holds inventory that is reserved but not yet sold. Stock only moves
// when the order crosses the CONFIRMED boundary: confirmation withdraws the
// item quantities, cancellation of a confirmed order returns them.
type Order struct {
	shared.TenantAggregateRoot
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Status        OrderStatus     `gorm:"size:16;not null;default:PENDING" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"size:16;not null;default:OPEN" json:"payment_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"discount"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"delivery_fee"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Notes         string          `gorm:"size:1000" json:"notes"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Payments      []OrderPayment  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots price and cost at order time so later catalog edits
// do not rewrite history.
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	BasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"base_price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost_price"`
}

func (OrderItem) TableName() string { return "order_items" }

// OrderPayment is one collected amount against an order.
type OrderPayment struct {
	shared.BaseEntity
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMethod string          `gorm:"size:32;not null" json:"payment_method"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid" json:"created_by"`
}

func (OrderPayment) TableName() string { return "order_payments" }

// ItemInput is a requested line on an order or sale.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	BasePrice *decimal.Decimal
}

// NewOrder creates a PENDING order with computed totals. Items must already
// carry their price and cost snapshots.
func NewOrder(companyID, createdBy, warehouseID uuid.UUID, items []OrderItem, discount, deliveryFee decimal.Decimal, notes string) (*Order, error) {
	if len(items) == 0 {
		return nil, shared.ErrValidation("items", "must not be empty")
	}
	if discount.IsNegative() {
		return nil, shared.ErrValidation("discount", "must not be negative")
	}
	if deliveryFee.IsNegative() {
		return nil, shared.ErrValidation("delivery_fee", "must not be negative")
	}
	order := &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		WarehouseID:         warehouseID,
		Status:              OrderPending,
		PaymentStatus:       PaymentOpen,
		Discount:            discount,
		DeliveryFee:         deliveryFee,
		Notes:               notes,
	}
	order.setItems(items)
	return order, nil
}

func (o *Order) setItems(items []OrderItem) {
	for i := range items {
		items[i].OrderID = o.ID
	}
	o.Items = items
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Quantity.Mul(it.BasePrice))
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Sub(o.Discount).Add(o.DeliveryFee)
	o.Touch()
}

// ReplaceItems swaps the item set and recomputes totals. The caller is
// responsible for reconciling reserved stock when the order is confirmed.
func (o *Order) ReplaceItems(items []OrderItem) error {
	if o.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("cannot edit items of a %s order", o.Status))
	}
	if len(items) == 0 {
		return shared.ErrValidation("items", "must not be empty")
	}
	o.setItems(items)
	return nil
}

// IsTerminal reports whether the order can no longer change state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderDelivered || o.Status == OrderCanceled
}

// ReservesStock reports whether the order currently holds withdrawn stock.
func (o *Order) ReservesStock() bool {
	switch o.Status {
	case OrderConfirmed, OrderPreparing, OrderReady, OrderDelivered:
		return true
	}
	return false
}

// CanTransitionTo checks the state machine without mutating the order.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	if next == OrderCanceled {
		return !o.IsTerminal()
	}
	return orderTransitions[o.Status] == next
}

// TransitionTo advances the order status. Stock side effects are decided by
// the caller from the (old, new) pair before calling this.
func (o *Order) TransitionTo(next OrderStatus) error {
	if o.Status == OrderCanceled && next == OrderCanceled {
		return shared.WrapDomainError(shared.CodeAlreadyCanceled,
			"order is already canceled", shared.ErrAlreadyCanceled)
	}
	if !o.CanTransitionTo(next) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("cannot transition order from %s to %s", o.Status, next))
	}
	o.Status = next
	o.Touch()
	return nil
}

// PaidAmount sums all recorded payments.
func (o *Order) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range o.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// AddPayment records a payment and updates the payment status. The running
// payment total may never exceed the order total.
func (o *Order) AddPayment(amount decimal.Decimal, method string, createdBy uuid.UUID) (*OrderPayment, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrValidation("amount", "must be positive")
	}
	if method == "" {
		return nil, shared.ErrValidation("payment_method", "must not be empty")
	}
	newTotal := o.PaidAmount().Add(amount)
	if newTotal.GreaterThan(o.Total) {
		return nil, shared.NewDomainError(shared.CodePaymentExceedsTotal,
			fmt.Sprintf("payments %s would exceed order total %s", newTotal, o.Total))
	}
	payment := OrderPayment{
		BaseEntity:    shared.NewBaseEntity(),
		OrderID:       o.ID,
		Amount:        amount,
		PaymentMethod: method,
		CreatedBy:     createdBy,
	}
	o.Payments = append(o.Payments, payment)
	if newTotal.Equal(o.Total) {
		o.PaymentStatus = PaymentPaid
	} else {
		o.PaymentStatus = PaymentPending
	}
	o.Touch()
	return &o.Payments[len(o.Payments)-1], nil
}
