package trade

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// SaleStatus is the lifecycle state of a sale. A sale is born COMPLETED:
// stock leaves and money arrives in the creating transaction. The only
// transition is COMPLETED -> CANCELED, which reverses both.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "COMPLETED"
	SaleCanceled  SaleStatus = "CANCELED"
)

// Sale is a finished point-of-sale transaction.
type Sale struct {
	shared.TenantAggregateRoot
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	CustomerName  string          `gorm:"size:200" json:"customer_name"`
	Status        SaleStatus      `gorm:"size:16;not null;default:COMPLETED" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"size:16;not null;default:PAID" json:"payment_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Notes         string          `gorm:"size:1000" json:"notes"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	Payments      []SalePayment   `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"payments"`
}

func (Sale) TableName() string { return "sales" }

// SaleItem snapshots price and cost at sale time.
type SaleItem struct {
	shared.BaseEntity
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	BasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"base_price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost_price"`
}

func (SaleItem) TableName() string { return "sale_items" }

// SalePayment is one collected amount against a sale.
type SalePayment struct {
	shared.BaseEntity
	SaleID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMethod string          `gorm:"size:32;not null" json:"payment_method"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid" json:"created_by"`
}

func (SalePayment) TableName() string { return "sale_payments" }

// PaymentInput is a requested payment line on a new sale.
type PaymentInput struct {
	Amount        decimal.Decimal
	PaymentMethod string
}

// NewSale creates a COMPLETED sale with computed totals. Initial payments
// are validated against the total before the sale is returned.
func NewSale(companyID, createdBy, warehouseID uuid.UUID, customerName string, items []SaleItem, payments []PaymentInput, discount decimal.Decimal, notes string) (*Sale, error) {
	if len(items) == 0 {
		return nil, shared.ErrValidation("items", "must not be empty")
	}
	if discount.IsNegative() {
		return nil, shared.ErrValidation("discount", "must not be negative")
	}
	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		WarehouseID:         warehouseID,
		CustomerName:        customerName,
		Status:              SaleCompleted,
		PaymentStatus:       PaymentOpen,
		Discount:            discount,
		Notes:               notes,
	}
	for i := range items {
		items[i].SaleID = sale.ID
	}
	sale.Items = items
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Quantity.Mul(it.BasePrice))
	}
	sale.Subtotal = subtotal
	sale.Total = subtotal.Sub(discount)
	for _, p := range payments {
		if _, err := sale.AddPayment(p.Amount, p.PaymentMethod, createdBy); err != nil {
			return nil, err
		}
	}
	return sale, nil
}

// PaidAmount sums all recorded payments.
func (s *Sale) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// AddPayment records a payment and updates the payment status.
func (s *Sale) AddPayment(amount decimal.Decimal, method string, createdBy uuid.UUID) (*SalePayment, error) {
	if s.Status == SaleCanceled {
		return nil, shared.WrapDomainError(shared.CodeAlreadyCanceled,
			"cannot add payments to a canceled sale", shared.ErrAlreadyCanceled)
	}
	if !amount.IsPositive() {
		return nil, shared.ErrValidation("amount", "must be positive")
	}
	if method == "" {
		return nil, shared.ErrValidation("payment_method", "must not be empty")
	}
	newTotal := s.PaidAmount().Add(amount)
	if newTotal.GreaterThan(s.Total) {
		return nil, shared.NewDomainError(shared.CodePaymentExceedsTotal,
			fmt.Sprintf("payments %s would exceed sale total %s", newTotal, s.Total))
	}
	payment := SalePayment{
		BaseEntity:    shared.NewBaseEntity(),
		SaleID:        s.ID,
		Amount:        amount,
		PaymentMethod: method,
		CreatedBy:     createdBy,
	}
	s.Payments = append(s.Payments, payment)
	if newTotal.Equal(s.Total) {
		s.PaymentStatus = PaymentPaid
	} else {
		s.PaymentStatus = PaymentPending
	}
	s.Touch()
	return &s.Payments[len(s.Payments)-1], nil
}

// Cancel marks the sale CANCELED. Stock and money reversal happen in the
// same transaction, driven by the application layer.
func (s *Sale) Cancel() error {
	if s.Status == SaleCanceled {
		return shared.WrapDomainError(shared.CodeAlreadyCanceled,
			"sale is already canceled", shared.ErrAlreadyCanceled)
	}
	s.Status = SaleCanceled
	s.PaymentStatus = PaymentPending
	s.Touch()
	return nil
}
