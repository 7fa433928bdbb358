package finance

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// MoneyType is the direction of a cash ledger entry.
type MoneyType string

const (
	MoneyIn  MoneyType = "IN"
	MoneyOut MoneyType = "OUT"
)

// MoneyReferenceType names the operation that produced a ledger entry.
// Entries referencing SALE, ORDER, PURCHASE or CASH_SESSION are system-owned
// and can only be neutralized by reversing the originating document. Empty
// and OTHER mark user-editable manual entries.
type MoneyReferenceType string

const (
	MoneyRefSale        MoneyReferenceType = "SALE"
	MoneyRefOrder       MoneyReferenceType = "ORDER"
	MoneyRefPurchase    MoneyReferenceType = "PURCHASE"
	MoneyRefCashSession MoneyReferenceType = "CASH_SESSION"
	MoneyRefOther       MoneyReferenceType = "OTHER"
)

// MoneyMovement is one cash ledger entry.
type MoneyMovement struct {
	shared.TenantAggregateRoot
	Type          MoneyType          `gorm:"size:8;not null" json:"type"`
	Amount        decimal.Decimal    `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMethod string             `gorm:"size:32" json:"payment_method"`
	CategoryID    *uuid.UUID         `gorm:"type:uuid;index" json:"category_id"`
	ReferenceType MoneyReferenceType `gorm:"size:16" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID         `gorm:"type:uuid;index" json:"reference_id"`
	Description   string             `gorm:"size:500" json:"description"`
}

func (MoneyMovement) TableName() string { return "money_movements" }

// NewManualMoneyMovement creates a user-entered ledger line. Manual entries
// never carry a system reference.
func NewManualMoneyMovement(companyID, createdBy uuid.UUID, moneyType MoneyType, amount decimal.Decimal, paymentMethod string, categoryID *uuid.UUID, description string) (*MoneyMovement, error) {
	if moneyType != MoneyIn && moneyType != MoneyOut {
		return nil, shared.ErrValidation("type", "must be IN or OUT")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrValidation("amount", "must be positive")
	}
	return &MoneyMovement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		Type:                moneyType,
		Amount:              amount,
		PaymentMethod:       paymentMethod,
		CategoryID:          categoryID,
		Description:         description,
	}, nil
}

// NewSystemMoneyMovement creates a ledger line owned by an originating
// document (sale, order, purchase). Only document reversal may neutralize it.
func NewSystemMoneyMovement(companyID, createdBy uuid.UUID, moneyType MoneyType, amount decimal.Decimal, paymentMethod string, referenceType MoneyReferenceType, referenceID uuid.UUID, description string) (*MoneyMovement, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrValidation("amount", "must be positive")
	}
	if referenceType == "" || referenceType == MoneyRefOther {
		return nil, shared.ErrValidation("reference_type", "system entries need a document reference")
	}
	return &MoneyMovement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		Type:                moneyType,
		Amount:              amount,
		PaymentMethod:       paymentMethod,
		ReferenceType:       referenceType,
		ReferenceID:         &referenceID,
		Description:         description,
	}, nil
}

// IsProtected reports whether the entry is system-owned.
func (m *MoneyMovement) IsProtected() bool {
	return m.ReferenceType != "" && m.ReferenceType != MoneyRefOther
}

// GuardMutable returns a ProtectedRecordError naming the owning document
// when the entry is system-owned, nil otherwise.
func (m *MoneyMovement) GuardMutable() error {
	if !m.IsProtected() {
		return nil
	}
	return shared.WrapDomainError(shared.CodeProtectedRecord,
		fmt.Sprintf("money movement belongs to a %s; cancel or reverse that %s instead of editing the ledger entry",
			m.ReferenceType, m.ReferenceType),
		shared.ErrProtectedRecord)
}

// Update applies user edits to a manual entry.
func (m *MoneyMovement) Update(moneyType MoneyType, amount decimal.Decimal, paymentMethod string, categoryID *uuid.UUID, description string) error {
	if err := m.GuardMutable(); err != nil {
		return err
	}
	if moneyType != MoneyIn && moneyType != MoneyOut {
		return shared.ErrValidation("type", "must be IN or OUT")
	}
	if !amount.IsPositive() {
		return shared.ErrValidation("amount", "must be positive")
	}
	m.Type = moneyType
	m.Amount = amount
	m.PaymentMethod = paymentMethod
	m.CategoryID = categoryID
	m.Description = description
	m.Touch()
	return nil
}

// SignedAmount returns the ledger delta: positive for IN, negative for OUT.
func (m *MoneyMovement) SignedAmount() decimal.Decimal {
	if m.Type == MoneyOut {
		return m.Amount.Neg()
	}
	return m.Amount
}
