package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

// ReferenceType names the operation that produced a movement. Empty means a
// manual adjustment with no originating document.
type ReferenceType string

const (
	ReferenceSale     ReferenceType = "SALE"
	ReferenceOrder    ReferenceType = "ORDER"
	ReferencePurchase ReferenceType = "PURCHASE"
	ReferenceTransfer ReferenceType = "TRANSFER"
	ReferenceAdjust   ReferenceType = "ADJUST"
)

// StockMovement is one append-only ledger line. Movements are never updated
// or deleted; reversals are recorded as new movements in the opposite
// direction sharing the original ReferenceID. Quantity is always positive,
// Type carries the sign.
type StockMovement struct {
	shared.BaseEntity
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movements_company" json:"company_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movements_product" json:"product_id"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	Type          MovementType    `gorm:"size:8;not null" json:"type"`
	ReferenceType ReferenceType   `gorm:"size:16" json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Notes         string          `gorm:"size:500" json:"notes"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid" json:"created_by"`
}

func (StockMovement) TableName() string { return "stock_movements" }

// NewStockMovement validates and creates a movement line.
func NewStockMovement(companyID, productID, warehouseID, createdBy uuid.UUID, movementType MovementType, referenceType ReferenceType, referenceID *uuid.UUID, quantity decimal.Decimal, notes string) (*StockMovement, error) {
	if movementType != MovementIn && movementType != MovementOut {
		return nil, shared.ErrValidation("type", "must be IN or OUT")
	}
	if !quantity.IsPositive() {
		return nil, shared.ErrValidation("quantity", "must be positive")
	}
	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		CompanyID:     companyID,
		ProductID:     productID,
		WarehouseID:   warehouseID,
		Type:          movementType,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Quantity:      quantity,
		Notes:         notes,
		CreatedBy:     createdBy,
	}, nil
}

// SignedQuantity returns the delta this movement applies to the balance:
// positive for IN, negative for OUT.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
