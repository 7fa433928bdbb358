package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// PurchaseStatus mirrors the sale lifecycle on the inbound side.
type PurchaseStatus string

const (
	PurchaseReceived PurchaseStatus = "RECEIVED"
	PurchaseCanceled PurchaseStatus = "CANCELED"
)

// Purchase is a received supplier delivery. Creation books the stock in and
// records the money-out entry in one transaction; cancellation reverses both.
type Purchase struct {
	shared.TenantAggregateRoot
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"warehouse_id"`
	SupplierName string          `gorm:"size:200" json:"supplier_name"`
	Status       PurchaseStatus  `gorm:"size:16;not null;default:RECEIVED" json:"status"`
	Total        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total"`
	Notes        string          `gorm:"size:1000" json:"notes"`
	Items        []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Purchase) TableName() string { return "purchases" }

// PurchaseItem is one received line with its unit cost.
type PurchaseItem struct {
	shared.BaseEntity
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_cost"`
}

func (PurchaseItem) TableName() string { return "purchase_items" }

// NewPurchase creates a RECEIVED purchase with its total computed from the
// item lines.
func NewPurchase(companyID, createdBy, warehouseID uuid.UUID, supplierName string, items []PurchaseItem, notes string) (*Purchase, error) {
	if len(items) == 0 {
		return nil, shared.ErrValidation("items", "must not be empty")
	}
	purchase := &Purchase{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		WarehouseID:         warehouseID,
		SupplierName:        supplierName,
		Status:              PurchaseReceived,
		Notes:               notes,
	}
	total := decimal.Zero
	for i := range items {
		if !items[i].Quantity.IsPositive() {
			return nil, shared.ErrValidation("quantity", "must be positive")
		}
		if items[i].UnitCost.IsNegative() {
			return nil, shared.ErrValidation("unit_cost", "must not be negative")
		}
		items[i].PurchaseID = purchase.ID
		total = total.Add(items[i].Quantity.Mul(items[i].UnitCost))
	}
	purchase.Items = items
	purchase.Total = total
	return purchase, nil
}

// Cancel marks the purchase CANCELED. The application layer reverses stock
// and money in the same transaction.
func (p *Purchase) Cancel() error {
	if p.Status == PurchaseCanceled {
		return shared.WrapDomainError(shared.CodeAlreadyCanceled,
			"purchase is already canceled", shared.ErrAlreadyCanceled)
	}
	p.Status = PurchaseCanceled
	p.Touch()
	return nil
}
