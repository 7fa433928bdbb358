package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// StockBalance is the current on-hand quantity of one product in one
// warehouse. There is at most one row per (company, product, warehouse);
// the repository enforces the uniqueness and applies deltas atomically so
// concurrent writers never lose an increment.
type StockBalance struct {
	shared.BaseEntity
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_key" json:"company_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_key" json:"product_id"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_key" json:"warehouse_id"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
}

func (StockBalance) TableName() string { return "stock_balances" }

// NewStockBalance creates a zero balance for a product at a warehouse.
func NewStockBalance(companyID, productID, warehouseID uuid.UUID) *StockBalance {
	return &StockBalance{
		BaseEntity:  shared.NewBaseEntity(),
		CompanyID:   companyID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
	}
}

// CanWithdraw reports whether the balance covers the requested quantity.
func (b *StockBalance) CanWithdraw(quantity decimal.Decimal) bool {
	return b.Quantity.GreaterThanOrEqual(quantity)
}
