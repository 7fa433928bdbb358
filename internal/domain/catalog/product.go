package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Product is a sellable item in a company's catalog. Price and cost use
// fixed-point decimals; stock quantities live in the inventory module.
type Product struct {
	shared.TenantAggregateRoot
	Name       string          `gorm:"size:200;not null" json:"name"`
	SKU        string          `gorm:"size:64;index" json:"sku"`
	Barcode    string          `gorm:"size:64;index" json:"barcode"`
	CategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Unit       string          `gorm:"size:32;not null;default:unit" json:"unit"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"sale_price"`
	CostPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"cost_price"`
	TrackStock bool            `gorm:"not null;default:true" json:"track_stock"`
	Active     bool            `gorm:"not null;default:true" json:"active"`
	Notes      string          `gorm:"size:1000" json:"notes"`
}

func (Product) TableName() string { return "products" }

// NewProduct validates and creates a product.
func NewProduct(companyID, createdBy uuid.UUID, name string, salePrice, costPrice decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation("name", "must not be empty")
	}
	if salePrice.IsNegative() {
		return nil, shared.ErrValidation("sale_price", "must not be negative")
	}
	if costPrice.IsNegative() {
		return nil, shared.ErrValidation("cost_price", "must not be negative")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		Name:                name,
		Unit:                "unit",
		SalePrice:           salePrice,
		CostPrice:           costPrice,
		TrackStock:          true,
		Active:              true,
	}, nil
}

// Rename changes the product name.
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrValidation("name", "must not be empty")
	}
	p.Name = name
	p.Touch()
	return nil
}

// SetPrices updates sale and cost prices.
func (p *Product) SetPrices(salePrice, costPrice decimal.Decimal) error {
	if salePrice.IsNegative() {
		return shared.ErrValidation("sale_price", "must not be negative")
	}
	if costPrice.IsNegative() {
		return shared.ErrValidation("cost_price", "must not be negative")
	}
	p.SalePrice = salePrice
	p.CostPrice = costPrice
	p.Touch()
	return nil
}

// AssignCategory moves the product to a category, or clears it when nil.
func (p *Product) AssignCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.Touch()
}

// Deactivate hides the product from sale without deleting its history.
func (p *Product) Deactivate() {
	p.Active = false
	p.Touch()
}

// Activate makes the product sellable again.
func (p *Product) Activate() {
	p.Active = true
	p.Touch()
}
