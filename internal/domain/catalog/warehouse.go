package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Warehouse is a physical or logical stock location. Every stock balance and
// movement is pinned to exactly one warehouse.
type Warehouse struct {
	shared.TenantAggregateRoot
	Name      string `gorm:"size:120;not null" json:"name"`
	Address   string `gorm:"size:500" json:"address"`
	IsDefault bool   `gorm:"not null;default:false" json:"is_default"`
	Active    bool   `gorm:"not null;default:true" json:"active"`
}

func (Warehouse) TableName() string { return "warehouses" }

// NewWarehouse validates and creates a warehouse.
func NewWarehouse(companyID, createdBy uuid.UUID, name, address string) (*Warehouse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation("name", "must not be empty")
	}
	return &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		Name:                name,
		Address:             address,
		Active:              true,
	}, nil
}

// Rename changes the warehouse name.
func (w *Warehouse) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrValidation("name", "must not be empty")
	}
	w.Name = name
	w.Touch()
	return nil
}

// MarkDefault flags this warehouse as the company default. The application
// layer clears the flag on the previous default in the same transaction.
func (w *Warehouse) MarkDefault() {
	w.IsDefault = true
	w.Touch()
}

// Deactivate retires the warehouse. Existing movements keep referencing it.
func (w *Warehouse) Deactivate() {
	w.Active = false
	w.IsDefault = false
	w.Touch()
}
