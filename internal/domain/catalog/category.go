package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Category groups products for navigation and reporting.
type Category struct {
	shared.TenantAggregateRoot
	Name        string `gorm:"size:120;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
}

func (Category) TableName() string { return "product_categories" }

// NewCategory validates and creates a product category.
func NewCategory(companyID, createdBy uuid.UUID, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation("name", "must not be empty")
	}
	return &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		Name:                name,
		Description:         description,
	}, nil
}

// Rename changes the category name.
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrValidation("name", "must not be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}
