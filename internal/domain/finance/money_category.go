package finance

import (
	"strings"

	"github.com/google/uuid"

	"github.com/retailcore/backend/internal/domain/shared"
)

// MoneyCategory labels manual ledger entries (rent, supplies, tips).
// Category names are unique per company.
type MoneyCategory struct {
	shared.TenantAggregateRoot
	Name string    `gorm:"size:120;not null" json:"name"`
	Type MoneyType `gorm:"size:8;not null" json:"type"`
}

func (MoneyCategory) TableName() string { return "money_categories" }

// NewMoneyCategory validates and creates a category.
func NewMoneyCategory(companyID, createdBy uuid.UUID, name string, moneyType MoneyType) (*MoneyCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation("name", "must not be empty")
	}
	if moneyType != MoneyIn && moneyType != MoneyOut {
		return nil, shared.ErrValidation("type", "must be IN or OUT")
	}
	return &MoneyCategory{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(companyID, createdBy),
		Name:                name,
		Type:                moneyType,
	}, nil
}

// Rename changes the category name.
func (c *MoneyCategory) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrValidation("name", "must not be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}
