package identity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retailcore/backend/internal/domain/shared"
)

// Settings is a free-form key-value bag stored as a JSON column. Updates
// merge shallowly: incoming keys overwrite, absent keys survive, and a nil
// value removes a key.
type Settings map[string]any

// Value implements driver.Valuer.
func (s Settings) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *Settings) Scan(value any) error {
	if value == nil {
		*s = Settings{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("settings: unsupported column type %T", value)
	}
	if len(b) == 0 {
		*s = Settings{}
		return nil
	}
	return json.Unmarshal(b, s)
}

// Company is the tenant root. All business data is scoped to a company.
type Company struct {
	shared.BaseAggregateRoot
	Name     string   `gorm:"size:200;not null" json:"name"`
	Currency string   `gorm:"size:8;not null;default:USD" json:"currency"`
	Active   bool     `gorm:"not null;default:true" json:"active"`
	Settings Settings `gorm:"type:jsonb" json:"settings"`
}

func (Company) TableName() string { return "companies" }

// NewCompany validates and creates a company.
func NewCompany(name, currency string) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrValidation("name", "must not be empty")
	}
	if currency == "" {
		currency = "USD"
	}
	return &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Currency:          currency,
		Active:            true,
		Settings:          Settings{},
	}, nil
}

// MergeSettings applies a shallow merge of the incoming keys onto the
// current settings. A nil value deletes the key.
func (c *Company) MergeSettings(incoming Settings) {
	if c.Settings == nil {
		c.Settings = Settings{}
	}
	for k, v := range incoming {
		if v == nil {
			delete(c.Settings, k)
			continue
		}
		c.Settings[k] = v
	}
	c.Touch()
}

// Rename changes the company name.
func (c *Company) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrValidation("name", "must not be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}
