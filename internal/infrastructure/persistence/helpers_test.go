package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/trade"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&identity.Company{},
		&identity.User{},
		&catalog.Category{},
		&catalog.Product{},
		&catalog.Warehouse{},
		&inventory.StockBalance{},
		&inventory.StockMovement{},
		&trade.Order{},
		&trade.OrderItem{},
		&trade.OrderPayment{},
		&trade.Sale{},
		&trade.SaleItem{},
		&trade.SalePayment{},
		&trade.Purchase{},
		&trade.PurchaseItem{},
		&finance.MoneyCategory{},
		&finance.MoneyMovement{},
		&audit.Activity{},
	))
	return db
}
