package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

func TestApplyDelta(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockBalanceRepository(db)
	ctx := context.Background()
	companyID, productID, warehouseID := uuid.New(), uuid.New(), uuid.New()

	t.Run("creates row on first delta", func(t *testing.T) {
		balance, err := repo.ApplyDelta(ctx, companyID, productID, warehouseID, decimal.NewFromInt(10))
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("increments existing row", func(t *testing.T) {
		balance, err := repo.ApplyDelta(ctx, companyID, productID, warehouseID, decimal.NewFromInt(5))
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(15)))

		var count int64
		require.NoError(t, db.Model(&inventory.StockBalance{}).Count(&count).Error)
		assert.EqualValues(t, 1, count, "one row per (company, product, warehouse)")
	})

	t.Run("negative delta decrements", func(t *testing.T) {
		balance, err := repo.ApplyDelta(ctx, companyID, productID, warehouseID, decimal.NewFromInt(-6))
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(9)))
	})

	t.Run("separate warehouse gets its own row", func(t *testing.T) {
		otherWarehouse := uuid.New()
		balance, err := repo.ApplyDelta(ctx, companyID, productID, otherWarehouse, decimal.NewFromInt(3))
		require.NoError(t, err)
		assert.True(t, balance.Quantity.Equal(decimal.NewFromInt(3)))

		original, err := repo.Find(ctx, companyID, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, original.Quantity.Equal(decimal.NewFromInt(9)))
	})
}

func TestStockBalanceFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockBalanceRepository(db)
	ctx := context.Background()

	_, err := repo.Find(ctx, uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStockBalanceListByProduct(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockBalanceRepository(db)
	ctx := context.Background()
	companyID, productID := uuid.New(), uuid.New()

	_, err := repo.ApplyDelta(ctx, companyID, productID, uuid.New(), decimal.NewFromInt(4))
	require.NoError(t, err)
	_, err = repo.ApplyDelta(ctx, companyID, productID, uuid.New(), decimal.NewFromInt(7))
	require.NoError(t, err)
	// Another tenant's stock must not leak into the listing.
	_, err = repo.ApplyDelta(ctx, uuid.New(), productID, uuid.New(), decimal.NewFromInt(99))
	require.NoError(t, err)

	balances, err := repo.ListByProduct(ctx, companyID, productID)
	require.NoError(t, err)
	assert.Len(t, balances, 2)
}

func TestStockMovementSumByProduct(t *testing.T) {
	db := setupTestDB(t)
	movements := NewGormStockMovementRepository(db)
	ctx := context.Background()
	companyID, productID, warehouseID, userID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	appendMovement := func(mt inventory.MovementType, qty int64) {
		m, err := inventory.NewStockMovement(companyID, productID, warehouseID, userID,
			mt, inventory.ReferenceAdjust, nil, decimal.NewFromInt(qty), "")
		require.NoError(t, err)
		require.NoError(t, movements.Append(ctx, m))
	}

	appendMovement(inventory.MovementIn, 10)
	appendMovement(inventory.MovementOut, 3)
	appendMovement(inventory.MovementIn, 2)

	sums, err := movements.SumByProduct(ctx, companyID, productID)
	require.NoError(t, err)
	require.Contains(t, sums, warehouseID)
	assert.True(t, sums[warehouseID].Equal(decimal.NewFromInt(9)), "got %s", sums[warehouseID])
}

func TestStockMovementListFilters(t *testing.T) {
	db := setupTestDB(t)
	movements := NewGormStockMovementRepository(db)
	ctx := context.Background()
	companyID, userID := uuid.New(), uuid.New()
	productA, productB, warehouseID := uuid.New(), uuid.New(), uuid.New()

	for _, productID := range []uuid.UUID{productA, productA, productB} {
		m, err := inventory.NewStockMovement(companyID, productID, warehouseID, userID,
			inventory.MovementIn, inventory.ReferencePurchase, nil, decimal.NewFromInt(1), "")
		require.NoError(t, err)
		require.NoError(t, movements.Append(ctx, m))
	}

	page, err := movements.List(ctx, companyID, inventory.MovementFilter{ProductID: &productA})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Items, 2)

	refType := inventory.ReferenceSale
	page, err = movements.List(ctx, companyID, inventory.MovementFilter{ReferenceType: &refType})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
}
