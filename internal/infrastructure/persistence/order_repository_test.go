package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

func newTestOrder(t *testing.T, companyID uuid.UUID) *trade.Order {
	t.Helper()
	item := trade.OrderItem{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  uuid.New(),
		Quantity:   decimal.NewFromInt(2),
		BasePrice:  decimal.NewFromInt(50),
		CostPrice:  decimal.NewFromInt(30),
	}
	order, err := trade.NewOrder(companyID, uuid.New(), uuid.New(),
		[]trade.OrderItem{item}, decimal.Zero, decimal.Zero, "")
	require.NoError(t, err)
	return order
}

func TestOrderSaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	order := newTestOrder(t, companyID)
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(100)))

	t.Run("foreign tenant cannot see the order", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderSaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	order := newTestOrder(t, companyID)
	require.NoError(t, repo.Save(ctx, order))

	require.NoError(t, order.TransitionTo(trade.OrderConfirmed))
	require.NoError(t, repo.SaveWithLock(ctx, order))
	assert.Equal(t, 2, order.Version)

	found, err := repo.FindByID(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderConfirmed, found.Status)
	assert.Equal(t, 2, found.Version)

	t.Run("stale version is rejected", func(t *testing.T) {
		stale := *order
		stale.Version = 1
		err := repo.SaveWithLock(ctx, &stale)
		assert.ErrorIs(t, err, shared.ErrConcurrentUpdate)
	})
}

func TestOrderSaveWithLockInsertsNewPayments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	order := newTestOrder(t, companyID)
	require.NoError(t, repo.Save(ctx, order))

	_, err := order.AddPayment(decimal.NewFromInt(60), "cash", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, order))

	found, err := repo.FindByID(ctx, companyID, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Payments, 1)
	assert.True(t, found.Payments[0].Amount.Equal(decimal.NewFromInt(60)))

	// Saving again must not duplicate the payment row.
	require.NoError(t, repo.SaveWithLock(ctx, order))
	found, err = repo.FindByID(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Len(t, found.Payments, 1)
}

func TestOrderReplaceItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	order := newTestOrder(t, companyID)
	require.NoError(t, repo.Save(ctx, order))

	replacement := []trade.OrderItem{
		{
			BaseEntity: shared.NewBaseEntity(),
			OrderID:    order.ID,
			ProductID:  uuid.New(),
			Quantity:   decimal.NewFromInt(1),
			BasePrice:  decimal.NewFromInt(25),
		},
		{
			BaseEntity: shared.NewBaseEntity(),
			OrderID:    order.ID,
			ProductID:  uuid.New(),
			Quantity:   decimal.NewFromInt(3),
			BasePrice:  decimal.NewFromInt(10),
		},
	}
	require.NoError(t, order.ReplaceItems(replacement))
	require.NoError(t, repo.ReplaceItems(ctx, order))

	found, err := repo.FindByID(ctx, companyID, order.ID)
	require.NoError(t, err)
	assert.Len(t, found.Items, 2)
	assert.True(t, found.Total.Equal(decimal.NewFromInt(55)), "got %s", found.Total)
}

func TestOrderList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	companyID := uuid.New()

	confirmed := newTestOrder(t, companyID)
	require.NoError(t, confirmed.TransitionTo(trade.OrderConfirmed))
	require.NoError(t, repo.Save(ctx, confirmed))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, companyID)))
	require.NoError(t, repo.Save(ctx, newTestOrder(t, uuid.New())))

	page, err := repo.List(ctx, companyID, trade.OrderFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	status := trade.OrderConfirmed
	page, err = repo.List(ctx, companyID, trade.OrderFilter{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}
