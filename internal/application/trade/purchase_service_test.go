package trade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/application/txn/txntest"

	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

type purchaseFixture struct {
	store     *txntest.Store
	service   *PurchaseService
	companyID uuid.UUID
	userID    uuid.UUID
	warehouse uuid.UUID
	productID uuid.UUID
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()
	store := txntest.NewStore()
	companyID := uuid.New()
	warehouse := store.AddWarehouse(companyID)
	product := store.AddProduct(companyID, 10, 5)
	scope := &txntest.Scope{Store: store}
	return &purchaseFixture{
		store:     store,
		service:   NewPurchaseService(scope, store.PurchaseRepo(), zap.NewNop()),
		companyID: companyID,
		userID:    uuid.New(),
		warehouse: warehouse.ID,
		productID: product.ID,
	}
}

func TestPurchaseService_Create(t *testing.T) {
	f := newPurchaseFixture(t)

	purchase, err := f.service.Create(context.Background(), f.companyID, f.userID, CreatePurchaseInput{
		WarehouseID:  f.warehouse,
		SupplierName: "Acme Wholesale",
		Items: []PurchaseItemInput{{
			ProductID: f.productID,
			Quantity:  decimal.NewFromInt(12),
			UnitCost:  decimal.NewFromInt(5),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, trade.PurchaseReceived, purchase.Status)
	assert.True(t, purchase.Total.Equal(decimal.NewFromInt(60)))
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(12)))

	var out *finance.MoneyMovement
	for _, m := range f.store.Money {
		out = m
	}
	require.NotNil(t, out, "purchase books a money-out entry")
	assert.Equal(t, finance.MoneyOut, out.Type)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, finance.MoneyRefPurchase, out.ReferenceType)
}

func TestPurchaseService_CancelReversesBoth(t *testing.T) {
	f := newPurchaseFixture(t)
	purchase, err := f.service.Create(context.Background(), f.companyID, f.userID, CreatePurchaseInput{
		WarehouseID: f.warehouse,
		Items: []PurchaseItemInput{{
			ProductID: f.productID,
			Quantity:  decimal.NewFromInt(12),
			UnitCost:  decimal.NewFromInt(5),
		}},
	})
	require.NoError(t, err)

	canceled, err := f.service.Cancel(context.Background(), f.companyID, purchase.ID, f.userID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseCanceled, canceled.Status)
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).IsZero())

	net := decimal.Zero
	for _, m := range f.store.Money {
		net = net.Add(m.SignedAmount())
	}
	assert.True(t, net.IsZero(), "canceled purchase nets to zero in the money ledger")

	_, err = f.service.Cancel(context.Background(), f.companyID, purchase.ID, f.userID)
	assert.ErrorIs(t, err, shared.ErrAlreadyCanceled)
}

func TestPurchaseService_CancelNeedsStockOnHand(t *testing.T) {
	f := newPurchaseFixture(t)
	purchase, err := f.service.Create(context.Background(), f.companyID, f.userID, CreatePurchaseInput{
		WarehouseID: f.warehouse,
		Items: []PurchaseItemInput{{
			ProductID: f.productID,
			Quantity:  decimal.NewFromInt(12),
			UnitCost:  decimal.NewFromInt(5),
		}},
	})
	require.NoError(t, err)

	// The received goods were since sold or moved away.
	f.store.SetBalance(f.companyID, f.productID, f.warehouse, 3)

	_, err = f.service.Cancel(context.Background(), f.companyID, purchase.ID, f.userID)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestPurchaseService_UntrackedLinesSkipStock(t *testing.T) {
	f := newPurchaseFixture(t)
	service := f.store.AddProduct(f.companyID, 0, 20)
	service.TrackStock = false

	purchase, err := f.service.Create(context.Background(), f.companyID, f.userID, CreatePurchaseInput{
		WarehouseID:  f.warehouse,
		SupplierName: "Acme Wholesale",
		Items: []PurchaseItemInput{
			{ProductID: f.productID, Quantity: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(5)},
			{ProductID: service.ID, Quantity: decimal.NewFromInt(2), UnitCost: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)

	assert.True(t, purchase.Total.Equal(decimal.NewFromInt(65)), "untracked lines still cost money")
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).Equal(decimal.NewFromInt(5)))
	assert.True(t, f.store.BalanceQty(f.companyID, service.ID, f.warehouse).IsZero())
	require.Len(t, f.store.Movements, 1)
	assert.Equal(t, f.productID, f.store.Movements[0].ProductID)

	_, err = f.service.Cancel(context.Background(), f.companyID, purchase.ID, f.userID)
	require.NoError(t, err)
	assert.True(t, f.store.BalanceQty(f.companyID, f.productID, f.warehouse).IsZero())
	assert.True(t, f.store.BalanceQty(f.companyID, service.ID, f.warehouse).IsZero(),
		"cancel must not demand stock for the untracked line")
	require.Len(t, f.store.Movements, 2)
}
