package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func testSaleItems(qty, price int64) []SaleItem {
	return []SaleItem{
		{
			ProductID: uuid.New(),
			Quantity:  decimal.NewFromInt(qty),
			BasePrice: decimal.NewFromInt(price),
			CostPrice: decimal.NewFromInt(price / 2),
		},
	}
}

func TestNewSale_ComputesTotalsAndPayments(t *testing.T) {
	payments := []PaymentInput{{Amount: decimal.NewFromInt(90), PaymentMethod: "cash"}}
	sale, err := NewSale(uuid.New(), uuid.New(), uuid.New(), "walk-in",
		testSaleItems(10, 10), payments, decimal.NewFromInt(10), "")
	require.NoError(t, err)

	assert.Equal(t, SaleCompleted, sale.Status)
	assert.True(t, sale.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(90)))
	assert.Equal(t, PaymentPaid, sale.PaymentStatus)
	require.Len(t, sale.Payments, 1)
	assert.Equal(t, sale.ID, sale.Payments[0].SaleID)
}

func TestNewSale_RejectsOverpayment(t *testing.T) {
	payments := []PaymentInput{{Amount: decimal.NewFromInt(120), PaymentMethod: "cash"}}
	_, err := NewSale(uuid.New(), uuid.New(), uuid.New(), "",
		testSaleItems(10, 10), payments, decimal.NewFromInt(10), "")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodePaymentExceedsTotal, domainErr.Code)
}

func TestNewSale_EmptyItems(t *testing.T) {
	_, err := NewSale(uuid.New(), uuid.New(), uuid.New(), "", nil, nil, decimal.Zero, "")
	assert.Error(t, err)
}

func TestSale_Cancel(t *testing.T) {
	sale, err := NewSale(uuid.New(), uuid.New(), uuid.New(), "",
		testSaleItems(1, 10), nil, decimal.Zero, "")
	require.NoError(t, err)

	require.NoError(t, sale.Cancel())
	assert.Equal(t, SaleCanceled, sale.Status)
	assert.Equal(t, PaymentPending, sale.PaymentStatus)

	err = sale.Cancel()
	assert.ErrorIs(t, err, shared.ErrAlreadyCanceled)
}

func TestSale_AddPaymentAfterCancel(t *testing.T) {
	sale, err := NewSale(uuid.New(), uuid.New(), uuid.New(), "",
		testSaleItems(1, 10), nil, decimal.Zero, "")
	require.NoError(t, err)
	require.NoError(t, sale.Cancel())

	_, err = sale.AddPayment(decimal.NewFromInt(5), "cash", uuid.New())
	assert.ErrorIs(t, err, shared.ErrAlreadyCanceled)
}

func TestSale_PartialPayments(t *testing.T) {
	sale, err := NewSale(uuid.New(), uuid.New(), uuid.New(), "",
		testSaleItems(10, 10), nil, decimal.Zero, "")
	require.NoError(t, err)

	_, err = sale.AddPayment(decimal.NewFromInt(40), "cash", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, sale.PaymentStatus)

	_, err = sale.AddPayment(decimal.NewFromInt(70), "card", uuid.New())
	require.Error(t, err, "40 + 70 exceeds total 100")
	assert.Len(t, sale.Payments, 1)

	_, err = sale.AddPayment(decimal.NewFromInt(60), "card", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, sale.PaymentStatus)
}
