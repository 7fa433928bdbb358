package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcore/backend/internal/domain/shared"
)

func TestNewStockMovement_Validation(t *testing.T) {
	companyID, productID, warehouseID, userID := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name         string
		movementType MovementType
		quantity     decimal.Decimal
		wantErr      bool
	}{
		{"valid in", MovementIn, decimal.NewFromInt(5), false},
		{"valid out", MovementOut, decimal.NewFromFloat(0.25), false},
		{"zero quantity", MovementIn, decimal.Zero, true},
		{"negative quantity", MovementOut, decimal.NewFromInt(-3), true},
		{"unknown type", MovementType("SIDEWAYS"), decimal.NewFromInt(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewStockMovement(companyID, productID, warehouseID, userID,
				tt.movementType, ReferenceSale, nil, tt.quantity, "")
			if tt.wantErr {
				require.Error(t, err)
				var domainErr *shared.DomainError
				assert.ErrorAs(t, err, &domainErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.movementType, m.Type)
			assert.True(t, m.Quantity.Equal(tt.quantity))
		})
	}
}

func TestStockMovement_SignedQuantity(t *testing.T) {
	in, err := NewStockMovement(uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		MovementIn, ReferencePurchase, nil, decimal.NewFromInt(7), "")
	require.NoError(t, err)
	assert.True(t, in.SignedQuantity().Equal(decimal.NewFromInt(7)))

	out, err := NewStockMovement(uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		MovementOut, ReferenceSale, nil, decimal.NewFromInt(7), "")
	require.NoError(t, err)
	assert.True(t, out.SignedQuantity().Equal(decimal.NewFromInt(-7)))
}

func TestStockBalance_CanWithdraw(t *testing.T) {
	b := NewStockBalance(uuid.New(), uuid.New(), uuid.New())
	assert.True(t, b.Quantity.IsZero())
	assert.False(t, b.CanWithdraw(decimal.NewFromInt(1)))
	assert.True(t, b.CanWithdraw(decimal.Zero))

	b.Quantity = decimal.NewFromInt(10)
	assert.True(t, b.CanWithdraw(decimal.NewFromInt(10)))
	assert.False(t, b.CanWithdraw(decimal.NewFromFloat(10.0001)))
}
