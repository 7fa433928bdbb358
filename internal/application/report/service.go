// Package report runs read-only aggregation queries. Reports never open
// transactions.
package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/inventory"
)

// BalanceCheck compares one materialized balance against the signed sum of
// the movement ledger for the same (product, warehouse) pair. The two agree
// unless rows were edited outside the ledger operations.
type BalanceCheck struct {
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Balance     decimal.Decimal `json:"balance"`
	LedgerSum   decimal.Decimal `json:"ledger_sum"`
	Consistent  bool            `json:"consistent"`
}

// Service produces reports.
type Service struct {
	balances  inventory.StockBalanceRepository
	movements inventory.StockMovementRepository
	logger    *zap.Logger
}

// NewService wires the report service.
func NewService(balances inventory.StockBalanceRepository, movements inventory.StockMovementRepository, logger *zap.Logger) *Service {
	return &Service{balances: balances, movements: movements, logger: logger}
}

// ReconcileProduct checks every warehouse balance of a product against the
// movement ledger.
func (s *Service) ReconcileProduct(ctx context.Context, companyID, productID uuid.UUID) ([]BalanceCheck, error) {
	balances, err := s.balances.ListByProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	sums, err := s.movements.SumByProduct(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}

	checks := make([]BalanceCheck, 0, len(balances))
	seen := make(map[uuid.UUID]bool, len(balances))
	for _, b := range balances {
		sum := sums[b.WarehouseID]
		checks = append(checks, BalanceCheck{
			WarehouseID: b.WarehouseID,
			Balance:     b.Quantity,
			LedgerSum:   sum,
			Consistent:  b.Quantity.Equal(sum),
		})
		seen[b.WarehouseID] = true
	}
	// Movements at warehouses with no balance row indicate a missing upsert.
	for warehouseID, sum := range sums {
		if seen[warehouseID] {
			continue
		}
		checks = append(checks, BalanceCheck{
			WarehouseID: warehouseID,
			Balance:     decimal.Zero,
			LedgerSum:   sum,
			Consistent:  sum.IsZero(),
		})
	}
	for _, c := range checks {
		if !c.Consistent {
			s.logger.Warn("stock ledger drift detected",
				zap.String("company_id", companyID.String()),
				zap.String("product_id", productID.String()),
				zap.String("warehouse_id", c.WarehouseID.String()),
				zap.String("balance", c.Balance.String()),
				zap.String("ledger_sum", c.LedgerSum.String()))
		}
	}
	return checks, nil
}
