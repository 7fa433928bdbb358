package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormStockBalanceRepository implements StockBalanceRepository using GORM.
type GormStockBalanceRepository struct {
	db *gorm.DB
}

// NewGormStockBalanceRepository creates a stock balance repository.
func NewGormStockBalanceRepository(db *gorm.DB) *GormStockBalanceRepository {
	return &GormStockBalanceRepository{db: db}
}

// ApplyDelta increments a balance in a single statement: insert the row
// with the delta as its quantity, or on conflict add the delta to the
// existing quantity. The increment happens at the database so concurrent
// transactions cannot lose updates to a read-modify-write race.
func (r *GormStockBalanceRepository) ApplyDelta(ctx context.Context, companyID, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*inventory.StockBalance, error) {
	balance := inventory.NewStockBalance(companyID, productID, warehouseID)
	balance.Quantity = delta

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"},
				{Name: "product_id"},
				{Name: "warehouse_id"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("stock_balances.quantity + ?", delta),
				"updated_at": time.Now(),
			}),
		}).
		Create(balance).Error
	if err != nil {
		return nil, err
	}

	return r.Find(ctx, companyID, productID, warehouseID)
}

func (r *GormStockBalanceRepository) Find(ctx context.Context, companyID, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	var balance inventory.StockBalance
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND product_id = ? AND warehouse_id = ?", companyID, productID, warehouseID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

func (r *GormStockBalanceRepository) ListByProduct(ctx context.Context, companyID, productID uuid.UUID) ([]*inventory.StockBalance, error) {
	var balances []*inventory.StockBalance
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND product_id = ?", companyID, productID).
		Order("warehouse_id ASC").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

func (r *GormStockBalanceRepository) ListByWarehouse(ctx context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[*inventory.StockBalance], error) {
	filter.Normalize()
	base := r.db.WithContext(ctx).Model(&inventory.StockBalance{}).
		Where("company_id = ? AND warehouse_id = ?", companyID, warehouseID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return shared.Paginated[*inventory.StockBalance]{}, err
	}

	var balances []*inventory.StockBalance
	if err := paginate(base.Order(sortClause(filter, withSortFields("quantity"), "updated_at")), filter).
		Find(&balances).Error; err != nil {
		return shared.Paginated[*inventory.StockBalance]{}, err
	}
	return shared.NewPaginated(balances, total, filter), nil
}
