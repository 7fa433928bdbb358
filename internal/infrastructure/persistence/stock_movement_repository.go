package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The table is append-only; no update or delete is exposed.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a stock movement repository.
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *GormStockMovementRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

func (r *GormStockMovementRepository) FindByReference(ctx context.Context, companyID, referenceID uuid.UUID) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND reference_id = ?", companyID, referenceID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *GormStockMovementRepository) List(ctx context.Context, companyID uuid.UUID, filter inventory.MovementFilter) (shared.Paginated[*inventory.StockMovement], error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("company_id = ?", companyID)

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*inventory.StockMovement]{}, err
	}

	var movements []*inventory.StockMovement
	if err := paginate(query.Order(sortClause(filter.Filter, withSortFields("quantity", "type"), "created_at")), filter.Filter).
		Find(&movements).Error; err != nil {
		return shared.Paginated[*inventory.StockMovement]{}, err
	}
	return shared.NewPaginated(movements, total, filter.Filter), nil
}

// SumByProduct returns the signed ledger total per warehouse: IN counts
// positive, OUT negative. Used by reconciliation against balances.
func (r *GormStockMovementRepository) SumByProduct(ctx context.Context, companyID, productID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []struct {
		WarehouseID uuid.UUID
		Total       decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockMovement{}).
		Select("warehouse_id, COALESCE(SUM(CASE WHEN type = ? THEN quantity ELSE -quantity END), 0) as total", inventory.MovementIn).
		Where("company_id = ? AND product_id = ?", companyID, productID).
		Group("warehouse_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.WarehouseID] = row.Total
	}
	return sums, nil
}
