package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailcore/backend/internal/application/txn"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// ActivityRecorder receives activity lines after the transaction that
// persisted them commits.
type ActivityRecorder interface {
	Record(activity *audit.Activity)
}

// GormScope implements txn.Scope: each unit of work runs inside one
// database transaction, with every repository bound to that transaction.
type GormScope struct {
	db       *gorm.DB
	recorder ActivityRecorder
}

// NewGormScope creates a transaction scope over the given connection.
func NewGormScope(db *gorm.DB) *GormScope {
	return &GormScope{db: db}
}

// SetActivityRecorder installs a sink that is handed each activity line
// appended during a unit of work, after the transaction commits. Rolled
// back lines are never reported.
func (s *GormScope) SetActivityRecorder(recorder ActivityRecorder) {
	s.recorder = recorder
}

func (s *GormScope) Execute(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	var appended []*audit.Activity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := NewRepositories(tx)
		if s.recorder != nil {
			repos.appended = &appended
		}
		return fn(ctx, repos)
	})
	if err != nil {
		return err
	}
	for _, activity := range appended {
		s.recorder.Record(activity)
	}
	return nil
}

// Repositories bundles the GORM repositories over one database handle.
// Built from a transaction inside GormScope.Execute, or from the root
// connection for single-statement reads.
type Repositories struct {
	db *gorm.DB

	// appended collects activity lines written in this unit of work so the
	// scope can report them once the transaction commits.
	appended *[]*audit.Activity
}

// NewRepositories binds the repository set to a database handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{db: db}
}

func (r *Repositories) StockBalances() inventory.StockBalanceRepository {
	return NewGormStockBalanceRepository(r.db)
}

func (r *Repositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.db)
}

func (r *Repositories) Orders() trade.OrderRepository {
	return NewGormOrderRepository(r.db)
}

func (r *Repositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.db)
}

func (r *Repositories) Purchases() trade.PurchaseRepository {
	return NewGormPurchaseRepository(r.db)
}

func (r *Repositories) MoneyMovements() finance.MoneyMovementRepository {
	return NewGormMoneyMovementRepository(r.db)
}

func (r *Repositories) MoneyCategories() finance.MoneyCategoryRepository {
	return NewGormMoneyCategoryRepository(r.db)
}

func (r *Repositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *Repositories) Categories() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.db)
}

func (r *Repositories) Warehouses() catalog.WarehouseRepository {
	return NewGormWarehouseRepository(r.db)
}

func (r *Repositories) Activities() audit.ActivityRepository {
	repo := NewGormActivityRepository(r.db)
	if r.appended == nil {
		return repo
	}
	return &collectingActivityRepository{inner: repo, appended: r.appended}
}

// collectingActivityRepository remembers every line it appends so the scope
// can replay them to the activity recorder after commit.
type collectingActivityRepository struct {
	inner    audit.ActivityRepository
	appended *[]*audit.Activity
}

func (c *collectingActivityRepository) Append(ctx context.Context, activity *audit.Activity) error {
	if err := c.inner.Append(ctx, activity); err != nil {
		return err
	}
	*c.appended = append(*c.appended, activity)
	return nil
}

func (c *collectingActivityRepository) List(ctx context.Context, companyID uuid.UUID, filter audit.ActivityFilter) (shared.Paginated[*audit.Activity], error) {
	return c.inner.List(ctx, companyID, filter)
}

func (c *collectingActivityRepository) Latest(ctx context.Context, limit int) ([]*audit.Activity, error) {
	return c.inner.Latest(ctx, limit)
}
