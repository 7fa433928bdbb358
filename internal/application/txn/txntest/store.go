// Package txntest provides an in-memory implementation of txn.Repositories
// for service tests. The fake scope runs units of work directly against the
// store; it does not simulate rollback, so tests assert error paths fail
// before any write happens.
package txntest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/backend/internal/application/txn"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// Store holds all fake tables.
type Store struct {
	Balances   map[string]*inventory.StockBalance
	Movements  []*inventory.StockMovement
	Orders     map[uuid.UUID]*trade.Order
	Sales      map[uuid.UUID]*trade.Sale
	Purchases  map[uuid.UUID]*trade.Purchase
	Money      map[uuid.UUID]*finance.MoneyMovement
	MoneyCats  map[uuid.UUID]*finance.MoneyCategory
	Products   map[uuid.UUID]*catalog.Product
	Categories map[uuid.UUID]*catalog.Category
	Warehouses map[uuid.UUID]*catalog.Warehouse
	Activities []*audit.Activity
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		Balances:   map[string]*inventory.StockBalance{},
		Orders:     map[uuid.UUID]*trade.Order{},
		Sales:      map[uuid.UUID]*trade.Sale{},
		Purchases:  map[uuid.UUID]*trade.Purchase{},
		Money:      map[uuid.UUID]*finance.MoneyMovement{},
		MoneyCats:  map[uuid.UUID]*finance.MoneyCategory{},
		Products:   map[uuid.UUID]*catalog.Product{},
		Categories: map[uuid.UUID]*catalog.Category{},
		Warehouses: map[uuid.UUID]*catalog.Warehouse{},
	}
}

func balanceKey(companyID, productID, warehouseID uuid.UUID) string {
	return companyID.String() + "/" + productID.String() + "/" + warehouseID.String()
}

// AddProduct seeds a product with the given prices.
func (s *Store) AddProduct(companyID uuid.UUID, salePrice, costPrice int64) *catalog.Product {
	p, _ := catalog.NewProduct(companyID, uuid.New(), "product-"+uuid.NewString()[:8],
		decimal.NewFromInt(salePrice), decimal.NewFromInt(costPrice))
	s.Products[p.ID] = p
	return p
}

// AddWarehouse seeds an active warehouse.
func (s *Store) AddWarehouse(companyID uuid.UUID) *catalog.Warehouse {
	w, _ := catalog.NewWarehouse(companyID, uuid.New(), "warehouse-"+uuid.NewString()[:8], "")
	s.Warehouses[w.ID] = w
	return w
}

// SetBalance forces a balance row to a quantity without writing movements.
func (s *Store) SetBalance(companyID, productID, warehouseID uuid.UUID, qty int64) {
	b := inventory.NewStockBalance(companyID, productID, warehouseID)
	b.Quantity = decimal.NewFromInt(qty)
	s.Balances[balanceKey(companyID, productID, warehouseID)] = b
}

// BalanceQty reads a balance, treating a missing row as zero.
func (s *Store) BalanceQty(companyID, productID, warehouseID uuid.UUID) decimal.Decimal {
	if b, ok := s.Balances[balanceKey(companyID, productID, warehouseID)]; ok {
		return b.Quantity
	}
	return decimal.Zero
}

// Repo accessors for wiring services directly.

func (s *Store) BalanceRepo() inventory.StockBalanceRepository   { return &balanceRepo{s} }
func (s *Store) MovementRepo() inventory.StockMovementRepository { return &movementRepo{s} }
func (s *Store) OrderRepo() trade.OrderRepository                { return &orderRepo{s} }
func (s *Store) SaleRepo() trade.SaleRepository                  { return &saleRepo{s} }
func (s *Store) PurchaseRepo() trade.PurchaseRepository          { return &purchaseRepo{s} }
func (s *Store) MoneyRepo() finance.MoneyMovementRepository      { return &moneyRepo{s} }
func (s *Store) MoneyCatRepo() finance.MoneyCategoryRepository   { return &moneyCatRepo{s} }
func (s *Store) ProductRepo() catalog.ProductRepository          { return &productRepo{s} }
func (s *Store) CategoryRepo() catalog.CategoryRepository        { return &categoryRepo{s} }
func (s *Store) WarehouseRepo() catalog.WarehouseRepository      { return &warehouseRepo{s} }
func (s *Store) ActivityRepo() audit.ActivityRepository          { return &activityRepo{s} }

// Scope runs the unit of work directly against the store.
type Scope struct{ Store *Store }

func (f *Scope) Execute(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	return fn(ctx, &repos{store: f.Store})
}

type repos struct{ store *Store }

func (r *repos) StockBalances() inventory.StockBalanceRepository   { return r.store.BalanceRepo() }
func (r *repos) StockMovements() inventory.StockMovementRepository { return r.store.MovementRepo() }
func (r *repos) Orders() trade.OrderRepository                     { return r.store.OrderRepo() }
func (r *repos) Sales() trade.SaleRepository                       { return r.store.SaleRepo() }
func (r *repos) Purchases() trade.PurchaseRepository               { return r.store.PurchaseRepo() }
func (r *repos) MoneyMovements() finance.MoneyMovementRepository   { return r.store.MoneyRepo() }
func (r *repos) MoneyCategories() finance.MoneyCategoryRepository  { return r.store.MoneyCatRepo() }
func (r *repos) Products() catalog.ProductRepository               { return r.store.ProductRepo() }
func (r *repos) Categories() catalog.CategoryRepository            { return r.store.CategoryRepo() }
func (r *repos) Warehouses() catalog.WarehouseRepository           { return r.store.WarehouseRepo() }
func (r *repos) Activities() audit.ActivityRepository              { return r.store.ActivityRepo() }

type balanceRepo struct{ s *Store }

func (r *balanceRepo) ApplyDelta(_ context.Context, companyID, productID, warehouseID uuid.UUID, delta decimal.Decimal) (*inventory.StockBalance, error) {
	key := balanceKey(companyID, productID, warehouseID)
	b, ok := r.s.Balances[key]
	if !ok {
		b = inventory.NewStockBalance(companyID, productID, warehouseID)
		r.s.Balances[key] = b
	}
	b.Quantity = b.Quantity.Add(delta)
	return b, nil
}

func (r *balanceRepo) Find(_ context.Context, companyID, productID, warehouseID uuid.UUID) (*inventory.StockBalance, error) {
	if b, ok := r.s.Balances[balanceKey(companyID, productID, warehouseID)]; ok {
		return b, nil
	}
	return nil, shared.ErrNotFound
}

func (r *balanceRepo) ListByProduct(_ context.Context, companyID, productID uuid.UUID) ([]*inventory.StockBalance, error) {
	var out []*inventory.StockBalance
	for _, b := range r.s.Balances {
		if b.CompanyID == companyID && b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *balanceRepo) ListByWarehouse(_ context.Context, companyID, warehouseID uuid.UUID, filter shared.Filter) (shared.Paginated[*inventory.StockBalance], error) {
	var out []*inventory.StockBalance
	for _, b := range r.s.Balances {
		if b.CompanyID == companyID && b.WarehouseID == warehouseID {
			out = append(out, b)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter), nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Append(_ context.Context, movement *inventory.StockMovement) error {
	r.s.Movements = append(r.s.Movements, movement)
	return nil
}

func (r *movementRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*inventory.StockMovement, error) {
	for _, m := range r.s.Movements {
		if m.CompanyID == companyID && m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *movementRepo) FindByReference(_ context.Context, companyID, referenceID uuid.UUID) ([]*inventory.StockMovement, error) {
	var out []*inventory.StockMovement
	for _, m := range r.s.Movements {
		if m.CompanyID == companyID && m.ReferenceID != nil && *m.ReferenceID == referenceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movementRepo) List(_ context.Context, companyID uuid.UUID, filter inventory.MovementFilter) (shared.Paginated[*inventory.StockMovement], error) {
	var out []*inventory.StockMovement
	for _, m := range r.s.Movements {
		if m.CompanyID != companyID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
			continue
		}
		out = append(out, m)
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Filter), nil
}

func (r *movementRepo) SumByProduct(_ context.Context, companyID, productID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := map[uuid.UUID]decimal.Decimal{}
	for _, m := range r.s.Movements {
		if m.CompanyID == companyID && m.ProductID == productID {
			sums[m.WarehouseID] = sums[m.WarehouseID].Add(m.SignedQuantity())
		}
	}
	return sums, nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Save(_ context.Context, order *trade.Order) error {
	r.s.Orders[order.ID] = order
	return nil
}

func (r *orderRepo) SaveWithLock(_ context.Context, order *trade.Order) error {
	order.Version++
	r.s.Orders[order.ID] = order
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*trade.Order, error) {
	if o, ok := r.s.Orders[id]; ok && o.CompanyID == companyID {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *orderRepo) List(_ context.Context, companyID uuid.UUID, filter trade.OrderFilter) (shared.Paginated[*trade.Order], error) {
	var out []*trade.Order
	for _, o := range r.s.Orders {
		if o.CompanyID == companyID {
			out = append(out, o)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Filter), nil
}

func (r *orderRepo) ReplaceItems(_ context.Context, order *trade.Order) error {
	r.s.Orders[order.ID] = order
	return nil
}

type saleRepo struct{ s *Store }

func (r *saleRepo) Save(_ context.Context, sale *trade.Sale) error {
	r.s.Sales[sale.ID] = sale
	return nil
}

func (r *saleRepo) SaveWithLock(_ context.Context, sale *trade.Sale) error {
	sale.Version++
	r.s.Sales[sale.ID] = sale
	return nil
}

func (r *saleRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*trade.Sale, error) {
	if s, ok := r.s.Sales[id]; ok && s.CompanyID == companyID {
		return s, nil
	}
	return nil, shared.ErrNotFound
}

func (r *saleRepo) List(_ context.Context, companyID uuid.UUID, filter trade.SaleFilter) (shared.Paginated[*trade.Sale], error) {
	var out []*trade.Sale
	for _, s := range r.s.Sales {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Filter), nil
}

type purchaseRepo struct{ s *Store }

func (r *purchaseRepo) Save(_ context.Context, purchase *trade.Purchase) error {
	r.s.Purchases[purchase.ID] = purchase
	return nil
}

func (r *purchaseRepo) SaveWithLock(_ context.Context, purchase *trade.Purchase) error {
	purchase.Version++
	r.s.Purchases[purchase.ID] = purchase
	return nil
}

func (r *purchaseRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*trade.Purchase, error) {
	if p, ok := r.s.Purchases[id]; ok && p.CompanyID == companyID {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *purchaseRepo) List(_ context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*trade.Purchase], error) {
	var out []*trade.Purchase
	for _, p := range r.s.Purchases {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter), nil
}

type moneyRepo struct{ s *Store }

func (r *moneyRepo) Save(_ context.Context, movement *finance.MoneyMovement) error {
	r.s.Money[movement.ID] = movement
	return nil
}

func (r *moneyRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*finance.MoneyMovement, error) {
	if m, ok := r.s.Money[id]; ok && m.CompanyID == companyID {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *moneyRepo) FindByReference(_ context.Context, companyID uuid.UUID, referenceType finance.MoneyReferenceType, referenceID uuid.UUID) ([]*finance.MoneyMovement, error) {
	var out []*finance.MoneyMovement
	for _, m := range r.s.Money {
		if m.CompanyID == companyID && m.ReferenceType == referenceType &&
			m.ReferenceID != nil && *m.ReferenceID == referenceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *moneyRepo) List(_ context.Context, companyID uuid.UUID, filter finance.MovementFilter) (shared.Paginated[*finance.MoneyMovement], error) {
	var out []*finance.MoneyMovement
	for _, m := range r.s.Money {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Filter), nil
}

func (r *moneyRepo) Delete(_ context.Context, companyID, id uuid.UUID) error {
	delete(r.s.Money, id)
	return nil
}

func (r *moneyRepo) Summary(_ context.Context, companyID uuid.UUID, from, to time.Time) (*finance.LedgerSummary, error) {
	summary := &finance.LedgerSummary{TotalIn: decimal.Zero, TotalOut: decimal.Zero, Net: decimal.Zero}
	for _, m := range r.s.Money {
		if m.CompanyID != companyID {
			continue
		}
		if m.Type == finance.MoneyIn {
			summary.TotalIn = summary.TotalIn.Add(m.Amount)
		} else {
			summary.TotalOut = summary.TotalOut.Add(m.Amount)
		}
	}
	summary.Net = summary.TotalIn.Sub(summary.TotalOut)
	return summary, nil
}

type moneyCatRepo struct{ s *Store }

func (r *moneyCatRepo) Save(_ context.Context, category *finance.MoneyCategory) error {
	r.s.MoneyCats[category.ID] = category
	return nil
}

func (r *moneyCatRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*finance.MoneyCategory, error) {
	if c, ok := r.s.MoneyCats[id]; ok && c.CompanyID == companyID {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *moneyCatRepo) FindByName(_ context.Context, companyID uuid.UUID, name string) (*finance.MoneyCategory, error) {
	for _, c := range r.s.MoneyCats {
		if c.CompanyID == companyID && c.Name == name {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *moneyCatRepo) List(_ context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*finance.MoneyCategory], error) {
	var out []*finance.MoneyCategory
	for _, c := range r.s.MoneyCats {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter), nil
}

func (r *moneyCatRepo) Delete(_ context.Context, companyID, id uuid.UUID) error {
	delete(r.s.MoneyCats, id)
	return nil
}

type productRepo struct{ s *Store }

func (r *productRepo) Save(_ context.Context, product *catalog.Product) error {
	r.s.Products[product.ID] = product
	return nil
}

func (r *productRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.s.Products[id]; ok && p.CompanyID == companyID {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *productRepo) FindByIDs(_ context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, id := range ids {
		if p, ok := r.s.Products[id]; ok && p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *productRepo) FindByName(_ context.Context, companyID uuid.UUID, name string) (*catalog.Product, error) {
	for _, p := range r.s.Products {
		if p.CompanyID == companyID && p.Name == name {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *productRepo) List(_ context.Context, companyID uuid.UUID, filter catalog.ProductFilter) (shared.Paginated[*catalog.Product], error) {
	var out []*catalog.Product
	for _, p := range r.s.Products {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Filter), nil
}

func (r *productRepo) Delete(_ context.Context, companyID, id uuid.UUID) error {
	delete(r.s.Products, id)
	return nil
}

type categoryRepo struct{ s *Store }

func (r *categoryRepo) Save(_ context.Context, category *catalog.Category) error {
	r.s.Categories[category.ID] = category
	return nil
}

func (r *categoryRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*catalog.Category, error) {
	if c, ok := r.s.Categories[id]; ok && c.CompanyID == companyID {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *categoryRepo) FindByName(_ context.Context, companyID uuid.UUID, name string) (*catalog.Category, error) {
	for _, c := range r.s.Categories {
		if c.CompanyID == companyID && c.Name == name {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *categoryRepo) List(_ context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Category], error) {
	var out []*catalog.Category
	for _, c := range r.s.Categories {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter), nil
}

func (r *categoryRepo) Delete(_ context.Context, companyID, id uuid.UUID) error {
	delete(r.s.Categories, id)
	return nil
}

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) Save(_ context.Context, warehouse *catalog.Warehouse) error {
	r.s.Warehouses[warehouse.ID] = warehouse
	return nil
}

func (r *warehouseRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*catalog.Warehouse, error) {
	if w, ok := r.s.Warehouses[id]; ok && w.CompanyID == companyID {
		return w, nil
	}
	return nil, shared.ErrNotFound
}

func (r *warehouseRepo) FindDefault(_ context.Context, companyID uuid.UUID) (*catalog.Warehouse, error) {
	for _, w := range r.s.Warehouses {
		if w.CompanyID == companyID && w.IsDefault {
			return w, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *warehouseRepo) ClearDefault(_ context.Context, companyID uuid.UUID) error {
	for _, w := range r.s.Warehouses {
		if w.CompanyID == companyID {
			w.IsDefault = false
		}
	}
	return nil
}

func (r *warehouseRepo) List(_ context.Context, companyID uuid.UUID, filter shared.Filter) (shared.Paginated[*catalog.Warehouse], error) {
	var out []*catalog.Warehouse
	for _, w := range r.s.Warehouses {
		if w.CompanyID == companyID {
			out = append(out, w)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter), nil
}

func (r *warehouseRepo) Delete(_ context.Context, companyID, id uuid.UUID) error {
	delete(r.s.Warehouses, id)
	return nil
}

type activityRepo struct{ s *Store }

func (r *activityRepo) Append(_ context.Context, activity *audit.Activity) error {
	r.s.Activities = append(r.s.Activities, activity)
	return nil
}

func (r *activityRepo) Latest(_ context.Context, limit int) ([]*audit.Activity, error) {
	out := make([]*audit.Activity, 0, limit)
	for i := len(r.s.Activities) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.Activities[i])
	}
	return out, nil
}

func (r *activityRepo) List(_ context.Context, companyID uuid.UUID, filter audit.ActivityFilter) (shared.Paginated[*audit.Activity], error) {
	var out []*audit.Activity
	for _, a := range r.s.Activities {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return shared.NewPaginated(out, int64(len(out)), filter.Filter), nil
}
