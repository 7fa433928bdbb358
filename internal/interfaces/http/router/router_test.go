package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appaudit "github.com/retailcore/backend/internal/application/audit"
	appcatalog "github.com/retailcore/backend/internal/application/catalog"
	appfinance "github.com/retailcore/backend/internal/application/finance"
	appidentity "github.com/retailcore/backend/internal/application/identity"
	appreport "github.com/retailcore/backend/internal/application/report"
	appstock "github.com/retailcore/backend/internal/application/stock"
	apptrade "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/domain/audit"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/infrastructure/persistence"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
)

type nopPinger struct{}

func (nopPinger) Ping(context.Context) error { return nil }

// newTestAPI wires the full stack against an in-memory database.
func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&identity.Company{}, &identity.User{},
		&catalog.Category{}, &catalog.Product{}, &catalog.Warehouse{},
		&inventory.StockBalance{}, &inventory.StockMovement{},
		&trade.Order{}, &trade.OrderItem{}, &trade.OrderPayment{},
		&trade.Sale{}, &trade.SaleItem{}, &trade.SalePayment{},
		&trade.Purchase{}, &trade.PurchaseItem{},
		&finance.MoneyCategory{}, &finance.MoneyMovement{},
		&audit.Activity{},
	))

	logger := zap.NewNop()
	scope := persistence.NewGormScope(db)
	tokens := auth.NewTokenManager(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		Expiration: time.Hour,
		Issuer:     "test",
	}, auth.NewMemoryTokenBlacklist())

	identitySvc := appidentity.NewService(
		persistence.NewGormCompanyRepository(db),
		persistence.NewGormUserRepository(db),
		tokens, logger)
	catalogSvc := appcatalog.NewService(scope,
		persistence.NewGormProductRepository(db),
		persistence.NewGormCategoryRepository(db),
		persistence.NewGormWarehouseRepository(db), logger)
	stockSvc := appstock.NewService(scope,
		persistence.NewGormStockBalanceRepository(db),
		persistence.NewGormStockMovementRepository(db), logger)
	orderSvc := apptrade.NewOrderService(scope, persistence.NewGormOrderRepository(db), logger)
	saleSvc := apptrade.NewSaleService(scope, persistence.NewGormSaleRepository(db), logger)
	purchaseSvc := apptrade.NewPurchaseService(scope, persistence.NewGormPurchaseRepository(db), logger)
	financeSvc := appfinance.NewService(scope,
		persistence.NewGormMoneyMovementRepository(db),
		persistence.NewGormMoneyCategoryRepository(db), logger)
	auditSvc := appaudit.NewService(persistence.NewGormActivityRepository(db), 64, logger)
	scope.SetActivityRecorder(auditSvc)
	reportSvc := appreport.NewService(
		persistence.NewGormStockBalanceRepository(db),
		persistence.NewGormStockMovementRepository(db), logger)

	cfg := &config.Config{}
	cfg.App.Name = "retailcore-test"
	cfg.App.Env = "test"

	return New(cfg, tokens, logger, Handlers{
		Health:  handler.NewHealthHandler(nopPinger{}),
		Auth:    handler.NewAuthHandler(identitySvc),
		Company: handler.NewCompanyHandler(identitySvc),
		Tenant: []Registrar{
			handler.NewCatalogHandler(catalogSvc),
			handler.NewStockHandler(stockSvc),
			handler.NewOrderHandler(orderSvc),
			handler.NewSaleHandler(saleSvc),
			handler.NewPurchaseHandler(purchaseSvc),
			handler.NewFinanceHandler(financeSvc),
			handler.NewActivityHandler(auditSvc),
			handler.NewReportHandler(reportSvc),
		},
	})
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (a *apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var envelope map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func data(envelope map[string]any) map[string]any {
	d, _ := envelope["data"].(map[string]any)
	return d
}

func TestHealth(t *testing.T) {
	engine := newTestAPI(t)
	client := &apiClient{t: t, engine: engine}

	w, _ := client.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = client.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	engine := newTestAPI(t)
	client := &apiClient{t: t, engine: engine}

	w, envelope := client.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"company_name": "North Market",
		"currency":     "EUR",
		"owner_name":   "Alex",
		"email":        "owner@example.com",
		"password":     "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, data(envelope)["token"])

	// duplicate email
	w, _ = client.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"company_name": "Other",
		"owner_name":   "Eve",
		"email":        "owner@example.com",
		"password":     "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = client.do(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, envelope = client.do(http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    "owner@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, data(envelope)["token"])

	// refresh issues a new token and revokes the presented one
	oldToken := data(envelope)["token"].(string)
	client.token = oldToken
	w, refreshed := client.do(http.MethodPost, "/api/v1/auth/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	newToken := data(refreshed)["token"].(string)
	require.NotEmpty(t, newToken)
	companyID := companyIDOf(t, envelope)
	w, _ = client.do(http.MethodGet, "/api/v1/companies/"+companyID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// logout revokes the token
	client.token = newToken
	w, _ = client.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = client.do(http.MethodGet, "/api/v1/companies/"+companyID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func companyIDOf(t *testing.T, sessionEnvelope map[string]any) string {
	t.Helper()
	user, ok := data(sessionEnvelope)["user"].(map[string]any)
	require.True(t, ok)
	id, ok := user["company_id"].(string)
	require.True(t, ok)
	return id
}

// register a tenant and return an authenticated client plus base path.
func newTenant(t *testing.T, engine *gin.Engine, email string) (*apiClient, string) {
	t.Helper()
	client := &apiClient{t: t, engine: engine}
	w, envelope := client.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"company_name": "Shop " + email,
		"owner_name":   "Owner",
		"email":        email,
		"password":     "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	client.token = data(envelope)["token"].(string)
	return client, "/api/v1/companies/" + companyIDOf(t, envelope)
}

func TestPurchaseSaleCancelFlow(t *testing.T) {
	engine := newTestAPI(t)
	client, base := newTenant(t, engine, "flow@example.com")

	w, envelope := client.do(http.MethodPost, base+"/warehouses", gin.H{"name": "Main"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	warehouseID := data(envelope)["id"].(string)

	w, envelope = client.do(http.MethodPost, base+"/products", gin.H{
		"name":       "Coffee Beans 1kg",
		"sku":        "CB-1000",
		"sale_price": "18.50",
		"cost_price": "11.00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productID := data(envelope)["id"].(string)

	// receive stock: purchase books IN movements and money OUT
	w, _ = client.do(http.MethodPost, base+"/purchases", gin.H{
		"warehouse_id":  warehouseID,
		"supplier_name": "Roastery",
		"items": []gin.H{
			{"product_id": productID, "quantity": "10", "unit_cost": "11.00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, envelope = client.do(http.MethodGet,
		base+"/stock/balances?product_id="+productID+"&warehouse_id="+warehouseID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", data(envelope)["quantity"])

	// sell 4: stock goes to 6, money IN recorded
	w, envelope = client.do(http.MethodPost, base+"/sales", gin.H{
		"warehouse_id": warehouseID,
		"items": []gin.H{
			{"product_id": productID, "quantity": "4"},
		},
		"payments": []gin.H{
			{"amount": "74", "payment_method": "CASH"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saleID := data(envelope)["id"].(string)

	w, envelope = client.do(http.MethodGet,
		base+"/stock/balances?product_id="+productID+"&warehouse_id="+warehouseID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6", data(envelope)["quantity"])

	// selling more than available fails and changes nothing
	w, _ = client.do(http.MethodPost, base+"/sales", gin.H{
		"warehouse_id": warehouseID,
		"items": []gin.H{
			{"product_id": productID, "quantity": "100"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// the sale's money entry is system-owned
	w, envelope = client.do(http.MethodGet, base+"/money-movements?reference_type=SALE", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := envelope["data"].([]any)
	require.Len(t, entries, 1)
	moneyID := entries[0].(map[string]any)["id"].(string)
	w, _ = client.do(http.MethodDelete, base+"/money-movements/"+moneyID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// cancel: stock returns, ledger nets to zero
	w, _ = client.do(http.MethodPost, base+"/sales/"+saleID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, envelope = client.do(http.MethodGet,
		base+"/stock/balances?product_id="+productID+"&warehouse_id="+warehouseID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", data(envelope)["quantity"])

	w, _ = client.do(http.MethodPost, base+"/sales/"+saleID+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// reconciliation: ledger matches balances
	w, envelope = client.do(http.MethodGet, base+"/reports/stock-reconciliation/"+productID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	checks := envelope["data"].([]any)
	require.NotEmpty(t, checks)
	for _, check := range checks {
		assert.True(t, check.(map[string]any)["consistent"].(bool))
	}
}

func TestOrderLifecycleFlow(t *testing.T) {
	engine := newTestAPI(t)
	client, base := newTenant(t, engine, "orders@example.com")

	_, envelope := client.do(http.MethodPost, base+"/warehouses", gin.H{"name": "Main"})
	warehouseID := data(envelope)["id"].(string)
	_, envelope = client.do(http.MethodPost, base+"/products", gin.H{
		"name":       "Tea Box",
		"sale_price": "5.00",
		"cost_price": "2.00",
	})
	productID := data(envelope)["id"].(string)

	_, _ = client.do(http.MethodPost, base+"/stock/adjustments", gin.H{
		"product_id":   productID,
		"warehouse_id": warehouseID,
		"type":         "IN",
		"quantity":     "20",
	})

	w, envelope := client.do(http.MethodPost, base+"/orders", gin.H{
		"warehouse_id": warehouseID,
		"items": []gin.H{
			{"product_id": productID, "quantity": "5"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := data(envelope)["id"].(string)
	assert.Equal(t, "PENDING", data(envelope)["status"])

	// creation reserves nothing
	_, envelope = client.do(http.MethodGet,
		base+"/stock/balances?product_id="+productID+"&warehouse_id="+warehouseID, nil)
	assert.Equal(t, "20", data(envelope)["quantity"])

	// confirmation withdraws stock
	w, _ = client.do(http.MethodPatch, base+"/orders/"+orderID+"/status", gin.H{"status": "CONFIRMED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, envelope = client.do(http.MethodGet,
		base+"/stock/balances?product_id="+productID+"&warehouse_id="+warehouseID, nil)
	assert.Equal(t, "15", data(envelope)["quantity"])

	// illegal jump
	w, _ = client.do(http.MethodPatch, base+"/orders/"+orderID+"/status", gin.H{"status": "DELIVERED"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// payment above total is rejected
	w, _ = client.do(http.MethodPost, base+"/orders/"+orderID+"/payments", gin.H{
		"amount":         "100",
		"payment_method": "CASH",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, envelope = client.do(http.MethodPost, base+"/orders/"+orderID+"/payments", gin.H{
		"amount":         "25",
		"payment_method": "CASH",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PAID", data(envelope)["payment_status"])

	// cancellation of a confirmed order returns the stock
	w, _ = client.do(http.MethodPatch, base+"/orders/"+orderID+"/status", gin.H{"status": "CANCELED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, envelope = client.do(http.MethodGet,
		base+"/stock/balances?product_id="+productID+"&warehouse_id="+warehouseID, nil)
	assert.Equal(t, "20", data(envelope)["quantity"])
}

func TestTenantIsolation(t *testing.T) {
	engine := newTestAPI(t)
	clientA, baseA := newTenant(t, engine, "a@example.com")
	clientB, _ := newTenant(t, engine, "b@example.com")

	_, envelope := clientA.do(http.MethodPost, baseA+"/products", gin.H{
		"name":       "Private Product",
		"sale_price": "1.00",
		"cost_price": "0.50",
	})
	productID := data(envelope)["id"].(string)

	// B cannot address A's tenant path at all
	w, _ := clientB.do(http.MethodGet, fmt.Sprintf("%s/products/%s", baseA, productID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecentActivityReflectsNewWrites(t *testing.T) {
	engine := newTestAPI(t)
	client, base := newTenant(t, engine, "audit@example.com")

	w, _ := client.do(http.MethodGet, base+"/activities/recent", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, envelope := client.do(http.MethodPost, base+"/products", gin.H{
		"name":       "Filter Paper",
		"sale_price": "3.00",
		"cost_price": "1.20",
	})
	productID := data(envelope)["id"].(string)

	w, envelope = client.do(http.MethodGet, base+"/activities/recent", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	lines, ok := envelope["data"].([]any)
	require.True(t, ok, w.Body.String())
	require.NotEmpty(t, lines, "a write after startup must show up in the recent buffer")
	newest := lines[0].(map[string]any)
	assert.Equal(t, "product.create", newest["action"])
	assert.Equal(t, productID, newest["entity_id"])
}
