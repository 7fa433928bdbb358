package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appstock "github.com/retailcore/backend/internal/application/stock"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// StockHandler serves balances, the movement ledger, transfers and manual
// adjustments. Document-driven movements (sales, orders, purchases) go
// through their own endpoints.
type StockHandler struct {
	stock *appstock.Service
}

// NewStockHandler wires the stock endpoints.
func NewStockHandler(stock *appstock.Service) *StockHandler {
	return &StockHandler{stock: stock}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	stock.GET("/balances", h.balances)
	stock.GET("/movements", h.movements)
	stock.POST("/transfers", h.transfer)
	stock.POST("/adjustments", h.adjust)
}

// balances returns one balance when warehouse_id is given, otherwise the
// product's balances across all warehouses.
func (h *StockHandler) balances(c *gin.Context) {
	productID, valid := optionalUUID(c, "product_id", c.Query("product_id"))
	if !valid {
		return
	}
	if productID == nil {
		badRequest(c, "product_id is required")
		return
	}
	warehouseID, valid := optionalUUID(c, "warehouse_id", c.Query("warehouse_id"))
	if !valid {
		return
	}

	companyID := middleware.CompanyID(c)
	if warehouseID != nil {
		balance, err := h.stock.Balance(c.Request.Context(), companyID, *productID, *warehouseID)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, balance)
		return
	}
	balances, err := h.stock.ProductBalances(c.Request.Context(), companyID, *productID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, balances)
}

func (h *StockHandler) movements(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	movementFilter := inventory.MovementFilter{Filter: filter}

	productID, valid := optionalUUID(c, "product_id", c.Query("product_id"))
	if !valid {
		return
	}
	movementFilter.ProductID = productID

	warehouseID, valid := optionalUUID(c, "warehouse_id", c.Query("warehouse_id"))
	if !valid {
		return
	}
	movementFilter.WarehouseID = warehouseID

	if refType := c.Query("reference_type"); refType != "" {
		rt := inventory.ReferenceType(refType)
		movementFilter.ReferenceType = &rt
	}
	from, valid := optionalTime(c, "from")
	if !valid {
		return
	}
	movementFilter.From = from
	to, valid := optionalTime(c, "to")
	if !valid {
		return
	}
	movementFilter.To = to

	page, err := h.stock.Movements(c.Request.Context(), middleware.CompanyID(c), movementFilter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}

type transferRequest struct {
	ProductID       string          `json:"product_id" binding:"required,uuid"`
	FromWarehouseID string          `json:"from_warehouse_id" binding:"required,uuid"`
	ToWarehouseID   string          `json:"to_warehouse_id" binding:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity"`
	Notes           string          `json:"notes" binding:"max=500"`
}

func (h *StockHandler) transfer(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input := appstock.TransferInput{
		Quantity: req.Quantity,
		Notes:    req.Notes,
	}
	var valid bool
	if input.ProductID, valid = mustUUID(c, "product_id", req.ProductID); !valid {
		return
	}
	if input.FromWarehouseID, valid = mustUUID(c, "from_warehouse_id", req.FromWarehouseID); !valid {
		return
	}
	if input.ToWarehouseID, valid = mustUUID(c, "to_warehouse_id", req.ToWarehouseID); !valid {
		return
	}

	movements, err := h.stock.Transfer(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, movements)
}

type adjustRequest struct {
	ProductID   string          `json:"product_id" binding:"required,uuid"`
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	Type        string          `json:"type" binding:"required,oneof=IN OUT"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes" binding:"max=500"`
}

func (h *StockHandler) adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	input := appstock.AdjustInput{
		Type:     inventory.MovementType(req.Type),
		Quantity: req.Quantity,
		Notes:    req.Notes,
	}
	var valid bool
	if input.ProductID, valid = mustUUID(c, "product_id", req.ProductID); !valid {
		return
	}
	if input.WarehouseID, valid = mustUUID(c, "warehouse_id", req.WarehouseID); !valid {
		return
	}

	movement, err := h.stock.ManualAdjust(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, movement)
}

// optionalTime parses an RFC3339 query parameter, empty means nil.
func optionalTime(c *gin.Context, name string) (*time.Time, bool) {
	value := c.Query(name)
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		badRequest(c, name+" must be RFC3339")
		return nil, false
	}
	return &t, true
}
