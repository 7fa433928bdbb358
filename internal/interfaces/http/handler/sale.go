package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apptrade "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// SaleHandler serves the sale lifecycle.
type SaleHandler struct {
	sales *apptrade.SaleService
}

// NewSaleHandler wires the sale endpoints.
func NewSaleHandler(sales *apptrade.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	sales.GET("", h.list)
	sales.POST("", h.create)
	sales.GET("/:id", h.get)
	sales.POST("/:id/cancel", h.cancel)
	sales.POST("/:id/payments", h.addPayment)
}

type salePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required,max=32"`
}

type createSaleRequest struct {
	WarehouseID  string               `json:"warehouse_id" binding:"required,uuid"`
	CustomerName string               `json:"customer_name" binding:"max=200"`
	Items        []itemRequest        `json:"items" binding:"required,min=1,dive"`
	Payments     []salePaymentRequest `json:"payments" binding:"dive"`
	Discount     decimal.Decimal      `json:"discount"`
	Notes        string               `json:"notes" binding:"max=1000"`
}

func (h *SaleHandler) create(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	warehouseID, valid := mustUUID(c, "warehouse_id", req.WarehouseID)
	if !valid {
		return
	}
	items, valid := bindItems(c, req.Items)
	if !valid {
		return
	}
	payments := make([]trade.PaymentInput, 0, len(req.Payments))
	for _, p := range req.Payments {
		payments = append(payments, trade.PaymentInput{
			Amount:        p.Amount,
			PaymentMethod: p.PaymentMethod,
		})
	}

	sale, err := h.sales.Create(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), apptrade.CreateSaleInput{
			WarehouseID:  warehouseID,
			CustomerName: req.CustomerName,
			Items:        items,
			Payments:     payments,
			Discount:     req.Discount,
			Notes:        req.Notes,
		})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, sale)
}

type cancelSaleRequest struct {
	WarehouseID string `json:"warehouse_id" binding:"omitempty,uuid"`
}

// cancel returns the sale's stock and neutralizes its money entry. An
// optional warehouse_id overrides where the stock goes back.
func (h *SaleHandler) cancel(c *gin.Context) {
	saleID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	var req cancelSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		badRequest(c, err.Error())
		return
	}
	warehouseID, valid := optionalUUID(c, "warehouse_id", req.WarehouseID)
	if !valid {
		return
	}
	sale, err := h.sales.Cancel(c.Request.Context(),
		middleware.CompanyID(c), saleID, middleware.UserID(c), warehouseID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, sale)
}

func (h *SaleHandler) addPayment(c *gin.Context) {
	saleID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	var req salePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sale, err := h.sales.AddPayment(c.Request.Context(),
		middleware.CompanyID(c), saleID, middleware.UserID(c), req.Amount, req.PaymentMethod)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, sale)
}

func (h *SaleHandler) get(c *gin.Context) {
	saleID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	sale, err := h.sales.Get(c.Request.Context(), middleware.CompanyID(c), saleID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, sale)
}

func (h *SaleHandler) list(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	saleFilter := trade.SaleFilter{Filter: filter}
	if status := c.Query("status"); status != "" {
		s := trade.SaleStatus(status)
		saleFilter.Status = &s
	}
	warehouseID, valid := optionalUUID(c, "warehouse_id", c.Query("warehouse_id"))
	if !valid {
		return
	}
	saleFilter.WarehouseID = warehouseID

	page, err := h.sales.List(c.Request.Context(), middleware.CompanyID(c), saleFilter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}
