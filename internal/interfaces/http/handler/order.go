package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apptrade "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/domain/trade"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// OrderHandler serves the order lifecycle.
type OrderHandler struct {
	orders *apptrade.OrderService
}

// NewOrderHandler wires the order endpoints.
func NewOrderHandler(orders *apptrade.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.GET("", h.list)
	orders.POST("", h.create)
	orders.GET("/:id", h.get)
	orders.PATCH("/:id/status", h.updateStatus)
	orders.PUT("/:id/items", h.replaceItems)
	orders.POST("/:id/payments", h.addPayment)
}

// itemRequest is a product line shared by order and sale creation.
type itemRequest struct {
	ProductID string           `json:"product_id" binding:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity"`
	BasePrice *decimal.Decimal `json:"base_price"`
}

func bindItems(c *gin.Context, reqs []itemRequest) ([]trade.ItemInput, bool) {
	items := make([]trade.ItemInput, 0, len(reqs))
	for _, req := range reqs {
		productID, valid := mustUUID(c, "product_id", req.ProductID)
		if !valid {
			return nil, false
		}
		items = append(items, trade.ItemInput{
			ProductID: productID,
			Quantity:  req.Quantity,
			BasePrice: req.BasePrice,
		})
	}
	return items, true
}

type createOrderRequest struct {
	WarehouseID string          `json:"warehouse_id" binding:"required,uuid"`
	Items       []itemRequest   `json:"items" binding:"required,min=1,dive"`
	Discount    decimal.Decimal `json:"discount"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Notes       string          `json:"notes" binding:"max=1000"`
}

func (h *OrderHandler) create(c *gin.Context) {
	var req createOrderRequest
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
	order, err := h.orders.Create(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), apptrade.CreateOrderInput{
			WarehouseID: warehouseID,
			Items:       items,
			Discount:    req.Discount,
			DeliveryFee: req.DeliveryFee,
			Notes:       req.Notes,
		})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, order)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) updateStatus(c *gin.Context) {
	orderID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(),
		middleware.CompanyID(c), orderID, middleware.UserID(c), trade.OrderStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

type replaceItemsRequest struct {
	Items []itemRequest `json:"items" binding:"required,min=1,dive"`
}

func (h *OrderHandler) replaceItems(c *gin.Context) {
	orderID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	var req replaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	items, valid := bindItems(c, req.Items)
	if !valid {
		return
	}
	order, err := h.orders.ReplaceItems(c.Request.Context(),
		middleware.CompanyID(c), orderID, middleware.UserID(c), items)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

type paymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required,max=32"`
}

func (h *OrderHandler) addPayment(c *gin.Context) {
	orderID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.orders.AddPayment(c.Request.Context(),
		middleware.CompanyID(c), orderID, middleware.UserID(c), req.Amount, req.PaymentMethod)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (h *OrderHandler) get(c *gin.Context) {
	orderID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), middleware.CompanyID(c), orderID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (h *OrderHandler) list(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	orderFilter := trade.OrderFilter{Filter: filter}
	if status := c.Query("status"); status != "" {
		s := trade.OrderStatus(status)
		orderFilter.Status = &s
	}
	if payment := c.Query("payment_status"); payment != "" {
		p := trade.PaymentStatus(payment)
		orderFilter.PaymentStatus = &p
	}
	warehouseID, valid := optionalUUID(c, "warehouse_id", c.Query("warehouse_id"))
	if !valid {
		return
	}
	orderFilter.WarehouseID = warehouseID

	page, err := h.orders.List(c.Request.Context(), middleware.CompanyID(c), orderFilter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}
