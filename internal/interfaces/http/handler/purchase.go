package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apptrade "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// PurchaseHandler serves purchase receipts and their cancellation.
type PurchaseHandler struct {
	purchases *apptrade.PurchaseService
}

// NewPurchaseHandler wires the purchase endpoints.
func NewPurchaseHandler(purchases *apptrade.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/purchases")
	purchases.GET("", h.list)
	purchases.POST("", h.create)
	purchases.GET("/:id", h.get)
	purchases.POST("/:id/cancel", h.cancel)
}

type purchaseItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type createPurchaseRequest struct {
	WarehouseID  string                `json:"warehouse_id" binding:"required,uuid"`
	SupplierName string                `json:"supplier_name" binding:"max=200"`
	Items        []purchaseItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes        string                `json:"notes" binding:"max=1000"`
}

func (h *PurchaseHandler) create(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	warehouseID, valid := mustUUID(c, "warehouse_id", req.WarehouseID)
	if !valid {
		return
	}
	items := make([]apptrade.PurchaseItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		productID, valid := mustUUID(c, "product_id", item.ProductID)
		if !valid {
			return
		}
		items = append(items, apptrade.PurchaseItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}

	purchase, err := h.purchases.Create(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), apptrade.CreatePurchaseInput{
			WarehouseID:  warehouseID,
			SupplierName: req.SupplierName,
			Items:        items,
			Notes:        req.Notes,
		})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, purchase)
}

func (h *PurchaseHandler) cancel(c *gin.Context) {
	purchaseID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	purchase, err := h.purchases.Cancel(c.Request.Context(),
		middleware.CompanyID(c), purchaseID, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, purchase)
}

func (h *PurchaseHandler) get(c *gin.Context) {
	purchaseID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	purchase, err := h.purchases.Get(c.Request.Context(), middleware.CompanyID(c), purchaseID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, purchase)
}

func (h *PurchaseHandler) list(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	page, err := h.purchases.List(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}
