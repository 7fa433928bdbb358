package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appcatalog "github.com/retailcore/backend/internal/application/catalog"
	"github.com/retailcore/backend/internal/domain/catalog"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// CatalogHandler serves products, categories and warehouses.
type CatalogHandler struct {
	catalog *appcatalog.Service
}

// NewCatalogHandler wires the catalog endpoints.
func NewCatalogHandler(catalog *appcatalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.GET("", h.listProducts)
	products.POST("", h.createProduct)
	products.GET("/:id", h.getProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deactivateProduct)

	categories := rg.Group("/categories")
	categories.GET("", h.listCategories)
	categories.POST("", h.createCategory)
	categories.DELETE("/:id", h.deleteCategory)

	warehouses := rg.Group("/warehouses")
	warehouses.GET("", h.listWarehouses)
	warehouses.POST("", h.createWarehouse)
	warehouses.GET("/:id", h.getWarehouse)
	warehouses.POST("/:id/default", h.setDefaultWarehouse)
	warehouses.DELETE("/:id", h.deactivateWarehouse)
}

type productRequest struct {
	Name       string          `json:"name" binding:"required,max=200"`
	SKU        string          `json:"sku" binding:"max=64"`
	Barcode    string          `json:"barcode" binding:"max=64"`
	CategoryID string          `json:"category_id"`
	Unit       string          `json:"unit" binding:"max=32"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	TrackStock *bool           `json:"track_stock"`
	Notes      string          `json:"notes" binding:"max=1000"`
}

func (h *CatalogHandler) bindProductInput(c *gin.Context) (appcatalog.ProductInput, bool) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return appcatalog.ProductInput{}, false
	}
	categoryID, valid := optionalUUID(c, "category_id", req.CategoryID)
	if !valid {
		return appcatalog.ProductInput{}, false
	}
	return appcatalog.ProductInput{
		Name:       req.Name,
		SKU:        req.SKU,
		Barcode:    req.Barcode,
		CategoryID: categoryID,
		Unit:       req.Unit,
		SalePrice:  req.SalePrice,
		CostPrice:  req.CostPrice,
		TrackStock: req.TrackStock,
		Notes:      req.Notes,
	}, true
}

func (h *CatalogHandler) createProduct(c *gin.Context) {
	input, valid := h.bindProductInput(c)
	if !valid {
		return
	}
	product, err := h.catalog.CreateProduct(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, product)
}

func (h *CatalogHandler) updateProduct(c *gin.Context) {
	productID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	input, valid := h.bindProductInput(c)
	if !valid {
		return
	}
	product, err := h.catalog.UpdateProduct(c.Request.Context(),
		middleware.CompanyID(c), productID, middleware.UserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

func (h *CatalogHandler) getProduct(c *gin.Context) {
	productID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), middleware.CompanyID(c), productID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

func (h *CatalogHandler) listProducts(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	categoryID, valid := optionalUUID(c, "category_id", c.Query("category_id"))
	if !valid {
		return
	}
	page, err := h.catalog.ListProducts(c.Request.Context(), middleware.CompanyID(c), catalog.ProductFilter{
		Filter:     filter,
		CategoryID: categoryID,
		ActiveOnly: c.Query("active") == "true",
	})
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}

func (h *CatalogHandler) deactivateProduct(c *gin.Context) {
	productID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeactivateProduct(c.Request.Context(),
		middleware.CompanyID(c), productID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=500"`
}

func (h *CatalogHandler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, category)
}

func (h *CatalogHandler) listCategories(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	page, err := h.catalog.ListCategories(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}

func (h *CatalogHandler) deleteCategory(c *gin.Context) {
	categoryID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), middleware.CompanyID(c), categoryID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

type warehouseRequest struct {
	Name    string `json:"name" binding:"required,max=120"`
	Address string `json:"address" binding:"max=500"`
}

func (h *CatalogHandler) createWarehouse(c *gin.Context) {
	var req warehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	warehouse, err := h.catalog.CreateWarehouse(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), req.Name, req.Address)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, warehouse)
}

func (h *CatalogHandler) getWarehouse(c *gin.Context) {
	warehouseID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	warehouse, err := h.catalog.GetWarehouse(c.Request.Context(), middleware.CompanyID(c), warehouseID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, warehouse)
}

func (h *CatalogHandler) listWarehouses(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	page, err := h.catalog.ListWarehouses(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}

func (h *CatalogHandler) setDefaultWarehouse(c *gin.Context) {
	warehouseID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	warehouse, err := h.catalog.SetDefaultWarehouse(c.Request.Context(), middleware.CompanyID(c), warehouseID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, warehouse)
}

func (h *CatalogHandler) deactivateWarehouse(c *gin.Context) {
	warehouseID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	if err := h.catalog.DeactivateWarehouse(c.Request.Context(), middleware.CompanyID(c), warehouseID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
