package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appfinance "github.com/retailcore/backend/internal/application/finance"
	"github.com/retailcore/backend/internal/domain/finance"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// FinanceHandler serves the money ledger and its categories.
type FinanceHandler struct {
	finance *appfinance.Service
}

// NewFinanceHandler wires the money ledger endpoints.
func NewFinanceHandler(finance *appfinance.Service) *FinanceHandler {
	return &FinanceHandler{finance: finance}
}

// RegisterRoutes mounts the endpoints under the tenant group.
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	movements := rg.Group("/money-movements")
	movements.GET("", h.listMovements)
	movements.POST("", h.createMovement)
	movements.GET("/summary", h.summary)
	movements.GET("/:id", h.getMovement)
	movements.PUT("/:id", h.updateMovement)
	movements.DELETE("/:id", h.deleteMovement)

	categories := rg.Group("/money-categories")
	categories.GET("", h.listCategories)
	categories.POST("", h.createCategory)
	categories.DELETE("/:id", h.deleteCategory)
}

type movementRequest struct {
	Type          string          `json:"type" binding:"required,oneof=IN OUT"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"max=32"`
	CategoryID    string          `json:"category_id"`
	Description   string          `json:"description" binding:"max=500"`
}

func (h *FinanceHandler) bindMovementInput(c *gin.Context) (appfinance.MovementInput, bool) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return appfinance.MovementInput{}, false
	}
	categoryID, valid := optionalUUID(c, "category_id", req.CategoryID)
	if !valid {
		return appfinance.MovementInput{}, false
	}
	return appfinance.MovementInput{
		Type:          finance.MoneyType(req.Type),
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		CategoryID:    categoryID,
		Description:   req.Description,
	}, true
}

func (h *FinanceHandler) createMovement(c *gin.Context) {
	input, valid := h.bindMovementInput(c)
	if !valid {
		return
	}
	movement, err := h.finance.CreateMovement(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, movement)
}

func (h *FinanceHandler) updateMovement(c *gin.Context) {
	movementID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	input, valid := h.bindMovementInput(c)
	if !valid {
		return
	}
	movement, err := h.finance.UpdateMovement(c.Request.Context(),
		middleware.CompanyID(c), movementID, middleware.UserID(c), input)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, movement)
}

func (h *FinanceHandler) deleteMovement(c *gin.Context) {
	movementID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	if err := h.finance.DeleteMovement(c.Request.Context(),
		middleware.CompanyID(c), movementID, middleware.UserID(c)); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

func (h *FinanceHandler) getMovement(c *gin.Context) {
	movementID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	movement, err := h.finance.GetMovement(c.Request.Context(), middleware.CompanyID(c), movementID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, movement)
}

func (h *FinanceHandler) listMovements(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	movementFilter := finance.MovementFilter{Filter: filter}
	if moneyType := c.Query("type"); moneyType != "" {
		mt := finance.MoneyType(moneyType)
		movementFilter.Type = &mt
	}
	if refType := c.Query("reference_type"); refType != "" {
		rt := finance.MoneyReferenceType(refType)
		movementFilter.ReferenceType = &rt
	}
	categoryID, valid := optionalUUID(c, "category_id", c.Query("category_id"))
	if !valid {
		return
	}
	movementFilter.CategoryID = categoryID
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

	page, err := h.finance.ListMovements(c.Request.Context(), middleware.CompanyID(c), movementFilter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}

func (h *FinanceHandler) summary(c *gin.Context) {
	from, valid := optionalTime(c, "from")
	if !valid {
		return
	}
	to, valid := optionalTime(c, "to")
	if !valid {
		return
	}
	var fromAt, toAt time.Time
	if from != nil {
		fromAt = *from
	}
	if to != nil {
		toAt = *to
	}
	summary, err := h.finance.Summary(c.Request.Context(), middleware.CompanyID(c), fromAt, toAt)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

type moneyCategoryRequest struct {
	Name string `json:"name" binding:"required,max=120"`
	Type string `json:"type" binding:"required,oneof=IN OUT"`
}

func (h *FinanceHandler) createCategory(c *gin.Context) {
	var req moneyCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	category, err := h.finance.CreateCategory(c.Request.Context(),
		middleware.CompanyID(c), middleware.UserID(c), req.Name, finance.MoneyType(req.Type))
	if err != nil {
		fail(c, err)
		return
	}
	created(c, category)
}

func (h *FinanceHandler) listCategories(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	page, err := h.finance.ListCategories(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}

func (h *FinanceHandler) deleteCategory(c *gin.Context) {
	categoryID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	if err := h.finance.DeleteCategory(c.Request.Context(), middleware.CompanyID(c), categoryID); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
