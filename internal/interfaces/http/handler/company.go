package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/retailcore/backend/internal/application/identity"
	"github.com/retailcore/backend/internal/domain/identity"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// CompanyHandler serves the tenant record, settings and staff accounts.
type CompanyHandler struct {
	identity *appidentity.Service
}

// NewCompanyHandler wires the company endpoints.
func NewCompanyHandler(identity *appidentity.Service) *CompanyHandler {
	return &CompanyHandler{identity: identity}
}

// RegisterRoutes mounts the endpoints under the tenant group. User
// management is restricted to owners and admins.
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.get)
	rg.PATCH("/settings", middleware.RequireRole(identity.RoleOwner, identity.RoleAdmin), h.updateSettings)

	users := rg.Group("/users", middleware.RequireRole(identity.RoleOwner, identity.RoleAdmin))
	users.GET("", h.listUsers)
	users.POST("", h.createUser)
	users.GET("/:id", h.getUser)
}

func (h *CompanyHandler) get(c *gin.Context) {
	company, err := h.identity.GetCompany(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, company)
}

func (h *CompanyHandler) updateSettings(c *gin.Context) {
	var incoming identity.Settings
	if err := c.ShouldBindJSON(&incoming); err != nil {
		badRequest(c, err.Error())
		return
	}
	company, err := h.identity.UpdateSettings(c.Request.Context(), middleware.CompanyID(c), incoming)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, company)
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" binding:"required,oneof=OWNER ADMIN STAFF"`
}

func (h *CompanyHandler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.identity.CreateUser(c.Request.Context(), middleware.CompanyID(c),
		req.Email, req.Name, req.Password, identity.Role(req.Role))
	if err != nil {
		fail(c, err)
		return
	}
	created(c, user)
}

func (h *CompanyHandler) getUser(c *gin.Context) {
	userID, valid := pathUUID(c, "id")
	if !valid {
		return
	}
	user, err := h.identity.GetUser(c.Request.Context(), middleware.CompanyID(c), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

func (h *CompanyHandler) listUsers(c *gin.Context) {
	filter, valid := bindListQuery(c)
	if !valid {
		return
	}
	page, err := h.identity.ListUsers(c.Request.Context(), middleware.CompanyID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	paginated(c, page)
}
