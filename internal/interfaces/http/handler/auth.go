package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/retailcore/backend/internal/application/identity"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves registration, login, token refresh and logout.
type AuthHandler struct {
	identity *appidentity.Service
}

// NewAuthHandler wires the auth endpoints.
func NewAuthHandler(identity *appidentity.Service) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// RegisterPublicRoutes mounts the unauthenticated auth endpoints.
func (h *AuthHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
}

// RegisterRoutes mounts the endpoints that need a live session.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/refresh", h.refresh)
	rg.POST("/auth/logout", h.logout)
}

type registerRequest struct {
	CompanyName string `json:"company_name" binding:"required,max=200"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
	OwnerName   string `json:"owner_name" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.identity.Register(c.Request.Context(), appidentity.RegisterInput{
		CompanyName: req.CompanyName,
		Currency:    req.Currency,
		OwnerName:   req.OwnerName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, session)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session)
}

func (h *AuthHandler) refresh(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		fail(c, shared.NewDomainError(shared.CodeUnauthorized, "missing token"))
		return
	}
	session, err := h.identity.Refresh(c.Request.Context(),
		middleware.UserID(c), middleware.Token(c), claims.ExpiresAt.Time)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, session)
}

func (h *AuthHandler) logout(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		noContent(c)
		return
	}
	if err := h.identity.Logout(c.Request.Context(), middleware.Token(c), claims.ExpiresAt.Time); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}
