// Package router assembles the Gin engine: the middleware chain, the
// public auth endpoints and the JWT-protected tenant-scoped API.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
)

// Registrar mounts a handler's routes on a group.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Handlers collects everything the router mounts.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Company *handler.CompanyHandler
	Tenant  []Registrar
}

// New builds the engine. Everything under /api/v1/companies/:companyId
// requires a token whose tenant matches the path.
func New(cfg *config.Config, tokens *auth.TokenManager, logger *zap.Logger, handlers Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		otelgin.Middleware(cfg.App.Name),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
		middleware.BodyLimit(4<<20),
		middleware.RateLimit(middleware.NewRateLimiter(300, time.Minute)),
	)

	root := engine.Group("/")
	handlers.Health.RegisterRoutes(root)

	api := engine.Group("/api/v1")
	handlers.Auth.RegisterPublicRoutes(api)

	authed := api.Group("", middleware.Authenticate(tokens))
	handlers.Auth.RegisterRoutes(authed)

	tenant := authed.Group("/companies/:companyId", middleware.TenantGuard())
	handlers.Company.RegisterRoutes(tenant)
	for _, registrar := range handlers.Tenant {
		registrar.RegisterRoutes(tenant)
	}

	return engine
}
