package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	auditapp "github.com/retailcore/backend/internal/application/audit"
	catalogapp "github.com/retailcore/backend/internal/application/catalog"
	financeapp "github.com/retailcore/backend/internal/application/finance"
	identityapp "github.com/retailcore/backend/internal/application/identity"
	reportapp "github.com/retailcore/backend/internal/application/report"
	stockapp "github.com/retailcore/backend/internal/application/stock"
	tradeapp "github.com/retailcore/backend/internal/application/trade"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/retailcore/backend/internal/infrastructure/persistence"
	"github.com/retailcore/backend/internal/infrastructure/telemetry"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
	"github.com/retailcore/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	log.Info("starting retailcore backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers are optional; when disabled the no-op globals stay
	// in place and otelgin spans go nowhere.
	if cfg.Telemetry.Enabled {
		tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			log.Fatal("init tracer provider", zap.Error(err))
		}
		defer shutdownProvider(log, "tracer", tracerProvider.Shutdown)()

		meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
		if err != nil {
			log.Fatal("init meter provider", zap.Error(err))
		}
		defer shutdownProvider(log, "meter", meterProvider.Shutdown)()
	}

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, gormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("enable database tracing", zap.Error(err))
		}
	}
	log.Info("database connected")

	blacklist, closeBlacklist := newTokenBlacklist(cfg, log)
	defer closeBlacklist()
	tokens := auth.NewTokenManager(cfg.JWT, blacklist)

	scope := persistence.NewGormScope(db.DB)

	identityService := identityapp.NewService(
		persistence.NewGormCompanyRepository(db.DB),
		persistence.NewGormUserRepository(db.DB),
		tokens, log)
	catalogService := catalogapp.NewService(scope,
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormCategoryRepository(db.DB),
		persistence.NewGormWarehouseRepository(db.DB), log)
	stockService := stockapp.NewService(scope,
		persistence.NewGormStockBalanceRepository(db.DB),
		persistence.NewGormStockMovementRepository(db.DB), log)
	orderService := tradeapp.NewOrderService(scope, persistence.NewGormOrderRepository(db.DB), log)
	saleService := tradeapp.NewSaleService(scope, persistence.NewGormSaleRepository(db.DB), log)
	purchaseService := tradeapp.NewPurchaseService(scope, persistence.NewGormPurchaseRepository(db.DB), log)
	financeService := financeapp.NewService(scope,
		persistence.NewGormMoneyMovementRepository(db.DB),
		persistence.NewGormMoneyCategoryRepository(db.DB), log)
	auditService := auditapp.NewService(
		persistence.NewGormActivityRepository(db.DB), cfg.Audit.RecentBufferSize, log)
	if err := auditService.Warm(ctx); err != nil {
		log.Warn("warm activity ring", zap.Error(err))
	}
	scope.SetActivityRecorder(auditService)
	reportService := reportapp.NewService(
		persistence.NewGormStockBalanceRepository(db.DB),
		persistence.NewGormStockMovementRepository(db.DB), log)

	engine := router.New(cfg, tokens, log, router.Handlers{
		Health:  handler.NewHealthHandler(db),
		Auth:    handler.NewAuthHandler(identityService),
		Company: handler.NewCompanyHandler(identityService),
		Tenant: []router.Registrar{
			handler.NewCatalogHandler(catalogService),
			handler.NewStockHandler(stockService),
			handler.NewOrderHandler(orderService),
			handler.NewSaleHandler(saleService),
			handler.NewPurchaseHandler(purchaseService),
			handler.NewFinanceHandler(financeService),
			handler.NewActivityHandler(auditService),
			handler.NewReportHandler(reportService),
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
}

// newTokenBlacklist prefers Redis so revoked tokens survive restarts and are
// shared across replicas. Outside production a Redis outage falls back to the
// in-memory blacklist instead of refusing to start.
func newTokenBlacklist(cfg *config.Config, log *zap.Logger) (auth.TokenBlacklist, func()) {
	blacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("connect redis", zap.Error(err))
		}
		log.Warn("redis unavailable, using in-memory token blacklist", zap.Error(err))
		return auth.NewMemoryTokenBlacklist(), func() {}
	}
	log.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))
	return blacklist, func() {
		if err := blacklist.Close(); err != nil {
			log.Error("close redis", zap.Error(err))
		}
	}
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn", "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

func shutdownProvider(log *zap.Logger, name string, shutdown func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Error("shutdown telemetry provider", zap.String("provider", name), zap.Error(err))
		}
	}
}
