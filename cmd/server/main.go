package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appdropship "github.com/markethub/backend/internal/application/dropship"
	"github.com/markethub/backend/internal/infrastructure/cache"
	"github.com/markethub/backend/internal/infrastructure/config"
	"github.com/markethub/backend/internal/infrastructure/logger"
	"github.com/markethub/backend/internal/infrastructure/persistence"
	"github.com/markethub/backend/internal/infrastructure/scheduler"
	"github.com/markethub/backend/internal/infrastructure/supplier"
	"github.com/markethub/backend/internal/interfaces/http/handler"
	"github.com/markethub/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting MarketHub Fulfillment Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed gorm logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis-backed duplicate-forward guard, in-memory when Redis is down
	guardFactory := cache.NewForwardGuardFactory(cfg.Redis, cache.WithLogger(log))
	guard, err := guardFactory.CreateGuard()
	if err != nil {
		log.Fatal("Failed to create forward guard", zap.Error(err))
	}
	defer func() {
		if err := guard.Close(); err != nil {
			log.Error("Error closing forward guard", zap.Error(err))
		}
	}()

	// Repositories and collaborator gateways
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	linkRepo := persistence.NewGormSupplierProductLinkRepository(db.DB)
	supplierOrderRepo := persistence.NewGormSupplierOrderRepository(db.DB)
	marketplace := persistence.NewGormMarketplaceGateway(db.DB)

	// Adapter registry resolves a supplier's configured dialect
	registry := supplier.NewRegistry(supplierRepo, log)

	// Application services
	supplierService := appdropship.NewSupplierService(supplierRepo, registry, log)
	linkService := appdropship.NewProductLinkService(supplierRepo, linkRepo, log)
	fulfillmentService := appdropship.NewFulfillmentService(
		marketplace, marketplace,
		supplierRepo, linkRepo, supplierOrderRepo,
		registry, guard,
		cfg.Sweep.RetryBatchSize,
		log,
	)
	statusSyncService := appdropship.NewStatusSyncService(
		supplierRepo, supplierOrderRepo, marketplace, registry,
		cfg.Sweep.StatusBatchSize, log,
	)
	inventorySyncService := appdropship.NewInventorySyncService(
		supplierRepo, linkRepo, marketplace, registry, log,
	)
	webhookService := appdropship.NewWebhookService(supplierRepo, supplierOrderRepo, marketplace, registry, log)

	// Background reconciliation sweeps
	sweeper := scheduler.NewSweepScheduler(
		statusSyncService, inventorySyncService, fulfillmentService,
		log,
		scheduler.SweepSchedulerConfig{
			Enabled:           cfg.Sweep.Enabled,
			StatusInterval:    cfg.Sweep.StatusInterval,
			InventoryInterval: cfg.Sweep.InventoryInterval,
			RetryInterval:     cfg.Sweep.RetryInterval,
		},
	)
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sweep scheduler", zap.Error(err))
	}

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers := router.Handlers{
		System:      handler.NewSystemHandler(db.Ping),
		Supplier:    handler.NewSupplierHandler(supplierService),
		ProductLink: handler.NewProductLinkHandler(linkService),
		Fulfillment: handler.NewFulfillmentHandler(fulfillmentService, sweeper),
		Webhook:     handler.NewWebhookHandler(webhookService),
	}
	engine := router.New(log, handlers, router.Config{
		MaxBodyBytes:     cfg.HTTP.MaxBodySize,
		WebhookRateLimit: 120,
	})
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Error("Sweep scheduler shutdown error", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
