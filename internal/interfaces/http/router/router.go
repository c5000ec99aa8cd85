package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/infrastructure/logger"
	"github.com/markethub/backend/internal/interfaces/http/handler"
	"github.com/markethub/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	System      *handler.SystemHandler
	Supplier    *handler.SupplierHandler
	ProductLink *handler.ProductLinkHandler
	Fulfillment *handler.FulfillmentHandler
	Webhook     *handler.WebhookHandler
}

// Config carries router-level tunables
type Config struct {
	// MaxBodyBytes caps inbound request bodies. Zero disables the limit.
	MaxBodyBytes int64
	// WebhookRateLimit is the per-supplier webhook request budget per minute.
	// Zero disables rate limiting.
	WebhookRateLimit int
}

// New builds the gin engine with the full middleware chain and all routes
func New(log *zap.Logger, handlers Handlers, cfg Config) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}

	engine.GET("/health", handlers.System.Health)

	var webhookRateLimit gin.HandlerFunc
	if cfg.WebhookRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.WebhookRateLimit, time.Minute)
		webhookRateLimit = middleware.RateLimitByKey(limiter, func(c *gin.Context) string {
			return c.Param("id")
		})
	}

	// The path suppliers are configured against. The /api/v1 route below is
	// an alias for internal callers.
	external := engine.Group("/suppliers/webhook")
	if webhookRateLimit != nil {
		external.Use(webhookRateLimit)
	}
	external.POST("/:id", handlers.Webhook.Receive)

	api := engine.Group("/api/v1")

	api.GET("/system/info", handlers.System.GetSystemInfo)

	suppliers := api.Group("/suppliers")
	{
		suppliers.POST("", handlers.Supplier.Create)
		suppliers.GET("", handlers.Supplier.List)
		suppliers.GET("/:id", handlers.Supplier.GetByID)
		suppliers.PUT("/:id", handlers.Supplier.Update)
		suppliers.POST("/:id/pause", handlers.Supplier.Pause)
		suppliers.POST("/:id/resume", handlers.Supplier.Resume)
		suppliers.POST("/:id/archive", handlers.Supplier.Archive)
		suppliers.GET("/:id/product-links", handlers.ProductLink.ListBySupplier)

		webhook := suppliers.Group("")
		if webhookRateLimit != nil {
			webhook.Use(webhookRateLimit)
		}
		webhook.POST("/:id/webhook", handlers.Webhook.Receive)
	}

	links := api.Group("/product-links")
	{
		links.POST("", handlers.ProductLink.Create)
		links.POST("/:id/deactivate", handlers.ProductLink.Deactivate)
		links.DELETE("/:id", handlers.ProductLink.Unlink)
	}

	api.GET("/products/:id/supplier-links", handlers.ProductLink.ListByProduct)

	orders := api.Group("/orders")
	{
		orders.POST("/:id/fulfill", handlers.Fulfillment.Fulfill)
		orders.GET("/:id/supplier-orders", handlers.Fulfillment.ListByOrder)
	}

	supplierOrders := api.Group("/supplier-orders")
	{
		supplierOrders.GET("/failed", handlers.Fulfillment.ListFailed)
		supplierOrders.POST("/:id/retry", handlers.Fulfillment.Retry)
	}

	sweeps := api.Group("/sweeps")
	{
		sweeps.POST("/status", handlers.Fulfillment.TriggerStatusSweep)
		sweeps.POST("/inventory", handlers.Fulfillment.TriggerInventorySweep)
		sweeps.POST("/retry", handlers.Fulfillment.TriggerRetrySweep)
	}

	return engine
}
