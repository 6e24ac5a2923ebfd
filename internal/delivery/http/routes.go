package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kiranascan/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(AccessLogMiddleware(log))
	router.Use(MetricsMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", MetricsHandler())

	v1 := router.Group("/api/v1")
	{
		receipts := v1.Group("/receipts")
		{
			receipts.POST("/upload", handler.UploadReceipt)
			receipts.POST("/debug-ocr", handler.DebugOCR)
			receipts.POST("/items", handler.SaveReceiptItems)
			receipts.GET("", handler.ListReceipts)
			receipts.GET("/:id", handler.GetReceipt)
		}

		bills := v1.Group("/bills")
		{
			bills.POST("", handler.CreateBill)
			bills.GET("", handler.ListBills)
			bills.GET("/:number", handler.GetBill)
		}

		inventory := v1.Group("/inventory")
		{
			inventory.POST("", handler.AddInventoryItem)
			inventory.GET("", handler.ListInventory)
			inventory.GET("/search", handler.SearchInventory)
			inventory.GET("/low-stock", handler.LowStock)
			inventory.GET("/out-of-stock", handler.OutOfStock)
			inventory.GET("/expiring-soon", handler.ExpiringSoon)
			inventory.GET("/categories", handler.Categories)
			inventory.GET("/brands", handler.Brands)
			inventory.GET("/summary", handler.InventorySummary)
			inventory.POST("/import", handler.ImportInventory)
			inventory.GET("/:id", handler.GetInventoryItem)
			inventory.PUT("/:id", handler.UpdateInventoryItem)
			inventory.DELETE("/:id", handler.DeleteInventoryItem)
			inventory.POST("/:id/stock", handler.UpdateStock)
		}
	}

	return router
}
