// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockwise/internal/core/numerator"
	"stockwise/internal/domain/advisory"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/catalogs/supplier"
	"stockwise/internal/domain/documents/delivery"
	"stockwise/internal/domain/documents/stocktaking"
	"stockwise/internal/domain/registers/stock"
	"stockwise/internal/infrastructure/http/v1/handlers"
	"stockwise/internal/infrastructure/http/v1/middleware"
	"stockwise/internal/infrastructure/storage/postgres"
	"stockwise/internal/infrastructure/storage/postgres/catalog_repo"
	"stockwise/internal/infrastructure/storage/postgres/document_repo"
	"stockwise/internal/infrastructure/storage/postgres/register_repo"
	"stockwise/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool
	Pool *postgres.Pool

	// TxManager manages database transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// Numerator for document number generation
	Numerator numerator.Generator

	// Advisory tunes reorder alert thresholds
	Advisory advisory.Options
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repositories
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	supplierRepo := catalog_repo.NewSupplierRepo(cfg.TxManager)
	stockRepo := register_repo.NewStockRepo(cfg.TxManager)
	deliveryRepo := document_repo.NewDeliveryRepo(cfg.TxManager)
	stocktakingRepo := document_repo.NewStocktakingRepo(cfg.TxManager)

	// Services
	productService := product.NewService(productRepo)
	supplierService := supplier.NewService(supplierRepo)
	stockService := stock.NewService(stockRepo, cfg.TxManager)
	deliveryService := delivery.NewService(
		deliveryRepo, productRepo, stockService, cfg.Numerator, cfg.TxManager)
	stocktakingService := stocktaking.NewService(
		stocktakingRepo, productRepo, stockService, cfg.Numerator, cfg.TxManager)
	advisoryEngine := advisory.NewEngine(productService, supplierService, cfg.Advisory)

	baseHandler := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		docs := v1.Group("/document")
		handlers.NewDeliveryHandler(baseHandler, deliveryService).
			RegisterRoutes(docs.Group("/delivery"))
		handlers.NewStocktakingHandler(baseHandler, stocktakingService).
			RegisterRoutes(docs.Group("/stocktaking"))

		handlers.NewStockHandler(baseHandler, stockService).
			RegisterRoutes(v1.Group("/stock"))
		handlers.NewAdvisoryHandler(baseHandler, advisoryEngine).
			RegisterRoutes(v1.Group("/advisory"))
	}

	return router
}
