// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"agroshop/internal/domain/documents/customer_return"
	"agroshop/internal/domain/documents/goods_receipt"
	"agroshop/internal/domain/documents/supplier_return"
	"agroshop/internal/domain/ledger"
	"agroshop/internal/domain/orders"
	"agroshop/internal/domain/pricing"
	"agroshop/internal/infrastructure/http/v1/handlers"
	"agroshop/internal/infrastructure/http/v1/middleware"
	"agroshop/internal/infrastructure/storage/postgres"
	"agroshop/pkg/logger"
)

// Back-office roles allowed to manage documents and orders.
var staffRoles = []string{"admin", "manager"}

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool         *postgres.Pool
	Logger       *logger.Logger
	JWTValidator middleware.JWTValidator

	GoodsReceipts   *goods_receipt.Service
	CustomerReturns *customer_return.Service
	SupplierReturns *supplier_return.Service
	Orders          *orders.Service
	Pricing         *pricing.Engine
	Ledger          *ledger.Service
	Audit           *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	goodsReceiptHandler := handlers.NewGoodsReceiptHandler(base, cfg.GoodsReceipts)
	customerReturnHandler := handlers.NewCustomerReturnHandler(base, cfg.CustomerReturns)
	supplierReturnHandler := handlers.NewSupplierReturnHandler(base, cfg.SupplierReturns)
	orderHandler := handlers.NewOrderHandler(base, cfg.Orders)
	couponHandler := handlers.NewCouponHandler(base, cfg.Pricing)
	movementHandler := handlers.NewMovementHandler(base, cfg.Ledger)
	historyHandler := handlers.NewHistoryHandler(base, cfg.Audit)

	v1 := router.Group("/api/v1")
	{
		// Storefront: guests allowed, buyer identity attached when present.
		storefront := v1.Group("")
		storefront.Use(middleware.OptionalAuth(cfg.JWTValidator))
		{
			orderHandler.RegisterStorefrontRoutes(storefront.Group("/orders"))
			couponHandler.RegisterRoutes(storefront.Group("/coupons"))
		}

		// Buyer account: authentication required.
		buyer := v1.Group("")
		buyer.Use(middleware.Auth(cfg.JWTValidator))
		{
			orderHandler.RegisterBuyerRoutes(buyer.Group("/orders"))
		}

		// Back office: staff only.
		backoffice := v1.Group("")
		backoffice.Use(middleware.Auth(cfg.JWTValidator))
		backoffice.Use(middleware.RequireRole(staffRoles...))
		{
			orderHandler.RegisterBackofficeRoutes(backoffice.Group("/admin/orders"))
			movementHandler.RegisterRoutes(backoffice.Group("/movements"))

			documents := backoffice.Group("/documents")

			receipts := documents.Group("/goods-receipts")
			goodsReceiptHandler.RegisterRoutes(receipts)
			receipts.GET("/:id/history", historyHandler.For(goods_receipt.Table))

			customerReturns := documents.Group("/customer-returns")
			customerReturnHandler.RegisterRoutes(customerReturns)
			customerReturns.GET("/:id/history", historyHandler.For(customer_return.Table))

			supplierReturns := documents.Group("/supplier-returns")
			supplierReturnHandler.RegisterRoutes(supplierReturns)
			supplierReturns.GET("/:id/history", historyHandler.For(supplier_return.Table))
		}
	}

	return router
}
