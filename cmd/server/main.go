// Package main is the entry point for the agroshop API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agroshop/internal/config"
	"agroshop/internal/domain/docflow"
	"agroshop/internal/domain/documents/customer_return"
	"agroshop/internal/domain/documents/goods_receipt"
	"agroshop/internal/domain/documents/supplier_return"
	"agroshop/internal/domain/identity"
	"agroshop/internal/domain/ledger"
	"agroshop/internal/domain/orders"
	"agroshop/internal/domain/pricing"
	v1 "agroshop/internal/infrastructure/http/v1"
	"agroshop/internal/infrastructure/numerator"
	"agroshop/internal/infrastructure/storage/postgres"
	"agroshop/internal/infrastructure/storage/postgres/coupon_repo"
	"agroshop/internal/infrastructure/storage/postgres/document_repo"
	"agroshop/internal/infrastructure/storage/postgres/ledger_repo"
	"agroshop/internal/infrastructure/storage/postgres/order_repo"
	"agroshop/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting agroshop server", "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN())
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	goodsReceiptRepo := document_repo.NewGoodsReceiptRepo(txManager)
	customerReturnRepo := document_repo.NewCustomerReturnRepo(txManager)
	supplierReturnRepo := document_repo.NewSupplierReturnRepo(txManager)
	orderRepo := order_repo.NewOrderRepo(txManager)
	couponRepo := coupon_repo.NewCouponRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)

	// --- Shared services ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	numeratorService := numerator.New(txManager)
	ledgerService := ledger.NewService(movementRepo)
	docflowEngine := docflow.NewEngine(txManager, ledgerService, auditService)
	pricingEngine := pricing.NewEngine(couponRepo)

	jwtService := identity.NewJWTService(identity.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: cfg.JWT.AccessTokenTTL,
	})

	// --- Domain services ---
	goodsReceiptService := goods_receipt.NewService(goodsReceiptRepo, docflowEngine, numeratorService, txManager)
	customerReturnService := customer_return.NewService(customerReturnRepo, docflowEngine, numeratorService, txManager)
	supplierReturnService := supplier_return.NewService(supplierReturnRepo, docflowEngine, numeratorService, txManager)
	orderService := orders.NewService(orderRepo, couponRepo, numeratorService, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		JWTValidator:    jwtService,
		GoodsReceipts:   goodsReceiptService,
		CustomerReturns: customerReturnService,
		SupplierReturns: supplierReturnService,
		Orders:          orderService,
		Pricing:         pricingEngine,
		Ledger:          ledgerService,
		Audit:           auditService,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
