package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appledger "github.com/restobo/backend/internal/application/ledger"
	"github.com/restobo/backend/internal/application/recalc"
	appreport "github.com/restobo/backend/internal/application/report"
	appstock "github.com/restobo/backend/internal/application/stock"
	"github.com/restobo/backend/internal/infrastructure/auth"
	"github.com/restobo/backend/internal/infrastructure/cache"
	"github.com/restobo/backend/internal/infrastructure/config"
	"github.com/restobo/backend/internal/infrastructure/logger"
	"github.com/restobo/backend/internal/infrastructure/persistence"
	"github.com/restobo/backend/internal/infrastructure/telemetry"
	"github.com/restobo/backend/internal/interfaces/http/handler"
	"github.com/restobo/backend/internal/interfaces/http/router"
)

// version is set via -ldflags at build time
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing first so the gorm plugin can attach to a live provider
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, gormlogger.Warn, 200*time.Millisecond)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
		return fmt.Errorf("register db tracing: %w", err)
	}

	locker, err := cache.NewRedisScopeLocker(cfg.Redis)
	if err != nil {
		// The recalculation endpoint degrades to unguarded runs without
		// Redis; everything else is unaffected.
		log.Warn("redis unavailable, recalculation runs without a lock", zap.Error(err))
		locker = nil
	}

	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)
	stockScope := persistence.NewGormStockTransactionScope(db.DB)
	materials := persistence.NewGormMaterialRepository(db.DB)
	categories := persistence.NewGormCategoryRepository(db.DB)
	warehouses := persistence.NewGormWarehouseRepository(db.DB)
	movements := persistence.NewGormMovementRepository(db.DB)

	accountService := appledger.NewAccountService(ledgerScope, log)
	statementService := appledger.NewStatementService(ledgerScope, log)
	stockService := appstock.NewStockService(stockScope, warehouses, log)
	transferService := appstock.NewTransferService(stockScope, log)
	productionService := appstock.NewProductionService(stockScope, log)
	catalogService := appstock.NewCatalogService(materials, categories, warehouses, log)
	extractService := appreport.NewStockExtractService(movements,
		decimal.NewFromFloat(cfg.Valuation.DefaultTaxRate), log)

	var recalcService *recalc.RecalculationService
	if locker != nil {
		recalcService = recalc.NewRecalculationService(ledgerScope, stockScope, locker, log)
	} else {
		recalcService = recalc.NewRecalculationService(ledgerScope, stockScope, nil, log)
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Handlers{
		System:     handler.NewSystemHandler(version),
		Account:    handler.NewAccountHandler(accountService, statementService),
		Catalog:    handler.NewCatalogHandler(catalogService),
		Stock:      handler.NewStockHandler(stockService),
		Transfer:   handler.NewTransferHandler(transferService),
		Production: handler.NewProductionHandler(productionService),
		Report:     handler.NewReportHandler(extractService),
		Recalc:     handler.NewRecalcHandler(recalcService),
	}, router.Options{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Tracing:    cfg.Telemetry.Enabled,
	})

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			return fmt.Errorf("set trusted proxies: %w", err)
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
