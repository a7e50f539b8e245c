package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/restobo/backend/internal/infrastructure/auth"
	"github.com/restobo/backend/internal/infrastructure/config"
	"github.com/restobo/backend/internal/interfaces/http/handler"
	"github.com/restobo/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	System     *handler.SystemHandler
	Account    *handler.AccountHandler
	Catalog    *handler.CatalogHandler
	Stock      *handler.StockHandler
	Transfer   *handler.TransferHandler
	Production *handler.ProductionHandler
	Report     *handler.ReportHandler
	Recalc     *handler.RecalcHandler
}

// Options configures cross-cutting router behavior
type Options struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService
	// Tracing enables the otelgin middleware
	Tracing bool
}

// New builds the gin engine with the full middleware chain and all
// API routes mounted under /api/v1. Health endpoints stay outside the
// auth boundary.
func New(handlers Handlers, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	if opts.Config != nil {
		corsCfg.AllowOrigins = opts.Config.HTTP.CORSAllowOrigins
		if len(opts.Config.HTTP.CORSAllowMethods) > 0 {
			corsCfg.AllowMethods = opts.Config.HTTP.CORSAllowMethods
		}
		if len(opts.Config.HTTP.CORSAllowHeaders) > 0 {
			corsCfg.AllowHeaders = opts.Config.HTTP.CORSAllowHeaders
		}
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if opts.Tracing {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanErrorMarker())
	}

	engine.GET("/health", handlers.System.Health)
	engine.GET("/healthz", handlers.System.Health)

	api := engine.Group("/api/v1")
	api.GET("/health", handlers.System.Health)
	api.GET("/info", handlers.System.Info)

	if opts.JWTService != nil {
		jwtCfg := middleware.DefaultJWTConfig(opts.JWTService)
		jwtCfg.Logger = logger
		api.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	}

	registerLedgerRoutes(api, handlers)
	registerCatalogRoutes(api, handlers)
	registerInventoryRoutes(api, handlers)
	registerReportRoutes(api, handlers)

	return engine
}

func registerLedgerRoutes(api *gin.RouterGroup, handlers Handlers) {
	ledger := api.Group("/ledger")

	accounts := ledger.Group("/accounts")
	accounts.POST("", handlers.Account.Create)
	accounts.GET("", handlers.Account.List)
	accounts.GET("/:id", handlers.Account.Get)
	accounts.PUT("/:id", handlers.Account.Update)
	accounts.DELETE("/:id", handlers.Account.Deactivate)
	accounts.POST("/:id/entries", handlers.Account.RecordEntry)
	accounts.GET("/:id/statement", handlers.Account.GetStatement)
	accounts.GET("/:id/balance", handlers.Account.GetBalance)

	ledger.POST("/recalculate", handlers.Recalc.Recalculate)
}

func registerCatalogRoutes(api *gin.RouterGroup, handlers Handlers) {
	catalog := api.Group("/catalog")

	materials := catalog.Group("/materials")
	materials.POST("", handlers.Catalog.CreateMaterial)
	materials.GET("", handlers.Catalog.ListMaterials)
	materials.GET("/:id", handlers.Catalog.GetMaterial)
	materials.PUT("/:id", handlers.Catalog.UpdateMaterial)
	materials.DELETE("/:id", handlers.Catalog.DeactivateMaterial)

	categories := catalog.Group("/categories")
	categories.POST("", handlers.Catalog.CreateCategory)
	categories.GET("", handlers.Catalog.ListCategories)
	categories.GET("/:id", handlers.Catalog.GetCategory)
	categories.DELETE("/:id", handlers.Catalog.DeleteCategory)

	warehouses := catalog.Group("/warehouses")
	warehouses.POST("", handlers.Catalog.CreateWarehouse)
	warehouses.GET("", handlers.Catalog.ListWarehouses)
	warehouses.GET("/:id", handlers.Catalog.GetWarehouse)
	warehouses.PUT("/:id", handlers.Catalog.UpdateWarehouse)
	warehouses.DELETE("/:id", handlers.Catalog.DeactivateWarehouse)
}

func registerInventoryRoutes(api *gin.RouterGroup, handlers Handlers) {
	inventory := api.Group("/inventory")

	inventory.POST("/entries", handlers.Stock.RecordEntry)
	inventory.POST("/reservations", handlers.Stock.Reserve)
	inventory.POST("/reservations/release", handlers.Stock.Release)

	warehouses := inventory.Group("/warehouses/:warehouse_id")
	warehouses.GET("/stocks", handlers.Stock.ListByWarehouse)
	warehouses.GET("/low-stock", handlers.Stock.ListLowStock)
	warehouses.GET("/utilization", handlers.Stock.GetUtilization)
	warehouses.GET("/materials/:material_id", handlers.Stock.GetStock)
	warehouses.GET("/materials/:material_id/entries", handlers.Stock.GetEntries)
	warehouses.GET("/materials/:material_id/snapshot", handlers.Stock.GetSnapshot)

	transfers := inventory.Group("/transfers")
	transfers.POST("", handlers.Transfer.Create)
	transfers.GET("", handlers.Transfer.List)
	transfers.GET("/:id", handlers.Transfer.Get)
	transfers.PATCH("/:id/status", handlers.Transfer.UpdateStatus)

	productions := inventory.Group("/productions")
	productions.POST("", handlers.Production.Create)
	productions.GET("", handlers.Production.List)
	productions.GET("/:id", handlers.Production.Get)
	productions.DELETE("/:id", handlers.Production.Delete)
	productions.PATCH("/:id/status", handlers.Production.UpdateStatus)
	productions.POST("/:id/items", handlers.Production.AddItem)
	productions.DELETE("/:id/items/:item_id", handlers.Production.RemoveItem)
}

func registerReportRoutes(api *gin.RouterGroup, handlers Handlers) {
	reports := api.Group("/reports")
	reports.GET("/stock-extract", handlers.Report.GetStockExtract)
}
