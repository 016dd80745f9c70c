// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"woodline/internal/core/numerator"
	"woodline/internal/domain/access"
	"woodline/internal/domain/auth"
	"woodline/internal/domain/catalogs/customer"
	"woodline/internal/domain/catalogs/product"
	"woodline/internal/domain/catalogs/rates"
	"woodline/internal/domain/catalogs/servicetype"
	"woodline/internal/domain/catalogs/supplier"
	"woodline/internal/domain/catalogs/warehouse"
	"woodline/internal/domain/documents/inventory"
	"woodline/internal/domain/documents/purchase"
	"woodline/internal/domain/documents/transfer"
	"woodline/internal/domain/documents/writeoff"
	"woodline/internal/domain/expense"
	"woodline/internal/domain/ledger"
	"woodline/internal/domain/reports"
	"woodline/internal/domain/sales"
	"woodline/internal/domain/stock"
	"woodline/internal/domain/workshop"
	"woodline/internal/infrastructure/http/v1/handlers"
	"woodline/internal/infrastructure/http/v1/middleware"
	"woodline/internal/infrastructure/metrics"
	"woodline/internal/infrastructure/storage/postgres"
	"woodline/internal/infrastructure/storage/postgres/catalog_repo"
	"woodline/internal/infrastructure/storage/postgres/document_repo"
	"woodline/internal/infrastructure/storage/postgres/expense_repo"
	"woodline/internal/infrastructure/storage/postgres/ledger_repo"
	"woodline/internal/infrastructure/storage/postgres/register_repo"
	"woodline/internal/infrastructure/storage/postgres/report_repo"
	"woodline/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks and the
	// idempotency store).
	Pool *postgres.Pool

	// TxManager owns transaction scoping for all repositories.
	TxManager *postgres.TxManager

	// Redis client for health checks; may be nil.
	Redis *redis.Client

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// IdempotencyEnabled enables idempotency middleware
	IdempotencyEnabled bool

	// IdempotencyTTL is how long completed keys are replayable.
	IdempotencyTTL time.Duration
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(metrics.Middleware())
	router.Use(middleware.ErrorHandler())

	// Health and scrape endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool.Pool, cfg.Redis)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", middleware.OptionalAuth(cfg.JWTValidator), healthHandler.Info)
	}
	router.GET("/metrics", metrics.Handler())

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		if auditSvc, err := postgres.NewAuditService(cfg.TxManager); err != nil {
			cfg.Logger.Warnw("audit disabled", "error", err)
		} else {
			protected.Use(middleware.Audit(auditSvc))
		}

		if cfg.IdempotencyEnabled {
			ttl := cfg.IdempotencyTTL
			if ttl <= 0 {
				ttl = 10 * time.Minute
			}
			store := postgres.NewIdempotencyStore(cfg.Pool, cfg.TxManager, ttl)
			protected.Use(middleware.Idempotency(store))
		}

		registerCatalogRoutes(protected, cfg)
		registerSaleRoutes(protected, cfg)
		registerLedgerRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerStockRoutes(protected, cfg)
		registerWorkshopRoutes(protected, cfg)
		registerReportRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication and employee endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	authGroup := rg.Group("/auth")
	authGroup.POST("/login", authHandler.Login)

	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
	protectedAuth.GET("/me", authHandler.Me)
	protectedAuth.GET("/permissions", authHandler.Permissions)

	users := rg.Group("/users")
	users.Use(middleware.Auth(cfg.JWTValidator))
	users.Use(middleware.RequirePermission(access.PermEmployeeManage))
	{
		users.POST("", authHandler.CreateUser)
		users.GET("", authHandler.ListUsers)
		users.GET("/:id", authHandler.GetUser)
		users.PUT("/:id", authHandler.UpdateUser)
		users.DELETE("/:id", authHandler.DeactivateUser)
	}
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- WAREHOUSES ---
	{
		repo := catalog_repo.NewWarehouseRepo(cfg.TxManager)
		service := warehouse.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewWarehouseHandler(baseHandler, service)

		g := catalogs.Group("/warehouses")
		g.GET("", middleware.RequirePermission(access.PermWarehouseRead), handler.List)
		g.GET("/default", middleware.RequirePermission(access.PermWarehouseRead), handler.GetDefault)
		g.GET("/:id", middleware.RequirePermission(access.PermWarehouseRead), handler.Get)
		g.POST("", middleware.RequirePermission(access.PermWarehouseWrite), handler.Create)
		g.PUT("/:id", middleware.RequirePermission(access.PermWarehouseWrite), handler.Update)
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(cfg.TxManager)
		service := product.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewProductHandler(baseHandler, service)

		g := catalogs.Group("/products")
		g.GET("", middleware.RequirePermission(access.PermProductRead), handler.List)
		g.GET("/barcode/:barcode", middleware.RequirePermission(access.PermProductRead), handler.GetByBarcode)
		g.GET("/:id", middleware.RequirePermission(access.PermProductRead), handler.Get)
		g.POST("", middleware.RequirePermission(access.PermProductWrite), handler.Create)
		g.PUT("/:id", middleware.RequirePermission(access.PermProductWrite), handler.Update)
		g.DELETE("/:id", middleware.RequirePermission(access.PermProductWrite), handler.Archive)
	}

	// --- CUSTOMERS ---
	{
		repo := catalog_repo.NewCustomerRepo(cfg.TxManager)
		service := customer.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewCustomerHandler(baseHandler, service)

		g := catalogs.Group("/customers")
		g.GET("", middleware.RequirePermission(access.PermCustomerRead), handler.List)
		g.GET("/:id", middleware.RequirePermission(access.PermCustomerRead), handler.Get)
		g.POST("", middleware.RequirePermission(access.PermCustomerWrite), handler.Create)
		g.PUT("/:id", middleware.RequirePermission(access.PermCustomerWrite), handler.Update)
	}

	// --- SUPPLIERS ---
	{
		repo := catalog_repo.NewSupplierRepo(cfg.TxManager)
		service := supplier.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewSupplierHandler(baseHandler, service)

		g := catalogs.Group("/suppliers")
		g.GET("", middleware.RequirePermission(access.PermSupplierRead), handler.List)
		g.GET("/:id", middleware.RequirePermission(access.PermSupplierRead), handler.Get)
		g.POST("", middleware.RequirePermission(access.PermSupplierWrite), handler.Create)
		g.PUT("/:id", middleware.RequirePermission(access.PermSupplierWrite), handler.Update)
	}

	// --- SERVICE TYPES ---
	{
		repo := catalog_repo.NewServiceTypeRepo(cfg.TxManager)
		service := servicetype.NewService(repo, cfg.Numerator, cfg.TxManager)
		handler := handlers.NewServiceTypeHandler(baseHandler, service)

		g := catalogs.Group("/service-types")
		g.GET("", middleware.RequirePermission(access.PermProductRead), handler.List)
		g.GET("/:id", middleware.RequirePermission(access.PermProductRead), handler.Get)
		g.POST("", middleware.RequirePermission(access.PermProductWrite), handler.Create)
		g.PUT("/:id", middleware.RequirePermission(access.PermProductWrite), handler.Update)
	}

	// --- EXCHANGE RATES ---
	{
		repo := catalog_repo.NewRatesRepo(cfg.TxManager)
		service := rates.NewService(repo)
		handler := handlers.NewRatesHandler(baseHandler, service)

		g := catalogs.Group("/rates")
		g.GET("", handler.History)
		g.GET("/current", handler.Current)
		g.POST("", middleware.RequirePermission(access.PermSettingsWrite), handler.Set)
	}
}

// buildSalesServices wires the sale workflow dependency graph.
// Sales and ledger share one outbox so a request enqueues all its
// events in the same transaction.
func buildSalesServices(cfg RouterConfig) (*sales.Service, *ledger.Service, *workshop.Service, *expense.Service) {
	outbox := postgres.NewOutbox(cfg.TxManager)

	saleRepo := document_repo.NewSaleRepo(cfg.TxManager)
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	serviceTypeRepo := catalog_repo.NewServiceTypeRepo(cfg.TxManager)
	stockSvc := stock.NewService(register_repo.NewStockRepo(cfg.TxManager))

	workshopSvc := workshop.NewService(
		document_repo.NewWorkshopTaskRepo(cfg.TxManager),
		saleRepo,
		cfg.Numerator,
		cfg.TxManager,
		outbox,
	)

	salesSvc := sales.NewService(
		saleRepo,
		productRepo,
		serviceTypeRepo,
		stockSvc,
		workshopSvc,
		cfg.Numerator,
		cfg.TxManager,
		outbox,
	)

	ledgerSvc := ledger.NewService(ledger_repo.NewLedgerRepo(cfg.TxManager), cfg.Numerator, cfg.TxManager, outbox)
	expenseSvc := expense.NewService(expense_repo.NewExpenseRepo(cfg.TxManager), ledgerSvc, cfg.Numerator, cfg.TxManager)

	return salesSvc, ledgerSvc, workshopSvc, expenseSvc
}

// registerSaleRoutes registers the sale workflow endpoints.
func registerSaleRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	salesSvc, ledgerSvc, _, _ := buildSalesServices(cfg)
	ratesSvc := rates.NewService(catalog_repo.NewRatesRepo(cfg.TxManager))

	salesHandler := handlers.NewSalesHandler(baseHandler, salesSvc, ratesSvc)
	ledgerHandler := handlers.NewLedgerHandler(baseHandler, ledgerSvc, salesSvc)

	g := rg.Group("/sales")
	g.POST("", middleware.RequireAnyPermission(access.PermSaleProduct, access.PermSaleService), salesHandler.Create)
	g.GET("", middleware.RequireAnyPermission(access.PermSaleProduct, access.PermSaleService), salesHandler.List)
	g.GET("/:id", middleware.RequireAnyPermission(access.PermSaleProduct, access.PermSaleService), salesHandler.Get)
	g.GET("/:id/outstanding", middleware.RequirePermission(access.PermPaymentCreate), ledgerHandler.SaleOutstanding)
	g.POST("/:id/complete", middleware.RequirePermission(access.PermSaleComplete), salesHandler.Complete)
	g.POST("/:id/cancel", middleware.RequirePermission(access.PermSaleCancel), salesHandler.Cancel)
}

// registerLedgerRoutes registers payment, register and expense endpoints.
func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	salesSvc, ledgerSvc, _, expenseSvc := buildSalesServices(cfg)

	ledgerHandler := handlers.NewLedgerHandler(baseHandler, ledgerSvc, salesSvc)
	expenseHandler := handlers.NewExpenseHandler(baseHandler, expenseSvc)

	payments := rg.Group("/payments")
	payments.POST("", middleware.RequirePermission(access.PermPaymentCreate), ledgerHandler.CreatePayment)
	payments.GET("", middleware.RequirePermission(access.PermPaymentCreate), ledgerHandler.ListPayments)

	ledgerGroup := rg.Group("/ledger")
	ledgerGroup.POST("/withdrawals", middleware.RequirePermission(access.PermExpenseWrite), ledgerHandler.Withdraw)
	ledgerGroup.GET("/balances", middleware.RequirePermission(access.PermReportRead), ledgerHandler.GetBalances)
	ledgerGroup.GET("/balances/:register", middleware.RequirePermission(access.PermReportRead), ledgerHandler.GetBalance)
	ledgerGroup.GET("/ops", middleware.RequirePermission(access.PermReportRead), ledgerHandler.ListOps)

	expenses := rg.Group("/expenses")
	expenses.POST("", middleware.RequirePermission(access.PermExpenseWrite), expenseHandler.Create)
	expenses.GET("", middleware.RequirePermission(access.PermExpenseRead), expenseHandler.List)
	expenses.GET("/categories", middleware.RequirePermission(access.PermExpenseRead), expenseHandler.ListCategories)
	expenses.POST("/categories", middleware.RequirePermission(access.PermExpenseWrite), expenseHandler.CreateCategory)
	expenses.DELETE("/categories/:id", middleware.RequirePermission(access.PermExpenseWrite), expenseHandler.DeleteCategory)
}

// registerDocumentRoutes registers stock document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docsGroup := rg.Group("/documents")
	baseHandler := handlers.NewBaseHandler()

	outbox := postgres.NewOutbox(cfg.TxManager)
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	stockSvc := stock.NewService(register_repo.NewStockRepo(cfg.TxManager))

	ledgerSvc := ledger.NewService(ledger_repo.NewLedgerRepo(cfg.TxManager), cfg.Numerator, cfg.TxManager, outbox)
	expenseSvc := expense.NewService(expense_repo.NewExpenseRepo(cfg.TxManager), ledgerSvc, cfg.Numerator, cfg.TxManager)

	purchaseSvc := purchase.NewService(
		document_repo.NewPurchaseRepo(cfg.TxManager),
		productRepo,
		stockSvc,
		expenseSvc,
		cfg.Numerator,
		cfg.TxManager,
	)
	transferSvc := transfer.NewService(document_repo.NewTransferRepo(cfg.TxManager), stockSvc, cfg.Numerator, cfg.TxManager, outbox)
	writeoffSvc := writeoff.NewService(document_repo.NewWriteOffRepo(cfg.TxManager), stockSvc, cfg.Numerator, cfg.TxManager)
	inventorySvc := inventory.NewService(document_repo.NewInventoryCheckRepo(cfg.TxManager), stockSvc, cfg.Numerator, cfg.TxManager, outbox)

	handler := handlers.NewDocumentsHandler(baseHandler, purchaseSvc, transferSvc, writeoffSvc, inventorySvc)

	purchases := docsGroup.Group("/purchases")
	purchases.POST("", middleware.RequirePermission(access.PermStockPurchase), handler.CreatePurchase)
	purchases.GET("", middleware.RequirePermission(access.PermStockRead), handler.ListPurchases)
	purchases.GET("/:id", middleware.RequirePermission(access.PermStockRead), handler.GetPurchase)

	transfers := docsGroup.Group("/transfers")
	transfers.POST("", middleware.RequirePermission(access.PermStockTransfer), handler.CreateTransfer)
	transfers.GET("", middleware.RequirePermission(access.PermStockRead), handler.ListTransfers)
	transfers.GET("/:id", middleware.RequirePermission(access.PermStockRead), handler.GetTransfer)

	writeoffs := docsGroup.Group("/write-offs")
	writeoffs.POST("", middleware.RequirePermission(access.PermStockWriteOff), handler.CreateWriteOff)
	writeoffs.GET("", middleware.RequirePermission(access.PermStockRead), handler.ListWriteOffs)
	writeoffs.GET("/:id", middleware.RequirePermission(access.PermStockRead), handler.GetWriteOff)

	inventories := docsGroup.Group("/inventories")
	inventories.POST("", middleware.RequirePermission(access.PermStockInventory), handler.CreateInventory)
	inventories.POST("/:id/apply", middleware.RequirePermission(access.PermStockInventory), handler.ApplyInventory)
	inventories.GET("", middleware.RequirePermission(access.PermStockRead), handler.ListInventories)
	inventories.GET("/:id", middleware.RequirePermission(access.PermStockRead), handler.GetInventory)
}

// registerStockRoutes registers stock balance and movement endpoints.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	stockSvc := stock.NewService(register_repo.NewStockRepo(cfg.TxManager))
	handler := handlers.NewStockHandler(baseHandler, stockSvc)

	g := rg.Group("/stock")
	g.POST("/returns", middleware.RequirePermission(access.PermStockWriteOff), handler.CreateReturn)
	g.GET("/balances/:warehouseId/:productId", middleware.RequirePermission(access.PermStockRead), handler.GetBalance)
	g.GET("/warehouses/:warehouseId", middleware.RequirePermission(access.PermStockRead), handler.GetWarehouseStock)
	g.GET("/availability/:productId", middleware.RequirePermission(access.PermStockRead), handler.GetProductAvailability)
	g.GET("/movements/:productId", middleware.RequirePermission(access.PermStockRead), handler.GetMovementHistory)
	g.GET("/turnover", middleware.RequirePermission(access.PermStockRead), handler.GetTurnover)
}

// registerWorkshopRoutes registers workshop task endpoints.
func registerWorkshopRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	_, _, workshopSvc, _ := buildSalesServices(cfg)
	handler := handlers.NewWorkshopHandler(baseHandler, workshopSvc)

	g := rg.Group("/workshop/tasks")
	g.GET("", middleware.RequirePermission(access.PermWorkshopRead), handler.List)
	g.GET("/:id", middleware.RequirePermission(access.PermWorkshopRead), handler.Get)
	g.POST("/:id/start", middleware.RequirePermission(access.PermWorkshopWork), handler.Start)
	g.POST("/:id/complete", middleware.RequirePermission(access.PermWorkshopWork), handler.Complete)
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	reportService := reports.NewService(report_repo.NewReportRepo(cfg.TxManager))
	handler := handlers.NewReportsHandler(baseHandler, reportService)

	g := rg.Group("/reports")
	g.Use(middleware.RequirePermission(access.PermReportRead))
	{
		g.GET("/sales/summary", handler.SalesSummary)
		g.GET("/sales/by-day", handler.SalesByDay)
		g.GET("/sales/top-products", handler.TopProducts)
		g.GET("/sales/by-cashier", handler.SalesByCashier)
		g.GET("/customers/debts", handler.CustomerDebts)
	}
}
