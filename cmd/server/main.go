package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/erp/factory/internal/application/catalog"
	datatableapp "github.com/erp/factory/internal/application/datatable"
	financeapp "github.com/erp/factory/internal/application/finance"
	identityapp "github.com/erp/factory/internal/application/identity"
	integrationapp "github.com/erp/factory/internal/application/integration"
	inventoryapp "github.com/erp/factory/internal/application/inventory"
	invoicingapp "github.com/erp/factory/internal/application/invoicing"
	manufacturingapp "github.com/erp/factory/internal/application/manufacturing"
	partnerapp "github.com/erp/factory/internal/application/partner"
	procurementapp "github.com/erp/factory/internal/application/procurement"
	shippingapp "github.com/erp/factory/internal/application/shipping"
	syncapp "github.com/erp/factory/internal/application/sync"
	tradeapp "github.com/erp/factory/internal/application/trade"
	workforceapp "github.com/erp/factory/internal/application/workforce"
	"github.com/erp/factory/internal/domain/datatable"
	"github.com/erp/factory/internal/domain/integration"
	"github.com/erp/factory/internal/domain/shared"
	"github.com/erp/factory/internal/infrastructure/auth"
	"github.com/erp/factory/internal/infrastructure/cache"
	"github.com/erp/factory/internal/infrastructure/config"
	"github.com/erp/factory/internal/infrastructure/external"
	"github.com/erp/factory/internal/infrastructure/idgen"
	"github.com/erp/factory/internal/infrastructure/logger"
	"github.com/erp/factory/internal/infrastructure/metrics"
	"github.com/erp/factory/internal/infrastructure/migration"
	"github.com/erp/factory/internal/infrastructure/persistence"
	"github.com/erp/factory/internal/infrastructure/scheduler"
	"github.com/erp/factory/internal/infrastructure/storage"
	"github.com/erp/factory/internal/infrastructure/telemetry"
	"github.com/erp/factory/internal/interfaces/http/handler"
	"github.com/erp/factory/internal/interfaces/http/middleware"
	"github.com/erp/factory/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Re-create the logger so entries are also exported over OTLP
	if providers.Logs.IsEnabled() {
		core := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, providers.Logs, logger.ParseLevel(cfg.Log.Level))
		if l, err := logger.New(logCfg, logger.WithCore(core)); err == nil {
			log = l
		}
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting ERP server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.Session.Secret == "" {
		cfg.Session.Secret = randomSecret()
		log.Warn("session.secret is not set, sessions will not survive a restart")
	}

	db, err := persistence.NewDatabase(cfg.Database, persistence.WithLogger(
		logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh),
	))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	meter := providers.Meter.Meter(cfg.Telemetry.ServiceName)
	if err := telemetry.InstrumentDB(db.DB, telemetry.DBConfig{
		Tracing:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:        db.Driver,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, meter, log); err != nil {
		log.Warn("Database instrumentation disabled", zap.Error(err))
	}

	if err := migrate(db, cfg.Database, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	businessMetrics, err := telemetry.NewBusinessMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	var promRegistry *metrics.Registry
	if cfg.Metrics.Enabled {
		promRegistry = metrics.NewRegistry()
		if sqlDB, err := db.DB.DB(); err == nil {
			if err := promRegistry.RegisterDB(sqlDB, cfg.Database.Driver); err != nil {
				log.Warn("Database pool metrics disabled", zap.Error(err))
			}
		}
	}

	sessionBackend, err := cache.NewSessionStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	defer func() {
		if err := sessionBackend.Close(); err != nil {
			log.Error("Error closing session store", zap.Error(err))
		}
	}()

	numbers, err := idgen.NewSnowflake(cfg.IDGen.NodeID)
	if err != nil {
		log.Fatal("Failed to create number generator", zap.Error(err))
	}

	// Repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	invoiceItemRepo := persistence.NewGormInvoiceItemRepository(db.DB)
	manufacturingRepo := persistence.NewGormManufacturingOrderRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	settingsRepo := persistence.NewGormTableSettingsRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	workerRepo := persistence.NewGormWorkerRepository(db.DB)
	positionRepo := persistence.NewGormPositionRepository(db.DB)
	departmentRepo := persistence.NewGormDepartmentRepository(db.DB)
	txManager := persistence.NewTxManager(db.DB)

	var photos catalogapp.PhotoStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3PhotoStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize photo storage", zap.Error(err))
		}
		photos = s3
		log.Info("Photo storage enabled", zap.String("bucket", s3.Bucket()))
	}

	// Application services
	productService := catalogapp.NewProductService(productRepo, bomRepo, photos)
	inventoryService := inventoryapp.NewInventoryService(inventoryRepo, warehouseRepo, productRepo)
	warehouseService := inventoryapp.NewWarehouseService(warehouseRepo)
	orderService := tradeapp.NewOrderService(orderRepo, clientRepo, productRepo, numbers)
	paymentService := financeapp.NewPaymentService(paymentRepo, orderRepo)
	shipmentService := shippingapp.NewShipmentService(shipmentRepo, orderRepo, numbers)
	workerService := workforceapp.NewWorkerService(workerRepo, positionRepo, departmentRepo)
	positionService := workforceapp.NewPositionService(positionRepo)
	departmentService := workforceapp.NewDepartmentService(departmentRepo)
	clientService := partnerapp.NewClientService(clientRepo, contactRepo)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, invoiceItemRepo, clientRepo)
	manufacturingService := manufacturingapp.NewOrderService(manufacturingapp.Deps{
		Orders:   manufacturingRepo,
		Products: productRepo,
		BOM:      bomRepo,
		Workers:  workerRepo,
		Stock:    inventoryService,
		Numbers:  numbers,
		Tx:       txManager,
		Logger:   log,
	})
	receiptService := procurementapp.NewReceiptService(procurementapp.Deps{
		Receipts:   receiptRepo,
		Clients:    clientRepo,
		Warehouses: warehouseRepo,
		Products:   productRepo,
		Stock:      inventoryService,
		Numbers:    numbers,
		Tx:         txManager,
		Logger:     log,
	})
	syncService := syncapp.NewService(syncapp.Deps{
		Clients:  clientRepo,
		Contacts: contactRepo,
		Invoices: invoiceRepo,
		Items:    invoiceItemRepo,
		Products: productRepo,
		Tx:       txManager,
		Recorder: businessMetrics,
		Logger:   log,
	})
	authService := identityapp.NewAuthService(
		identityapp.NewDatabaseCredentialProvider(userRepo),
		userRepo,
		sessionBackend.Store,
		identityapp.AuthServiceConfig{SessionTTL: cfg.Session.TTL, Recorder: businessMetrics},
		log,
	)
	if err := authService.SeedUsers(ctx, demoUsers(cfg.Auth.DemoUsers)); err != nil {
		log.Fatal("Failed to seed users", zap.Error(err))
	}

	integrationService, err := newIntegrationService(cfg, syncService, businessMetrics, log)
	if err != nil {
		log.Fatal("Failed to initialize integrations", zap.Error(err))
	}

	registry := datatable.NewRegistry()
	registry.Register(productService.Table().Definition())
	registry.Register(inventoryService.Table().Definition())
	registry.Register(orderService.Table().Definition())
	registry.Register(paymentService.Table().Definition())
	registry.Register(manufacturingService.Table().Definition())
	registry.Register(shipmentService.Table().Definition())
	registry.Register(workerService.Table().Definition())
	registry.Register(clientService.Table().Definition())
	registry.Register(invoiceService.Table().Definition())
	registry.Register(receiptService.Table().Definition())
	settingsService := datatableapp.NewSettingsService(settingsRepo, registry, log)

	tables := &handler.Tables{Settings: settingsService, Recorder: businessMetrics}
	tokens := auth.NewSessionTokens(cfg.Session)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService, tokens, cfg.Session),
		Products:      handler.NewProductHandler(productService, tables),
		Warehouses:    handler.NewWarehouseHandler(warehouseService),
		Inventory:     handler.NewInventoryHandler(inventoryService, tables),
		Orders:        handler.NewOrderHandler(orderService, paymentService, tables),
		Payments:      handler.NewPaymentHandler(paymentService, tables),
		Manufacturing: handler.NewManufacturingHandler(manufacturingService, tables),
		Shipments:     handler.NewShipmentHandler(shipmentService, tables),
		Workers:       handler.NewWorkerHandler(workerService, tables),
		Positions:     handler.NewPositionHandler(positionService),
		Departments:   handler.NewDepartmentHandler(departmentService),
		Clients:       handler.NewClientHandler(clientService, tables),
		Invoices:      handler.NewInvoiceHandler(invoiceService, tables),
		Receipts:      handler.NewReceiptHandler(receiptService, tables),
		TableSettings: handler.NewTableSettingsHandler(settingsService),
		Sync:          handler.NewSyncHandler(syncService),
		Integrations:  handler.NewIntegrationHandler(integrationService),
	}

	limitCfg := middleware.RateLimitConfig{Rate: cfg.Auth.LoginRateLimit, Prefix: "login", Logger: log}
	if sessionBackend.Client != nil {
		limitCfg.Redis = sessionBackend.Client
	}
	loginLimit, err := middleware.RateLimit(limitCfg)
	if err != nil {
		log.Fatal("Failed to create login rate limiter", zap.Error(err))
	}
	guards := router.Guards{
		Session: middleware.SessionAuth(middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			Tokens:     tokens,
			Sessions:   authService,
			Logger:     log,
		}),
		LoginLimit: loginLimit,
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewEngine(router.EngineConfig{
		Logger:      log,
		HTTP:        cfg.HTTP,
		ServiceName: cfg.Telemetry.ServiceName,
		Tracing:     cfg.Telemetry.Enabled,
		Metrics:     promRegistry,
		Health:      handler.NewHealthHandler(db, version),
	})
	router.NewRouter(engine).Register(router.APIGroups(handlers, guards)...).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	jobs, err := newJobs(cfg.Bitrix24, integrationService, log)
	if err != nil {
		log.Fatal("Failed to schedule background jobs", zap.Error(err))
	}
	jobs.Start(context.Background())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Error("Background jobs did not stop in time", zap.Error(err))
	}
	log.Info("Server exited")
}

// migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations; sqlite is created from the models.
func migrate(db *persistence.Database, cfg config.DatabaseConfig, log *zap.Logger) error {
	if !cfg.AutoMigrate && cfg.Driver != "sqlite" {
		return nil
	}
	if cfg.Driver == "sqlite" {
		return db.AutoMigrate()
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewEmbedded(sqlDB, log)
	if err != nil {
		return err
	}
	// Not closed: closing the migrator closes the shared pool.
	return m.Up()
}

// newIntegrationService builds the CRM and accounting adapters that are configured.
func newIntegrationService(cfg *config.Config, sync integrationapp.Syncer, rec external.CallRecorder, log *zap.Logger) (*integrationapp.Service, error) {
	var crm integration.CRM
	bitrix, err := external.NewBitrix24Adapter(cfg.Bitrix24, external.WithRecorder(rec))
	switch {
	case err == nil:
		crm = bitrix
		log.Info("Bitrix24 integration enabled")
	case !errors.Is(err, integration.ErrNotConfigured):
		return nil, err
	}

	var accounting integration.Accounting
	onec, err := external.NewOneCAdapter(cfg.OneC, external.WithRecorder(rec))
	switch {
	case err == nil:
		accounting = onec
		log.Info("1C integration enabled")
	case !errors.Is(err, integration.ErrNotConfigured):
		return nil, err
	}

	return integrationapp.NewService(crm, accounting, sync, log), nil
}

// newJobs schedules the periodic Bitrix24 pull when an interval is set and
// the integration is configured.
func newJobs(cfg config.Bitrix24Config, integrations *integrationapp.Service, log *zap.Logger) (*scheduler.Scheduler, error) {
	jobs := scheduler.New(log.Named("scheduler"))
	if cfg.PullInterval <= 0 {
		return jobs, nil
	}
	if !integrations.Bitrix24Enabled() {
		log.Warn("bitrix24.pull_interval is set but Bitrix24 is not configured; pull not scheduled")
		return jobs, nil
	}
	err := jobs.Register(scheduler.Job{
		Name:       "bitrix24-pull",
		Interval:   cfg.PullInterval,
		MaxRetries: 3,
		RetryDelay: 30 * time.Second,
		Retryable: func(err error) bool {
			var derr *shared.DomainError
			return !errors.As(err, &derr) || derr.Code == "UPSTREAM_ERROR"
		},
		Run: func(ctx context.Context) error {
			res, err := integrations.PullBitrix24(ctx)
			if err != nil {
				return err
			}
			log.Info("Bitrix24 pull finished",
				zap.Int("total", res.Total),
				zap.Int("created", res.Created),
				zap.Int("updated", res.Updated),
				zap.Int("failed", res.Failed),
			)
			return nil
		},
	})
	return jobs, err
}

func demoUsers(users []config.DemoUser) []identityapp.DemoUser {
	out := make([]identityapp.DemoUser, 0, len(users))
	for _, u := range users {
		out = append(out, identityapp.DemoUser{
			Username:    u.Username,
			Password:    u.Password,
			DisplayName: u.DisplayName,
			Role:        u.Role,
		})
	}
	return out
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
