package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
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
	"github.com/erp/factory/internal/infrastructure/auth"
	"github.com/erp/factory/internal/infrastructure/cache"
	"github.com/erp/factory/internal/infrastructure/config"
	"github.com/erp/factory/internal/infrastructure/metrics"
	"github.com/erp/factory/internal/infrastructure/persistence"
	"github.com/erp/factory/internal/interfaces/http/handler"
	"github.com/erp/factory/internal/interfaces/http/middleware"
	"github.com/erp/factory/internal/interfaces/http/router"
	"github.com/erp/factory/tests/testutil"
)

const (
	testUsername = "admin"
	testPassword = "admin-password"
)

// TestServer is the full API wired to a test database
type TestServer struct {
	DB      *persistence.Database
	API     *testutil.API
	Session config.SessionConfig
	Store   *cache.InMemorySessionStore
	t       *testing.T
}

// ServerOption adjusts the wiring of a TestServer
type ServerOption func(*serverOptions)

type serverOptions struct {
	loginRate string
}

// WithLoginRate overrides the login rate limit
func WithLoginRate(rate string) ServerOption {
	return func(o *serverOptions) { o.loginRate = rate }
}

// NewTestServer wires repositories, services, handlers and the router the
// way the server binary does, with in-memory sessions and one seeded admin.
func NewTestServer(t *testing.T, db *persistence.Database, opts ...ServerOption) *TestServer {
	t.Helper()

	o := serverOptions{loginRate: "1000-M"}
	for _, opt := range opts {
		opt(&o)
	}

	log := zap.NewNop()
	sessionCfg := config.SessionConfig{
		CookieName: "erp_session",
		TTL:        time.Hour,
		Secret:     "integration-test-secret-integration-test",
		Issuer:     "erp-factory-test",
		Path:       "/",
		SameSite:   "lax",
	}

	clientRepo := persistence.NewGormClientRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	bomRepo := persistence.NewGormBOMRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	invoiceItemRepo := persistence.NewGormInvoiceItemRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	workerRepo := persistence.NewGormWorkerRepository(db.DB)
	positionRepo := persistence.NewGormPositionRepository(db.DB)
	departmentRepo := persistence.NewGormDepartmentRepository(db.DB)
	txManager := persistence.NewTxManager(db.DB)
	numbers := testutil.NewSequenceNumbers()

	productService := catalogapp.NewProductService(productRepo, bomRepo, nil)
	inventoryService := inventoryapp.NewInventoryService(inventoryRepo, warehouseRepo, productRepo)
	orderService := tradeapp.NewOrderService(orderRepo, clientRepo, productRepo, numbers)
	paymentService := financeapp.NewPaymentService(persistence.NewGormPaymentRepository(db.DB), orderRepo)
	shipmentService := shippingapp.NewShipmentService(persistence.NewGormShipmentRepository(db.DB), orderRepo, numbers)
	workerService := workforceapp.NewWorkerService(workerRepo, positionRepo, departmentRepo)
	clientService := partnerapp.NewClientService(clientRepo, contactRepo)
	invoiceService := invoicingapp.NewInvoiceService(invoiceRepo, invoiceItemRepo, clientRepo)
	manufacturingService := manufacturingapp.NewOrderService(manufacturingapp.Deps{
		Orders:   persistence.NewGormManufacturingOrderRepository(db.DB),
		Products: productRepo,
		BOM:      bomRepo,
		Workers:  workerRepo,
		Stock:    inventoryService,
		Numbers:  numbers,
		Tx:       txManager,
		Logger:   log,
	})
	receiptService := procurementapp.NewReceiptService(procurementapp.Deps{
		Receipts:   persistence.NewGormReceiptRepository(db.DB),
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
		Logger:   log,
	})

	store := cache.NewInMemorySessionStore()
	t.Cleanup(func() { _ = store.Close() })
	authService := identityapp.NewAuthService(
		identityapp.NewDatabaseCredentialProvider(userRepo),
		userRepo,
		store,
		identityapp.AuthServiceConfig{SessionTTL: sessionCfg.TTL},
		log,
	)
	require.NoError(t, authService.SeedUsers(context.Background(), []identityapp.DemoUser{
		{Username: testUsername, Password: testPassword, DisplayName: "Administrator", Role: "admin"},
	}))

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
	settingsService := datatableapp.NewSettingsService(persistence.NewGormTableSettingsRepository(db.DB), registry, log)

	tables := &handler.Tables{Settings: settingsService}
	tokens := auth.NewSessionTokens(sessionCfg)
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService, tokens, sessionCfg),
		Products:      handler.NewProductHandler(productService, tables),
		Warehouses:    handler.NewWarehouseHandler(inventoryapp.NewWarehouseService(warehouseRepo)),
		Inventory:     handler.NewInventoryHandler(inventoryService, tables),
		Orders:        handler.NewOrderHandler(orderService, paymentService, tables),
		Payments:      handler.NewPaymentHandler(paymentService, tables),
		Manufacturing: handler.NewManufacturingHandler(manufacturingService, tables),
		Shipments:     handler.NewShipmentHandler(shipmentService, tables),
		Workers:       handler.NewWorkerHandler(workerService, tables),
		Positions:     handler.NewPositionHandler(workforceapp.NewPositionService(positionRepo)),
		Departments:   handler.NewDepartmentHandler(workforceapp.NewDepartmentService(departmentRepo)),
		Clients:       handler.NewClientHandler(clientService, tables),
		Invoices:      handler.NewInvoiceHandler(invoiceService, tables),
		Receipts:      handler.NewReceiptHandler(receiptService, tables),
		TableSettings: handler.NewTableSettingsHandler(settingsService),
		Sync:          handler.NewSyncHandler(syncService),
		Integrations:  handler.NewIntegrationHandler(integrationapp.NewService(nil, nil, syncService, log)),
	}

	loginLimit, err := middleware.RateLimit(middleware.RateLimitConfig{Rate: o.loginRate, Prefix: "login"})
	require.NoError(t, err)
	guards := router.Guards{
		Session: middleware.SessionAuth(middleware.SessionConfig{
			CookieName: sessionCfg.CookieName,
			Tokens:     tokens,
			Sessions:   authService,
		}),
		LoginLimit: loginLimit,
	}

	engine := router.NewEngine(router.EngineConfig{
		HTTP:    config.HTTPConfig{MaxBodySize: 1 << 20},
		Metrics: metrics.NewRegistry(),
		Health:  handler.NewHealthHandler(db, "test"),
	})
	router.NewRouter(engine).Register(router.APIGroups(handlers, guards)...).Setup()

	return &TestServer{
		DB:      db,
		API:     testutil.NewAPI(t, engine),
		Session: sessionCfg,
		Store:   store,
		t:       t,
	}
}

// Login signs in as the seeded admin and sends the session cookie on every
// later request.
func (s *TestServer) Login() {
	s.t.Helper()

	w := s.API.Do(http.MethodPost, "/api/auth/simple-login", map[string]string{
		"username": testUsername,
		"password": testPassword,
	})
	testutil.RequireStatus(s.t, w, http.StatusOK)

	for _, c := range w.Result().Cookies() {
		if c.Name == s.Session.CookieName {
			s.API.Headers["Cookie"] = c.Name + "=" + c.Value
			return
		}
	}
	s.t.Fatal("login did not set the session cookie")
}

// Logout drops the session cookie without calling the API
func (s *TestServer) Logout() {
	delete(s.API.Headers, "Cookie")
}
