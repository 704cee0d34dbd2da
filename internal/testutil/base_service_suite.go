package testutil

import (
	"context"
	"time"

	"github.com/leaseledger/leaseledger/internal/cache"
	"github.com/leaseledger/leaseledger/internal/config"
	"github.com/leaseledger/leaseledger/internal/document"
	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/domain/ledger"
	"github.com/leaseledger/leaseledger/internal/domain/notification"
	"github.com/leaseledger/leaseledger/internal/domain/payment"
	"github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/domain/tenant"
	"github.com/leaseledger/leaseledger/internal/domain/ticket"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/leaseledger/leaseledger/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	LeaseRepo        lease.Repository
	PropertyRepo     property.Repository
	TenantRepo       tenant.Repository
	InvoiceRepo      invoice.Repository
	PaymentRepo      payment.Repository
	LedgerRepo       ledger.Repository
	TicketRepo       ticket.Repository
	TaskRepo         ticket.TaskRepository
	NotificationRepo notification.Repository
}

// BaseServiceTestSuite provides common functionality for all service test
// suites: in-memory stores, a no-op document client, and a seeded context.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     document.IClient
	cache  cache.Cache
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Billing: config.BillingConfig{
			DefaultDueDay:          5,
			ConsolidationMethod:    types.ConsolidationMethodSum,
			LeaseExpiryWarningDays: 60,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		LeaseRepo:        NewInMemoryLeaseStore(),
		PropertyRepo:     NewInMemoryPropertyStore(),
		TenantRepo:       NewInMemoryTenantStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		PaymentRepo:      NewInMemoryPaymentStore(),
		LedgerRepo:       NewInMemoryLedgerStore(),
		TicketRepo:       NewInMemoryTicketStore(),
		TaskRepo:         NewInMemoryTaskStore(),
		NotificationRepo: NewInMemoryNotificationStore(),
	}

	s.db = NewMockDocumentClient(s.logger)
	s.cache = cache.NewInMemoryCache(false)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.LeaseRepo.(*InMemoryLeaseStore).Clear()
	s.stores.PropertyRepo.(*InMemoryPropertyStore).Clear()
	s.stores.TenantRepo.(*InMemoryTenantStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.LedgerRepo.(*InMemoryLedgerStore).Clear()
	s.stores.TicketRepo.(*InMemoryTicketStore).Clear()
	s.stores.TaskRepo.(*InMemoryTaskStore).Clear()
	s.stores.NotificationRepo.(*InMemoryNotificationStore).Clear()
}

// ClearStores resets every store mid-test
func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the in-memory stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the mock document client
func (s *BaseServiceTestSuite) GetDB() document.IClient {
	return s.db
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
