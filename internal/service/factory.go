package service

import (
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
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     document.IClient
	Cache  cache.Cache

	// Repositories
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

// NewServiceParams assembles the common dependency set the services share
func NewServiceParams(
	logger *logger.Logger,
	cfg *config.Configuration,
	db document.IClient,
	cache cache.Cache,
	leaseRepo lease.Repository,
	propertyRepo property.Repository,
	tenantRepo tenant.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	ledgerRepo ledger.Repository,
	ticketRepo ticket.Repository,
	taskRepo ticket.TaskRepository,
	notificationRepo notification.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           cfg,
		DB:               db,
		Cache:            cache,
		LeaseRepo:        leaseRepo,
		PropertyRepo:     propertyRepo,
		TenantRepo:       tenantRepo,
		InvoiceRepo:      invoiceRepo,
		PaymentRepo:      paymentRepo,
		LedgerRepo:       ledgerRepo,
		TicketRepo:       ticketRepo,
		TaskRepo:         taskRepo,
		NotificationRepo: notificationRepo,
	}
}
