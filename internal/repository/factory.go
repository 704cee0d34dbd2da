package repository

import (
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
	documentRepo "github.com/leaseledger/leaseledger/internal/repository/documentstore"
)

func NewInvoiceRepository(client document.IClient, logger *logger.Logger) invoice.Repository {
	return documentRepo.NewInvoiceRepository(client, logger)
}

func NewPaymentRepository(client document.IClient, logger *logger.Logger) payment.Repository {
	return documentRepo.NewPaymentRepository(client, logger)
}

func NewLedgerRepository(client document.IClient, logger *logger.Logger) ledger.Repository {
	return documentRepo.NewLedgerRepository(client, logger)
}

func NewTicketRepository(client document.IClient, logger *logger.Logger) ticket.Repository {
	return documentRepo.NewTicketRepository(client, logger)
}

func NewTaskRepository(client document.IClient, logger *logger.Logger) ticket.TaskRepository {
	return documentRepo.NewTaskRepository(client, logger)
}

func NewLeaseRepository(client document.IClient, logger *logger.Logger) lease.Repository {
	return documentRepo.NewLeaseRepository(client, logger)
}

func NewPropertyRepository(client document.IClient, logger *logger.Logger) property.Repository {
	return documentRepo.NewPropertyRepository(client, logger)
}

func NewTenantRepository(client document.IClient, logger *logger.Logger) tenant.Repository {
	return documentRepo.NewTenantRepository(client, logger)
}

func NewNotificationRepository(client document.IClient, logger *logger.Logger) notification.Repository {
	return documentRepo.NewNotificationRepository(client, logger)
}
