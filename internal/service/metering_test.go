package service

import (
	"testing"
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/domain/tenant"
	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/testutil"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MeteringServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        MeteringService
	invoiceService InvoiceService

	lease *lease.Lease
}

func TestMeteringService(t *testing.T) {
	suite.Run(t, new(MeteringServiceSuite))
}

func (s *MeteringServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		LeaseRepo:        stores.LeaseRepo,
		PropertyRepo:     stores.PropertyRepo,
		TenantRepo:       stores.TenantRepo,
		InvoiceRepo:      stores.InvoiceRepo,
		PaymentRepo:      stores.PaymentRepo,
		LedgerRepo:       stores.LedgerRepo,
		TicketRepo:       stores.TicketRepo,
		TaskRepo:         stores.TaskRepo,
		NotificationRepo: stores.NotificationRepo,
	}
	ledgerService := NewLedgerService(params)
	notificationService := NewNotificationService(params)
	s.service = NewMeteringService(params, ledgerService, notificationService)
	s.invoiceService = NewInvoiceService(params, ledgerService, notificationService)

	s.setupTestData()
}

func (s *MeteringServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.NoError(s.GetStores().TenantRepo.Create(ctx, &tenant.Tenant{
		ID:        "tnt_test",
		Name:      "Jane Doe",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))
	s.NoError(s.GetStores().PropertyRepo.Create(ctx, &property.Property{
		ID:         "prop_test",
		Name:       "Sunset Court",
		LandlordID: "landlord_test",
		DueDay:     5,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}))

	s.lease = &lease.Lease{
		ID:         "lease_test",
		TenantID:   "tnt_test",
		PropertyID: "prop_test",
		UnitID:     "unit_test",
		RentAmount: decimal.NewFromInt(1000),
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
		Utilities: []lease.UtilityConfig{
			{Name: "Water", Metered: true, Rate: decimal.NewFromFloat(2.5), LastReading: decimal.NewFromInt(100)},
			{Name: "Electricity", Metered: true, Rate: decimal.NewFromInt(10), LastReading: decimal.NewFromInt(40)},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().LeaseRepo.Create(ctx, s.lease))
}

// generatePending creates the period's invoice, returning it with the tasks
// its metering ticket spawned.
func (s *MeteringServiceSuite) generatePending(period types.BillingPeriod) (string, map[string]string) {
	ctx := s.GetContext()
	resp, err := s.invoiceService.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: string(period),
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPendingUtilities, resp.Invoice.InvoiceStatus)

	tkt, err := s.GetStores().TicketRepo.GetOpenByPropertyAndPeriod(ctx, "prop_test", period)
	s.NoError(err)
	tasks, err := s.GetStores().TaskRepo.ListByTicket(ctx, tkt.ID)
	s.NoError(err)

	taskByUtility := make(map[string]string, len(tasks))
	for _, t := range tasks {
		taskByUtility[t.UtilityName] = t.ID
	}
	return resp.Invoice.ID, taskByUtility
}

func (s *MeteringServiceSuite) TestReadingCompletesTask() {
	ctx := s.GetContext()
	invoiceID, tasks := s.generatePending("2025-11")

	resp, err := s.service.ProcessUtilityReading(ctx, &dto.ProcessReadingRequest{
		TaskID:         tasks["Water"],
		CurrentReading: decimal.NewFromInt(120),
	})
	s.NoError(err)

	s.Equal(types.TaskStatusCompleted, resp.Task.TaskStatus)
	s.True(resp.Task.CurrentReading.Equal(decimal.NewFromInt(120)))
	s.False(resp.TicketClosed)

	// 20 units at 2.5.
	s.Equal(invoiceID, resp.Invoice.ID)
	s.True(resp.Invoice.TotalAmount.Equal(decimal.NewFromInt(1050)))
	s.Equal(types.InvoiceStatusPendingUtilities, resp.Invoice.InvoiceStatus)

	// The lease's meter position advances so next period starts from 120.
	l, err := s.GetStores().LeaseRepo.Get(ctx, s.lease.ID)
	s.NoError(err)
	for _, u := range l.Utilities {
		if u.Name == "Water" {
			s.True(u.LastReading.Equal(decimal.NewFromInt(120)))
		}
	}
}

func (s *MeteringServiceSuite) TestLastReadingClosesTicket() {
	ctx := s.GetContext()
	invoiceID, tasks := s.generatePending("2025-11")

	_, err := s.service.ProcessUtilityReading(ctx, &dto.ProcessReadingRequest{
		TaskID:         tasks["Water"],
		CurrentReading: decimal.NewFromInt(120),
	})
	s.NoError(err)

	resp, err := s.service.ProcessUtilityReading(ctx, &dto.ProcessReadingRequest{
		TaskID:         tasks["Electricity"],
		CurrentReading: decimal.NewFromInt(45),
	})
	s.NoError(err)
	s.True(resp.TicketClosed)

	// Rent 1000 + water 50 + electricity 50.
	s.Equal(types.InvoiceStatusReady, resp.Invoice.InvoiceStatus)
	s.True(resp.Invoice.TotalAmount.Equal(decimal.NewFromInt(1100)))
	s.True(resp.Invoice.BalanceAmount.Equal(decimal.NewFromInt(1100)))

	tkt, err := s.GetStores().TicketRepo.Get(ctx, resp.Task.TicketID)
	s.NoError(err)
	s.Equal(types.TicketStatusClosed, tkt.TicketStatus)
	s.Equal(2, tkt.CompletedTasks)

	// Finalizing notifies the tenant once.
	notifications := s.GetStores().NotificationRepo.(*testutil.InMemoryNotificationStore).All(ctx)
	s.Len(notifications, 1)
	s.Equal(types.NotificationTypeInvoiceIssued, notifications[0].Type)

	inv, err := s.GetStores().InvoiceRepo.Get(ctx, invoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusReady, inv.InvoiceStatus)
}

func (s *MeteringServiceSuite) TestReadingRegressionRejected() {
	ctx := s.GetContext()
	invoiceID, tasks := s.generatePending("2025-11")

	_, err := s.service.ProcessUtilityReading(ctx, &dto.ProcessReadingRequest{
		TaskID:         tasks["Water"],
		CurrentReading: decimal.NewFromInt(90),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	// The task stays awaiting input and the invoice is untouched.
	task, err := s.GetStores().TaskRepo.Get(ctx, tasks["Water"])
	s.NoError(err)
	s.Equal(types.TaskStatusAwaitingInput, task.TaskStatus)
	s.Nil(task.CurrentReading)

	inv, err := s.GetStores().InvoiceRepo.Get(ctx, invoiceID)
	s.NoError(err)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(1000)))
	s.Equal(types.InvoiceStatusPendingUtilities, inv.InvoiceStatus)
}

func (s *MeteringServiceSuite) TestZeroUsageReading() {
	_, tasks := s.generatePending("2025-11")

	resp, err := s.service.ProcessUtilityReading(s.GetContext(), &dto.ProcessReadingRequest{
		TaskID:         tasks["Water"],
		CurrentReading: decimal.NewFromInt(100),
	})
	s.NoError(err)
	s.Equal(types.TaskStatusCompleted, resp.Task.TaskStatus)
	// A zero-usage line still lands on the invoice so the reading is audited.
	s.True(resp.Invoice.TotalAmount.Equal(decimal.NewFromInt(1000)))
}

func (s *MeteringServiceSuite) TestCompletedTaskRejectsSecondReading() {
	_, tasks := s.generatePending("2025-11")

	_, err := s.service.ProcessUtilityReading(s.GetContext(), &dto.ProcessReadingRequest{
		TaskID:         tasks["Water"],
		CurrentReading: decimal.NewFromInt(120),
	})
	s.NoError(err)

	_, err = s.service.ProcessUtilityReading(s.GetContext(), &dto.ProcessReadingRequest{
		TaskID:         tasks["Water"],
		CurrentReading: decimal.NewFromInt(130),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *MeteringServiceSuite) TestNegativeReadingRejected() {
	_, tasks := s.generatePending("2025-11")

	_, err := s.service.ProcessUtilityReading(s.GetContext(), &dto.ProcessReadingRequest{
		TaskID:         tasks["Water"],
		CurrentReading: decimal.NewFromInt(-5),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
