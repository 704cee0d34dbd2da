package service

import (
	"testing"
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/domain/ledger"
	"github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/domain/tenant"
	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/testutil"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       InvoiceService
	ledgerService LedgerService

	tenant   *tenant.Tenant
	property *property.Property
	lease    *lease.Lease
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupServices()
	s.setupTestData()
}

func (s *InvoiceServiceSuite) serviceParams() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
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
}

func (s *InvoiceServiceSuite) setupServices() {
	params := s.serviceParams()
	s.ledgerService = NewLedgerService(params)
	notificationService := NewNotificationService(params)
	s.service = NewInvoiceService(params, s.ledgerService, notificationService)
}

func (s *InvoiceServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.tenant = &tenant.Tenant{
		ID:        "tnt_test",
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().TenantRepo.Create(ctx, s.tenant))

	s.property = &property.Property{
		ID:         "prop_test",
		Name:       "Sunset Court",
		LandlordID: "landlord_test",
		DueDay:     5,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PropertyRepo.Create(ctx, s.property))

	s.lease = &lease.Lease{
		ID:         "lease_test",
		TenantID:   s.tenant.ID,
		PropertyID: s.property.ID,
		UnitID:     "unit_test",
		RentAmount: decimal.NewFromInt(1000),
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().LeaseRepo.Create(ctx, s.lease))
}

// seedInvoice stores an outstanding invoice with a single rent line so the
// totals invariant holds.
func (s *InvoiceServiceSuite) seedInvoice(id string, period types.BillingPeriod, balance decimal.Decimal, status types.InvoiceStatus) *invoice.Invoice {
	ctx := s.GetContext()
	inv := &invoice.Invoice{
		ID:            id,
		InvoiceNumber: "INV-" + id,
		PropertyID:    s.property.ID,
		TenantID:      s.tenant.ID,
		LeaseID:       "lease_old_" + id,
		BillingPeriod: period,
		InvoiceStatus: status,
		LineItems: []*invoice.LineItem{
			{
				ID:          "line_" + id,
				InvoiceID:   id,
				Description: "Rent for " + period.String(),
				Amount:      balance,
				Category:    types.LineItemCategoryRent,
				BaseModel:   types.GetDefaultBaseModel(ctx),
			},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	inv.RecalculateTotals()
	s.NoError(s.GetStores().InvoiceRepo.Create(ctx, inv))
	return inv
}

func (s *InvoiceServiceSuite) TestGenerateInvoice() {
	resp, err := s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)
	inv := resp.Invoice

	s.Equal(types.InvoiceStatusReady, inv.InvoiceStatus)
	s.Len(inv.LineItems, 1)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(1000)))
	s.True(inv.BalanceAmount.Equal(decimal.NewFromInt(1000)))
	s.True(inv.TotalPaid.IsZero())
	s.Equal(types.BillingPeriod("2025-11"), inv.BillingPeriod)
	s.Equal(5, inv.DueDate.Day())
	s.NotEmpty(inv.InvoiceNumber)

	// Rent posts a receivable debit and an income credit.
	entries := s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore).Entries()
	s.Len(entries, 2)

	// READY invoices notify the tenant.
	notifications := s.GetStores().NotificationRepo.(*testutil.InMemoryNotificationStore).All(s.GetContext())
	s.Len(notifications, 1)
	s.Equal(types.NotificationTypeInvoiceIssued, notifications[0].Type)
	s.Equal(s.tenant.ID, notifications[0].RecipientID)
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceTotalsInvariant() {
	resp, err := s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)
	inv := resp.Invoice

	sum := decimal.Zero
	for _, item := range inv.LineItems {
		sum = sum.Add(item.Amount)
	}
	s.True(inv.TotalAmount.Equal(types.RoundMoney(sum)))
	s.True(inv.BalanceAmount.Equal(types.RoundMoney(inv.TotalAmount.Sub(inv.TotalPaid))))
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceDuplicate() {
	_, err := s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)

	_, err = s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))

	count, err := s.GetStores().InvoiceRepo.Count(s.GetContext(), types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(1, count)
}

func (s *InvoiceServiceSuite) TestConsolidationSum() {
	a := s.seedInvoice("inv_a", "2025-09", decimal.NewFromInt(500), types.InvoiceStatusOverdue)
	b := s.seedInvoice("inv_b", "2025-10", decimal.NewFromInt(300), types.InvoiceStatusOverdue)

	resp, err := s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)
	inv := resp.Invoice

	forwarded := lo.Filter(inv.LineItems, func(item *invoice.LineItem, _ int) bool {
		return item.Category == types.LineItemCategoryBalanceBroughtForward
	})
	s.Len(forwarded, 1)
	s.True(forwarded[0].Amount.Equal(decimal.NewFromInt(800)))
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(1800)))

	for _, src := range []*invoice.Invoice{a, b} {
		got, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), src.ID)
		s.NoError(err)
		s.Equal(types.InvoiceStatusConsolidated, got.InvoiceStatus)
		s.True(got.BalanceForwarded)
		s.Equal(inv.ID, got.ConsolidatedInto)
	}
	s.Len(inv.Consolidation, 2)
}

func (s *InvoiceServiceSuite) TestConsolidationItemized() {
	s.GetConfig().Billing.ConsolidationMethod = types.ConsolidationMethodItemized
	defer func() {
		s.GetConfig().Billing.ConsolidationMethod = types.ConsolidationMethodSum
	}()

	s.seedInvoice("inv_a", "2025-09", decimal.NewFromInt(500), types.InvoiceStatusOverdue)
	s.seedInvoice("inv_b", "2025-10", decimal.NewFromInt(300), types.InvoiceStatusOverdue)

	resp, err := s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)
	inv := resp.Invoice

	forwarded := lo.Filter(inv.LineItems, func(item *invoice.LineItem, _ int) bool {
		return item.Category == types.LineItemCategoryBalanceBroughtForward
	})
	s.Len(forwarded, 2)
	s.True(forwarded[0].Amount.Equal(decimal.NewFromInt(500)))
	s.Equal("inv_a", forwarded[0].SourceInvoiceID)
	s.Equal(types.BillingPeriod("2025-09"), forwarded[0].SourcePeriod)
	s.True(forwarded[1].Amount.Equal(decimal.NewFromInt(300)))
	s.Equal("inv_b", forwarded[1].SourceInvoiceID)

	s.Len(inv.AllocationRules, 2)
	s.Equal(1, inv.AllocationRules[0].Priority)
	s.Equal("inv_a", inv.AllocationRules[0].InvoiceID)
	s.Equal(2, inv.AllocationRules[1].Priority)
	s.Equal("inv_b", inv.AllocationRules[1].InvoiceID)
}

func (s *InvoiceServiceSuite) TestConsolidationSkipsForwardedAndSettled() {
	s.seedInvoice("inv_paid", "2025-08", decimal.NewFromInt(400), types.InvoiceStatusPaid)
	forwarded := s.seedInvoice("inv_fwd", "2025-09", decimal.NewFromInt(250), types.InvoiceStatusOverdue)
	forwarded.BalanceForwarded = true
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), forwarded))
	s.seedInvoice("inv_open", "2025-10", decimal.NewFromInt(300), types.InvoiceStatusOverdue)

	resp, err := s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)

	s.Len(resp.Invoice.Consolidation, 1)
	s.Equal("inv_open", resp.Invoice.Consolidation[0].InvoiceID)
}

func (s *InvoiceServiceSuite) TestOverpaymentCreditExceedsCharges() {
	ctx := s.GetContext()

	// Tenant holds 200 of credit; this month's charges are only 150.
	s.lease.RentAmount = decimal.NewFromInt(150)
	s.NoError(s.GetStores().LeaseRepo.Update(ctx, s.lease))
	s.NoError(s.GetStores().LedgerRepo.Create(ctx, &ledger.Entry{
		ID:        "led_seed",
		TenantID:  s.tenant.ID,
		EntryType: types.LedgerEntryTypeCredit,
		Account:   types.LedgerAccountTenantCredit,
		Amount:    decimal.NewFromInt(200),
		EntryDate: s.GetNow(),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))

	resp, err := s.service.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)
	inv := resp.Invoice

	s.True(inv.TotalAmount.IsZero())
	s.True(inv.BalanceAmount.IsZero())
	s.True(inv.OverpaidAmount.Equal(decimal.NewFromInt(50)))

	creditLines := lo.Filter(inv.LineItems, func(item *invoice.LineItem, _ int) bool {
		return item.Category == types.LineItemCategoryOverpaymentCredit
	})
	s.Len(creditLines, 1)
	s.True(creditLines[0].Amount.Equal(decimal.NewFromInt(-200)))

	// The full 200 was consumed and the 50 excess re-credited.
	balance, err := s.ledgerService.GetTenantCreditBalance(ctx, s.tenant.ID)
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(50)))
}

func (s *InvoiceServiceSuite) TestOverpaymentCreditPartial() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().LedgerRepo.Create(ctx, &ledger.Entry{
		ID:        "led_seed",
		TenantID:  s.tenant.ID,
		EntryType: types.LedgerEntryTypeCredit,
		Account:   types.LedgerAccountTenantCredit,
		Amount:    decimal.NewFromInt(200),
		EntryDate: s.GetNow(),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}))

	resp, err := s.service.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)
	inv := resp.Invoice

	// Rent 1000 less 200 credit.
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(800)))
	s.True(inv.OverpaidAmount.IsZero())

	balance, err := s.ledgerService.GetTenantCreditBalance(ctx, s.tenant.ID)
	s.NoError(err)
	s.True(balance.IsZero())
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceWithMeteredUtilities() {
	ctx := s.GetContext()
	s.lease.Utilities = []lease.UtilityConfig{
		{Name: "Water", Metered: true, Rate: decimal.NewFromFloat(2.5), LastReading: decimal.NewFromInt(100)},
		{Name: "Security", Metered: false, FlatAmount: decimal.NewFromInt(50)},
	}
	s.NoError(s.GetStores().LeaseRepo.Update(ctx, s.lease))

	resp, err := s.service.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)
	inv := resp.Invoice

	s.Equal(types.InvoiceStatusPendingUtilities, inv.InvoiceStatus)

	// Flat utilities bill immediately; metered ones wait for readings.
	s.Len(inv.LineItems, 2)
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(1050)))

	tkt, err := s.GetStores().TicketRepo.GetOpenByPropertyAndPeriod(ctx, s.property.ID, "2025-11")
	s.NoError(err)
	s.Equal(1, tkt.TotalTasks)

	tasks, err := s.GetStores().TaskRepo.ListByTicket(ctx, tkt.ID)
	s.NoError(err)
	s.Len(tasks, 1)
	s.Equal("Water", tasks[0].UtilityName)
	s.Equal(types.TaskStatusAwaitingInput, tasks[0].TaskStatus)
	s.True(tasks[0].PreviousReading.Equal(decimal.NewFromInt(100)))

	// Pending invoices do not notify until finalized.
	notifications := s.GetStores().NotificationRepo.(*testutil.InMemoryNotificationStore).All(ctx)
	s.Empty(notifications)
}

func (s *InvoiceServiceSuite) TestForceRegenerationReversesConsolidation() {
	ctx := s.GetContext()
	src := s.seedInvoice("inv_src", "2025-10", decimal.NewFromInt(300), types.InvoiceStatusOverdue)

	first, err := s.service.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
	})
	s.NoError(err)

	got, err := s.GetStores().InvoiceRepo.Get(ctx, src.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusConsolidated, got.InvoiceStatus)

	second, err := s.service.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-11",
		Force:         true,
	})
	s.NoError(err)
	s.NotEqual(first.Invoice.ID, second.Invoice.ID)

	// The old invoice and its ledger entries are gone.
	_, err = s.GetStores().InvoiceRepo.Get(ctx, first.Invoice.ID)
	s.True(ierr.IsNotFound(err))
	for _, e := range s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore).Entries() {
		s.NotEqual(first.Invoice.ID, e.InvoiceID)
	}

	// The source was restored to OVERDUE, then re-consolidated by the
	// regenerated invoice.
	got, err = s.GetStores().InvoiceRepo.Get(ctx, src.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusConsolidated, got.InvoiceStatus)
	s.Equal(second.Invoice.ID, got.ConsolidatedInto)
	s.True(second.Invoice.TotalAmount.Equal(decimal.NewFromInt(1300)))
}

func (s *InvoiceServiceSuite) TestDueDateClampedToMonthEnd() {
	s.property.DueDay = 31
	s.NoError(s.GetStores().PropertyRepo.(*testutil.InMemoryPropertyStore).Update(s.GetContext(), s.property.ID, s.property))

	resp, err := s.service.GenerateInvoice(s.GetContext(), &dto.GenerateInvoiceRequest{
		LeaseID:       s.lease.ID,
		BillingPeriod: "2025-02",
	})
	s.NoError(err)
	s.Equal(28, resp.Invoice.DueDate.Day())
	s.Equal(time.February, resp.Invoice.DueDate.Month())
}
