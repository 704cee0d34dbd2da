package service

import (
	"testing"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/tenant"
	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/testutil"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       PaymentService
	ledgerService LedgerService

	tenant *tenant.Tenant
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
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
	s.ledgerService = NewLedgerService(params)
	s.service = NewPaymentService(params, s.ledgerService)

	s.tenant = &tenant.Tenant{
		ID:        "tnt_test",
		Name:      "Jane Doe",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(stores.TenantRepo.Create(s.GetContext(), s.tenant))
}

func (s *PaymentServiceSuite) seedInvoice(id string, period types.BillingPeriod, amount decimal.Decimal, status types.InvoiceStatus) *invoice.Invoice {
	ctx := s.GetContext()
	inv := &invoice.Invoice{
		ID:            id,
		InvoiceNumber: "INV-" + id,
		PropertyID:    "prop_test",
		TenantID:      s.tenant.ID,
		LeaseID:       "lease_" + id,
		BillingPeriod: period,
		InvoiceStatus: status,
		LineItems: []*invoice.LineItem{
			{
				ID:          "line_" + id,
				InvoiceID:   id,
				Description: "Rent for " + period.String(),
				Amount:      amount,
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

func (s *PaymentServiceSuite) TestAutoAllocateOldestFirst() {
	older := s.seedInvoice("inv_old", "2025-09", decimal.NewFromInt(300), types.InvoiceStatusOverdue)
	newer := s.seedInvoice("inv_new", "2025-10", decimal.NewFromInt(500), types.InvoiceStatusReady)

	resp, err := s.service.ProcessPayment(s.GetContext(), &dto.ProcessPaymentRequest{
		TenantID: s.tenant.ID,
		Amount:   decimal.NewFromInt(1000),
		Method:   types.PaymentMethodBankTransfer,
	})
	s.NoError(err)

	s.True(resp.AmountApplied.Equal(decimal.NewFromInt(800)))
	s.True(resp.CreditAmount.Equal(decimal.NewFromInt(200)))

	// One record per invoice touched plus one for the credited remainder.
	s.Len(resp.Payments, 3)
	s.Equal(older.ID, resp.Payments[0].InvoiceID)
	s.True(resp.Payments[0].Amount.Equal(decimal.NewFromInt(300)))
	s.Equal(newer.ID, resp.Payments[1].InvoiceID)
	s.True(resp.Payments[1].Amount.Equal(decimal.NewFromInt(500)))
	s.Empty(resp.Payments[2].InvoiceID)
	s.True(resp.Payments[2].Amount.Equal(decimal.NewFromInt(200)))

	for _, id := range []string{older.ID, newer.ID} {
		inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), id)
		s.NoError(err)
		s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
		s.True(inv.BalanceAmount.IsZero())
	}

	balance, err := s.ledgerService.GetTenantCreditBalance(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(200)))
}

func (s *PaymentServiceSuite) TestTargetedPartialPayment() {
	inv := s.seedInvoice("inv_a", "2025-10", decimal.NewFromInt(300), types.InvoiceStatusReady)

	resp, err := s.service.ProcessPayment(s.GetContext(), &dto.ProcessPaymentRequest{
		TenantID:        s.tenant.ID,
		Amount:          decimal.NewFromInt(100),
		Method:          types.PaymentMethodCash,
		TargetInvoiceID: inv.ID,
	})
	s.NoError(err)
	s.True(resp.AmountApplied.Equal(decimal.NewFromInt(100)))
	s.True(resp.CreditAmount.IsZero())
	s.Len(resp.Payments, 1)

	got, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPartiallyPaid, got.InvoiceStatus)
	s.True(got.TotalPaid.Equal(decimal.NewFromInt(100)))
	s.True(got.BalanceAmount.Equal(decimal.NewFromInt(200)))
}

func (s *PaymentServiceSuite) TestTargetedPaymentWalksAllocationRules() {
	ctx := s.GetContext()

	// Consolidated sources retain their balances; the target carries them as
	// itemized forwarded lines with allocation rules.
	srcA := s.seedInvoice("inv_a", "2025-09", decimal.NewFromInt(500), types.InvoiceStatusConsolidated)
	srcB := s.seedInvoice("inv_b", "2025-10", decimal.NewFromInt(300), types.InvoiceStatusConsolidated)

	target := &invoice.Invoice{
		ID:            "inv_target",
		InvoiceNumber: "INV-target",
		PropertyID:    "prop_test",
		TenantID:      s.tenant.ID,
		LeaseID:       "lease_target",
		BillingPeriod: "2025-11",
		InvoiceStatus: types.InvoiceStatusReady,
		LineItems: []*invoice.LineItem{
			{
				ID: "line_t1", InvoiceID: "inv_target", Description: "Rent for 2025-11",
				Amount: decimal.NewFromInt(1000), Category: types.LineItemCategoryRent,
				BaseModel: types.GetDefaultBaseModel(ctx),
			},
			{
				ID: "line_t2", InvoiceID: "inv_target", Description: "Balance brought forward from INV-inv_a (2025-09)",
				Amount: decimal.NewFromInt(500), Category: types.LineItemCategoryBalanceBroughtForward,
				SourceInvoiceID: srcA.ID, SourcePeriod: "2025-09",
				BaseModel: types.GetDefaultBaseModel(ctx),
			},
			{
				ID: "line_t3", InvoiceID: "inv_target", Description: "Balance brought forward from INV-inv_b (2025-10)",
				Amount: decimal.NewFromInt(300), Category: types.LineItemCategoryBalanceBroughtForward,
				SourceInvoiceID: srcB.ID, SourcePeriod: "2025-10",
				BaseModel: types.GetDefaultBaseModel(ctx),
			},
		},
		AllocationRules: []invoice.AllocationRule{
			{Priority: 1, InvoiceID: srcA.ID, BillingPeriod: "2025-09", Amount: decimal.NewFromInt(500)},
			{Priority: 2, InvoiceID: srcB.ID, BillingPeriod: "2025-10", Amount: decimal.NewFromInt(300)},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	target.RecalculateTotals()
	s.NoError(s.GetStores().InvoiceRepo.Create(ctx, target))

	resp, err := s.service.ProcessPayment(ctx, &dto.ProcessPaymentRequest{
		TenantID:        s.tenant.ID,
		Amount:          decimal.NewFromInt(600),
		Method:          types.PaymentMethodMobileMoney,
		TargetInvoiceID: target.ID,
	})
	s.NoError(err)
	s.True(resp.AmountApplied.Equal(decimal.NewFromInt(600)))

	// Priority 1 settles fully, priority 2 absorbs the rest.
	gotA, err := s.GetStores().InvoiceRepo.Get(ctx, srcA.ID)
	s.NoError(err)
	s.True(gotA.BalanceAmount.IsZero())
	s.Equal(types.InvoiceStatusConsolidated, gotA.InvoiceStatus)

	gotB, err := s.GetStores().InvoiceRepo.Get(ctx, srcB.ID)
	s.NoError(err)
	s.True(gotB.BalanceAmount.Equal(decimal.NewFromInt(200)))

	gotTarget, err := s.GetStores().InvoiceRepo.Get(ctx, target.ID)
	s.NoError(err)
	s.True(gotTarget.TotalPaid.Equal(decimal.NewFromInt(600)))
	s.True(gotTarget.BalanceAmount.Equal(decimal.NewFromInt(1200)))
	s.Equal(types.InvoiceStatusPartiallyPaid, gotTarget.InvoiceStatus)
}

func (s *PaymentServiceSuite) TestPaymentToUnknownTenant() {
	_, err := s.service.ProcessPayment(s.GetContext(), &dto.ProcessPaymentRequest{
		TenantID: "tnt_missing",
		Amount:   decimal.NewFromInt(100),
		Method:   types.PaymentMethodCash,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestPaymentWithNoOutstandingInvoices() {
	resp, err := s.service.ProcessPayment(s.GetContext(), &dto.ProcessPaymentRequest{
		TenantID: s.tenant.ID,
		Amount:   decimal.NewFromInt(150),
		Method:   types.PaymentMethodCash,
	})
	s.NoError(err)
	s.True(resp.AmountApplied.IsZero())
	s.True(resp.CreditAmount.Equal(decimal.NewFromInt(150)))

	balance, err := s.ledgerService.GetTenantCreditBalance(s.GetContext(), s.tenant.ID)
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(150)))
}

func (s *PaymentServiceSuite) TestTargetedPaymentWrongTenant() {
	other := &tenant.Tenant{ID: "tnt_other", Name: "Other", BaseModel: types.GetDefaultBaseModel(s.GetContext())}
	s.NoError(s.GetStores().TenantRepo.Create(s.GetContext(), other))
	inv := s.seedInvoice("inv_a", "2025-10", decimal.NewFromInt(300), types.InvoiceStatusReady)

	_, err := s.service.ProcessPayment(s.GetContext(), &dto.ProcessPaymentRequest{
		TenantID:        other.ID,
		Amount:          decimal.NewFromInt(100),
		Method:          types.PaymentMethodCash,
		TargetInvoiceID: inv.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
