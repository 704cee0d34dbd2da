package service

import (
	"testing"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/testutil"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LedgerService
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewLedgerService(ServiceParams{
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
	})
}

func (s *LedgerServiceSuite) seedInvoice() *invoice.Invoice {
	ctx := s.GetContext()
	inv := &invoice.Invoice{
		ID:            "inv_test",
		InvoiceNumber: "INV-test",
		PropertyID:    "prop_test",
		TenantID:      "tnt_test",
		LeaseID:       "lease_test",
		BillingPeriod: "2025-11",
		InvoiceStatus: types.InvoiceStatusPendingUtilities,
		LineItems: []*invoice.LineItem{
			{
				ID:          "line_rent",
				InvoiceID:   "inv_test",
				Description: "Rent for 2025-11",
				Amount:      decimal.NewFromInt(1000),
				Category:    types.LineItemCategoryRent,
				BaseModel:   types.GetDefaultBaseModel(ctx),
			},
			{
				ID:          "line_fwd",
				InvoiceID:   "inv_test",
				Description: "Balance brought forward",
				Amount:      decimal.NewFromInt(200),
				Category:    types.LineItemCategoryBalanceBroughtForward,
				BaseModel:   types.GetDefaultBaseModel(ctx),
			},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	inv.RecalculateTotals()
	s.NoError(s.GetStores().InvoiceRepo.Create(ctx, inv))
	return inv
}

func (s *LedgerServiceSuite) TestPostInvoiceToLedgerBalances() {
	ctx := s.GetContext()
	inv := s.seedInvoice()

	s.NoError(s.service.PostInvoiceToLedger(ctx, inv, s.GetNow()))

	// The rent line posts a balanced pair; the forwarded balance posts
	// nothing because its receivable already lives on the source invoice.
	entries := s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore).Entries()
	s.Len(entries, 2)

	debits := decimal.Zero
	credits := decimal.Zero
	for _, e := range entries {
		switch e.EntryType {
		case types.LedgerEntryTypeDebit:
			debits = debits.Add(e.Amount)
		case types.LedgerEntryTypeCredit:
			credits = credits.Add(e.Amount)
		}
	}
	s.True(debits.Equal(credits))
	s.True(debits.Equal(decimal.NewFromInt(1000)))
}

func (s *LedgerServiceSuite) TestAddLineItemUpdatesTotals() {
	ctx := s.GetContext()
	inv := s.seedInvoice()

	updated, err := s.service.AddLineItemToInvoice(ctx, inv.ID, &invoice.LineItem{
		Description: "Water charge (20 units)",
		Amount:      decimal.NewFromInt(50),
		Category:    types.LineItemCategoryUtility,
		UtilityName: "Water",
	}, "utility reading", s.GetNow())
	s.NoError(err)

	s.Len(updated.LineItems, 3)
	s.True(updated.TotalAmount.Equal(decimal.NewFromInt(1250)))
	s.True(updated.BalanceAmount.Equal(decimal.NewFromInt(1250)))
	s.NotEmpty(updated.LineItems[2].ID)
	s.Equal(inv.ID, updated.LineItems[2].InvoiceID)

	// The utility charge posts receivable against utility income.
	entries := s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore).Entries()
	s.Len(entries, 2)
	for _, e := range entries {
		s.True(e.Amount.Equal(decimal.NewFromInt(50)))
	}
}

func (s *LedgerServiceSuite) TestRemoveLineItemReverses() {
	ctx := s.GetContext()
	inv := s.seedInvoice()

	updated, err := s.service.RemoveLineItemFromInvoice(ctx, inv.ID, "line_rent", "billing correction", s.GetNow(), false)
	s.NoError(err)

	s.Len(updated.LineItems, 1)
	s.True(updated.TotalAmount.Equal(decimal.NewFromInt(200)))

	// Reversal swaps the rent posting's sides.
	entries := s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore).Entries()
	s.Len(entries, 2)
	for _, e := range entries {
		switch e.Account {
		case types.LedgerAccountReceivable:
			s.Equal(types.LedgerEntryTypeCredit, e.EntryType)
		case types.LedgerAccountRentIncome:
			s.Equal(types.LedgerEntryTypeDebit, e.EntryType)
		}
		s.True(e.Amount.Equal(decimal.NewFromInt(1000)))
	}
}

func (s *LedgerServiceSuite) TestRemoveForwardedBalanceGuarded() {
	ctx := s.GetContext()
	inv := s.seedInvoice()

	_, err := s.service.RemoveLineItemFromInvoice(ctx, inv.ID, "line_fwd", "cleanup", s.GetNow(), false)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Explicit confirmation allows it.
	updated, err := s.service.RemoveLineItemFromInvoice(ctx, inv.ID, "line_fwd", "cleanup", s.GetNow(), true)
	s.NoError(err)
	s.Len(updated.LineItems, 1)
	s.True(updated.TotalAmount.Equal(decimal.NewFromInt(1000)))
}

func (s *LedgerServiceSuite) TestRemoveLineItemSettlesPaidStatus() {
	ctx := s.GetContext()
	inv := &invoice.Invoice{
		ID:            "inv_partial",
		InvoiceNumber: "INV-partial",
		PropertyID:    "prop_test",
		TenantID:      "tnt_test",
		LeaseID:       "lease_test",
		BillingPeriod: "2025-11",
		InvoiceStatus: types.InvoiceStatusPartiallyPaid,
		TotalPaid:     decimal.NewFromInt(100),
		LineItems: []*invoice.LineItem{
			{
				ID:          "line_rent",
				InvoiceID:   "inv_partial",
				Description: "Rent for 2025-11",
				Amount:      decimal.NewFromInt(100),
				Category:    types.LineItemCategoryRent,
				BaseModel:   types.GetDefaultBaseModel(ctx),
			},
			{
				ID:          "line_water",
				InvoiceID:   "inv_partial",
				Description: "Water charge",
				Amount:      decimal.NewFromInt(200),
				Category:    types.LineItemCategoryUtility,
				UtilityName: "Water",
				BaseModel:   types.GetDefaultBaseModel(ctx),
			},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	inv.RecalculateTotals()
	s.NoError(s.GetStores().InvoiceRepo.Create(ctx, inv))

	// Removing the unpaid charge settles the invoice; the payment already
	// covers everything that remains.
	updated, err := s.service.RemoveLineItemFromInvoice(ctx, inv.ID, "line_water", "billing correction", s.GetNow(), false)
	s.NoError(err)
	s.True(updated.BalanceAmount.IsZero())
	s.True(updated.TotalPaid.Equal(decimal.NewFromInt(100)))
	s.Equal(types.InvoiceStatusPaid, updated.InvoiceStatus)

	stored, err := s.GetStores().InvoiceRepo.Get(ctx, inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, stored.InvoiceStatus)

	// A new charge reopens it.
	reopened, err := s.service.AddLineItemToInvoice(ctx, inv.ID, &invoice.LineItem{
		Description: "Electricity charge",
		Amount:      decimal.NewFromInt(50),
		Category:    types.LineItemCategoryUtility,
		UtilityName: "Electricity",
	}, "utility reading", s.GetNow())
	s.NoError(err)
	s.True(reopened.BalanceAmount.Equal(decimal.NewFromInt(50)))
	s.Equal(types.InvoiceStatusPartiallyPaid, reopened.InvoiceStatus)
}

func (s *LedgerServiceSuite) TestAddLineItemPreservesOverpaidAmount() {
	ctx := s.GetContext()
	inv := &invoice.Invoice{
		ID:             "inv_clamped",
		InvoiceNumber:  "INV-clamped",
		PropertyID:     "prop_test",
		TenantID:       "tnt_test",
		LeaseID:        "lease_test",
		BillingPeriod:  "2025-11",
		InvoiceStatus:  types.InvoiceStatusReady,
		OverpaidAmount: decimal.NewFromInt(50),
		LineItems: []*invoice.LineItem{
			{
				ID:          "line_rent",
				InvoiceID:   "inv_clamped",
				Description: "Rent for 2025-11",
				Amount:      decimal.NewFromInt(150),
				Category:    types.LineItemCategoryRent,
				BaseModel:   types.GetDefaultBaseModel(ctx),
			},
			{
				ID:          "line_credit",
				InvoiceID:   "inv_clamped",
				Description: "Overpayment Credit Applied",
				Amount:      decimal.NewFromInt(-200),
				Category:    types.LineItemCategoryOverpaymentCredit,
				BaseModel:   types.GetDefaultBaseModel(ctx),
			},
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	inv.RecalculateTotals()
	s.True(inv.TotalAmount.IsZero())
	s.NoError(s.GetStores().InvoiceRepo.Create(ctx, inv))

	// The 50 excess already flowed back to the tenant; a later metered
	// charge shifts the subtotal but must not rewrite the audit value.
	updated, err := s.service.AddLineItemToInvoice(ctx, inv.ID, &invoice.LineItem{
		Description: "Water charge",
		Amount:      decimal.NewFromInt(30),
		Category:    types.LineItemCategoryUtility,
		UtilityName: "Water",
	}, "utility reading", s.GetNow())
	s.NoError(err)
	s.True(updated.TotalAmount.IsZero())
	s.True(updated.OverpaidAmount.Equal(decimal.NewFromInt(50)))
}

func (s *LedgerServiceSuite) TestRemoveMissingLineItem() {
	ctx := s.GetContext()
	inv := s.seedInvoice()

	_, err := s.service.RemoveLineItemFromInvoice(ctx, inv.ID, "line_missing", "cleanup", s.GetNow(), false)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *LedgerServiceSuite) TestTenantCreditAccumulates() {
	ctx := s.GetContext()

	s.NoError(s.service.PostTenantCredit(ctx, "tnt_test", decimal.NewFromInt(150), "pay_1", s.GetNow(), "Overpayment credited"))
	s.NoError(s.service.PostTenantCredit(ctx, "tnt_test", decimal.NewFromInt(50), "pay_2", s.GetNow(), "Overpayment credited"))
	s.NoError(s.service.PostTenantCredit(ctx, "tnt_other", decimal.NewFromInt(999), "pay_3", s.GetNow(), "Overpayment credited"))

	balance, err := s.service.GetTenantCreditBalance(ctx, "tnt_test")
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(200)))

	// A zero or negative amount is a no-op.
	s.NoError(s.service.PostTenantCredit(ctx, "tnt_test", decimal.Zero, "pay_4", s.GetNow(), "noop"))
	balance, err = s.service.GetTenantCreditBalance(ctx, "tnt_test")
	s.NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(200)))
}

func (s *LedgerServiceSuite) TestDeleteEntriesForInvoice() {
	ctx := s.GetContext()
	inv := s.seedInvoice()

	s.NoError(s.service.PostInvoiceToLedger(ctx, inv, s.GetNow()))
	s.NotEmpty(s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore).Entries())

	s.NoError(s.service.DeleteEntriesForInvoice(ctx, inv.ID))
	s.Empty(s.GetStores().LedgerRepo.(*testutil.InMemoryLedgerStore).Entries())
}
