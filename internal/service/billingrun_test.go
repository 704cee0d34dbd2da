package service

import (
	"testing"
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/domain/tenant"
	"github.com/leaseledger/leaseledger/internal/dto"
	"github.com/leaseledger/leaseledger/internal/testutil"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingRunServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        BillingRunService
	invoiceService InvoiceService
}

func TestBillingRunService(t *testing.T) {
	suite.Run(t, new(BillingRunServiceSuite))
}

func (s *BillingRunServiceSuite) SetupTest() {
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
	s.invoiceService = NewInvoiceService(params, ledgerService, notificationService)
	s.service = NewBillingRunService(params, s.invoiceService, notificationService)

	s.setupTestData()
}

func (s *BillingRunServiceSuite) setupTestData() {
	ctx := s.GetContext()

	s.NoError(s.GetStores().PropertyRepo.Create(ctx, &property.Property{
		ID:         "prop_test",
		Name:       "Sunset Court",
		LandlordID: "landlord_test",
		DueDay:     5,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}))

	for i, id := range []string{"tnt_a", "tnt_b"} {
		s.NoError(s.GetStores().TenantRepo.Create(ctx, &tenant.Tenant{
			ID:        id,
			Name:      "Tenant " + id,
			BaseModel: types.GetDefaultBaseModel(ctx),
		}))
		s.NoError(s.GetStores().LeaseRepo.Create(ctx, &lease.Lease{
			ID:         "lease_" + id,
			TenantID:   id,
			PropertyID: "prop_test",
			UnitID:     "unit_" + id,
			RentAmount: decimal.NewFromInt(int64(1000 + i*500)),
			StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Active:     true,
			BaseModel:  types.GetDefaultBaseModel(ctx),
		}))
	}
}

func (s *BillingRunServiceSuite) TestRunGeneratesAllActiveLeases() {
	ctx := s.GetContext()

	resp, err := s.service.ProcessAllLeases(ctx, &dto.BillingRunRequest{
		BillingPeriod: "2025-11",
	})
	s.NoError(err)

	s.Len(resp.GeneratedInvoiceIDs, 2)
	s.Empty(resp.SkippedLeaseIDs)
	s.Empty(resp.Errors)
	s.NotEmpty(resp.RunID)

	count, err := s.GetStores().InvoiceRepo.Count(ctx, types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(2, count)
}

func (s *BillingRunServiceSuite) TestRerunSkipsExistingInvoices() {
	ctx := s.GetContext()

	first, err := s.service.ProcessAllLeases(ctx, &dto.BillingRunRequest{BillingPeriod: "2025-11"})
	s.NoError(err)
	s.Len(first.GeneratedInvoiceIDs, 2)

	second, err := s.service.ProcessAllLeases(ctx, &dto.BillingRunRequest{BillingPeriod: "2025-11"})
	s.NoError(err)
	s.Empty(second.GeneratedInvoiceIDs)
	s.ElementsMatch([]string{"lease_tnt_a", "lease_tnt_b"}, second.SkippedLeaseIDs)
	s.Empty(second.Errors)

	count, err := s.GetStores().InvoiceRepo.Count(ctx, types.NewNoLimitInvoiceFilter())
	s.NoError(err)
	s.Equal(2, count)
}

func (s *BillingRunServiceSuite) TestInactiveLeaseIgnored() {
	ctx := s.GetContext()
	s.NoError(s.GetStores().LeaseRepo.Create(ctx, &lease.Lease{
		ID:         "lease_ended",
		TenantID:   "tnt_a",
		PropertyID: "prop_test",
		UnitID:     "unit_x",
		RentAmount: decimal.NewFromInt(700),
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:     false,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}))

	resp, err := s.service.ProcessAllLeases(ctx, &dto.BillingRunRequest{BillingPeriod: "2025-11"})
	s.NoError(err)
	s.Len(resp.GeneratedInvoiceIDs, 2)
}

func (s *BillingRunServiceSuite) TestLandlordSummaryQueued() {
	ctx := s.GetContext()

	_, err := s.service.ProcessAllLeases(ctx, &dto.BillingRunRequest{BillingPeriod: "2025-11"})
	s.NoError(err)

	all := s.GetStores().NotificationRepo.(*testutil.InMemoryNotificationStore).All(ctx)
	var summaryCount, issuedCount int
	for _, n := range all {
		switch n.Type {
		case types.NotificationTypeLandlordSummary:
			summaryCount++
			s.Equal("landlord_test", n.RecipientID)
			s.Contains(n.Body, "2 invoice(s)")
			// Rent 1000 + 1500.
			s.Contains(n.Body, "2500.00")
		case types.NotificationTypeInvoiceIssued:
			issuedCount++
		}
	}
	s.Equal(1, summaryCount)
	s.Equal(2, issuedCount)
}

func (s *BillingRunServiceSuite) TestLeaseExpiryWarningQueued() {
	ctx := s.GetContext()
	asOf := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	// Ends 30 days out, inside the 60-day warning window.
	expiring, err := s.GetStores().LeaseRepo.Get(ctx, "lease_tnt_a")
	s.NoError(err)
	expiring.EndDate = lo.ToPtr(asOf.AddDate(0, 0, 30))
	s.NoError(s.GetStores().LeaseRepo.Update(ctx, expiring))

	// Ends a year out, well outside the window.
	distant, err := s.GetStores().LeaseRepo.Get(ctx, "lease_tnt_b")
	s.NoError(err)
	distant.EndDate = lo.ToPtr(asOf.AddDate(1, 0, 0))
	s.NoError(s.GetStores().LeaseRepo.Update(ctx, distant))

	_, err = s.service.ProcessAllLeases(ctx, &dto.BillingRunRequest{
		BillingPeriod: "2025-11",
		AsOf:          lo.ToPtr(asOf),
	})
	s.NoError(err)

	all := s.GetStores().NotificationRepo.(*testutil.InMemoryNotificationStore).All(ctx)
	var warned []string
	for _, n := range all {
		if n.Type == types.NotificationTypeLeaseExpiry {
			warned = append(warned, n.RecipientID)
		}
	}
	s.Equal([]string{"tnt_a"}, warned)
}
