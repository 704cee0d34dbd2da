package service

import (
	"context"
	"time"

	"github.com/leaseledger/leaseledger/internal/cache"
	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/samber/lo"
)

// BillingRunService walks every active lease for a billing period and
// generates its invoice. Runs are best-effort: one lease's failure is
// recorded and the loop continues.
type BillingRunService interface {
	ProcessAllLeases(ctx context.Context, req *dto.BillingRunRequest) (*dto.BillingRunResponse, error)
}

type billingRunService struct {
	ServiceParams
	InvoiceService      InvoiceService
	NotificationService NotificationService
}

func NewBillingRunService(params ServiceParams, invoiceService InvoiceService, notificationService NotificationService) BillingRunService {
	return &billingRunService{
		ServiceParams:       params,
		InvoiceService:      invoiceService,
		NotificationService: notificationService,
	}
}

func (s *billingRunService) ProcessAllLeases(ctx context.Context, req *dto.BillingRunRequest) (*dto.BillingRunResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	leases, err := s.LeaseRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.BillingRunResponse{
		RunID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_RUN),
		BillingPeriod: req.BillingPeriod,
	}
	generated := make(map[string][]*invoice.Invoice) // property id -> invoices

	for _, l := range leases {
		res, err := s.InvoiceService.GenerateInvoice(ctx, &dto.GenerateInvoiceRequest{
			LeaseID:       l.ID,
			BillingPeriod: req.BillingPeriod,
			AsOf:          lo.ToPtr(asOf),
		})
		if err != nil {
			if ierr.IsAlreadyExists(err) {
				resp.SkippedLeaseIDs = append(resp.SkippedLeaseIDs, l.ID)
				continue
			}
			s.Logger.Errorw("lease failed during billing run",
				"run_id", resp.RunID,
				"lease_id", l.ID,
				"error", err)
			resp.Errors = append(resp.Errors, dto.BillingRunError{
				LeaseID: l.ID,
				Error:   err.Error(),
			})
			continue
		}

		resp.GeneratedInvoiceIDs = append(resp.GeneratedInvoiceIDs, res.Invoice.ID)
		generated[l.PropertyID] = append(generated[l.PropertyID], res.Invoice)
	}

	s.queueLandlordSummaries(ctx, types.BillingPeriod(req.BillingPeriod), generated)
	s.queueExpiryWarnings(ctx, asOf, leases)

	s.Logger.Infow("completed billing run",
		"run_id", resp.RunID,
		"billing_period", req.BillingPeriod,
		"generated", len(resp.GeneratedInvoiceIDs),
		"skipped", len(resp.SkippedLeaseIDs),
		"failed", len(resp.Errors))
	return resp, nil
}

// queueLandlordSummaries sends each landlord one summary per property that
// had invoices generated. Failures here are logged, not folded into the run
// result; the invoices themselves are already committed.
func (s *billingRunService) queueLandlordSummaries(ctx context.Context, period types.BillingPeriod, generated map[string][]*invoice.Invoice) {
	for propertyID, invoices := range generated {
		prop, err := s.getProperty(ctx, propertyID)
		if err != nil {
			s.Logger.Errorw("failed to load property for landlord summary",
				"property_id", propertyID,
				"error", err)
			continue
		}
		if err := s.NotificationService.QueueLandlordSummary(ctx, prop, period, invoices); err != nil {
			s.Logger.Errorw("failed to queue landlord summary",
				"property_id", propertyID,
				"error", err)
		}
	}
}

// queueExpiryWarnings warns tenants whose leases end within the configured
// warning window.
func (s *billingRunService) queueExpiryWarnings(ctx context.Context, asOf time.Time, leases []*lease.Lease) {
	window := time.Duration(s.Config.Billing.LeaseExpiryWarningDays) * 24 * time.Hour
	for _, l := range leases {
		if !l.ExpiresWithin(asOf, window) {
			continue
		}
		if err := s.NotificationService.QueueLeaseExpiry(ctx, l); err != nil {
			s.Logger.Errorw("failed to queue lease expiry warning",
				"lease_id", l.ID,
				"error", err)
		}
	}
}

func (s *billingRunService) getProperty(ctx context.Context, id string) (*property.Property, error) {
	key := cache.Key(cache.PrefixProperty, id)
	if cached, ok := s.Cache.Get(ctx, key); ok {
		if prop, ok := cached.(*property.Property); ok {
			return prop, nil
		}
	}

	prop, err := s.PropertyRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, key, prop, snapshotCacheExpiry)
	return prop, nil
}
