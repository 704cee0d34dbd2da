package testutil

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice repository
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryInvoiceStore) GetByLeaseAndPeriod(ctx context.Context, leaseID string, period types.BillingPeriod) (*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.LeaseID == leaseID && inv.BillingPeriod == period && inv.Status == types.StatusPublished
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHintf("No invoice for lease %s in period %s", leaseID, period).
			Mark(ierr.ErrNotFound)
	}
	return invoices[0], nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	return s.InMemoryStore.Update(ctx, inv.ID, inv)
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func invoiceFilterFn(_ context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return inv.Status == types.StatusPublished
	}

	if inv.Status != f.GetStatus() {
		return false
	}
	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if f.TenantID != nil && inv.TenantID != *f.TenantID {
		return false
	}
	if f.LeaseID != nil && inv.LeaseID != *f.LeaseID {
		return false
	}
	if f.PropertyID != nil && inv.PropertyID != *f.PropertyID {
		return false
	}
	if f.BillingPeriod != nil && inv.BillingPeriod != *f.BillingPeriod {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if f.PeriodBefore != nil && !inv.BillingPeriod.Before(*f.PeriodBefore) {
		return false
	}
	if f.BalanceForward != nil && inv.BalanceForwarded != *f.BalanceForward {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	return i.CreatedAt.Before(j.CreatedAt)
}
