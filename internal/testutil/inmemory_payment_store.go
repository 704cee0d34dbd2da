package testutil

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/domain/payment"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment repository
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPaymentStore) List(ctx context.Context, filter *types.PaymentFilter) ([]*payment.Payment, error) {
	return s.InMemoryStore.List(ctx, filter, paymentFilterFn, paymentSortFn)
}

func (s *InMemoryPaymentStore) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, paymentFilterFn)
}

func paymentFilterFn(_ context.Context, p *payment.Payment, filter interface{}) bool {
	f, ok := filter.(*types.PaymentFilter)
	if !ok || f == nil {
		return p.Status == types.StatusPublished
	}

	if p.Status != f.GetStatus() {
		return false
	}
	if f.TenantID != nil && p.TenantID != *f.TenantID {
		return false
	}
	if f.InvoiceID != nil && p.InvoiceID != *f.InvoiceID {
		return false
	}
	if f.Reference != nil && p.Reference != *f.Reference {
		return false
	}
	return true
}

func paymentSortFn(i, j *payment.Payment) bool {
	return i.CreatedAt.Before(j.CreatedAt)
}
