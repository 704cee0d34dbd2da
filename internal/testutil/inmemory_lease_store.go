package testutil

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/domain/lease"
)

// InMemoryLeaseStore implements lease.Repository
type InMemoryLeaseStore struct {
	*InMemoryStore[*lease.Lease]
}

// NewInMemoryLeaseStore creates a new in-memory lease repository
func NewInMemoryLeaseStore() *InMemoryLeaseStore {
	return &InMemoryLeaseStore{
		InMemoryStore: NewInMemoryStore[*lease.Lease](),
	}
}

func (s *InMemoryLeaseStore) Create(ctx context.Context, l *lease.Lease) error {
	return s.InMemoryStore.Create(ctx, l.ID, l)
}

func (s *InMemoryLeaseStore) Get(ctx context.Context, id string) (*lease.Lease, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryLeaseStore) Update(ctx context.Context, l *lease.Lease) error {
	return s.InMemoryStore.Update(ctx, l.ID, l)
}

func (s *InMemoryLeaseStore) ListActive(ctx context.Context) ([]*lease.Lease, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, l *lease.Lease, _ interface{}) bool {
		return l.Active
	}, func(i, j *lease.Lease) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemoryLeaseStore) ListByTenant(ctx context.Context, tenantID string) ([]*lease.Lease, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, l *lease.Lease, _ interface{}) bool {
		return l.TenantID == tenantID
	}, func(i, j *lease.Lease) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}
