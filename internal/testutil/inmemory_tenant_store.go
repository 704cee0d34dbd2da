package testutil

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/domain/tenant"
)

// InMemoryTenantStore implements tenant.Repository
type InMemoryTenantStore struct {
	*InMemoryStore[*tenant.Tenant]
}

// NewInMemoryTenantStore creates a new in-memory tenant repository
func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		InMemoryStore: NewInMemoryStore[*tenant.Tenant](),
	}
}

func (s *InMemoryTenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	return s.InMemoryStore.Create(ctx, t.ID, t)
}

func (s *InMemoryTenantStore) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryTenantStore) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(i, j *tenant.Tenant) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}
