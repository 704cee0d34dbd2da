package testutil

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/domain/property"
)

// InMemoryPropertyStore implements property.Repository
type InMemoryPropertyStore struct {
	*InMemoryStore[*property.Property]
	units *InMemoryStore[*property.Unit]
}

// NewInMemoryPropertyStore creates a new in-memory property repository
func NewInMemoryPropertyStore() *InMemoryPropertyStore {
	return &InMemoryPropertyStore{
		InMemoryStore: NewInMemoryStore[*property.Property](),
		units:         NewInMemoryStore[*property.Unit](),
	}
}

// Clear resets all stored data
func (s *InMemoryPropertyStore) Clear() {
	s.InMemoryStore.Clear()
	s.units.Clear()
}

func (s *InMemoryPropertyStore) Create(ctx context.Context, p *property.Property) error {
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPropertyStore) Get(ctx context.Context, id string) (*property.Property, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPropertyStore) List(ctx context.Context) ([]*property.Property, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(i, j *property.Property) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemoryPropertyStore) CreateUnit(ctx context.Context, u *property.Unit) error {
	return s.units.Create(ctx, u.ID, u)
}

func (s *InMemoryPropertyStore) GetUnit(ctx context.Context, id string) (*property.Unit, error) {
	return s.units.Get(ctx, id)
}
