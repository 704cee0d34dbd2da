package lease

import "context"

// Repository defines the interface for lease persistence operations
type Repository interface {
	// Create creates a new lease
	Create(ctx context.Context, lease *Lease) error

	// Get retrieves a lease by ID
	Get(ctx context.Context, id string) (*Lease, error)

	// Update updates an existing lease
	Update(ctx context.Context, lease *Lease) error

	// ListActive retrieves every active lease
	ListActive(ctx context.Context) ([]*Lease, error)

	// ListByTenant retrieves every lease for a tenant
	ListByTenant(ctx context.Context, tenantID string) ([]*Lease, error)
}
