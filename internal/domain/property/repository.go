package property

import "context"

// Repository defines the interface for property persistence operations
type Repository interface {
	// Create creates a new property
	Create(ctx context.Context, property *Property) error

	// Get retrieves a property by ID
	Get(ctx context.Context, id string) (*Property, error)

	// List retrieves all properties
	List(ctx context.Context) ([]*Property, error)

	// CreateUnit creates a new unit under a property
	CreateUnit(ctx context.Context, unit *Unit) error

	// GetUnit retrieves a unit by ID
	GetUnit(ctx context.Context, id string) (*Unit, error)
}
