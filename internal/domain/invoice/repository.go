package invoice

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/types"
)

// Repository defines the interface for invoice persistence operations.
// Line items are embedded in the invoice document and travel with it.
type Repository interface {
	// Create creates a new invoice with its line items
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByLeaseAndPeriod retrieves the invoice for a lease + billing period,
	// the idempotency lookup for invoice generation
	GetByLeaseAndPeriod(ctx context.Context, leaseID string, period types.BillingPeriod) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice; only used during forced regeneration
	Delete(ctx context.Context, id string) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
