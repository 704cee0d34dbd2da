package ticket

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/types"
)

// Repository defines the interface for ticket persistence operations
type Repository interface {
	// Create creates a new ticket
	Create(ctx context.Context, ticket *Ticket) error

	// Get retrieves a ticket by ID
	Get(ctx context.Context, id string) (*Ticket, error)

	// GetOpenByPropertyAndPeriod retrieves the open ticket for a property and
	// billing period, if one exists
	GetOpenByPropertyAndPeriod(ctx context.Context, propertyID string, period types.BillingPeriod) (*Ticket, error)

	// Update updates an existing ticket
	Update(ctx context.Context, ticket *Ticket) error

	// List retrieves tickets based on filter criteria
	List(ctx context.Context, filter *types.TicketFilter) ([]*Ticket, error)
}

// TaskRepository defines the interface for task persistence operations
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *Task) error

	// Get retrieves a task by ID
	Get(ctx context.Context, id string) (*Task, error)

	// Update updates an existing task
	Update(ctx context.Context, task *Task) error

	// ListByTicket retrieves every task belonging to a ticket
	ListByTicket(ctx context.Context, ticketID string) ([]*Task, error)

	// ListByInvoice retrieves every task referencing an invoice
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Task, error)
}
