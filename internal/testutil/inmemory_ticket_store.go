package testutil

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/domain/ticket"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
)

// InMemoryTicketStore implements ticket.Repository
type InMemoryTicketStore struct {
	*InMemoryStore[*ticket.Ticket]
}

// NewInMemoryTicketStore creates a new in-memory ticket repository
func NewInMemoryTicketStore() *InMemoryTicketStore {
	return &InMemoryTicketStore{
		InMemoryStore: NewInMemoryStore[*ticket.Ticket](),
	}
}

func (s *InMemoryTicketStore) Create(ctx context.Context, t *ticket.Ticket) error {
	return s.InMemoryStore.Create(ctx, t.ID, t)
}

func (s *InMemoryTicketStore) Get(ctx context.Context, id string) (*ticket.Ticket, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryTicketStore) GetOpenByPropertyAndPeriod(ctx context.Context, propertyID string, period types.BillingPeriod) (*ticket.Ticket, error) {
	tickets, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, t *ticket.Ticket, _ interface{}) bool {
		return t.PropertyID == propertyID && t.BillingPeriod == period && t.TicketStatus == types.TicketStatusOpen
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ierr.NewError("ticket not found").
			WithHintf("No open ticket for property %s in period %s", propertyID, period).
			Mark(ierr.ErrNotFound)
	}
	return tickets[0], nil
}

func (s *InMemoryTicketStore) Update(ctx context.Context, t *ticket.Ticket) error {
	return s.InMemoryStore.Update(ctx, t.ID, t)
}

func (s *InMemoryTicketStore) List(ctx context.Context, filter *types.TicketFilter) ([]*ticket.Ticket, error) {
	return s.InMemoryStore.List(ctx, filter, func(_ context.Context, t *ticket.Ticket, f interface{}) bool {
		tf, ok := f.(*types.TicketFilter)
		if !ok || tf == nil {
			return true
		}
		if tf.PropertyID != nil && t.PropertyID != *tf.PropertyID {
			return false
		}
		if tf.BillingPeriod != nil && t.BillingPeriod != *tf.BillingPeriod {
			return false
		}
		if tf.TicketStatus != nil && t.TicketStatus != *tf.TicketStatus {
			return false
		}
		return true
	}, func(i, j *ticket.Ticket) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

// InMemoryTaskStore implements ticket.TaskRepository
type InMemoryTaskStore struct {
	*InMemoryStore[*ticket.Task]
}

// NewInMemoryTaskStore creates a new in-memory task repository
func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{
		InMemoryStore: NewInMemoryStore[*ticket.Task](),
	}
}

func (s *InMemoryTaskStore) Create(ctx context.Context, t *ticket.Task) error {
	return s.InMemoryStore.Create(ctx, t.ID, t)
}

func (s *InMemoryTaskStore) Get(ctx context.Context, id string) (*ticket.Task, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryTaskStore) Update(ctx context.Context, t *ticket.Task) error {
	return s.InMemoryStore.Update(ctx, t.ID, t)
}

func (s *InMemoryTaskStore) ListByTicket(ctx context.Context, ticketID string) ([]*ticket.Task, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, t *ticket.Task, _ interface{}) bool {
		return t.TicketID == ticketID
	}, func(i, j *ticket.Task) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemoryTaskStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*ticket.Task, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, t *ticket.Task, _ interface{}) bool {
		return t.InvoiceID == invoiceID
	}, func(i, j *ticket.Task) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}
