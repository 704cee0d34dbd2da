package documentstore

import (
	"context"

	domainTicket "github.com/leaseledger/leaseledger/internal/domain/ticket"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
)

type ticketRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewTicketRepository(client document.IClient, logger *logger.Logger) domainTicket.Repository {
	return &ticketRepository{
		collection: document.NewCollection(client, document.CollectionTickets),
		logger:     logger,
	}
}

func (r *ticketRepository) Create(ctx context.Context, t *domainTicket.Ticket) error {
	return r.collection.Insert(ctx, t.ID, t)
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*domainTicket.Ticket, error) {
	var t domainTicket.Ticket
	if err := r.collection.FindByID(ctx, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ticketRepository) GetOpenByPropertyAndPeriod(ctx context.Context, propertyID string, period types.BillingPeriod) (*domainTicket.Ticket, error) {
	qb := newQueryBuilder().
		WhereRecordStatus(types.StatusPublished).
		WhereField("property_id", propertyID).
		WhereField("billing_period", string(period)).
		WhereField("ticket_status", string(types.TicketStatusOpen))

	docs, err := r.collection.Find(ctx, qb.whereClause()+" LIMIT 1", qb.Args()...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ierr.NewError("ticket not found").
			WithHintf("No open ticket for property %s in period %s", propertyID, period).
			Mark(ierr.ErrNotFound)
	}

	var t domainTicket.Ticket
	if err := document.Unmarshal(docs[0], &t); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode ticket document").
			Mark(ierr.ErrSystem)
	}
	return &t, nil
}

func (r *ticketRepository) Update(ctx context.Context, t *domainTicket.Ticket) error {
	return r.collection.Replace(ctx, t.ID, t)
}

func (r *ticketRepository) List(ctx context.Context, filter *types.TicketFilter) ([]*domainTicket.Ticket, error) {
	qb := newQueryBuilder()
	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}

	qb.WhereRecordStatus(qf.GetStatus())
	if filter != nil {
		if filter.PropertyID != nil {
			qb.WhereField("property_id", *filter.PropertyID)
		}
		if filter.BillingPeriod != nil {
			qb.WhereField("billing_period", string(*filter.BillingPeriod))
		}
		if filter.TicketStatus != nil {
			qb.WhereField("ticket_status", string(*filter.TicketStatus))
		}
	}

	docs, err := r.collection.Find(ctx, qb.Tail(qf), qb.Args()...)
	if err != nil {
		return nil, err
	}

	tickets := make([]*domainTicket.Ticket, 0, len(docs))
	for _, doc := range docs {
		var t domainTicket.Ticket
		if err := document.Unmarshal(doc, &t); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode ticket document").
				Mark(ierr.ErrSystem)
		}
		tickets = append(tickets, &t)
	}
	return tickets, nil
}

type taskRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewTaskRepository(client document.IClient, logger *logger.Logger) domainTicket.TaskRepository {
	return &taskRepository{
		collection: document.NewCollection(client, document.CollectionTasks),
		logger:     logger,
	}
}

func (r *taskRepository) Create(ctx context.Context, t *domainTicket.Task) error {
	return r.collection.Insert(ctx, t.ID, t)
}

func (r *taskRepository) Get(ctx context.Context, id string) (*domainTicket.Task, error) {
	var t domainTicket.Task
	if err := r.collection.FindByID(ctx, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) Update(ctx context.Context, t *domainTicket.Task) error {
	return r.collection.Replace(ctx, t.ID, t)
}

func (r *taskRepository) ListByTicket(ctx context.Context, ticketID string) ([]*domainTicket.Task, error) {
	return r.findTasks(ctx, "ticket_id", ticketID)
}

func (r *taskRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domainTicket.Task, error) {
	return r.findTasks(ctx, "invoice_id", invoiceID)
}

func (r *taskRepository) findTasks(ctx context.Context, field, value string) ([]*domainTicket.Task, error) {
	qb := newQueryBuilder().
		WhereRecordStatus(types.StatusPublished).
		WhereField(field, value)

	docs, err := r.collection.Find(ctx, qb.whereClause()+" ORDER BY doc->>'created_at' ASC", qb.Args()...)
	if err != nil {
		return nil, err
	}

	tasks := make([]*domainTicket.Task, 0, len(docs))
	for _, doc := range docs {
		var t domainTicket.Task
		if err := document.Unmarshal(doc, &t); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode task document").
				Mark(ierr.ErrSystem)
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}
