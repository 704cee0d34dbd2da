package documentstore

import (
	"context"

	domainPayment "github.com/leaseledger/leaseledger/internal/domain/payment"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
)

type paymentRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewPaymentRepository(client document.IClient, logger *logger.Logger) domainPayment.Repository {
	return &paymentRepository{
		collection: document.NewCollection(client, document.CollectionPayments),
		logger:     logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *domainPayment.Payment) error {
	r.logger.Debugw("recording payment",
		"payment_id", p.ID,
		"tenant_id", p.TenantID,
		"invoice_id", p.InvoiceID,
		"amount", p.Amount,
	)
	return r.collection.Insert(ctx, p.ID, p)
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*domainPayment.Payment, error) {
	var p domainPayment.Payment
	if err := r.collection.FindByID(ctx, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) List(ctx context.Context, filter *types.PaymentFilter) ([]*domainPayment.Payment, error) {
	qb := paymentQuery(filter)

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	docs, err := r.collection.Find(ctx, qb.Tail(qf), qb.Args()...)
	if err != nil {
		return nil, err
	}

	payments := make([]*domainPayment.Payment, 0, len(docs))
	for _, doc := range docs {
		var p domainPayment.Payment
		if err := document.Unmarshal(doc, &p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode payment document").
				Mark(ierr.ErrSystem)
		}
		payments = append(payments, &p)
	}
	return payments, nil
}

func (r *paymentRepository) Count(ctx context.Context, filter *types.PaymentFilter) (int, error) {
	qb := paymentQuery(filter)
	return r.collection.Count(ctx, qb.whereClause(), qb.Args()...)
}

func paymentQuery(filter *types.PaymentFilter) *queryBuilder {
	qb := newQueryBuilder()
	if filter == nil {
		return qb.WhereRecordStatus(types.StatusPublished)
	}

	qb.WhereRecordStatus(filter.GetStatus())
	if filter.TenantID != nil {
		qb.WhereField("tenant_id", *filter.TenantID)
	}
	if filter.InvoiceID != nil {
		qb.WhereField("invoice_id", *filter.InvoiceID)
	}
	if filter.Reference != nil {
		qb.WhereField("reference", *filter.Reference)
	}
	return qb
}
