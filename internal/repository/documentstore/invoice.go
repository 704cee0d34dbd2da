package documentstore

import (
	"context"

	domainInvoice "github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/lib/pq"
)

type invoiceRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewInvoiceRepository(client document.IClient, logger *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{
		collection: document.NewCollection(client, document.CollectionInvoices),
		logger:     logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"lease_id", inv.LeaseID,
		"billing_period", inv.BillingPeriod,
	)
	return r.collection.Insert(ctx, inv.ID, inv)
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	var inv domainInvoice.Invoice
	if err := r.collection.FindByID(ctx, id, &inv); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(domainInvoice.ErrInvoiceNotFound).
				WithHintf("Invoice %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByLeaseAndPeriod(ctx context.Context, leaseID string, period types.BillingPeriod) (*domainInvoice.Invoice, error) {
	qb := newQueryBuilder().
		WhereRecordStatus(types.StatusPublished).
		WhereField("lease_id", leaseID).
		WhereField("billing_period", string(period))

	docs, err := r.collection.Find(ctx, qb.whereClause()+" LIMIT 1", qb.Args()...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ierr.WithError(domainInvoice.ErrInvoiceNotFound).
			WithHintf("No invoice for lease %s in period %s", leaseID, period).
			Mark(ierr.ErrNotFound)
	}
	return unmarshalInvoice(docs[0])
}

func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	return r.collection.Replace(ctx, inv.ID, inv)
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	return r.collection.Delete(ctx, id)
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	qb := invoiceQuery(filter)

	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}
	docs, err := r.collection.Find(ctx, qb.Tail(qf), qb.Args()...)
	if err != nil {
		return nil, err
	}

	invoices := make([]*domainInvoice.Invoice, 0, len(docs))
	for _, doc := range docs {
		inv, err := unmarshalInvoice(doc)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	qb := invoiceQuery(filter)
	return r.collection.Count(ctx, qb.whereClause(), qb.Args()...)
}

func invoiceQuery(filter *types.InvoiceFilter) *queryBuilder {
	qb := newQueryBuilder()
	if filter == nil {
		return qb.WhereRecordStatus(types.StatusPublished)
	}

	qb.WhereRecordStatus(filter.GetStatus())
	if len(filter.InvoiceIDs) > 0 {
		qb.Where("id = ANY($%d)", pq.Array(filter.InvoiceIDs))
	}
	if filter.TenantID != nil {
		qb.WhereField("tenant_id", *filter.TenantID)
	}
	if filter.LeaseID != nil {
		qb.WhereField("lease_id", *filter.LeaseID)
	}
	if filter.PropertyID != nil {
		qb.WhereField("property_id", *filter.PropertyID)
	}
	if filter.BillingPeriod != nil {
		qb.WhereField("billing_period", string(*filter.BillingPeriod))
	}
	if len(filter.InvoiceStatus) > 0 {
		statuses := make([]string, len(filter.InvoiceStatus))
		for i, s := range filter.InvoiceStatus {
			statuses[i] = string(s)
		}
		qb.Where("doc->>'invoice_status' = ANY($%d)", pq.Array(statuses))
	}
	if filter.PeriodBefore != nil {
		qb.Where("doc->>'billing_period' < $%d", string(*filter.PeriodBefore))
	}
	if filter.BalanceForward != nil {
		qb.Where("(doc->>'balance_forwarded')::boolean = $%d", *filter.BalanceForward)
	}
	return qb
}

func unmarshalInvoice(doc []byte) (*domainInvoice.Invoice, error) {
	var inv domainInvoice.Invoice
	if err := document.Unmarshal(doc, &inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode invoice document").
			Mark(ierr.ErrSystem)
	}
	return &inv, nil
}
