package documentstore

import (
	"context"

	domainLedger "github.com/leaseledger/leaseledger/internal/domain/ledger"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
)

type ledgerRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewLedgerRepository(client document.IClient, logger *logger.Logger) domainLedger.Repository {
	return &ledgerRepository{
		collection: document.NewCollection(client, document.CollectionLedgerEntries),
		logger:     logger,
	}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *domainLedger.Entry) error {
	return r.collection.Insert(ctx, entry.ID, entry)
}

func (r *ledgerRepository) CreateBulk(ctx context.Context, entries []*domainLedger.Entry) error {
	for _, entry := range entries {
		if err := r.collection.Insert(ctx, entry.ID, entry); err != nil {
			return err
		}
	}
	return nil
}

func (r *ledgerRepository) List(ctx context.Context, filter *types.LedgerFilter) ([]*domainLedger.Entry, error) {
	qb := newQueryBuilder()
	var qf *types.QueryFilter
	if filter != nil {
		qf = filter.QueryFilter
	}

	qb.WhereRecordStatus(qf.GetStatus())
	if filter != nil {
		if filter.TenantID != nil {
			qb.WhereField("tenant_id", *filter.TenantID)
		}
		if filter.InvoiceID != nil {
			qb.WhereField("invoice_id", *filter.InvoiceID)
		}
		if filter.PaymentID != nil {
			qb.WhereField("payment_id", *filter.PaymentID)
		}
		if filter.Account != nil {
			qb.WhereField("account", string(*filter.Account))
		}
	}

	docs, err := r.collection.Find(ctx, qb.Tail(qf), qb.Args()...)
	if err != nil {
		return nil, err
	}

	entries := make([]*domainLedger.Entry, 0, len(docs))
	for _, doc := range docs {
		var entry domainLedger.Entry
		if err := document.Unmarshal(doc, &entry); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode ledger entry document").
				Mark(ierr.ErrSystem)
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func (r *ledgerRepository) DeleteByInvoiceID(ctx context.Context, invoiceID string) error {
	r.logger.Debugw("deleting ledger entries for invoice", "invoice_id", invoiceID)
	return r.collection.DeleteWhere(ctx, "WHERE doc->>'invoice_id' = $1", invoiceID)
}
