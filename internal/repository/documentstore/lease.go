package documentstore

import (
	"context"

	domainLease "github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
)

type leaseRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewLeaseRepository(client document.IClient, logger *logger.Logger) domainLease.Repository {
	return &leaseRepository{
		collection: document.NewCollection(client, document.CollectionLeases),
		logger:     logger,
	}
}

func (r *leaseRepository) Create(ctx context.Context, l *domainLease.Lease) error {
	return r.collection.Insert(ctx, l.ID, l)
}

func (r *leaseRepository) Get(ctx context.Context, id string) (*domainLease.Lease, error) {
	var l domainLease.Lease
	if err := r.collection.FindByID(ctx, id, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leaseRepository) Update(ctx context.Context, l *domainLease.Lease) error {
	return r.collection.Replace(ctx, l.ID, l)
}

func (r *leaseRepository) ListActive(ctx context.Context) ([]*domainLease.Lease, error) {
	qb := newQueryBuilder().
		WhereRecordStatus(types.StatusPublished).
		Where("(doc->>'active')::boolean = $%d", true)
	return r.findLeases(ctx, qb)
}

func (r *leaseRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domainLease.Lease, error) {
	qb := newQueryBuilder().
		WhereRecordStatus(types.StatusPublished).
		WhereField("tenant_id", tenantID)
	return r.findLeases(ctx, qb)
}

func (r *leaseRepository) findLeases(ctx context.Context, qb *queryBuilder) ([]*domainLease.Lease, error) {
	docs, err := r.collection.Find(ctx, qb.whereClause()+" ORDER BY doc->>'created_at' ASC", qb.Args()...)
	if err != nil {
		return nil, err
	}

	leases := make([]*domainLease.Lease, 0, len(docs))
	for _, doc := range docs {
		var l domainLease.Lease
		if err := document.Unmarshal(doc, &l); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode lease document").
				Mark(ierr.ErrSystem)
		}
		leases = append(leases, &l)
	}
	return leases, nil
}
