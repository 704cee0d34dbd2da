package documentstore

import (
	"context"

	domainTenant "github.com/leaseledger/leaseledger/internal/domain/tenant"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
)

type tenantRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewTenantRepository(client document.IClient, logger *logger.Logger) domainTenant.Repository {
	return &tenantRepository{
		collection: document.NewCollection(client, document.CollectionTenants),
		logger:     logger,
	}
}

func (r *tenantRepository) Create(ctx context.Context, t *domainTenant.Tenant) error {
	return r.collection.Insert(ctx, t.ID, t)
}

func (r *tenantRepository) Get(ctx context.Context, id string) (*domainTenant.Tenant, error) {
	var t domainTenant.Tenant
	if err := r.collection.FindByID(ctx, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]*domainTenant.Tenant, error) {
	qb := newQueryBuilder().WhereRecordStatus(types.StatusPublished)

	docs, err := r.collection.Find(ctx, qb.whereClause()+" ORDER BY doc->>'created_at' ASC", qb.Args()...)
	if err != nil {
		return nil, err
	}

	tenants := make([]*domainTenant.Tenant, 0, len(docs))
	for _, doc := range docs {
		var t domainTenant.Tenant
		if err := document.Unmarshal(doc, &t); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode tenant document").
				Mark(ierr.ErrSystem)
		}
		tenants = append(tenants, &t)
	}
	return tenants, nil
}
