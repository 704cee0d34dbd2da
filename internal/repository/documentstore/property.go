package documentstore

import (
	"context"

	domainProperty "github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/types"
)

type propertyRepository struct {
	properties *document.Collection
	units      *document.Collection
	logger     *logger.Logger
}

func NewPropertyRepository(client document.IClient, logger *logger.Logger) domainProperty.Repository {
	return &propertyRepository{
		properties: document.NewCollection(client, document.CollectionProperties),
		units:      document.NewCollection(client, document.CollectionUnits),
		logger:     logger,
	}
}

func (r *propertyRepository) Create(ctx context.Context, p *domainProperty.Property) error {
	return r.properties.Insert(ctx, p.ID, p)
}

func (r *propertyRepository) Get(ctx context.Context, id string) (*domainProperty.Property, error) {
	var p domainProperty.Property
	if err := r.properties.FindByID(ctx, id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) List(ctx context.Context) ([]*domainProperty.Property, error) {
	qb := newQueryBuilder().WhereRecordStatus(types.StatusPublished)

	docs, err := r.properties.Find(ctx, qb.whereClause()+" ORDER BY doc->>'created_at' ASC", qb.Args()...)
	if err != nil {
		return nil, err
	}

	properties := make([]*domainProperty.Property, 0, len(docs))
	for _, doc := range docs {
		var p domainProperty.Property
		if err := document.Unmarshal(doc, &p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode property document").
				Mark(ierr.ErrSystem)
		}
		properties = append(properties, &p)
	}
	return properties, nil
}

func (r *propertyRepository) CreateUnit(ctx context.Context, u *domainProperty.Unit) error {
	return r.units.Insert(ctx, u.ID, u)
}

func (r *propertyRepository) GetUnit(ctx context.Context, id string) (*domainProperty.Unit, error) {
	var u domainProperty.Unit
	if err := r.units.FindByID(ctx, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
