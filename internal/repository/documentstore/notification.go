package documentstore

import (
	"context"

	domainNotification "github.com/leaseledger/leaseledger/internal/domain/notification"
	"github.com/leaseledger/leaseledger/internal/document"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
)

type notificationRepository struct {
	collection *document.Collection
	logger     *logger.Logger
}

func NewNotificationRepository(client document.IClient, logger *logger.Logger) domainNotification.Repository {
	return &notificationRepository{
		collection: document.NewCollection(client, document.CollectionNotifications),
		logger:     logger,
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domainNotification.Notification) error {
	return r.collection.Insert(ctx, n.ID, n)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string) ([]*domainNotification.Notification, error) {
	qb := newQueryBuilder().WhereField("recipient_id", recipientID)

	docs, err := r.collection.Find(ctx, qb.whereClause()+" ORDER BY doc->>'created_at' ASC", qb.Args()...)
	if err != nil {
		return nil, err
	}

	notifications := make([]*domainNotification.Notification, 0, len(docs))
	for _, doc := range docs {
		var n domainNotification.Notification
		if err := document.Unmarshal(doc, &n); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode notification document").
				Mark(ierr.ErrSystem)
		}
		notifications = append(notifications, &n)
	}
	return notifications, nil
}
