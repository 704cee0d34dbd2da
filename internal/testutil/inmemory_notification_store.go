package testutil

import (
	"context"

	"github.com/leaseledger/leaseledger/internal/domain/notification"
)

// InMemoryNotificationStore implements notification.Repository
type InMemoryNotificationStore struct {
	*InMemoryStore[*notification.Notification]
}

// NewInMemoryNotificationStore creates a new in-memory notification repository
func NewInMemoryNotificationStore() *InMemoryNotificationStore {
	return &InMemoryNotificationStore{
		InMemoryStore: NewInMemoryStore[*notification.Notification](),
	}
}

func (s *InMemoryNotificationStore) Create(ctx context.Context, n *notification.Notification) error {
	return s.InMemoryStore.Create(ctx, n.ID, n)
}

func (s *InMemoryNotificationStore) ListByRecipient(ctx context.Context, recipientID string) ([]*notification.Notification, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, n *notification.Notification, _ interface{}) bool {
		return n.RecipientID == recipientID
	}, func(i, j *notification.Notification) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

// All returns every queued notification, for assertions
func (s *InMemoryNotificationStore) All(ctx context.Context) []*notification.Notification {
	out, _ := s.InMemoryStore.List(ctx, nil, nil, func(i, j *notification.Notification) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
	return out
}
