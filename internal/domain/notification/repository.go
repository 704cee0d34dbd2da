package notification

import "context"

// Repository defines the interface for notification persistence. Queued
// messages are write-once; there is no update path in this subsystem.
type Repository interface {
	// Create queues a new pending notification
	Create(ctx context.Context, notification *Notification) error

	// ListByRecipient retrieves notifications queued for a recipient
	ListByRecipient(ctx context.Context, recipientID string) ([]*Notification, error)
}
