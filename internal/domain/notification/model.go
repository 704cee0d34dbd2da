package notification

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
)

// Notification is a one-shot outbound message queued for delivery. Records
// are write-once with status pending; actual dispatch belongs to an external
// collaborator.
type Notification struct {
	ID            string                          `json:"id"`
	RecipientType types.NotificationRecipientType `json:"recipient_type"`
	RecipientID   string                          `json:"recipient_id"`
	Channel       types.NotificationChannel       `json:"channel"`
	Type          types.NotificationType          `json:"type"`
	Subject       string                          `json:"subject"`
	Body          string                          `json:"body"`
	DeliveryState types.NotificationStatus        `json:"delivery_state"`
	Metadata      types.Metadata                  `json:"metadata,omitempty"`
	types.BaseModel
}

func (n *Notification) Validate() error {
	if err := n.Channel.Validate(); err != nil {
		return err
	}
	if n.RecipientID == "" {
		return ierr.NewError("recipient id is required").
			WithHint("Notification must have a recipient").
			Mark(ierr.ErrValidation)
	}
	if n.Subject == "" {
		return ierr.NewError("subject is required").
			WithHint("Notification must have a subject").
			Mark(ierr.ErrValidation)
	}
	return nil
}
