package types

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/samber/lo"
)

// NotificationRecipientType identifies who an outbound message is for
type NotificationRecipientType string

const (
	NotificationRecipientTenant   NotificationRecipientType = "tenant"
	NotificationRecipientLandlord NotificationRecipientType = "landlord"
)

// NotificationChannel is the delivery channel for an outbound message.
// Dispatch itself is an external collaborator; this subsystem only queues
// pending records.
type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"
	NotificationChannelBoth  NotificationChannel = "both"
)

func (c NotificationChannel) Validate() error {
	allowed := []NotificationChannel{
		NotificationChannelEmail,
		NotificationChannelSMS,
		NotificationChannelBoth,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid notification channel").
			WithHint("Please provide a valid notification channel").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NotificationStatus is the delivery state of a queued message. This
// subsystem only ever writes pending records.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
)

// NotificationType classifies the message for templating downstream
type NotificationType string

const (
	NotificationTypeInvoiceIssued   NotificationType = "invoice_issued"
	NotificationTypeLandlordSummary NotificationType = "landlord_summary"
	NotificationTypeLeaseExpiry     NotificationType = "lease_expiry"
)
