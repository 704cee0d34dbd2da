package service

import (
	"context"
	"fmt"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/domain/notification"
	"github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// NotificationService queues pending outbound messages. Delivery belongs to
// an external collaborator; records written here are one-shot and never
// updated by this subsystem.
type NotificationService interface {
	// QueueInvoiceIssued notifies the tenant that their invoice is payable
	QueueInvoiceIssued(ctx context.Context, inv *invoice.Invoice) error

	// QueueLandlordSummary notifies a landlord of the invoices generated for
	// their property in a billing run.
	QueueLandlordSummary(ctx context.Context, prop *property.Property, period types.BillingPeriod, invoices []*invoice.Invoice) error

	// QueueLeaseExpiry warns a tenant their lease is ending soon
	QueueLeaseExpiry(ctx context.Context, l *lease.Lease) error
}

type notificationService struct {
	ServiceParams
}

func NewNotificationService(params ServiceParams) NotificationService {
	return &notificationService{
		ServiceParams: params,
	}
}

func (s *notificationService) QueueInvoiceIssued(ctx context.Context, inv *invoice.Invoice) error {
	n := &notification.Notification{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		RecipientType: types.NotificationRecipientTenant,
		RecipientID:   inv.TenantID,
		Channel:       types.NotificationChannelBoth,
		Type:          types.NotificationTypeInvoiceIssued,
		Subject:       fmt.Sprintf("Invoice %s for %s", inv.InvoiceNumber, inv.BillingPeriod),
		Body: fmt.Sprintf(
			"Your invoice %s for %s is ready. Amount due: %s by %s.",
			inv.InvoiceNumber, inv.BillingPeriod,
			inv.BalanceAmount.StringFixed(2), inv.DueDate.Format("2006-01-02"),
		),
		DeliveryState: types.NotificationStatusPending,
		Metadata: types.Metadata{
			"invoice_id": inv.ID,
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}

	if err := s.NotificationRepo.Create(ctx, n); err != nil {
		return err
	}
	s.Logger.Debugw("queued invoice notification",
		"notification_id", n.ID,
		"invoice_id", inv.ID,
		"tenant_id", inv.TenantID)
	return nil
}

func (s *notificationService) QueueLandlordSummary(ctx context.Context, prop *property.Property, period types.BillingPeriod, invoices []*invoice.Invoice) error {
	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.TotalAmount)
	}

	n := &notification.Notification{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		RecipientType: types.NotificationRecipientLandlord,
		RecipientID:   prop.LandlordID,
		Channel:       types.NotificationChannelEmail,
		Type:          types.NotificationTypeLandlordSummary,
		Subject:       fmt.Sprintf("Billing summary for %s, %s", prop.Name, period),
		Body: fmt.Sprintf(
			"%d invoice(s) generated for %s totalling %s.",
			len(invoices), prop.Name, total.StringFixed(2),
		),
		DeliveryState: types.NotificationStatusPending,
		Metadata: types.Metadata{
			"property_id": prop.ID,
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	return s.NotificationRepo.Create(ctx, n)
}

func (s *notificationService) QueueLeaseExpiry(ctx context.Context, l *lease.Lease) error {
	if l.EndDate == nil {
		return nil
	}

	n := &notification.Notification{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		RecipientType: types.NotificationRecipientTenant,
		RecipientID:   l.TenantID,
		Channel:       types.NotificationChannelBoth,
		Type:          types.NotificationTypeLeaseExpiry,
		Subject:       "Your lease is expiring soon",
		Body: fmt.Sprintf(
			"Your lease ends on %s. Please contact your property manager to renew.",
			l.EndDate.Format("2006-01-02"),
		),
		DeliveryState: types.NotificationStatusPending,
		Metadata: types.Metadata{
			"lease_id": l.ID,
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	return s.NotificationRepo.Create(ctx, n)
}
