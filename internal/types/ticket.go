package types

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/samber/lo"
)

// TicketStatus is the state of a utility-reading ticket. A ticket stays open
// while any of its tasks are awaiting input.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// TaskStatus is the state of one meter-reading work item
type TaskStatus string

const (
	TaskStatusAwaitingInput TaskStatus = "AWAITING_INPUT"
	TaskStatusCompleted     TaskStatus = "COMPLETED"
)

func (s TaskStatus) Validate() error {
	allowed := []TaskStatus{
		TaskStatusAwaitingInput,
		TaskStatusCompleted,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid task status").
			WithHint("Please provide a valid task status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TicketFilter holds filter criteria for listing tickets
type TicketFilter struct {
	*QueryFilter

	PropertyID    *string        `json:"property_id,omitempty" form:"property_id"`
	BillingPeriod *BillingPeriod `json:"billing_period,omitempty" form:"billing_period"`
	TicketStatus  *TicketStatus  `json:"ticket_status,omitempty" form:"ticket_status"`
}

func NewTicketFilter() *TicketFilter {
	return &TicketFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}
