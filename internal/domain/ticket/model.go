package ticket

import (
	"time"

	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// Ticket bundles all pending metered-utility tasks for one property and
// billing period so readings can be collected as a batch. It stays open
// while any task is awaiting input.
type Ticket struct {
	ID             string              `json:"id"`
	PropertyID     string              `json:"property_id"`
	BillingPeriod  types.BillingPeriod `json:"billing_period"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	TicketStatus   types.TicketStatus  `json:"ticket_status"`
	TotalTasks     int                 `json:"total_tasks"`
	CompletedTasks int                 `json:"completed_tasks"`
	types.BaseModel
}

// Task is one meter-reading work item. Completing the last task of a ticket
// closes the ticket and finalizes every invoice it references.
type Task struct {
	ID              string              `json:"id"`
	TicketID        string              `json:"ticket_id"`
	LeaseID         string              `json:"lease_id"`
	InvoiceID       string              `json:"invoice_id"`
	UtilityName     string              `json:"utility_name"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	TaskStatus      types.TaskStatus    `json:"task_status"`
	PreviousReading decimal.Decimal     `json:"previous_reading"`
	CurrentReading  *decimal.Decimal    `json:"current_reading,omitempty"`
	Rate            decimal.Decimal     `json:"rate"`
	ReadingDate     *time.Time          `json:"reading_date,omitempty"`
	types.BaseModel
}

func (t *Ticket) Validate() error {
	if t.PropertyID == "" {
		return ierr.NewError("property id is required").
			WithHint("Ticket must reference a property").
			Mark(ierr.ErrValidation)
	}
	return t.BillingPeriod.Validate()
}

func (t *Task) Validate() error {
	if err := t.TaskStatus.Validate(); err != nil {
		return err
	}
	if t.TicketID == "" {
		return ierr.NewError("ticket id is required").
			WithHint("Task must belong to a ticket").
			Mark(ierr.ErrValidation)
	}
	if t.InvoiceID == "" {
		return ierr.NewError("invoice id is required").
			WithHint("Task must reference the invoice awaiting its reading").
			Mark(ierr.ErrValidation)
	}
	if t.Rate.IsNegative() {
		return ierr.NewError("rate must be non negative").
			WithHint("Utility rate must be non negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
