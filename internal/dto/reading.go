package dto

import (
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/ticket"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/validator"
	"github.com/shopspring/decimal"
)

// ProcessReadingRequest submits one meter reading against a pending task
type ProcessReadingRequest struct {
	TaskID         string          `json:"task_id" validate:"required"`
	CurrentReading decimal.Decimal `json:"current_reading" validate:"required"`
	ReadingDate    *time.Time      `json:"reading_date,omitempty"`
}

func (r *ProcessReadingRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.CurrentReading.IsNegative() {
		return ierr.NewError("reading must be non negative").
			WithHint("Meter readings cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ProcessReadingResponse reports the completed task, the refreshed invoice,
// and whether this reading closed the parent ticket.
type ProcessReadingResponse struct {
	Task         *ticket.Task     `json:"task"`
	Invoice      *invoice.Invoice `json:"invoice"`
	TicketClosed bool             `json:"ticket_closed"`
}

// TicketResponse wraps a ticket with its tasks
type TicketResponse struct {
	*ticket.Ticket
	Tasks []*ticket.Task `json:"tasks"`
}
