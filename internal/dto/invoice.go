package dto

import (
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/leaseledger/leaseledger/internal/validator"
)

// GenerateInvoiceRequest creates one invoice for a lease and billing period.
// AsOf pins the issue date for deterministic batch runs; it defaults to the
// current time.
type GenerateInvoiceRequest struct {
	LeaseID       string     `json:"lease_id" validate:"required"`
	BillingPeriod string     `json:"billing_period" validate:"required"`
	Force         bool       `json:"force"`
	AsOf          *time.Time `json:"as_of,omitempty"`
}

func (r *GenerateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return types.BillingPeriod(r.BillingPeriod).Validate()
}

// InvoiceResponse wraps an invoice for the API surface
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse is a paginated invoice listing
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}
