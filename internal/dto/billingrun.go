package dto

import (
	"time"

	"github.com/leaseledger/leaseledger/internal/types"
)

// BillingRunRequest triggers invoice generation across every active lease
// for one billing period.
type BillingRunRequest struct {
	BillingPeriod string     `json:"billing_period" validate:"required"`
	AsOf          *time.Time `json:"as_of,omitempty"`
}

func (r *BillingRunRequest) Validate() error {
	return types.BillingPeriod(r.BillingPeriod).Validate()
}

// BillingRunError records one lease's failure within a best-effort run
type BillingRunError struct {
	LeaseID string `json:"lease_id"`
	Error   string `json:"error"`
}

// BillingRunResponse summarizes a batch run. Failures are collected per
// lease; the run itself never aborts.
type BillingRunResponse struct {
	RunID               string            `json:"run_id"`
	BillingPeriod       string            `json:"billing_period"`
	GeneratedInvoiceIDs []string          `json:"generated_invoice_ids"`
	SkippedLeaseIDs     []string          `json:"skipped_lease_ids"`
	Errors              []BillingRunError `json:"errors,omitempty"`
}
