package payment

import (
	"time"

	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// Payment is the audit record of one allocation of tendered money to one
// invoice. A single tendered amount may spawn several Payment records, one
// per invoice touched.
type Payment struct {
	ID            string              `json:"id"`
	TenantID      string              `json:"tenant_id"`
	InvoiceID     string              `json:"invoice_id,omitempty"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        types.PaymentMethod `json:"method"`
	Reference     string              `json:"reference,omitempty"`
	PaymentDate   time.Time           `json:"payment_date"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	Metadata      types.Metadata      `json:"metadata,omitempty"`
	types.BaseModel
}

func (p *Payment) Validate() error {
	if err := p.Method.Validate(); err != nil {
		return err
	}
	if p.TenantID == "" {
		return ierr.NewError("tenant id is required").
			WithHint("Payment must reference a tenant").
			Mark(ierr.ErrValidation)
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": p.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
