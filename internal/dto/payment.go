package dto

import (
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/payment"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/leaseledger/leaseledger/internal/validator"
	"github.com/shopspring/decimal"
)

// ProcessPaymentRequest records tendered money against a tenant. With a
// target invoice the amount settles that invoice (walking its allocation
// rules); without one it auto-allocates across the tenant's outstanding
// invoices oldest first.
type ProcessPaymentRequest struct {
	TenantID        string              `json:"tenant_id" validate:"required"`
	Amount          decimal.Decimal     `json:"amount" validate:"required"`
	Method          types.PaymentMethod `json:"method" validate:"required"`
	Reference       string              `json:"reference,omitempty"`
	TargetInvoiceID string              `json:"target_invoice_id,omitempty"`
	AsOf            *time.Time          `json:"as_of,omitempty"`
}

func (r *ProcessPaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("payment amount must be positive").
			WithHint("Payment amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return r.Method.Validate()
}

// ProcessPaymentResponse reports how tendered money was allocated. One
// payment record exists per invoice touched; any remainder becomes tenant
// credit.
type ProcessPaymentResponse struct {
	Payments      []*payment.Payment `json:"payments"`
	AmountApplied decimal.Decimal    `json:"amount_applied"`
	CreditAmount  decimal.Decimal    `json:"credit_amount"`
}

// PaymentResponse wraps a payment audit record
type PaymentResponse struct {
	*payment.Payment
}

// ListPaymentsResponse is a paginated payment listing
type ListPaymentsResponse struct {
	Items []*PaymentResponse `json:"items"`
	Total int                `json:"total"`
}

// TenantCreditResponse reports a tenant's available credit balance
type TenantCreditResponse struct {
	TenantID      string          `json:"tenant_id"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}
