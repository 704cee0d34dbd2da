package invoice

import (
	"time"

	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents one lease's charges for one billing period
type Invoice struct {
	ID               string                `json:"id"`
	InvoiceNumber    string                `json:"invoice_number"`
	PropertyID       string                `json:"property_id"`
	UnitID           string                `json:"unit_id,omitempty"`
	TenantID         string                `json:"tenant_id"`
	LeaseID          string                `json:"lease_id"`
	BillingPeriod    types.BillingPeriod   `json:"billing_period"`
	DateIssued       time.Time             `json:"date_issued"`
	DueDate          time.Time             `json:"due_date"`
	LineItems        []*LineItem           `json:"line_items,omitempty"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	TotalPaid        decimal.Decimal       `json:"total_paid"`
	OverpaidAmount   decimal.Decimal       `json:"overpaid_amount"`
	BalanceAmount    decimal.Decimal       `json:"balance_amount"`
	InvoiceStatus    types.InvoiceStatus   `json:"invoice_status"`
	BalanceForwarded bool                  `json:"balance_forwarded"`
	ConsolidatedInto string                `json:"consolidated_into,omitempty"`
	Consolidation    []ConsolidationSource `json:"consolidation,omitempty"`
	AllocationRules  []AllocationRule      `json:"payment_allocation_rules,omitempty"`
	Metadata         types.Metadata        `json:"metadata,omitempty"`
	types.BaseModel
}

// ConsolidationSource is the audit record of one prior invoice whose balance
// was absorbed into this invoice. It preserves the source identity for
// reversal when the invoice is force-regenerated.
type ConsolidationSource struct {
	InvoiceID     string              `json:"invoice_id"`
	BillingPeriod types.BillingPeriod `json:"billing_period"`
	Amount        decimal.Decimal     `json:"amount"`
}

// AllocationRule directs payment allocation for itemized consolidation:
// payments against this invoice first satisfy the referenced source invoices
// in ascending priority (oldest billing period first).
type AllocationRule struct {
	Priority      int                 `json:"priority"`
	InvoiceID     string              `json:"invoice_id"`
	BillingPeriod types.BillingPeriod `json:"billing_period"`
	Amount        decimal.Decimal     `json:"amount"`
}

// Subtotal returns the signed sum of all line item amounts, unrounded.
func (i *Invoice) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.LineItems {
		total = total.Add(item.Amount)
	}
	return total
}

// RecalculateTotals recomputes total and balance from the line items and the
// amount paid so far. Amounts are rounded to 2 decimals here, at the point
// the document is about to be persisted. A negative subtotal clamps the total
// at zero; OverpaidAmount is untouched, it records the excess credit returned
// to the tenant when the invoice was first posted and later line items must
// not rewrite that audit value.
func (i *Invoice) RecalculateTotals() {
	subtotal := i.Subtotal()
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	i.TotalAmount = types.RoundMoney(subtotal)

	balance := i.TotalAmount.Sub(i.TotalPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	i.BalanceAmount = types.RoundMoney(balance)
}

// SettlePaymentStatus moves the invoice status after a payment was applied.
// Consolidated and cancelled invoices never change status here.
func (i *Invoice) SettlePaymentStatus() {
	if i.InvoiceStatus == types.InvoiceStatusConsolidated || i.InvoiceStatus == types.InvoiceStatusCancelled {
		return
	}
	if i.BalanceAmount.IsZero() && i.TotalPaid.GreaterThan(decimal.Zero) {
		i.InvoiceStatus = types.InvoiceStatusPaid
	} else if i.TotalPaid.GreaterThan(decimal.Zero) {
		i.InvoiceStatus = types.InvoiceStatusPartiallyPaid
	}
}

func (i *Invoice) Validate() error {
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if err := i.BillingPeriod.Validate(); err != nil {
		return err
	}

	if i.TotalAmount.IsNegative() {
		return NewValidationError("total_amount", "must be non negative")
	}
	if i.TotalPaid.IsNegative() {
		return NewValidationError("total_paid", "must be non negative")
	}
	if i.BalanceAmount.IsNegative() {
		return NewValidationError("balance_amount", "must be non negative")
	}

	sum := types.RoundMoney(i.Subtotal())
	if sum.IsNegative() {
		sum = decimal.Zero
	}
	if !i.TotalAmount.Equal(sum) {
		return NewValidationError("total_amount", "must equal the sum of line item amounts")
	}

	expectedBalance := i.TotalAmount.Sub(i.TotalPaid)
	if expectedBalance.IsNegative() {
		expectedBalance = decimal.Zero
	}
	if !i.BalanceAmount.Equal(types.RoundMoney(expectedBalance)) {
		return NewValidationError("balance_amount", "must equal max(0, total_amount - total_paid)")
	}

	if i.BalanceAmount.IsZero() && i.TotalPaid.GreaterThan(decimal.Zero) &&
		i.InvoiceStatus != types.InvoiceStatusPaid &&
		i.InvoiceStatus != types.InvoiceStatusConsolidated {
		return NewValidationError("invoice_status", "settled invoice must be PAID")
	}

	for _, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}
