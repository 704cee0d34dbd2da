package ledger

import (
	"time"

	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// Entry is one side of a double-entry posting. Every invoice and payment
// mutation flows through entries so the ledger view stays consistent with
// the invoice documents.
type Entry struct {
	ID          string                `json:"id"`
	TenantID    string                `json:"tenant_id"`
	InvoiceID   string                `json:"invoice_id,omitempty"`
	PaymentID   string                `json:"payment_id,omitempty"`
	LineItemID  string                `json:"line_item_id,omitempty"`
	EntryType   types.LedgerEntryType `json:"entry_type"`
	Account     types.LedgerAccount   `json:"account"`
	Amount      decimal.Decimal       `json:"amount"`
	Description string                `json:"description"`
	EntryDate   time.Time             `json:"entry_date"`
	types.BaseModel
}

func (e *Entry) Validate() error {
	if err := e.EntryType.Validate(); err != nil {
		return err
	}
	if e.TenantID == "" {
		return ierr.NewError("tenant id is required").
			WithHint("Ledger entry must reference a tenant").
			Mark(ierr.ErrValidation)
	}
	if e.Amount.IsNegative() {
		return ierr.NewError("ledger entry amount must be non negative").
			WithHint("Ledger amounts are unsigned; direction comes from the entry type").
			WithReportableDetails(map[string]any{
				"amount": e.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Signed returns the amount signed by entry type for balance arithmetic on
// credit-normal accounts: credits add, debits subtract.
func (e *Entry) Signed() decimal.Decimal {
	if e.EntryType == types.LedgerEntryTypeDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
