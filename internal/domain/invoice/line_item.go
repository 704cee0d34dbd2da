package invoice

import (
	"time"

	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is one charge or credit on an invoice. Owned exclusively by its
// invoice, never shared.
type LineItem struct {
	ID          string                 `json:"id"`
	InvoiceID   string                 `json:"invoice_id"`
	Description string                 `json:"description"`
	Amount      decimal.Decimal        `json:"amount"`
	Category    types.LineItemCategory `json:"category"`

	// Utility charges carry usage detail
	UtilityName  string              `json:"utility_name,omitempty"`
	UsageUnits   *decimal.Decimal    `json:"usage_units,omitempty"`
	Rate         *decimal.Decimal    `json:"rate,omitempty"`
	MeterReading *MeterReadingDetail `json:"meter_reading,omitempty"`

	// Forwarded balances carry the originating invoice
	SourceInvoiceID string              `json:"source_invoice_id,omitempty"`
	SourcePeriod    types.BillingPeriod `json:"source_period,omitempty"`

	Metadata types.Metadata `json:"metadata,omitempty"`
	types.BaseModel
}

// MeterReadingDetail records the readings a utility charge was computed from
type MeterReadingDetail struct {
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	ReadingDate     time.Time       `json:"reading_date"`
}

func (li *LineItem) Validate() error {
	if err := li.Category.Validate(); err != nil {
		return err
	}
	if li.Description == "" {
		return NewValidationError("description", "must not be empty")
	}
	switch li.Category {
	case types.LineItemCategoryOverpaymentCredit:
		if li.Amount.GreaterThan(decimal.Zero) {
			return NewValidationError("amount", "overpayment credit must be negative or zero")
		}
	case types.LineItemCategoryBalanceBroughtForward:
		// Itemized lines carry a source invoice; combined (sum) lines do not.
		if li.Amount.IsNegative() {
			return NewValidationError("amount", "forwarded balance must be non negative")
		}
	default:
		if li.Amount.IsNegative() {
			return NewValidationError("amount", "charge must be non negative")
		}
	}
	return nil
}
