package types

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/samber/lo"
)

// PaymentMethod is how a tendered amount was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodCash,
		PaymentMethodBankTransfer,
		PaymentMethodCard,
		PaymentMethodMobileMoney,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Please provide a valid payment method").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentStatus tracks a payment audit record. Allocations are recorded only
// after the ledger posting succeeds, so records are written as succeeded;
// failed postings leave no payment record.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// PaymentFilter holds filter criteria for listing payments
type PaymentFilter struct {
	*QueryFilter

	TenantID  *string `json:"tenant_id,omitempty" form:"tenant_id"`
	InvoiceID *string `json:"invoice_id,omitempty" form:"invoice_id"`
	Reference *string `json:"reference,omitempty" form:"reference"`
}

func NewPaymentFilter() *PaymentFilter {
	return &PaymentFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitPaymentFilter() *PaymentFilter {
	return &PaymentFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}
