package types

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/samber/lo"
)

// LedgerEntryType is the side of a double-entry posting
type LedgerEntryType string

const (
	LedgerEntryTypeDebit  LedgerEntryType = "debit"
	LedgerEntryTypeCredit LedgerEntryType = "credit"
)

func (t LedgerEntryType) Validate() error {
	allowed := []LedgerEntryType{
		LedgerEntryTypeDebit,
		LedgerEntryTypeCredit,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid ledger entry type").
			WithHint("Ledger entry type must be debit or credit").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// LedgerAccount is the account a posting lands on
type LedgerAccount string

const (
	LedgerAccountReceivable    LedgerAccount = "accounts_receivable"
	LedgerAccountRentIncome    LedgerAccount = "rent_income"
	LedgerAccountUtilityIncome LedgerAccount = "utility_income"
	// LedgerAccountTenantCredit tracks a tenant's overpayment credit; its net
	// credit balance is the credit available for future invoices.
	LedgerAccountTenantCredit LedgerAccount = "tenant_credit"
	LedgerAccountPayments     LedgerAccount = "payments"
)

// LedgerFilter holds filter criteria for listing ledger entries
type LedgerFilter struct {
	*QueryFilter

	TenantID  *string        `json:"tenant_id,omitempty" form:"tenant_id"`
	InvoiceID *string        `json:"invoice_id,omitempty" form:"invoice_id"`
	PaymentID *string        `json:"payment_id,omitempty" form:"payment_id"`
	Account   *LedgerAccount `json:"account,omitempty" form:"account"`
}

func NewLedgerFilter() *LedgerFilter {
	return &LedgerFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitLedgerFilter() *LedgerFilter {
	return &LedgerFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}
