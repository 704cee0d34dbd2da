package types

import (
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusPendingUtilities indicates the invoice is waiting on meter
	// readings before its utility charges are known
	InvoiceStatusPendingUtilities InvoiceStatus = "PENDING_UTILITIES"
	// InvoiceStatusReady indicates the invoice is final and payable
	InvoiceStatusReady InvoiceStatus = "READY"
	// InvoiceStatusPartiallyPaid indicates some but not all of the balance is paid
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	// InvoiceStatusPaid indicates the balance is fully settled
	InvoiceStatusPaid InvoiceStatus = "PAID"
	// InvoiceStatusOverdue indicates the due date passed with a balance remaining
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	// InvoiceStatusConsolidated indicates the balance was absorbed by a later invoice
	InvoiceStatusConsolidated InvoiceStatus = "CONSOLIDATED"
	// InvoiceStatusCancelled is terminal and reachable only by operator action
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPendingUtilities,
		InvoiceStatusReady,
		InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusConsolidated,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsOutstanding reports whether the invoice status still carries a payable
// balance. Consolidated invoices are settled through their absorbing invoice,
// not directly.
func (s InvoiceStatus) IsOutstanding() bool {
	switch s {
	case InvoiceStatusReady, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusPendingUtilities:
		return true
	}
	return false
}

// LineItemCategory classifies a charge or credit on an invoice
type LineItemCategory string

const (
	LineItemCategoryRent                  LineItemCategory = "rent"
	LineItemCategoryUtility               LineItemCategory = "utility"
	LineItemCategoryBalanceBroughtForward LineItemCategory = "balance_brought_forward"
	LineItemCategoryOverpaymentCredit     LineItemCategory = "overpayment_credit"
)

func (c LineItemCategory) String() string {
	return string(c)
}

func (c LineItemCategory) Validate() error {
	allowed := []LineItemCategory{
		LineItemCategoryRent,
		LineItemCategoryUtility,
		LineItemCategoryBalanceBroughtForward,
		LineItemCategoryOverpaymentCredit,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid line item category").
			WithHint("Please provide a valid line item category").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ConsolidationMethod controls how prior unpaid balances are carried forward
// onto a new invoice.
type ConsolidationMethod string

const (
	// ConsolidationMethodSum folds all prior balances into one combined line item
	ConsolidationMethodSum ConsolidationMethod = "sum"
	// ConsolidationMethodItemized adds one line item per source invoice, each
	// tagged with its originating invoice for later payment allocation
	ConsolidationMethodItemized ConsolidationMethod = "itemized"
)

func (m ConsolidationMethod) Validate() error {
	allowed := []ConsolidationMethod{
		ConsolidationMethodSum,
		ConsolidationMethodItemized,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid consolidation method").
			WithHint("Consolidation method must be sum or itemized").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceFilter holds filter criteria for listing invoices
type InvoiceFilter struct {
	*QueryFilter

	InvoiceIDs     []string        `json:"invoice_ids,omitempty" form:"invoice_ids"`
	TenantID       *string         `json:"tenant_id,omitempty" form:"tenant_id"`
	LeaseID        *string         `json:"lease_id,omitempty" form:"lease_id"`
	PropertyID     *string         `json:"property_id,omitempty" form:"property_id"`
	BillingPeriod  *BillingPeriod  `json:"billing_period,omitempty" form:"billing_period"`
	InvoiceStatus  []InvoiceStatus `json:"invoice_status,omitempty" form:"invoice_status"`
	PeriodBefore   *BillingPeriod  `json:"period_before,omitempty" form:"period_before"`
	BalanceForward *bool           `json:"balance_forwarded,omitempty" form:"balance_forwarded"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.BillingPeriod != nil {
		if err := f.BillingPeriod.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.InvoiceStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
