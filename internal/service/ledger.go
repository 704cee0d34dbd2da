package service

import (
	"context"
	"sort"
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/ledger"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// LedgerService keeps the double-entry view consistent with the invoice
// documents. Every invoice, line item, and payment mutation flows through it.
type LedgerService interface {
	// PostInvoiceToLedger records the postings for a freshly created invoice:
	// a receivable debit and an income credit per charge, a tenant-credit
	// debit for applied overpayment credit, and a re-credit of any excess.
	PostInvoiceToLedger(ctx context.Context, inv *invoice.Invoice, asOf time.Time) error

	// PostPaymentToLedger applies amount against the invoice, walking its
	// allocation rules in ascending priority to settle consolidated source
	// invoices before the invoice itself. Returns the amount actually applied,
	// capped by the invoice's outstanding balance.
	PostPaymentToLedger(ctx context.Context, inv *invoice.Invoice, amount decimal.Decimal, paymentID string, asOf time.Time) (decimal.Decimal, error)

	// PostTenantCredit records unallocated payment remainder as tenant credit
	PostTenantCredit(ctx context.Context, tenantID string, amount decimal.Decimal, paymentID string, asOf time.Time, description string) error

	// AddLineItemToInvoice appends a line item to an invoice and posts the
	// matching entries, returning the refreshed invoice.
	AddLineItemToInvoice(ctx context.Context, invoiceID string, item *invoice.LineItem, reason string, asOf time.Time) (*invoice.Invoice, error)

	// RemoveLineItemFromInvoice removes a line item and posts reversing
	// entries. Forwarded-balance items are only removable with the explicit
	// allow flag; dropping one silently would orphan a consolidated balance.
	RemoveLineItemFromInvoice(ctx context.Context, invoiceID, lineItemID, reason string, asOf time.Time, allowBalanceItemRemoval bool) (*invoice.Invoice, error)

	// GetTenantCreditBalance returns the tenant's available credit: credits
	// minus debits on the tenant_credit account.
	GetTenantCreditBalance(ctx context.Context, tenantID string) (decimal.Decimal, error)

	// DeleteEntriesForInvoice removes every entry referencing the invoice.
	// Only used when a forced regeneration discards the invoice itself.
	DeleteEntriesForInvoice(ctx context.Context, invoiceID string) error
}

type ledgerService struct {
	ServiceParams
}

func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{
		ServiceParams: params,
	}
}

func (s *ledgerService) PostInvoiceToLedger(ctx context.Context, inv *invoice.Invoice, asOf time.Time) error {
	var entries []*ledger.Entry

	for _, item := range inv.LineItems {
		switch item.Category {
		case types.LineItemCategoryRent:
			entries = append(entries,
				s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeDebit, types.LedgerAccountReceivable, item.Amount, item.Description, asOf),
				s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeCredit, types.LedgerAccountRentIncome, item.Amount, item.Description, asOf),
			)
		case types.LineItemCategoryUtility:
			entries = append(entries,
				s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeDebit, types.LedgerAccountReceivable, item.Amount, item.Description, asOf),
				s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeCredit, types.LedgerAccountUtilityIncome, item.Amount, item.Description, asOf),
			)
		case types.LineItemCategoryBalanceBroughtForward:
			// The receivable already exists on the source invoices; carrying
			// it forward does not create new postings.
		case types.LineItemCategoryOverpaymentCredit:
			applied := item.Amount.Neg()
			entries = append(entries,
				s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeDebit, types.LedgerAccountTenantCredit, applied, item.Description, asOf),
				s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeCredit, types.LedgerAccountReceivable, applied, item.Description, asOf),
			)
		}
	}

	// Credit that exceeded the charges goes straight back to the tenant.
	if inv.OverpaidAmount.GreaterThan(decimal.Zero) {
		entries = append(entries,
			s.newEntry(ctx, inv.TenantID, inv.ID, "", "", types.LedgerEntryTypeDebit, types.LedgerAccountReceivable, inv.OverpaidAmount, "Excess credit returned", asOf),
			s.newEntry(ctx, inv.TenantID, inv.ID, "", "", types.LedgerEntryTypeCredit, types.LedgerAccountTenantCredit, inv.OverpaidAmount, "Excess credit returned", asOf),
		)
	}

	if len(entries) == 0 {
		return nil
	}

	if err := s.LedgerRepo.CreateBulk(ctx, entries); err != nil {
		return err
	}

	s.Logger.Debugw("posted invoice to ledger",
		"invoice_id", inv.ID,
		"tenant_id", inv.TenantID,
		"entries", len(entries))
	return nil
}

func (s *ledgerService) PostPaymentToLedger(ctx context.Context, inv *invoice.Invoice, amount decimal.Decimal, paymentID string, asOf time.Time) (decimal.Decimal, error) {
	applied := decimal.Min(amount, inv.BalanceAmount)
	if applied.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	rules := make([]invoice.AllocationRule, len(inv.AllocationRules))
	copy(rules, inv.AllocationRules)
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	var entries []*ledger.Entry
	remaining := applied

	// Consolidated source invoices are settled first, oldest priority first,
	// so their receivable entries close out before the invoice's own charges.
	for _, rule := range rules {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		src, err := s.InvoiceRepo.Get(ctx, rule.InvoiceID)
		if err != nil {
			if ierr.IsNotFound(err) {
				s.Logger.Warnw("allocation rule references missing invoice",
					"invoice_id", inv.ID,
					"source_invoice_id", rule.InvoiceID)
				continue
			}
			return decimal.Zero, err
		}

		take := decimal.Min(remaining, src.BalanceAmount)
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}

		src.TotalPaid = types.RoundMoney(src.TotalPaid.Add(take))
		src.RecalculateTotals()
		src.UpdatedAt = asOf
		src.UpdatedBy = types.GetUserID(ctx)
		if err := s.InvoiceRepo.Update(ctx, src); err != nil {
			return decimal.Zero, err
		}

		entries = append(entries,
			s.newEntry(ctx, src.TenantID, src.ID, paymentID, "", types.LedgerEntryTypeDebit, types.LedgerAccountPayments, take, "Payment allocated to consolidated invoice", asOf),
			s.newEntry(ctx, src.TenantID, src.ID, paymentID, "", types.LedgerEntryTypeCredit, types.LedgerAccountReceivable, take, "Payment allocated to consolidated invoice", asOf),
		)
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		entries = append(entries,
			s.newEntry(ctx, inv.TenantID, inv.ID, paymentID, "", types.LedgerEntryTypeDebit, types.LedgerAccountPayments, remaining, "Payment received", asOf),
			s.newEntry(ctx, inv.TenantID, inv.ID, paymentID, "", types.LedgerEntryTypeCredit, types.LedgerAccountReceivable, remaining, "Payment received", asOf),
		)
	}

	inv.TotalPaid = types.RoundMoney(inv.TotalPaid.Add(applied))
	inv.RecalculateTotals()
	inv.SettlePaymentStatus()
	inv.UpdatedAt = asOf
	inv.UpdatedBy = types.GetUserID(ctx)
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return decimal.Zero, err
	}

	if err := s.LedgerRepo.CreateBulk(ctx, entries); err != nil {
		return decimal.Zero, err
	}

	s.Logger.Debugw("posted payment to ledger",
		"invoice_id", inv.ID,
		"payment_id", paymentID,
		"applied", applied)
	return applied, nil
}

func (s *ledgerService) PostTenantCredit(ctx context.Context, tenantID string, amount decimal.Decimal, paymentID string, asOf time.Time, description string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	entries := []*ledger.Entry{
		s.newEntry(ctx, tenantID, "", paymentID, "", types.LedgerEntryTypeDebit, types.LedgerAccountPayments, amount, description, asOf),
		s.newEntry(ctx, tenantID, "", paymentID, "", types.LedgerEntryTypeCredit, types.LedgerAccountTenantCredit, amount, description, asOf),
	}
	return s.LedgerRepo.CreateBulk(ctx, entries)
}

func (s *ledgerService) AddLineItemToInvoice(ctx context.Context, invoiceID string, item *invoice.LineItem, reason string, asOf time.Time) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if item.ID == "" {
		item.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM)
	}
	item.InvoiceID = inv.ID
	if item.Description == "" {
		item.Description = reason
	}
	item.BaseModel = types.GetDefaultBaseModel(ctx)
	if err := item.Validate(); err != nil {
		return nil, err
	}

	inv.LineItems = append(inv.LineItems, item)
	inv.RecalculateTotals()
	inv.SettlePaymentStatus()
	inv.UpdatedAt = asOf
	inv.UpdatedBy = types.GetUserID(ctx)

	single := &invoice.Invoice{
		ID:        inv.ID,
		TenantID:  inv.TenantID,
		LineItems: []*invoice.LineItem{item},
	}
	if err := s.PostInvoiceToLedger(ctx, single, asOf); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *ledgerService) RemoveLineItemFromInvoice(ctx context.Context, invoiceID, lineItemID, reason string, asOf time.Time, allowBalanceItemRemoval bool) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, item := range inv.LineItems {
		if item.ID == lineItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ierr.NewError("line item not found").
			WithHintf("Invoice %s has no line item %s", invoiceID, lineItemID).
			Mark(ierr.ErrNotFound)
	}

	removed := inv.LineItems[idx]
	if removed.Category == types.LineItemCategoryBalanceBroughtForward && !allowBalanceItemRemoval {
		return nil, ierr.NewError("cannot remove forwarded balance line item").
			WithHint("Removing a forwarded balance requires explicit confirmation").
			WithReportableDetails(map[string]any{
				"line_item_id": lineItemID,
				"category":     removed.Category,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	inv.LineItems = append(inv.LineItems[:idx], inv.LineItems[idx+1:]...)
	inv.RecalculateTotals()
	inv.SettlePaymentStatus()
	inv.UpdatedAt = asOf
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.postLineItemReversal(ctx, inv, removed, reason, asOf); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// postLineItemReversal mirrors the entries PostInvoiceToLedger would have
// written for the item, with debit and credit swapped.
func (s *ledgerService) postLineItemReversal(ctx context.Context, inv *invoice.Invoice, item *invoice.LineItem, reason string, asOf time.Time) error {
	var entries []*ledger.Entry

	switch item.Category {
	case types.LineItemCategoryRent:
		entries = append(entries,
			s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeCredit, types.LedgerAccountReceivable, item.Amount, reason, asOf),
			s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeDebit, types.LedgerAccountRentIncome, item.Amount, reason, asOf),
		)
	case types.LineItemCategoryUtility:
		entries = append(entries,
			s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeCredit, types.LedgerAccountReceivable, item.Amount, reason, asOf),
			s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeDebit, types.LedgerAccountUtilityIncome, item.Amount, reason, asOf),
		)
	case types.LineItemCategoryOverpaymentCredit:
		applied := item.Amount.Neg()
		entries = append(entries,
			s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeCredit, types.LedgerAccountTenantCredit, applied, reason, asOf),
			s.newEntry(ctx, inv.TenantID, inv.ID, "", item.ID, types.LedgerEntryTypeDebit, types.LedgerAccountReceivable, applied, reason, asOf),
		)
	}

	if len(entries) == 0 {
		return nil
	}
	return s.LedgerRepo.CreateBulk(ctx, entries)
}

func (s *ledgerService) GetTenantCreditBalance(ctx context.Context, tenantID string) (decimal.Decimal, error) {
	filter := types.NewNoLimitLedgerFilter()
	filter.TenantID = &tenantID
	account := types.LedgerAccountTenantCredit
	filter.Account = &account

	entries, err := s.LedgerRepo.List(ctx, filter)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Signed())
	}
	return types.RoundMoney(balance), nil
}

func (s *ledgerService) DeleteEntriesForInvoice(ctx context.Context, invoiceID string) error {
	return s.LedgerRepo.DeleteByInvoiceID(ctx, invoiceID)
}

func (s *ledgerService) newEntry(ctx context.Context, tenantID, invoiceID, paymentID, lineItemID string, entryType types.LedgerEntryType, account types.LedgerAccount, amount decimal.Decimal, description string, asOf time.Time) *ledger.Entry {
	return &ledger.Entry{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		TenantID:    tenantID,
		InvoiceID:   invoiceID,
		PaymentID:   paymentID,
		LineItemID:  lineItemID,
		EntryType:   entryType,
		Account:     account,
		Amount:      types.RoundMoney(amount),
		Description: description,
		EntryDate:   asOf,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}
