package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/leaseledger/leaseledger/internal/cache"
	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/lease"
	"github.com/leaseledger/leaseledger/internal/domain/property"
	"github.com/leaseledger/leaseledger/internal/domain/ticket"
	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

const snapshotCacheExpiry = 15 * time.Minute

// InvoiceService generates and serves invoices. Generation is the heart of
// the billing cycle: rent and flat utility charges, prior-balance
// consolidation, overpayment credit, metering tickets, ledger postings, and
// the tenant notification all happen inside one transaction.
type InvoiceService interface {
	GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	GetTicket(ctx context.Context, id string) (*dto.TicketResponse, error)
}

type invoiceService struct {
	ServiceParams
	LedgerService       LedgerService
	NotificationService NotificationService
}

func NewInvoiceService(params ServiceParams, ledgerService LedgerService, notificationService NotificationService) InvoiceService {
	return &invoiceService{
		ServiceParams:       params,
		LedgerService:       ledgerService,
		NotificationService: notificationService,
	}
}

func (s *invoiceService) GenerateInvoice(ctx context.Context, req *dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	period := types.BillingPeriod(req.BillingPeriod)
	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	l, err := s.LeaseRepo.Get(ctx, req.LeaseID)
	if err != nil {
		return nil, err
	}

	prop, err := s.getProperty(ctx, l.PropertyID)
	if err != nil {
		return nil, err
	}

	var inv *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.InvoiceRepo.GetByLeaseAndPeriod(ctx, l.ID, period)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}
		if existing != nil {
			if !req.Force {
				return ierr.NewError("invoice already exists for lease and period").
					WithHintf("Lease %s already has invoice %s for %s; pass force to regenerate", l.ID, existing.InvoiceNumber, period).
					WithReportableDetails(map[string]any{
						"lease_id":       l.ID,
						"billing_period": period,
						"invoice_id":     existing.ID,
					}).
					Mark(ierr.ErrAlreadyExists)
			}
			if err := s.reverseInvoice(ctx, existing, asOf); err != nil {
				return err
			}
		}

		inv, err = s.buildInvoice(ctx, l, prop, period, asOf)
		if err != nil {
			return err
		}

		if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
			return err
		}

		if inv.InvoiceStatus == types.InvoiceStatusPendingUtilities {
			if err := s.openMeteringTicket(ctx, l, prop, inv, period); err != nil {
				return err
			}
		}

		if err := s.consolidateSources(ctx, inv, asOf); err != nil {
			return err
		}

		if err := s.LedgerService.PostInvoiceToLedger(ctx, inv, asOf); err != nil {
			return err
		}

		if inv.InvoiceStatus == types.InvoiceStatusReady {
			if err := s.NotificationService.QueueInvoiceIssued(ctx, inv); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("generated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"lease_id", l.ID,
		"billing_period", period,
		"status", inv.InvoiceStatus,
		"total_amount", inv.TotalAmount)
	return dto.NewInvoiceResponse(inv), nil
}

// buildInvoice assembles the invoice document: rent, flat utilities,
// forwarded balances, and overpayment credit. Metered utility charges arrive
// later through readings.
func (s *invoiceService) buildInvoice(ctx context.Context, l *lease.Lease, prop *property.Property, period types.BillingPeriod, asOf time.Time) (*invoice.Invoice, error) {
	dueDay := prop.DueDay
	if dueDay == 0 {
		dueDay = s.Config.Billing.DefaultDueDay
	}
	dueDate, err := period.DueDate(dueDay)
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: types.GenerateInvoiceNumber(),
		PropertyID:    l.PropertyID,
		UnitID:        l.UnitID,
		TenantID:      l.TenantID,
		LeaseID:       l.ID,
		BillingPeriod: period,
		DateIssued:    asOf,
		DueDate:       dueDate,
		InvoiceStatus: types.InvoiceStatusReady,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	inv.LineItems = append(inv.LineItems, &invoice.LineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		InvoiceID:   inv.ID,
		Description: fmt.Sprintf("Rent for %s", period),
		Amount:      l.RentAmount,
		Category:    types.LineItemCategoryRent,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	})

	for _, u := range l.Utilities {
		if u.Metered || u.FlatAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		inv.LineItems = append(inv.LineItems, &invoice.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:   inv.ID,
			Description: fmt.Sprintf("%s (flat rate)", u.Name),
			Amount:      u.FlatAmount,
			Category:    types.LineItemCategoryUtility,
			UtilityName: u.Name,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		})
	}

	if err := s.applyBalanceCarryForward(ctx, inv, period); err != nil {
		return nil, err
	}

	if err := s.applyOverpaymentCredit(ctx, inv); err != nil {
		return nil, err
	}

	if len(l.MeteredUtilities()) > 0 {
		inv.InvoiceStatus = types.InvoiceStatusPendingUtilities
	}

	// The excess credit is fixed here, before posting returns it to the
	// tenant. Later line items shift the subtotal but never this value.
	if sub := inv.Subtotal(); sub.IsNegative() {
		inv.OverpaidAmount = types.RoundMoney(sub.Neg())
	}
	inv.RecalculateTotals()
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// applyBalanceCarryForward folds unpaid prior balances into the new invoice.
// Sources are the tenant's invoices from earlier periods that are not PAID,
// CANCELLED, or CONSOLIDATED and have not already been forwarded.
func (s *invoiceService) applyBalanceCarryForward(ctx context.Context, inv *invoice.Invoice, period types.BillingPeriod) error {
	sources, err := s.findConsolidationSources(ctx, inv.TenantID, period)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return nil
	}

	method := s.Config.Billing.ConsolidationMethod
	switch method {
	case types.ConsolidationMethodItemized:
		for i, src := range sources {
			inv.LineItems = append(inv.LineItems, &invoice.LineItem{
				ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
				InvoiceID:       inv.ID,
				Description:     fmt.Sprintf("Balance brought forward from %s (%s)", src.InvoiceNumber, src.BillingPeriod),
				Amount:          src.BalanceAmount,
				Category:        types.LineItemCategoryBalanceBroughtForward,
				SourceInvoiceID: src.ID,
				SourcePeriod:    src.BillingPeriod,
				BaseModel:       types.GetDefaultBaseModel(ctx),
			})
			inv.AllocationRules = append(inv.AllocationRules, invoice.AllocationRule{
				Priority:      i + 1,
				InvoiceID:     src.ID,
				BillingPeriod: src.BillingPeriod,
				Amount:        src.BalanceAmount,
			})
		}
	default:
		combined := decimal.Zero
		for _, src := range sources {
			combined = combined.Add(src.BalanceAmount)
		}
		inv.LineItems = append(inv.LineItems, &invoice.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:   inv.ID,
			Description: "Balance brought forward",
			Amount:      combined,
			Category:    types.LineItemCategoryBalanceBroughtForward,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		})
	}

	for _, src := range sources {
		inv.Consolidation = append(inv.Consolidation, invoice.ConsolidationSource{
			InvoiceID:     src.ID,
			BillingPeriod: src.BillingPeriod,
			Amount:        src.BalanceAmount,
		})
	}
	return nil
}

// findConsolidationSources returns the invoices whose balances carry forward,
// ordered oldest period first.
func (s *invoiceService) findConsolidationSources(ctx context.Context, tenantID string, period types.BillingPeriod) ([]*invoice.Invoice, error) {
	filter := types.NewNoLimitInvoiceFilter()
	filter.TenantID = &tenantID
	filter.PeriodBefore = &period

	candidates, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var sources []*invoice.Invoice
	for _, c := range candidates {
		switch c.InvoiceStatus {
		case types.InvoiceStatusPaid, types.InvoiceStatusCancelled, types.InvoiceStatusConsolidated:
			continue
		}
		if c.BalanceForwarded || c.BalanceAmount.LessThanOrEqual(decimal.Zero) {
			continue
		}
		sources = append(sources, c)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].BillingPeriod.Before(sources[j].BillingPeriod)
	})
	return sources, nil
}

// applyOverpaymentCredit consumes the tenant's entire ledger credit as a
// negative line item. Excess over the charges clamps the invoice at zero and
// flows back to the tenant through PostInvoiceToLedger.
func (s *invoiceService) applyOverpaymentCredit(ctx context.Context, inv *invoice.Invoice) error {
	credit, err := s.LedgerService.GetTenantCreditBalance(ctx, inv.TenantID)
	if err != nil {
		return err
	}
	if credit.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	inv.LineItems = append(inv.LineItems, &invoice.LineItem{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
		InvoiceID:   inv.ID,
		Description: "Overpayment Credit Applied",
		Amount:      credit.Neg(),
		Category:    types.LineItemCategoryOverpaymentCredit,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	})
	return nil
}

// consolidateSources marks every source invoice CONSOLIDATED once the new
// invoice carrying its balance is persisted.
func (s *invoiceService) consolidateSources(ctx context.Context, inv *invoice.Invoice, asOf time.Time) error {
	for _, src := range inv.Consolidation {
		source, err := s.InvoiceRepo.Get(ctx, src.InvoiceID)
		if err != nil {
			return err
		}
		source.InvoiceStatus = types.InvoiceStatusConsolidated
		source.BalanceForwarded = true
		source.ConsolidatedInto = inv.ID
		source.UpdatedAt = asOf
		source.UpdatedBy = types.GetUserID(ctx)
		if err := s.InvoiceRepo.Update(ctx, source); err != nil {
			return err
		}
	}
	return nil
}

// reverseInvoice undoes a forced-out invoice before regeneration: source
// invoices it consolidated are restored to OVERDUE and unflagged, its ledger
// entries are deleted, then the document itself. Skipping the restoration
// would leave orphaned unpayable balances.
func (s *invoiceService) reverseInvoice(ctx context.Context, inv *invoice.Invoice, asOf time.Time) error {
	for _, src := range inv.Consolidation {
		source, err := s.InvoiceRepo.Get(ctx, src.InvoiceID)
		if err != nil {
			if ierr.IsNotFound(err) {
				s.Logger.Warnw("consolidation source missing during reversal",
					"invoice_id", inv.ID,
					"source_invoice_id", src.InvoiceID)
				continue
			}
			return err
		}
		source.InvoiceStatus = types.InvoiceStatusOverdue
		source.BalanceForwarded = false
		source.ConsolidatedInto = ""
		source.UpdatedAt = asOf
		source.UpdatedBy = types.GetUserID(ctx)
		if err := s.InvoiceRepo.Update(ctx, source); err != nil {
			return err
		}
	}

	if err := s.LedgerService.DeleteEntriesForInvoice(ctx, inv.ID); err != nil {
		return err
	}
	if err := s.InvoiceRepo.Delete(ctx, inv.ID); err != nil {
		return err
	}

	s.Logger.Infow("reversed invoice for regeneration",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"restored_sources", len(inv.Consolidation))
	return nil
}

// openMeteringTicket attaches one reading task per metered utility to the
// property's open ticket for the period, creating the ticket if needed.
func (s *invoiceService) openMeteringTicket(ctx context.Context, l *lease.Lease, prop *property.Property, inv *invoice.Invoice, period types.BillingPeriod) error {
	tkt, err := s.TicketRepo.GetOpenByPropertyAndPeriod(ctx, l.PropertyID, period)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return err
		}
		tkt = &ticket.Ticket{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TICKET),
			PropertyID:    l.PropertyID,
			BillingPeriod: period,
			Title:         fmt.Sprintf("Utility readings for %s, %s", prop.Name, period),
			TicketStatus:  types.TicketStatusOpen,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}
		if err := s.TicketRepo.Create(ctx, tkt); err != nil {
			return err
		}
	}

	metered := l.MeteredUtilities()
	for _, u := range metered {
		task := &ticket.Task{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TASK),
			TicketID:        tkt.ID,
			LeaseID:         l.ID,
			InvoiceID:       inv.ID,
			UtilityName:     u.Name,
			Title:           fmt.Sprintf("%s reading for %s", u.Name, period),
			TaskStatus:      types.TaskStatusAwaitingInput,
			PreviousReading: u.LastReading,
			Rate:            u.Rate,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		}
		if err := s.TaskRepo.Create(ctx, task); err != nil {
			return err
		}
	}

	tkt.TotalTasks += len(metered)
	tkt.UpdatedAt = time.Now().UTC()
	tkt.UpdatedBy = types.GetUserID(ctx)
	return s.TicketRepo.Update(ctx, tkt)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListInvoicesResponse{
		Items: make([]*dto.InvoiceResponse, 0, len(invoices)),
		Total: count,
	}
	for _, inv := range invoices {
		resp.Items = append(resp.Items, dto.NewInvoiceResponse(inv))
	}
	return resp, nil
}

func (s *invoiceService) GetTicket(ctx context.Context, id string) (*dto.TicketResponse, error) {
	tkt, err := s.TicketRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.TaskRepo.ListByTicket(ctx, tkt.ID)
	if err != nil {
		return nil, err
	}
	return &dto.TicketResponse{Ticket: tkt, Tasks: tasks}, nil
}

// getProperty looks the property up through the snapshot cache; a billing
// run touches the same property once per lease.
func (s *invoiceService) getProperty(ctx context.Context, id string) (*property.Property, error) {
	key := cache.Key(cache.PrefixProperty, id)
	if cached, ok := s.Cache.Get(ctx, key); ok {
		if prop, ok := cached.(*property.Property); ok {
			return prop, nil
		}
	}

	prop, err := s.PropertyRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, key, prop, snapshotCacheExpiry)
	return prop, nil
}
