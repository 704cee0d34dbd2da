package service

import (
	"context"
	"sort"
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/domain/payment"
	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentService records tendered money and allocates it across invoices.
// A single tendered amount may touch several invoices; each touch leaves its
// own payment audit record.
type PaymentService interface {
	ProcessPayment(ctx context.Context, req *dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
	LedgerService LedgerService
}

func NewPaymentService(params ServiceParams, ledgerService LedgerService) PaymentService {
	return &paymentService{
		ServiceParams: params,
		LedgerService: ledgerService,
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, req *dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.TenantRepo.Get(ctx, req.TenantID); err != nil {
		return nil, err
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	resp := &dto.ProcessPaymentResponse{
		AmountApplied: decimal.Zero,
		CreditAmount:  decimal.Zero,
	}

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		remaining := types.RoundMoney(req.Amount)

		targets, err := s.resolveTargets(ctx, req)
		if err != nil {
			return err
		}

		for _, inv := range targets {
			if remaining.LessThanOrEqual(decimal.Zero) {
				break
			}

			p := s.newPayment(ctx, req, inv.ID, asOf)
			applied, err := s.LedgerService.PostPaymentToLedger(ctx, inv, remaining, p.ID, asOf)
			if err != nil {
				return err
			}
			if applied.LessThanOrEqual(decimal.Zero) {
				continue
			}

			p.Amount = applied
			if err := p.Validate(); err != nil {
				return err
			}
			if err := s.PaymentRepo.Create(ctx, p); err != nil {
				return err
			}

			resp.Payments = append(resp.Payments, p)
			resp.AmountApplied = resp.AmountApplied.Add(applied)
			remaining = remaining.Sub(applied)
		}

		// Whatever no balance absorbed becomes tenant credit.
		if remaining.GreaterThan(decimal.Zero) {
			p := s.newPayment(ctx, req, "", asOf)
			p.Amount = remaining
			if err := s.LedgerService.PostTenantCredit(ctx, req.TenantID, remaining, p.ID, asOf, "Overpayment credited"); err != nil {
				return err
			}
			if err := s.PaymentRepo.Create(ctx, p); err != nil {
				return err
			}
			resp.Payments = append(resp.Payments, p)
			resp.CreditAmount = remaining
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("processed payment",
		"tenant_id", req.TenantID,
		"amount", req.Amount,
		"applied", resp.AmountApplied,
		"credited", resp.CreditAmount,
		"invoices_touched", len(resp.Payments))
	return resp, nil
}

// resolveTargets returns the invoices the payment may settle, oldest billing
// period first. A targeted payment settles only its target; an untargeted one
// walks every outstanding invoice of the tenant.
func (s *paymentService) resolveTargets(ctx context.Context, req *dto.ProcessPaymentRequest) ([]*invoice.Invoice, error) {
	if req.TargetInvoiceID != "" {
		inv, err := s.InvoiceRepo.Get(ctx, req.TargetInvoiceID)
		if err != nil {
			return nil, err
		}
		if inv.TenantID != req.TenantID {
			return nil, ierr.NewError("invoice belongs to a different tenant").
				WithHintf("Invoice %s is not billed to tenant %s", inv.ID, req.TenantID).
				Mark(ierr.ErrValidation)
		}
		if !inv.InvoiceStatus.IsOutstanding() {
			return nil, ierr.NewError("invoice is not payable").
				WithHintf("Invoice %s has status %s", inv.ID, inv.InvoiceStatus).
				Mark(ierr.ErrInvalidOperation)
		}
		return []*invoice.Invoice{inv}, nil
	}

	filter := types.NewNoLimitInvoiceFilter()
	filter.TenantID = &req.TenantID
	filter.InvoiceStatus = []types.InvoiceStatus{
		types.InvoiceStatusReady,
		types.InvoiceStatusPartiallyPaid,
		types.InvoiceStatusOverdue,
		types.InvoiceStatusPendingUtilities,
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].BillingPeriod.Before(invoices[j].BillingPeriod)
	})
	return invoices, nil
}

func (s *paymentService) newPayment(ctx context.Context, req *dto.ProcessPaymentRequest, invoiceID string, asOf time.Time) *payment.Payment {
	return &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		TenantID:      req.TenantID,
		InvoiceID:     invoiceID,
		Method:        req.Method,
		Reference:     req.Reference,
		PaymentDate:   asOf,
		PaymentStatus: types.PaymentStatusSucceeded,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentResponse{Payment: p}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListPaymentsResponse{
		Items: make([]*dto.PaymentResponse, 0, len(payments)),
		Total: count,
	}
	for _, p := range payments {
		resp.Items = append(resp.Items, &dto.PaymentResponse{Payment: p})
	}
	return resp, nil
}
