package service

import (
	"context"
	"fmt"
	"time"

	"github.com/leaseledger/leaseledger/internal/domain/invoice"
	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/shopspring/decimal"
)

// MeteringService ingests utility meter readings. Each reading completes one
// task; the last task of a ticket closes it and finalizes every invoice the
// ticket was blocking.
type MeteringService interface {
	ProcessUtilityReading(ctx context.Context, req *dto.ProcessReadingRequest) (*dto.ProcessReadingResponse, error)
}

type meteringService struct {
	ServiceParams
	LedgerService       LedgerService
	NotificationService NotificationService
}

func NewMeteringService(params ServiceParams, ledgerService LedgerService, notificationService NotificationService) MeteringService {
	return &meteringService{
		ServiceParams:       params,
		LedgerService:       ledgerService,
		NotificationService: notificationService,
	}
}

func (s *meteringService) ProcessUtilityReading(ctx context.Context, req *dto.ProcessReadingRequest) (*dto.ProcessReadingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	task, err := s.TaskRepo.Get(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if task.TaskStatus == types.TaskStatusCompleted {
		return nil, ierr.NewError("task already completed").
			WithHintf("Task %s already has a reading recorded", task.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	// Reading regression is rejected outright; the task stays awaiting input.
	if req.CurrentReading.LessThan(task.PreviousReading) {
		return nil, ierr.NewError("reading regression").
			WithHintf("Current reading %s is below the previous reading %s",
				req.CurrentReading.String(), task.PreviousReading.String()).
			WithReportableDetails(map[string]any{
				"task_id":          task.ID,
				"previous_reading": task.PreviousReading,
				"current_reading":  req.CurrentReading,
			}).
			Mark(ierr.ErrValidation)
	}

	readingDate := time.Now().UTC()
	if req.ReadingDate != nil {
		readingDate = req.ReadingDate.UTC()
	}

	usage := req.CurrentReading.Sub(task.PreviousReading)
	amount := usage.Mul(task.Rate)

	resp := &dto.ProcessReadingResponse{}
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		item := &invoice.LineItem{
			Description: fmt.Sprintf("%s charge (%s units)", task.UtilityName, usage.String()),
			Amount:      amount,
			Category:    types.LineItemCategoryUtility,
			UtilityName: task.UtilityName,
			UsageUnits:  &usage,
			Rate:        &task.Rate,
			MeterReading: &invoice.MeterReadingDetail{
				PreviousReading: task.PreviousReading,
				CurrentReading:  req.CurrentReading,
				ReadingDate:     readingDate,
			},
		}

		// The ledger posts the line item before the invoice is read back
		// anywhere else, so notifications never show a stale balance.
		inv, err := s.LedgerService.AddLineItemToInvoice(ctx, task.InvoiceID, item, "utility reading", readingDate)
		if err != nil {
			return err
		}

		task.CurrentReading = &req.CurrentReading
		task.ReadingDate = &readingDate
		task.TaskStatus = types.TaskStatusCompleted
		task.UpdatedAt = readingDate
		task.UpdatedBy = types.GetUserID(ctx)
		if err := s.TaskRepo.Update(ctx, task); err != nil {
			return err
		}

		if err := s.advanceLastReading(ctx, task.LeaseID, task.UtilityName, req.CurrentReading); err != nil {
			return err
		}

		closed, err := s.settleTicket(ctx, task.TicketID, readingDate)
		if err != nil {
			return err
		}
		if closed {
			// Re-read after finalization so the response carries the READY
			// status.
			inv, err = s.InvoiceRepo.Get(ctx, task.InvoiceID)
			if err != nil {
				return err
			}
		}

		resp.Task = task
		resp.Invoice = inv
		resp.TicketClosed = closed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("processed utility reading",
		"task_id", task.ID,
		"invoice_id", task.InvoiceID,
		"utility", task.UtilityName,
		"usage", usage,
		"amount", amount,
		"ticket_closed", resp.TicketClosed)
	return resp, nil
}

// advanceLastReading moves the lease's stored meter position so next period's
// task starts from this reading.
func (s *meteringService) advanceLastReading(ctx context.Context, leaseID, utilityName string, reading decimal.Decimal) error {
	l, err := s.LeaseRepo.Get(ctx, leaseID)
	if err != nil {
		return err
	}
	for i := range l.Utilities {
		if l.Utilities[i].Name == utilityName {
			l.Utilities[i].LastReading = reading
		}
	}
	l.UpdatedAt = time.Now().UTC()
	l.UpdatedBy = types.GetUserID(ctx)
	return s.LeaseRepo.Update(ctx, l)
}

// settleTicket recomputes the ticket's completion count. When every task is
// done the ticket closes and each distinct invoice it referenced becomes
// READY and is notified.
func (s *meteringService) settleTicket(ctx context.Context, ticketID string, asOf time.Time) (bool, error) {
	tkt, err := s.TicketRepo.Get(ctx, ticketID)
	if err != nil {
		return false, err
	}

	tasks, err := s.TaskRepo.ListByTicket(ctx, tkt.ID)
	if err != nil {
		return false, err
	}

	completed := 0
	for _, t := range tasks {
		if t.TaskStatus == types.TaskStatusCompleted {
			completed++
		}
	}

	tkt.TotalTasks = len(tasks)
	tkt.CompletedTasks = completed
	allDone := completed == len(tasks) && len(tasks) > 0
	if allDone {
		tkt.TicketStatus = types.TicketStatusClosed
	}
	tkt.UpdatedAt = asOf
	tkt.UpdatedBy = types.GetUserID(ctx)
	if err := s.TicketRepo.Update(ctx, tkt); err != nil {
		return false, err
	}
	if !allDone {
		return false, nil
	}

	seen := make(map[string]struct{})
	for _, t := range tasks {
		if _, ok := seen[t.InvoiceID]; ok {
			continue
		}
		seen[t.InvoiceID] = struct{}{}

		inv, err := s.InvoiceRepo.Get(ctx, t.InvoiceID)
		if err != nil {
			if ierr.IsNotFound(err) {
				s.Logger.Warnw("ticket references missing invoice",
					"ticket_id", tkt.ID,
					"invoice_id", t.InvoiceID)
				continue
			}
			return false, err
		}
		if inv.InvoiceStatus != types.InvoiceStatusPendingUtilities {
			continue
		}

		inv.InvoiceStatus = types.InvoiceStatusReady
		inv.UpdatedAt = asOf
		inv.UpdatedBy = types.GetUserID(ctx)
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return false, err
		}
		if err := s.NotificationService.QueueInvoiceIssued(ctx, inv); err != nil {
			return false, err
		}
	}

	s.Logger.Infow("closed utility ticket",
		"ticket_id", tkt.ID,
		"invoices_finalized", len(seen))
	return true, nil
}
