package v1

import (
	"net/http"

	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/service"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service service.PaymentService
	ledger  service.LedgerService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, ledger service.LedgerService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, ledger: ledger, log: log}
}

// ProcessPayment records tendered money and allocates it across invoices.
// POST /v1/payments
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req dto.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ProcessPayment(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to process payment", "tenant_id", req.TenantID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPayment returns one payment audit record by id.
// GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	resp, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPayments returns payments matching the query filter.
// GET /v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var filter types.PaymentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListPayments(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTenantCredit returns a tenant's available credit balance.
// GET /v1/tenants/:id/credit
func (h *PaymentHandler) GetTenantCredit(c *gin.Context) {
	tenantID := c.Param("id")
	balance, err := h.ledger.GetTenantCreditBalance(c.Request.Context(), tenantID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, &dto.TenantCreditResponse{
		TenantID:      tenantID,
		CreditBalance: balance,
	})
}
