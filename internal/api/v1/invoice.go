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

type InvoiceHandler struct {
	service service.InvoiceService
	log     *logger.Logger
}

func NewInvoiceHandler(service service.InvoiceService, log *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, log: log}
}

// GenerateInvoice creates one invoice for a lease and billing period.
// POST /v1/invoices
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	var req dto.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GenerateInvoice(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to generate invoice", "lease_id", req.LeaseID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetInvoice returns one invoice by id.
// GET /v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	resp, err := h.service.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListInvoices returns invoices matching the query filter.
// GET /v1/invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var filter types.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListInvoices(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
