package v1

import (
	"net/http"

	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/service"
	"github.com/gin-gonic/gin"
)

type ReadingHandler struct {
	metering service.MeteringService
	invoices service.InvoiceService
	log      *logger.Logger
}

func NewReadingHandler(metering service.MeteringService, invoices service.InvoiceService, log *logger.Logger) *ReadingHandler {
	return &ReadingHandler{metering: metering, invoices: invoices, log: log}
}

// ProcessReading submits one meter reading against a pending task.
// POST /v1/readings
func (h *ReadingHandler) ProcessReading(c *gin.Context) {
	var req dto.ProcessReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.metering.ProcessUtilityReading(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to process reading", "task_id", req.TaskID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTicket returns a metering ticket with its tasks.
// GET /v1/tickets/:id
func (h *ReadingHandler) GetTicket(c *gin.Context) {
	resp, err := h.invoices.GetTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
