package v1

import (
	"net/http"

	"github.com/leaseledger/leaseledger/internal/dto"
	ierr "github.com/leaseledger/leaseledger/internal/errors"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/service"
	"github.com/gin-gonic/gin"
)

type BillingRunHandler struct {
	service service.BillingRunService
	log     *logger.Logger
}

func NewBillingRunHandler(service service.BillingRunService, log *logger.Logger) *BillingRunHandler {
	return &BillingRunHandler{service: service, log: log}
}

// ProcessBillingRun generates invoices for every active lease in a period.
// POST /v1/billing-runs
func (h *BillingRunHandler) ProcessBillingRun(c *gin.Context) {
	var req dto.BillingRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ProcessAllLeases(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("billing run failed", "billing_period", req.BillingPeriod, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
