package api

import (
	v1 "github.com/leaseledger/leaseledger/internal/api/v1"
	"github.com/leaseledger/leaseledger/internal/config"
	"github.com/leaseledger/leaseledger/internal/rest/middleware"
	"github.com/leaseledger/leaseledger/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Invoice    *v1.InvoiceHandler
	Payment    *v1.PaymentHandler
	Reading    *v1.ReadingHandler
	BillingRun *v1.BillingRunHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeAPI {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", v1.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.GenerateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
	}

	payments := router.Group("/payments")
	{
		payments.POST("", handlers.Payment.ProcessPayment)
		payments.GET("", handlers.Payment.ListPayments)
		payments.GET("/:id", handlers.Payment.GetPayment)
	}

	router.POST("/readings", handlers.Reading.ProcessReading)
	router.GET("/tickets/:id", handlers.Reading.GetTicket)

	router.POST("/billing-runs", handlers.BillingRun.ProcessBillingRun)

	router.GET("/tenants/:id/credit", handlers.Payment.GetTenantCredit)
}
