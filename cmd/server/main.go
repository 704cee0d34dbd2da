package main

import (
	"context"
	"time"

	"github.com/leaseledger/leaseledger/internal/api"
	v1 "github.com/leaseledger/leaseledger/internal/api/v1"
	"github.com/leaseledger/leaseledger/internal/cache"
	"github.com/leaseledger/leaseledger/internal/config"
	"github.com/leaseledger/leaseledger/internal/document"
	"github.com/leaseledger/leaseledger/internal/logger"
	"github.com/leaseledger/leaseledger/internal/repository"
	"github.com/leaseledger/leaseledger/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Document store
			document.NewDB,
			document.NewClient,
			provideDocumentClient,

			// Cache
			provideCache,

			// Repositories
			repository.NewLeaseRepository,
			repository.NewPropertyRepository,
			repository.NewTenantRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewLedgerRepository,
			repository.NewTicketRepository,
			repository.NewTaskRepository,
			repository.NewNotificationRepository,

			// Services
			service.NewServiceParams,
			service.NewLedgerService,
			service.NewNotificationService,
			service.NewInvoiceService,
			service.NewMeteringService,
			service.NewPaymentService,
			service.NewBillingRunService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideDocumentClient(client *document.Client) document.IClient {
	return client
}

func provideCache(cfg *config.Configuration) cache.Cache {
	return cache.NewInMemoryCache(cfg.Cache.Enabled)
}

func provideHandlers(
	log *logger.Logger,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	ledgerService service.LedgerService,
	meteringService service.MeteringService,
	billingRunService service.BillingRunService,
) api.Handlers {
	return api.Handlers{
		Invoice:    v1.NewInvoiceHandler(invoiceService, log),
		Payment:    v1.NewPaymentHandler(paymentService, ledgerService, log),
		Reading:    v1.NewReadingHandler(meteringService, invoiceService, log),
		BillingRun: v1.NewBillingRunHandler(billingRunService, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	client *document.Client,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Document.AutoMigrate {
				if err := client.Migrate(ctx); err != nil {
					return err
				}
				log.Info("Document store migrated")
			}

			log.Infow("Starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
