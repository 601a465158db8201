package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/opamenu/om-order/config"
	"github.com/opamenu/om-order/internal/module/adminapp/paymentconfig"
	"github.com/opamenu/om-order/internal/module/storeapp/loyalty"
	storeapp_order "github.com/opamenu/om-order/internal/module/storeapp/order"
	"github.com/opamenu/om-order/internal/module/storeapp/payment"
	internalMiddleware "github.com/opamenu/om-order/internal/pkg/middleware"
	"github.com/opamenu/om-order/pkg/applogger"
	"github.com/opamenu/om-order/pkg/gctasks"
	"github.com/opamenu/om-order/pkg/kafka"
	"github.com/opamenu/om-order/pkg/middleware"
	"github.com/opamenu/om-order/pkg/monitoring"
	"github.com/opamenu/om-order/pkg/postgresql"
	"github.com/opamenu/om-order/pkg/pubsub"
	"github.com/opamenu/om-order/pkg/redis"
	"github.com/opamenu/om-order/pkg/server"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

var c *config.Config

func init() {
	c = config.Get()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := applogger.GetLogrus()

	mon := monitoring.NewOpenTelemetry(
		c.Application.Name,
		c.Application.Environment,
		c.GCP.ProjectID,
	)

	mon.Start(ctx)

	hc := &http.Client{
		Timeout: c.Payment.GatewayTimeout,
	}

	psqldb := postgresql.GetDatabase()
	if err := psqldb.Ping(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	publisher := pubsub.PublisherFromConfluentKafkaProducer(logger, kafka.NewProducer())

	rc := redis.GetClient()
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	cloudTask := gctasks.NewGCTasks(logger, c.GCP.ProjectID, c.GCP.ServiceAccount)

	tenantResolver := internalMiddleware.NewTenantResolver()

	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(c.Application.Name),
		middleware.HTTPResponseTraceInjection,
		middleware.NewHTTPRequestLogger(logger, c.Application.Debug, http.StatusInternalServerError).Middleware,
	)

	// admin's app
	adminConfigRepo := paymentconfig.NewConfigRepository(logger, psqldb)
	adminConfigUseCase := paymentconfig.NewConfigUseCase(paymentconfig.ConfigUseCaseProperty{
		Logger:           logger,
		Timeout:          c.Application.Timeout,
		ConfigRepository: adminConfigRepo,
	})
	paymentconfig.InitHTTPHandler(router, adminConfigUseCase)

	// store's app
	tenantConfigRepo := payment.NewTenantConfigRepository(logger, psqldb)
	chargeRepo := payment.NewChargeRepository(logger, psqldb)
	orderLookupRepo := payment.NewOrderLookupRepository(logger, psqldb)
	providerRegistry := payment.NewProviderRegistry(payment.ProviderRegistryProperty{
		Logger:         logger,
		OpenPixBaseURL: c.Payment.OpenPixBaseURL,
		HTTPClient:     hc,
		ConfigRepo:     tenantConfigRepo,
	})
	orchestrator := payment.NewOrchestrator(payment.OrchestratorProperty{
		Logger:       logger,
		Timeout:      c.Application.Timeout,
		BaseURL:      c.Application.BaseURL,
		ChargeExpiry: c.Payment.ChargeExpiry,
		Registry:     providerRegistry,
		ChargeRepo:   chargeRepo,
		OrderLookup:  orderLookupRepo,
		CloudTask:    cloudTask,
	})

	programRepo := loyalty.NewProgramRepository(logger, psqldb)
	transactionRepo := loyalty.NewTransactionRepository(logger, psqldb)
	settlement := loyalty.NewSettlement(loyalty.SettlementProperty{
		Logger:          logger,
		ProgramRepo:     programRepo,
		TransactionRepo: transactionRepo,
	})

	orderRepo := storeapp_order.NewOrderRepository(logger, psqldb)
	itemRepo := storeapp_order.NewItemRepository(logger, psqldb)
	historyRepo := storeapp_order.NewStatusHistoryRepository(logger, psqldb)
	validationService := storeapp_order.NewValidationService(logger, orderRepo)
	orderUseCase := storeapp_order.NewOrderUseCase(storeapp_order.OrderUseCaseProperty{
		Logger:            logger,
		Timeout:           c.Application.Timeout,
		ValidationService: validationService,
		OrderRepository:   orderRepo,
		ItemRepository:    itemRepo,
		HistoryRepository: historyRepo,
		ChargeRepository:  chargeRepo,
		Orchestrator:      orchestrator,
		Settlement:        settlement,
		Publisher:         publisher,
		Redis:             rc,
	})

	// paid charges confirm orders; wired after both sides exist
	orchestrator.SetOrderConfirmer(orderUseCase)

	storeapp_order.InitHTTPHandler(router, tenantResolver, orderUseCase)
	payment.InitHTTPHandler(router, tenantResolver, orchestrator)
	loyalty.InitHTTPHandler(router, tenantResolver, settlement)

	handler := middleware.SetChain(
		router,
		cors.New(cors.Options{
			AllowedOrigins:   c.CORS.AllowedOrigins,
			AllowedMethods:   c.CORS.AllowedMethods,
			AllowedHeaders:   c.CORS.AllowedHeaders,
			ExposedHeaders:   c.CORS.ExposedHeaders,
			MaxAge:           c.CORS.MaxAge,
			AllowCredentials: c.CORS.AllowCredentials,
		}).Handler,
	)

	srv := &server.Server{
		Server: http.Server{
			Addr:    fmt.Sprintf(":%d", c.Application.Port),
			Handler: handler,
		},
		Logger: logger,
	}

	go func() {
		srv.ListenAndServe()
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	srv.Shutdown(ctx)
	publisher.Close()
	psqldb.Close()
	rc.Close()
	cloudTask.Close()
	mon.Stop(ctx)
}
