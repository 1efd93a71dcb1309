package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	_ "github.com/flexprice/notebilling/docs/swagger"
	"github.com/flexprice/notebilling/internal/api"
	v1 "github.com/flexprice/notebilling/internal/api/v1"
	"github.com/flexprice/notebilling/internal/cache"
	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/flexprice/notebilling/internal/pubsub"
	"github.com/flexprice/notebilling/internal/pubsub/memory"
	"github.com/flexprice/notebilling/internal/pyroscope"
	"github.com/flexprice/notebilling/internal/recognition/store"
	"github.com/flexprice/notebilling/internal/recognizer"
	"github.com/flexprice/notebilling/internal/repository"
	"github.com/flexprice/notebilling/internal/s3"
	"github.com/flexprice/notebilling/internal/sentry"
	"github.com/flexprice/notebilling/internal/service"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/flexprice/notebilling/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Note Billing API
// @version 1.0
// @description Delivery notes, sales invoices and image recognition intake
// @BasePath /v1
// @schemes http https

func init() {
	// Calendar dates are computed in UTC everywhere
	time.Local = time.UTC
}

var infraModule = fx.Options(
	fx.Provide(
		config.NewConfig,
		logger.NewLogger,
		validator.NewValidator,
		cache.Initialize,
		s3.NewService,
		memory.NewPubSub,
	),
	postgres.Module(),
	sentry.Module(),
	pyroscope.Module(),
)

var recognitionModule = fx.Provide(
	store.New,
	func(s *store.Stores) recognition.SnapshotStore { return s.Snapshots },
	func(s *store.Stores) recognition.HistoryStore { return s.History },
	recognizer.New,
)

var repositoryModule = fx.Provide(
	repository.NewDeliveryNoteRepository,
	repository.NewSalesInvoiceRepository,
	repository.NewProductRepository,
	repository.NewSalesPersonRepository,
	repository.NewTaxRateRepository,
	repository.NewDiscountRateRepository,
)

var serviceModule = fx.Provide(
	service.NewServiceParams,
	service.NewDiscountRateService,
	service.NewDeliveryNoteService,
	service.NewSalesInvoiceService,
	service.NewRecognitionQueueService,
)

func main() {
	fx.New(
		infraModule,
		recognitionModule,
		repositoryModule,
		serviceModule,
		fx.Provide(provideHandlers, provideRouter),
		fx.Invoke(closeOnStop, startRecognitionQueue, startAPIServer),
	).Run()
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	deliveryNoteService service.DeliveryNoteService,
	salesInvoiceService service.SalesInvoiceService,
	discountRateService service.DiscountRateService,
	recognitionQueueService service.RecognitionQueueService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(logger),
		DeliveryNote: v1.NewDeliveryNoteHandler(deliveryNoteService, logger),
		SalesInvoice: v1.NewSalesInvoiceHandler(salesInvoiceService, logger),
		DiscountRate: v1.NewDiscountRateHandler(discountRateService, logger),
		Recognition:  v1.NewRecognitionHandler(recognitionQueueService, cfg, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, reporter sentry.Reporter) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(handlers, cfg, logger, reporter)
}

// closeOnStop releases the database and the event bus once everything else has stopped
func closeOnStop(lc fx.Lifecycle, db *postgres.DB, ps pubsub.PubSub, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := ps.Close(); err != nil {
				log.Errorw("failed to close pubsub", "error", err)
			}
			db.Close()
			return nil
		},
	})
}

func startRecognitionQueue(
	lc fx.Lifecycle,
	queue service.RecognitionQueueService,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting recognition queue")
			return queue.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping recognition queue")
			return queue.Stop(ctx)
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalw("API server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down API server")
			return srv.Shutdown(ctx)
		},
	})
}
