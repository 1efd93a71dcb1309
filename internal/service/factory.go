package service

import (
	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/discountrate"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	"github.com/flexprice/notebilling/internal/domain/salesinvoice"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/flexprice/notebilling/internal/pubsub"
	"github.com/flexprice/notebilling/internal/pyroscope"
	"github.com/flexprice/notebilling/internal/recognizer"
	"github.com/flexprice/notebilling/internal/s3"
	"github.com/flexprice/notebilling/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// S3 is nil when object storage is disabled
	S3 s3.Service

	// Repositories
	DeliveryNoteRepo deliverynote.Repository
	SalesInvoiceRepo salesinvoice.Repository
	ProductRepo      product.Repository
	SalesPersonRepo  salesperson.Repository
	TaxRateRepo      taxrate.Repository
	DiscountRateRepo discountrate.Repository

	// Recognition intake
	Recognizer    recognizer.Recognizer
	SnapshotStore recognition.SnapshotStore
	HistoryStore  recognition.HistoryStore
	PubSub        pubsub.PubSub

	// Reporter receives failures that are swallowed instead of returned
	Reporter sentry.Reporter
	// Profiler labels hot paths; nil disables labelling
	Profiler *pyroscope.Service
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	s3Service s3.Service,
	deliveryNoteRepo deliverynote.Repository,
	salesInvoiceRepo salesinvoice.Repository,
	productRepo product.Repository,
	salesPersonRepo salesperson.Repository,
	taxRateRepo taxrate.Repository,
	discountRateRepo discountrate.Repository,
	rec recognizer.Recognizer,
	snapshotStore recognition.SnapshotStore,
	historyStore recognition.HistoryStore,
	pubSub pubsub.PubSub,
	reporter sentry.Reporter,
	profiler *pyroscope.Service,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		S3:               s3Service,
		DeliveryNoteRepo: deliveryNoteRepo,
		SalesInvoiceRepo: salesInvoiceRepo,
		ProductRepo:      productRepo,
		SalesPersonRepo:  salesPersonRepo,
		TaxRateRepo:      taxRateRepo,
		DiscountRateRepo: discountRateRepo,
		Recognizer:       rec,
		SnapshotStore:    snapshotStore,
		HistoryStore:     historyStore,
		PubSub:           pubSub,
		Reporter:         reporter,
		Profiler:         profiler,
	}
}
