package api

import (
	v1 "github.com/flexprice/notebilling/internal/api/v1"
	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/rest/middleware"
	"github.com/flexprice/notebilling/internal/sentry"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health       *v1.HealthHandler
	DeliveryNote *v1.DeliveryNoteHandler
	SalesInvoice *v1.SalesInvoiceHandler
	DiscountRate *v1.DiscountRateHandler
	Recognition  *v1.RecognitionHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, reporter sentry.Reporter) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.AccessLog(logger),
		middleware.ErrorHandler(logger, reporter),
	)
	// multipart parts above this spill to disk
	router.MaxMultipartMemory = cfg.Recognition.MaxUploadBytes

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Group := router.Group("/v1")

	deliveryNotes := v1Group.Group("/delivery-notes")
	{
		deliveryNotes.POST("", handlers.DeliveryNote.CreateDeliveryNote)
		deliveryNotes.GET("", handlers.DeliveryNote.ListDeliveryNotes)
		deliveryNotes.GET("/billing-date", handlers.DeliveryNote.GetBillingDate)
		deliveryNotes.GET("/:id", handlers.DeliveryNote.GetDeliveryNote)
		deliveryNotes.PUT("/:id", handlers.DeliveryNote.UpdateDeliveryNote)
		deliveryNotes.DELETE("/:id", handlers.DeliveryNote.DeleteDeliveryNote)
	}

	salesInvoices := v1Group.Group("/sales-invoices")
	{
		salesInvoices.GET("", handlers.SalesInvoice.ListSalesInvoices)
		salesInvoices.POST("/generate", handlers.SalesInvoice.GenerateSalesInvoice)
		salesInvoices.POST("/bulk-generate", handlers.SalesInvoice.BulkGenerateSalesInvoices)
		salesInvoices.GET("/:id", handlers.SalesInvoice.GetSalesInvoice)
		salesInvoices.PATCH("/:id", handlers.SalesInvoice.UpdateSalesInvoice)
		salesInvoices.DELETE("/:id", handlers.SalesInvoice.DeleteSalesInvoice)
	}

	discountRates := v1Group.Group("/discount-rates")
	{
		discountRates.GET("", handlers.DiscountRate.ListDiscountRates)
		discountRates.GET("/resolve", handlers.DiscountRate.ResolveDiscountRate)
	}

	recognition := v1Group.Group("/recognition")
	{
		recognition.POST("/entries", handlers.Recognition.Enqueue)
		recognition.GET("/entries", handlers.Recognition.ListEntries)
		recognition.GET("/entries/:id", handlers.Recognition.GetEntry)
		recognition.DELETE("/entries/:id", handlers.Recognition.Discard)
		recognition.POST("/entries/:id/commit", handlers.Recognition.Commit)
		recognition.GET("/history", handlers.Recognition.History)
	}

	return router
}
