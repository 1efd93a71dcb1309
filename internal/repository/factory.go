package repository

import (
	"github.com/flexprice/notebilling/internal/cache"
	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/discountrate"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesinvoice"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	postgresRepo "github.com/flexprice/notebilling/internal/repository/postgres"
)

func NewDeliveryNoteRepository(db *postgres.DB, logger *logger.Logger) deliverynote.Repository {
	return postgresRepo.NewDeliveryNoteRepository(db, logger)
}

func NewSalesInvoiceRepository(db *postgres.DB, logger *logger.Logger) salesinvoice.Repository {
	return postgresRepo.NewSalesInvoiceRepository(db, logger)
}

func NewProductRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) product.Repository {
	return postgresRepo.NewProductRepository(db, logger, cache)
}

func NewSalesPersonRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) salesperson.Repository {
	return postgresRepo.NewSalesPersonRepository(db, logger, cache)
}

func NewTaxRateRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) taxrate.Repository {
	return postgresRepo.NewTaxRateRepository(db, logger, cache)
}

func NewDiscountRateRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) discountrate.Repository {
	return postgresRepo.NewDiscountRateRepository(db, logger, cache)
}
