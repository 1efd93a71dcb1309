package postgres

import (
	"context"

	"github.com/flexprice/notebilling/internal/cache"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
)

type taxRateRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewTaxRateRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) taxrate.Repository {
	return &taxRateRepository{db: db, logger: logger, cache: cache}
}

func (r *taxRateRepository) Get(ctx context.Context, id int64) (*taxrate.TaxRate, error) {
	return cache.Load(ctx, r.cache, cache.GenerateKey(cache.PrefixTaxRate, id), func() (*taxrate.TaxRate, error) {
		var tr taxrate.TaxRate
		err := r.db.GetQuerier(ctx).GetContext(ctx, &tr,
			`SELECT id, rate, display_name, deleted_flag FROM tax_rates WHERE id = $1 AND deleted_flag = FALSE`, id)
		if err != nil {
			if postgres.IsNoRows(err) {
				return nil, ierr.WithError(err).
					WithHintf("Tax rate %d was not found", id).
					Mark(ierr.ErrNotFound)
			}
			return nil, ierr.WithError(err).
				WithHint("Failed to get tax rate").
				Mark(ierr.ErrDatabase)
		}
		return &tr, nil
	})
}

func (r *taxRateRepository) List(ctx context.Context) ([]*taxrate.TaxRate, error) {
	var rates []*taxrate.TaxRate
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rates,
		`SELECT id, rate, display_name, deleted_flag FROM tax_rates WHERE deleted_flag = FALSE ORDER BY id`)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tax rates").
			Mark(ierr.ErrDatabase)
	}
	return rates, nil
}

func (r *taxRateRepository) GetDefault(ctx context.Context) (*taxrate.TaxRate, error) {
	rates, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, ierr.NewError("no tax rate configured").
			WithHint("Tax rate not found").
			Mark(ierr.ErrNotFound)
	}
	return rates[0], nil
}
