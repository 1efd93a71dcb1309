package postgres

import (
	"context"

	"github.com/flexprice/notebilling/internal/cache"
	"github.com/flexprice/notebilling/internal/domain/discountrate"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
)

type discountRateRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewDiscountRateRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) discountrate.Repository {
	return &discountRateRepository{db: db, logger: logger, cache: cache}
}

const discountRateColumns = `id, rate, threshold_amount, customer_flag, manual_only, deleted_flag`

func (r *discountRateRepository) Get(ctx context.Context, id int64) (*discountrate.DiscountRate, error) {
	rates, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, dr := range rates {
		if dr.ID == id {
			return dr, nil
		}
	}
	return nil, ierr.NewErrorf("discount rate %d not found", id).
		WithHint("Discount rate not found").
		WithReportableDetails(map[string]any{"discount_rate_id": id}).
		Mark(ierr.ErrNotFound)
}

// List caches the whole table; it is small and only changes through migrations
func (r *discountRateRepository) List(ctx context.Context) ([]*discountrate.DiscountRate, error) {
	return cache.Load(ctx, r.cache, cache.GenerateKey(cache.PrefixDiscountRate, "all"), func() ([]*discountrate.DiscountRate, error) {
		var rates []*discountrate.DiscountRate
		err := r.db.GetQuerier(ctx).SelectContext(ctx, &rates,
			`SELECT `+discountRateColumns+` FROM discount_rates WHERE deleted_flag = FALSE ORDER BY threshold_amount DESC, id`)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to list discount rates").
				Mark(ierr.ErrDatabase)
		}
		r.logger.Debugw("loaded discount rates", "count", len(rates))
		return rates, nil
	})
}
