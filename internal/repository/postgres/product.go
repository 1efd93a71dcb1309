package postgres

import (
	"context"

	"github.com/flexprice/notebilling/internal/cache"
	"github.com/flexprice/notebilling/internal/domain/product"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type productRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewProductRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) product.Repository {
	return &productRepository{db: db, logger: logger, cache: cache}
}

const productColumns = `id, name, price, quota_target_flag, discount_exclusion_flag, display_order, deleted_flag`

func (r *productRepository) Get(ctx context.Context, id int64) (*product.Product, error) {
	return cache.Load(ctx, r.cache, cache.GenerateKey(cache.PrefixProduct, id), func() (*product.Product, error) {
		var p product.Product
		err := r.db.GetQuerier(ctx).GetContext(ctx, &p,
			`SELECT `+productColumns+` FROM products WHERE id = $1 AND deleted_flag = FALSE`, id)
		if err != nil {
			if postgres.IsNoRows(err) {
				return nil, ierr.WithError(err).
					WithHintf("Product %d was not found", id).
					WithReportableDetails(map[string]any{"product_id": id}).
					Mark(ierr.ErrNotFound)
			}
			return nil, ierr.WithError(err).
				WithHint("Failed to get product").
				Mark(ierr.ErrDatabase)
		}
		return &p, nil
	})
}

func (r *productRepository) List(ctx context.Context) ([]*product.Product, error) {
	var products []*product.Product
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &products,
		`SELECT `+productColumns+` FROM products WHERE deleted_flag = FALSE ORDER BY display_order, id`)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list products").
			Mark(ierr.ErrDatabase)
	}
	for _, p := range products {
		r.cache.Set(ctx, cache.GenerateKey(cache.PrefixProduct, p.ID), p, cache.ExpiryDefaultInMemory)
	}
	return products, nil
}

// ListByIDs serves cached rows first and reads only the misses
func (r *productRepository) ListByIDs(ctx context.Context, ids []int64) ([]*product.Product, error) {
	ids = lo.Uniq(ids)
	found := make([]*product.Product, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		if v, ok := r.cache.Get(ctx, cache.GenerateKey(cache.PrefixProduct, id)); ok {
			if p, ok := v.(*product.Product); ok {
				found = append(found, p)
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return found, nil
	}

	r.logger.Debugw("loading products", "count", len(missing))

	var loaded []*product.Product
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &loaded,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, pq.Array(missing))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list products").
			Mark(ierr.ErrDatabase)
	}
	for _, p := range loaded {
		r.cache.Set(ctx, cache.GenerateKey(cache.PrefixProduct, p.ID), p, cache.ExpiryDefaultInMemory)
	}
	return append(found, loaded...), nil
}
