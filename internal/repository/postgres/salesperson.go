package postgres

import (
	"context"

	"github.com/flexprice/notebilling/internal/cache"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/lib/pq"
)

type salesPersonRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewSalesPersonRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) salesperson.Repository {
	return &salesPersonRepository{db: db, logger: logger, cache: cache}
}

func (r *salesPersonRepository) Get(ctx context.Context, id int64) (*salesperson.SalesPerson, error) {
	return cache.Load(ctx, r.cache, cache.GenerateKey(cache.PrefixSalesPerson, id), func() (*salesperson.SalesPerson, error) {
		var sp salesperson.SalesPerson
		err := r.db.GetQuerier(ctx).GetContext(ctx, &sp,
			`SELECT id, name, deleted_flag FROM sales_persons WHERE id = $1 AND deleted_flag = FALSE`, id)
		if err != nil {
			if postgres.IsNoRows(err) {
				return nil, ierr.WithError(err).
					WithHintf("Sales person %d was not found", id).
					WithReportableDetails(map[string]any{"sales_person_id": id}).
					Mark(ierr.ErrNotFound)
			}
			return nil, ierr.WithError(err).
				WithHint("Failed to get sales person").
				Mark(ierr.ErrDatabase)
		}
		return &sp, nil
	})
}

func (r *salesPersonRepository) List(ctx context.Context, ids []int64) ([]*salesperson.SalesPerson, error) {
	query := `SELECT id, name, deleted_flag FROM sales_persons WHERE deleted_flag = FALSE`
	var args []interface{}
	if len(ids) > 0 {
		query += ` AND id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	query += ` ORDER BY id`

	var persons []*salesperson.SalesPerson
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &persons, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list sales persons").
			Mark(ierr.ErrDatabase)
	}
	return persons, nil
}
