package product

import (
	"context"
)

// Repository reads product reference data
type Repository interface {
	Get(ctx context.Context, id int64) (*Product, error)
	// List returns every non-deleted product ordered by display order
	List(ctx context.Context) ([]*Product, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*Product, error)
}
