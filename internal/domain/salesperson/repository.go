package salesperson

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*SalesPerson, error)
	// List returns non-deleted sales persons. An empty ids slice means all of them.
	List(ctx context.Context, ids []int64) ([]*SalesPerson, error)
}
