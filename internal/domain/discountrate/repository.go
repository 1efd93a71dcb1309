package discountrate

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*DiscountRate, error)
	// List returns non-deleted rates ordered by descending threshold
	List(ctx context.Context) ([]*DiscountRate, error)
}
