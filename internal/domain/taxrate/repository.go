package taxrate

import (
	"context"
)

// Repository defines the interface for tax rate lookups
type Repository interface {
	Get(ctx context.Context, id int64) (*TaxRate, error)
	List(ctx context.Context) ([]*TaxRate, error)

	// GetDefault returns the rate applied to invoices: the first non-deleted row by id
	GetDefault(ctx context.Context) (*TaxRate, error)
}
