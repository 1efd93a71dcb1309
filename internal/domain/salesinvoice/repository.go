package salesinvoice

import (
	"context"
	"time"

	"github.com/flexprice/notebilling/internal/types"
)

// Repository defines the interface for sales invoice persistence operations
type Repository interface {
	// Create persists the invoice with its lines. A second invoice for the same
	// sales person and period fails with ErrAlreadyExists.
	Create(ctx context.Context, invoice *SalesInvoice) error
	Get(ctx context.Context, id string) (*SalesInvoice, error)
	// GetByPeriod returns the invoice of a sales person for an exact period
	GetByPeriod(ctx context.Context, salesPersonID int64, start, end time.Time) (*SalesInvoice, error)
	List(ctx context.Context, filter *types.SalesInvoiceFilter) ([]*SalesInvoice, error)
	Count(ctx context.Context, filter *types.SalesInvoiceFilter) (int, error)
	// Update writes discount, totals, dates and note. Lines are immutable.
	Update(ctx context.Context, invoice *SalesInvoice) error
	Delete(ctx context.Context, invoice *SalesInvoice) error
}
