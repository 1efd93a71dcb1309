package types

import (
	ierr "github.com/flexprice/notebilling/internal/errors"
)

// SalesInvoiceFilter narrows sales invoice listings
type SalesInvoiceFilter struct {
	*QueryFilter
	*DateRangeFilter

	SalesPersonIDs []int64 `json:"sales_person_ids,omitempty" form:"sales_person_ids"`
}

func NewSalesInvoiceFilter() *SalesInvoiceFilter {
	return &SalesInvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitSalesInvoiceFilter() *SalesInvoiceFilter {
	return &SalesInvoiceFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *SalesInvoiceFilter) Validate() error {
	if err := f.QueryFilter.Validate(); err != nil {
		return ierr.WithError(err).WithHint("Invalid pagination").Mark(ierr.ErrValidation)
	}
	if err := f.DateRangeFilter.Validate(); err != nil {
		return ierr.WithError(err).WithHint("Invalid date range").Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceLineBucket is the discount classification of an invoice line
type InvoiceLineBucket string

const (
	InvoiceLineBucketQuota           InvoiceLineBucket = "quota"
	InvoiceLineBucketNonQuota        InvoiceLineBucket = "non_quota"
	InvoiceLineBucketNonDiscountable InvoiceLineBucket = "non_discountable"
)

// BulkSkipReason explains why bulk generation produced no invoice for a sales person
type BulkSkipReason string

const (
	BulkSkipNoDeliveries       BulkSkipReason = "no_deliveries"
	BulkSkipAlreadyInvoiced    BulkSkipReason = "already_invoiced"
	BulkSkipPersistenceFailure BulkSkipReason = "persistence_failure"
)
