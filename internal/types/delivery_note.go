package types

import (
	"time"

	ierr "github.com/flexprice/notebilling/internal/errors"
)

// DeliveryNoteFilter narrows delivery note listings
type DeliveryNoteFilter struct {
	*QueryFilter
	*DateRangeFilter

	// sales_person_ids restricts results to notes of the given sales persons
	SalesPersonIDs []int64 `json:"sales_person_ids,omitempty" form:"sales_person_ids"`

	// billing_date matches notes closing on the given date
	BillingDate *time.Time `json:"billing_date,omitempty" form:"billing_date" time_format:"2006-01-02"`

	// DeliveryDate matches notes delivered on exactly this date; used by duplicate detection
	DeliveryDate *time.Time `json:"-" form:"-"`
}

func NewDeliveryNoteFilter() *DeliveryNoteFilter {
	return &DeliveryNoteFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitDeliveryNoteFilter() *DeliveryNoteFilter {
	return &DeliveryNoteFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *DeliveryNoteFilter) Validate() error {
	if err := f.QueryFilter.Validate(); err != nil {
		return ierr.WithError(err).WithHint("Invalid pagination").Mark(ierr.ErrValidation)
	}
	if err := f.DateRangeFilter.Validate(); err != nil {
		return ierr.WithError(err).WithHint("Invalid date range").Mark(ierr.ErrValidation)
	}
	for _, id := range f.SalesPersonIDs {
		if id <= 0 {
			return ierr.NewError("sales_person_ids must be positive").
				WithHint("Sales person IDs must be positive integers").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
