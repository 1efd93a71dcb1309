package types

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 1000
	FILTER_DEFAULT_SORT  = "created_at"

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// BaseFilter is what the repositories need to page and order a listing
type BaseFilter interface {
	GetLimit() int
	GetOffset() int
	GetStatus() string
	GetSort() string
	GetOrder() string
	Validate() error
	IsUnlimited() bool
}

// QueryFilter holds paging and ordering. Every getter is safe on a nil filter and
// falls back to the defaults.
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int    `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
	Status *Status `json:"status,omitempty" form:"status"`
	Sort   *string `json:"sort,omitempty" form:"sort"`
	Order  *string `json:"order,omitempty" form:"order" validate:"omitempty,oneof=asc desc"`

	// Unlimited disables paging; it is set by internal callers only
	Unlimited bool `json:"-" form:"-"`
}

func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
		Status: lo.ToPtr(StatusPublished),
		Order:  lo.ToPtr(OrderDesc),
	}
}

func NewNoLimitQueryFilter() *QueryFilter {
	f := NewDefaultQueryFilter()
	f.Limit = nil
	f.Unlimited = true
	return f
}

func (f *QueryFilter) IsUnlimited() bool {
	return f != nil && f.Unlimited
}

func (f *QueryFilter) GetLimit() int {
	if f.IsUnlimited() {
		return 0
	}
	if f == nil || f.Limit == nil {
		return FILTER_DEFAULT_LIMIT
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetSort() string {
	if f == nil || f.Sort == nil {
		return FILTER_DEFAULT_SORT
	}
	return *f.Sort
}

func (f *QueryFilter) GetOrder() string {
	if f == nil || f.Order == nil {
		return OrderDesc
	}
	return *f.Order
}

func (f *QueryFilter) GetStatus() string {
	if f == nil || f.Status == nil {
		return string(StatusPublished)
	}
	return string(*f.Status)
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 1 || *f.Limit > FILTER_MAX_LIMIT) {
		return fmt.Errorf("limit must be between 1 and %d", FILTER_MAX_LIMIT)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}
	if o := f.GetOrder(); o != OrderAsc && o != OrderDesc {
		return fmt.Errorf("order must be either 'asc' or 'desc'")
	}
	return nil
}

// DateRangeFilter filters on an inclusive calendar date range
type DateRangeFilter struct {
	StartDate *time.Time `json:"start_date,omitempty" form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `json:"end_date,omitempty" form:"end_date" time_format:"2006-01-02"`
}

func (f *DateRangeFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.StartDate != nil && f.EndDate != nil && DateOf(*f.EndDate).Before(DateOf(*f.StartDate)) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	return nil
}
