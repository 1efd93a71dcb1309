package testutil

import (
	"context"
	"time"

	"github.com/flexprice/notebilling/internal/domain/salesinvoice"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
)

// InMemorySalesInvoiceStore implements salesinvoice.Repository
type InMemorySalesInvoiceStore struct {
	*InMemoryStore[*salesinvoice.SalesInvoice]

	// CreateHook, when set, runs before every Create and can fail it
	CreateHook func(inv *salesinvoice.SalesInvoice) error
}

func NewInMemorySalesInvoiceStore() *InMemorySalesInvoiceStore {
	return &InMemorySalesInvoiceStore{
		InMemoryStore: NewInMemoryStore[*salesinvoice.SalesInvoice](),
	}
}

func salesInvoiceFilterFn(ctx context.Context, inv *salesinvoice.SalesInvoice, filter interface{}) bool {
	if inv == nil || inv.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.SalesInvoiceFilter)
	if !ok {
		return true
	}

	if len(f.SalesPersonIDs) > 0 && !lo.Contains(f.SalesPersonIDs, inv.SalesPersonID) {
		return false
	}
	// overlap with the requested range
	if f.DateRangeFilter != nil {
		if f.StartDate != nil && types.DateOf(inv.EndDate).Before(types.DateOf(*f.StartDate)) {
			return false
		}
		if f.EndDate != nil && types.DateOf(inv.StartDate).After(types.DateOf(*f.EndDate)) {
			return false
		}
	}
	return true
}

func salesInvoiceSortFn(i, j *salesinvoice.SalesInvoice) bool {
	if !i.EndDate.Equal(j.EndDate) {
		return i.EndDate.After(j.EndDate)
	}
	return i.SalesPersonID < j.SalesPersonID
}

func (s *InMemorySalesInvoiceStore) Create(ctx context.Context, inv *salesinvoice.SalesInvoice) error {
	if s.CreateHook != nil {
		if err := s.CreateHook(inv); err != nil {
			return err
		}
	}
	if _, err := s.GetByPeriod(ctx, inv.SalesPersonID, inv.StartDate, inv.EndDate); err == nil {
		return ierr.NewError("sales invoice already exists for period").
			WithHint("An invoice already exists for this sales person and period").
			Mark(ierr.ErrAlreadyExists)
	}
	if inv.Status == "" {
		inv.Status = types.StatusPublished
	}
	return s.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (s *InMemorySalesInvoiceStore) Get(ctx context.Context, id string) (*salesinvoice.SalesInvoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || inv.Status != types.StatusPublished {
		return nil, ierr.NewErrorf("sales invoice %s not found", id).
			WithHintf("Sales invoice %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InMemorySalesInvoiceStore) GetByPeriod(ctx context.Context, salesPersonID int64, start, end time.Time) (*salesinvoice.SalesInvoice, error) {
	inv, ok := s.Find(func(inv *salesinvoice.SalesInvoice) bool {
		return inv.Status == types.StatusPublished &&
			inv.SalesPersonID == salesPersonID &&
			types.SameDate(inv.StartDate, start) &&
			types.SameDate(inv.EndDate, end)
	})
	if !ok {
		return nil, ierr.NewError("sales invoice not found for period").Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InMemorySalesInvoiceStore) List(ctx context.Context, filter *types.SalesInvoiceFilter) ([]*salesinvoice.SalesInvoice, error) {
	return s.InMemoryStore.List(ctx, filter, salesInvoiceFilterFn, salesInvoiceSortFn)
}

func (s *InMemorySalesInvoiceStore) Count(ctx context.Context, filter *types.SalesInvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, salesInvoiceFilterFn)
}

func (s *InMemorySalesInvoiceStore) Update(ctx context.Context, inv *salesinvoice.SalesInvoice) error {
	return s.InMemoryStore.Update(ctx, inv.ID, inv)
}

func (s *InMemorySalesInvoiceStore) Delete(ctx context.Context, inv *salesinvoice.SalesInvoice) error {
	return s.InMemoryStore.Delete(ctx, inv.ID)
}
