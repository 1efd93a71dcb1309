package testutil

import (
	"context"

	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
)

// InMemoryDeliveryNoteStore implements deliverynote.Repository
type InMemoryDeliveryNoteStore struct {
	*InMemoryStore[*deliverynote.DeliveryNote]
}

func NewInMemoryDeliveryNoteStore() *InMemoryDeliveryNoteStore {
	return &InMemoryDeliveryNoteStore{
		InMemoryStore: NewInMemoryStore[*deliverynote.DeliveryNote](),
	}
}

func deliveryNoteFilterFn(ctx context.Context, n *deliverynote.DeliveryNote, filter interface{}) bool {
	if n == nil || n.Status != types.StatusPublished {
		return false
	}

	f, ok := filter.(*types.DeliveryNoteFilter)
	if !ok {
		return true
	}

	if len(f.SalesPersonIDs) > 0 && !lo.Contains(f.SalesPersonIDs, n.SalesPersonID) {
		return false
	}
	if !inDateRange(n.DeliveryDate, f.DateRangeFilter) {
		return false
	}
	if f.BillingDate != nil && !types.SameDate(n.BillingDate, *f.BillingDate) {
		return false
	}
	if f.DeliveryDate != nil && !types.SameDate(n.DeliveryDate, *f.DeliveryDate) {
		return false
	}
	return true
}

func deliveryNoteSortFn(i, j *deliverynote.DeliveryNote) bool {
	if !i.DeliveryDate.Equal(j.DeliveryDate) {
		return i.DeliveryDate.Before(j.DeliveryDate)
	}
	return i.Number < j.Number
}

func (s *InMemoryDeliveryNoteStore) Create(ctx context.Context, note *deliverynote.DeliveryNote) error {
	if note == nil {
		return ierr.NewError("delivery note cannot be nil").Mark(ierr.ErrValidation)
	}
	if _, err := s.GetByNumber(ctx, note.Number); err == nil {
		return ierr.NewErrorf("delivery note number %s already exists", note.Number).
			WithHint("A delivery note with this number already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	if note.Status == "" {
		note.Status = types.StatusPublished
	}
	return s.InMemoryStore.Create(ctx, note.ID, note)
}

func (s *InMemoryDeliveryNoteStore) Get(ctx context.Context, id string) (*deliverynote.DeliveryNote, error) {
	n, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || n.Status != types.StatusPublished {
		return nil, ierr.NewErrorf("delivery note %s not found", id).
			WithHintf("Delivery note %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return n, nil
}

func (s *InMemoryDeliveryNoteStore) GetByNumber(ctx context.Context, number string) (*deliverynote.DeliveryNote, error) {
	n, ok := s.Find(func(n *deliverynote.DeliveryNote) bool {
		return n.Number == number && n.Status == types.StatusPublished
	})
	if !ok {
		return nil, ierr.NewErrorf("delivery note %s not found", number).Mark(ierr.ErrNotFound)
	}
	return n, nil
}

func (s *InMemoryDeliveryNoteStore) List(ctx context.Context, filter *types.DeliveryNoteFilter) ([]*deliverynote.DeliveryNote, error) {
	return s.InMemoryStore.List(ctx, filter, deliveryNoteFilterFn, deliveryNoteSortFn)
}

func (s *InMemoryDeliveryNoteStore) Count(ctx context.Context, filter *types.DeliveryNoteFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, deliveryNoteFilterFn)
}

func (s *InMemoryDeliveryNoteStore) Update(ctx context.Context, note *deliverynote.DeliveryNote) error {
	if other, err := s.GetByNumber(ctx, note.Number); err == nil && other.ID != note.ID {
		return ierr.NewErrorf("delivery note number %s already exists", note.Number).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Update(ctx, note.ID, note)
}

func (s *InMemoryDeliveryNoteStore) Delete(ctx context.Context, note *deliverynote.DeliveryNote) error {
	return s.InMemoryStore.Delete(ctx, note.ID)
}
