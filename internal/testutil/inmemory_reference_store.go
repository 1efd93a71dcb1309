package testutil

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/flexprice/notebilling/internal/domain/discountrate"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/samber/lo"
)

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}

func activeSorted[T any](s *InMemoryStore[T], deleted func(T) bool, less SortFunc[T]) []T {
	items, _ := s.List(context.Background(), nil, func(_ context.Context, item T, _ interface{}) bool {
		return !deleted(item)
	}, less)
	return items
}

// InMemoryProductStore implements product.Repository
type InMemoryProductStore struct {
	*InMemoryStore[*product.Product]
}

func NewInMemoryProductStore() *InMemoryProductStore {
	return &InMemoryProductStore{InMemoryStore: NewInMemoryStore[*product.Product]()}
}

func (s *InMemoryProductStore) Add(products ...*product.Product) {
	for _, p := range products {
		_ = s.InMemoryStore.Create(context.Background(), key(p.ID), p)
	}
}

func (s *InMemoryProductStore) Get(ctx context.Context, id int64) (*product.Product, error) {
	p, err := s.InMemoryStore.Get(ctx, key(id))
	if err != nil || p.Deleted {
		return nil, ierr.NewErrorf("product %d not found", id).
			WithHintf("Product %d was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryProductStore) List(ctx context.Context) ([]*product.Product, error) {
	return activeSorted(s.InMemoryStore,
		func(p *product.Product) bool { return p.Deleted },
		func(i, j *product.Product) bool {
			if i.DisplayOrder != j.DisplayOrder {
				return i.DisplayOrder < j.DisplayOrder
			}
			return i.ID < j.ID
		}), nil
}

func (s *InMemoryProductStore) ListByIDs(ctx context.Context, ids []int64) ([]*product.Product, error) {
	all, _ := s.List(ctx)
	return lo.Filter(all, func(p *product.Product, _ int) bool {
		return lo.Contains(ids, p.ID)
	}), nil
}

// InMemorySalesPersonStore implements salesperson.Repository
type InMemorySalesPersonStore struct {
	*InMemoryStore[*salesperson.SalesPerson]
}

func NewInMemorySalesPersonStore() *InMemorySalesPersonStore {
	return &InMemorySalesPersonStore{InMemoryStore: NewInMemoryStore[*salesperson.SalesPerson]()}
}

func (s *InMemorySalesPersonStore) Add(persons ...*salesperson.SalesPerson) {
	for _, p := range persons {
		_ = s.InMemoryStore.Create(context.Background(), key(p.ID), p)
	}
}

func (s *InMemorySalesPersonStore) Get(ctx context.Context, id int64) (*salesperson.SalesPerson, error) {
	p, err := s.InMemoryStore.Get(ctx, key(id))
	if err != nil || p.Deleted {
		return nil, ierr.NewErrorf("sales person %d not found", id).
			WithHintf("Sales person %d was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemorySalesPersonStore) List(ctx context.Context, ids []int64) ([]*salesperson.SalesPerson, error) {
	all := activeSorted(s.InMemoryStore,
		func(p *salesperson.SalesPerson) bool { return p.Deleted },
		func(i, j *salesperson.SalesPerson) bool { return i.ID < j.ID })
	if len(ids) == 0 {
		return all, nil
	}
	return lo.Filter(all, func(p *salesperson.SalesPerson, _ int) bool {
		return lo.Contains(ids, p.ID)
	}), nil
}

// InMemoryTaxRateStore implements taxrate.Repository
type InMemoryTaxRateStore struct {
	*InMemoryStore[*taxrate.TaxRate]
}

func NewInMemoryTaxRateStore() *InMemoryTaxRateStore {
	return &InMemoryTaxRateStore{InMemoryStore: NewInMemoryStore[*taxrate.TaxRate]()}
}

func (s *InMemoryTaxRateStore) Add(rates ...*taxrate.TaxRate) {
	for _, r := range rates {
		_ = s.InMemoryStore.Create(context.Background(), key(r.ID), r)
	}
}

func (s *InMemoryTaxRateStore) Get(ctx context.Context, id int64) (*taxrate.TaxRate, error) {
	r, err := s.InMemoryStore.Get(ctx, key(id))
	if err != nil || r.Deleted {
		return nil, ierr.NewErrorf("tax rate %d not found", id).
			WithHintf("Tax rate %d was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return r, nil
}

func (s *InMemoryTaxRateStore) List(ctx context.Context) ([]*taxrate.TaxRate, error) {
	return activeSorted(s.InMemoryStore,
		func(r *taxrate.TaxRate) bool { return r.Deleted },
		func(i, j *taxrate.TaxRate) bool { return i.ID < j.ID }), nil
}

func (s *InMemoryTaxRateStore) GetDefault(ctx context.Context) (*taxrate.TaxRate, error) {
	all, _ := s.List(ctx)
	if len(all) == 0 {
		return nil, ierr.NewError("no tax rate configured").Mark(ierr.ErrNotFound)
	}
	return all[0], nil
}

// InMemoryDiscountRateStore implements discountrate.Repository
type InMemoryDiscountRateStore struct {
	mu    sync.RWMutex
	rates []*discountrate.DiscountRate
}

func NewInMemoryDiscountRateStore() *InMemoryDiscountRateStore {
	return &InMemoryDiscountRateStore{}
}

func (s *InMemoryDiscountRateStore) Add(rates ...*discountrate.DiscountRate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = append(s.rates, rates...)
	sort.SliceStable(s.rates, func(i, j int) bool {
		return s.rates[i].ThresholdAmount > s.rates[j].ThresholdAmount
	})
}

func (s *InMemoryDiscountRateStore) Get(ctx context.Context, id int64) (*discountrate.DiscountRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := lo.Find(s.rates, func(r *discountrate.DiscountRate) bool { return r.ID == id && !r.Deleted })
	if !ok {
		return nil, ierr.NewErrorf("discount rate %d not found", id).Mark(ierr.ErrNotFound)
	}
	return r, nil
}

func (s *InMemoryDiscountRateStore) List(ctx context.Context) ([]*discountrate.DiscountRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Reject(s.rates, func(r *discountrate.DiscountRate, _ int) bool { return r.Deleted }), nil
}

func (s *InMemoryDiscountRateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = nil
}
