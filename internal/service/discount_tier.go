package service

import (
	"context"

	"github.com/flexprice/notebilling/internal/api/dto"
	"github.com/flexprice/notebilling/internal/domain/discountrate"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type DiscountRateService interface {
	List(ctx context.Context) (*dto.ListDiscountRatesResponse, error)

	// ResolveForSubtotal picks the automatic tier for a quota subtotal and returns its
	// reference row. Manual-only rows are never chosen.
	ResolveForSubtotal(ctx context.Context, quotaSubtotal int64) (*discountrate.DiscountRate, error)

	// GetForRate returns the reference row carrying rate
	GetForRate(ctx context.Context, rate decimal.Decimal, manual bool) (*discountrate.DiscountRate, error)
}

type discountRateService struct {
	ServiceParams
}

func NewDiscountRateService(params ServiceParams) DiscountRateService {
	return &discountRateService{ServiceParams: params}
}

func (s *discountRateService) List(ctx context.Context) (*dto.ListDiscountRatesResponse, error) {
	rates, err := s.DiscountRateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ListDiscountRatesResponse{
		Items: lo.Map(rates, func(r *discountrate.DiscountRate, _ int) *dto.DiscountRateResponse {
			return &dto.DiscountRateResponse{DiscountRate: r}
		}),
	}, nil
}

func (s *discountRateService) ResolveForSubtotal(ctx context.Context, quotaSubtotal int64) (*discountrate.DiscountRate, error) {
	return s.GetForRate(ctx, types.ResolveDiscountTier(quotaSubtotal), false)
}

func (s *discountRateService) GetForRate(ctx context.Context, rate decimal.Decimal, manual bool) (*discountrate.DiscountRate, error) {
	rates, err := s.DiscountRateRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	row, ok := lo.Find(rates, func(r *discountrate.DiscountRate) bool {
		if r.ManualOnly && !manual {
			return false
		}
		return r.Rate.Equal(rate)
	})
	if !ok {
		return nil, ierr.NewErrorf("no discount rate row for %s", rate.String()).
			WithHint("Discount rate reference data is incomplete").
			WithReportableDetails(map[string]any{"rate": rate.String()}).
			Mark(ierr.ErrNotFound)
	}
	return row, nil
}
