package dto

import (
	"github.com/flexprice/notebilling/internal/domain/discountrate"
	"github.com/shopspring/decimal"
)

type DiscountRateResponse struct {
	*discountrate.DiscountRate
}

type ListDiscountRatesResponse struct {
	Items []*DiscountRateResponse `json:"items"`
}

// ResolveDiscountRateResponse is the automatic tier chosen for a quota subtotal
type ResolveDiscountRateResponse struct {
	QuotaSubtotal  int64           `json:"quota_subtotal"`
	Rate           decimal.Decimal `json:"rate"`
	DiscountRateID int64           `json:"discount_rate_id"`
}
