package types

import (
	"github.com/shopspring/decimal"
)

// DiscountTier is one row of the automatic discount rule table
type DiscountTier struct {
	Threshold int64           `json:"threshold"`
	Rate      decimal.Decimal `json:"rate"`
}

var (
	DiscountRateNone   = decimal.Zero
	DiscountRateManual = decimal.NewFromFloat(0.10)
)

// DefaultDiscountTiers is ordered highest threshold first; the first match wins.
var DefaultDiscountTiers = []DiscountTier{
	{Threshold: 400000, Rate: decimal.NewFromFloat(0.40)},
	{Threshold: 200000, Rate: decimal.NewFromFloat(0.30)},
	{Threshold: 42000, Rate: decimal.NewFromFloat(0.20)},
}

// ResolveDiscountTier selects the automatic discount rate for a quota-eligible subtotal.
// Subtotals below every threshold get 0%.
func ResolveDiscountTier(quotaSubtotal int64) decimal.Decimal {
	return ResolveDiscountTierFrom(DefaultDiscountTiers, quotaSubtotal)
}

// ResolveDiscountTierFrom evaluates a custom tier table. tiers must be ordered by
// descending threshold.
func ResolveDiscountTierFrom(tiers []DiscountTier, quotaSubtotal int64) decimal.Decimal {
	for _, tier := range tiers {
		if quotaSubtotal >= tier.Threshold {
			return tier.Rate
		}
	}
	return DiscountRateNone
}

// IsManualDiscountRate reports whether rate is one of the two manually selectable rates
func IsManualDiscountRate(rate decimal.Decimal) bool {
	return rate.Equal(DiscountRateNone) || rate.Equal(DiscountRateManual)
}

// IsAllowedManualDiscountTransition guards post-generation discount edits: only a
// toggle between 0% and 10% is allowed. Automatic tiers above 10% stay fixed.
func IsAllowedManualDiscountTransition(from, to decimal.Decimal) bool {
	return IsManualDiscountRate(from) && IsManualDiscountRate(to)
}
