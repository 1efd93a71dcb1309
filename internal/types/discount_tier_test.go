package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestResolveDiscountTier(t *testing.T) {
	tests := []struct {
		subtotal int64
		want     string
	}{
		{0, "0"},
		{41999, "0"},
		{42000, "0.2"},
		{199999, "0.2"},
		{200000, "0.3"},
		{399999, "0.3"},
		{400000, "0.4"},
		{10000000, "0.4"},
	}

	for _, tt := range tests {
		got := ResolveDiscountTier(tt.subtotal)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ResolveDiscountTier(%d) = %s, want %s", tt.subtotal, got, tt.want)
		}
	}
}

func TestResolveDiscountTier_Monotonic(t *testing.T) {
	prev := ResolveDiscountTier(0)
	for x := int64(0); x <= 500000; x += 250 {
		got := ResolveDiscountTier(x)
		if got.LessThan(prev) {
			t.Fatalf("rate dropped from %s to %s at %d", prev, got, x)
		}
		prev = got
	}
}

func TestIsAllowedManualDiscountTransition(t *testing.T) {
	zero := decimal.Zero
	ten := decimal.NewFromFloat(0.1)
	twenty := decimal.NewFromFloat(0.2)
	forty := decimal.NewFromFloat(0.4)

	tests := []struct {
		name     string
		from, to decimal.Decimal
		want     bool
	}{
		{"zero to ten", zero, ten, true},
		{"ten to zero", ten, zero, true},
		{"zero to zero", zero, zero, true},
		{"zero to twenty", zero, twenty, false},
		{"twenty to ten", twenty, ten, false},
		{"forty to zero", forty, zero, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAllowedManualDiscountTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("IsAllowedManualDiscountTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
