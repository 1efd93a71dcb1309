package service

import (
	"testing"

	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/product"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	tenPercent := decimal.NewFromFloat(0.10)

	tests := []struct {
		name     string
		sub      Subtotals
		rate     decimal.Decimal
		expected InvoiceTotals
	}{
		{
			name: "discount floors at the tier boundary",
			sub:  Subtotals{Quota: 42001},
			rate: decimal.NewFromFloat(0.20),
			expected: InvoiceTotals{
				QuotaSubtotal:       42001,
				QuotaDiscountAmount: 8400,
				QuotaTotal:          33601,
				TotalExTax:          33601,
				TaxAmount:           3360,
				TotalIncTax:         36961,
			},
		},
		{
			name: "every bucket",
			sub:  Subtotals{Quota: 10000, NonQuota: 5005, NonDiscountable: 300},
			rate: decimal.NewFromFloat(0.20),
			expected: InvoiceTotals{
				QuotaSubtotal:          10000,
				QuotaDiscountAmount:    2000,
				QuotaTotal:             8000,
				NonQuotaSubtotal:       5005,
				NonQuotaDiscountAmount: 1001,
				NonQuotaTotal:          4004,
				NonDiscountableAmount:  300,
				TotalExTax:             12304,
				TaxAmount:              1230,
				TotalIncTax:            13534,
			},
		},
		{
			name: "no discount",
			sub:  Subtotals{Quota: 999, NonQuota: 1},
			rate: decimal.Zero,
			expected: InvoiceTotals{
				QuotaSubtotal:    999,
				QuotaTotal:       999,
				NonQuotaSubtotal: 1,
				NonQuotaTotal:    1,
				TotalExTax:       1000,
				TaxAmount:        100,
				TotalIncTax:      1100,
			},
		},
		{
			name:     "empty",
			sub:      Subtotals{},
			rate:     decimal.NewFromFloat(0.40),
			expected: InvoiceTotals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.sub, tt.rate, tenPercent)
			assert.True(t, tt.rate.Equal(got.DiscountRate))
			assert.True(t, tenPercent.Equal(got.TaxRate))

			// rates are compared above; zero them to compare the amounts
			got.DiscountRate, got.TaxRate = decimal.Decimal{}, decimal.Decimal{}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputeTotals_SumOfParts(t *testing.T) {
	rate := decimal.NewFromFloat(0.30)
	taxRate := decimal.NewFromFloat(0.08)

	for _, sub := range []Subtotals{
		{Quota: 1, NonQuota: 1, NonDiscountable: 1},
		{Quota: 123457, NonQuota: 98761, NonDiscountable: 4321},
		{Quota: 400000},
	} {
		got := ComputeTotals(sub, rate, taxRate)
		assert.Equal(t, got.QuotaSubtotal-got.QuotaDiscountAmount, got.QuotaTotal)
		assert.Equal(t, got.NonQuotaSubtotal-got.NonQuotaDiscountAmount, got.NonQuotaTotal)
		assert.Equal(t, got.QuotaTotal+got.NonQuotaTotal+got.NonDiscountableAmount, got.TotalExTax)
		assert.Equal(t, got.TotalExTax+got.TaxAmount, got.TotalIncTax)
		assert.LessOrEqual(t, got.QuotaDiscountAmount, got.QuotaSubtotal)
	}
}

func testProducts() map[int64]*product.Product {
	return map[int64]*product.Product{
		1: {ID: 1, Price: 1000, QuotaTarget: true},
		2: {ID: 2, Price: 500},
		3: {ID: 3, Price: 300, DiscountExcluded: true, QuotaTarget: true},
	}
}

func noteWith(lines ...*deliverynote.Line) *deliverynote.DeliveryNote {
	return &deliverynote.DeliveryNote{ID: types.GenerateUUID(), Lines: lines}
}

func TestAggregateLines(t *testing.T) {
	notes := []*deliverynote.DeliveryNote{
		noteWith(
			&deliverynote.Line{ProductID: 1, Quantity: 2, UnitPrice: 1000},
			&deliverynote.Line{ProductID: 2, Quantity: 1, UnitPrice: 500},
		),
		noteWith(
			&deliverynote.Line{ProductID: 1, Quantity: 3, UnitPrice: 1000},
			&deliverynote.Line{ProductID: 1, Quantity: 1, UnitPrice: 900},
			&deliverynote.Line{ProductID: 3, Quantity: 2, UnitPrice: 300},
		),
	}

	agg, err := AggregateLines(notes, testProducts())
	require.NoError(t, err)

	assert.Equal(t, Subtotals{Quota: 5900, NonQuota: 500, NonDiscountable: 600}, agg.Subtotals)
	require.Len(t, agg.Lines, 4)

	type row struct {
		productID, unitPrice, qty, amount int64
		bucket                            types.InvoiceLineBucket
	}
	var got []row
	for _, l := range agg.Lines {
		got = append(got, row{l.ProductID, l.UnitPrice, l.TotalQuantity, l.Amount, l.Bucket})
	}
	assert.Equal(t, []row{
		{1, 900, 1, 900, types.InvoiceLineBucketQuota},
		{1, 1000, 5, 5000, types.InvoiceLineBucketQuota},
		{2, 500, 1, 500, types.InvoiceLineBucketNonQuota},
		// the exclusion flag wins over the quota flag
		{3, 300, 2, 600, types.InvoiceLineBucketNonDiscountable},
	}, got)
}

func TestAggregateLines_UnknownProduct(t *testing.T) {
	notes := []*deliverynote.DeliveryNote{
		noteWith(&deliverynote.Line{ProductID: 42, Quantity: 1, UnitPrice: 100}),
	}
	_, err := AggregateLines(notes, testProducts())
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestAggregateLines_Empty(t *testing.T) {
	agg, err := AggregateLines(nil, testProducts())
	require.NoError(t, err)
	assert.Empty(t, agg.Lines)
	assert.Equal(t, Subtotals{}, agg.Subtotals)
}
