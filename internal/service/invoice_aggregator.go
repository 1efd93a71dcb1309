package service

import (
	"sort"

	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesinvoice"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceTotals are the monetary fields of an invoice, in integer yen
type InvoiceTotals struct {
	DiscountRate decimal.Decimal

	QuotaSubtotal       int64
	QuotaDiscountAmount int64
	QuotaTotal          int64

	NonQuotaSubtotal       int64
	NonQuotaDiscountAmount int64
	NonQuotaTotal          int64

	NonDiscountableAmount int64

	TotalExTax  int64
	TaxRate     decimal.Decimal
	TaxAmount   int64
	TotalIncTax int64
}

// Subtotals are the per-bucket sums before any discount
type Subtotals struct {
	Quota           int64
	NonQuota        int64
	NonDiscountable int64
}

// floorMul returns floor(amount × rate)
func floorMul(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Floor().IntPart()
}

// ComputeTotals applies rate to the discountable buckets and taxRate to the
// pre-tax total. Every rounding step floors.
func ComputeTotals(sub Subtotals, rate, taxRate decimal.Decimal) InvoiceTotals {
	t := InvoiceTotals{
		DiscountRate:          rate,
		QuotaSubtotal:         sub.Quota,
		NonQuotaSubtotal:      sub.NonQuota,
		NonDiscountableAmount: sub.NonDiscountable,
		TaxRate:               taxRate,
	}
	t.QuotaDiscountAmount = floorMul(sub.Quota, rate)
	t.QuotaTotal = sub.Quota - t.QuotaDiscountAmount
	t.NonQuotaDiscountAmount = floorMul(sub.NonQuota, rate)
	t.NonQuotaTotal = sub.NonQuota - t.NonQuotaDiscountAmount

	t.TotalExTax = t.QuotaTotal + t.NonQuotaTotal + t.NonDiscountableAmount
	t.TaxAmount = floorMul(t.TotalExTax, taxRate)
	t.TotalIncTax = t.TotalExTax + t.TaxAmount
	return t
}

// Aggregation is the outcome of folding a set of delivery lines into invoice lines
type Aggregation struct {
	Subtotals Subtotals
	Lines     []*salesinvoice.Line
}

type lineKey struct {
	productID int64
	unitPrice int64
}

// AggregateLines buckets delivery lines by product flags and merges them by
// (product, unit price). products must contain every referenced product.
func AggregateLines(notes []*deliverynote.DeliveryNote, products map[int64]*product.Product) (*Aggregation, error) {
	agg := &Aggregation{}
	merged := make(map[lineKey]*salesinvoice.Line)

	for _, note := range notes {
		for _, l := range note.Lines {
			p, ok := products[l.ProductID]
			if !ok {
				return nil, ierr.NewErrorf("product %d not found", l.ProductID).
					WithHint("A delivery line references an unknown product").
					WithReportableDetails(map[string]any{
						"delivery_note_id": note.ID,
						"product_id":       l.ProductID,
					}).
					Mark(ierr.ErrNotFound)
			}

			amount := l.Quantity * l.UnitPrice
			bucket := p.Bucket()
			switch bucket {
			case types.InvoiceLineBucketQuota:
				agg.Subtotals.Quota += amount
			case types.InvoiceLineBucketNonQuota:
				agg.Subtotals.NonQuota += amount
			default:
				agg.Subtotals.NonDiscountable += amount
			}

			key := lineKey{productID: l.ProductID, unitPrice: l.UnitPrice}
			il, ok := merged[key]
			if !ok {
				il = &salesinvoice.Line{
					ProductID: l.ProductID,
					UnitPrice: l.UnitPrice,
					Bucket:    bucket,
				}
				merged[key] = il
			}
			il.TotalQuantity += l.Quantity
			il.Amount += amount
		}
	}

	agg.Lines = make([]*salesinvoice.Line, 0, len(merged))
	for _, il := range merged {
		agg.Lines = append(agg.Lines, il)
	}
	sort.Slice(agg.Lines, func(i, j int) bool {
		if agg.Lines[i].ProductID != agg.Lines[j].ProductID {
			return agg.Lines[i].ProductID < agg.Lines[j].ProductID
		}
		return agg.Lines[i].UnitPrice < agg.Lines[j].UnitPrice
	})
	return agg, nil
}

// applyTotals copies computed totals onto the invoice
func applyTotals(inv *salesinvoice.SalesInvoice, t InvoiceTotals) {
	inv.DiscountRate = t.DiscountRate
	inv.QuotaSubtotal = t.QuotaSubtotal
	inv.QuotaDiscountAmount = t.QuotaDiscountAmount
	inv.QuotaTotal = t.QuotaTotal
	inv.NonQuotaSubtotal = t.NonQuotaSubtotal
	inv.NonQuotaDiscountAmount = t.NonQuotaDiscountAmount
	inv.NonQuotaTotal = t.NonQuotaTotal
	inv.NonDiscountableAmount = t.NonDiscountableAmount
	inv.TotalExTax = t.TotalExTax
	inv.TaxRate = t.TaxRate
	inv.TaxAmount = t.TaxAmount
	inv.TotalIncTax = t.TotalIncTax
}

// subtotalsOf reads the stored subtotals back from an invoice
func subtotalsOf(inv *salesinvoice.SalesInvoice) Subtotals {
	return Subtotals{
		Quota:           inv.QuotaSubtotal,
		NonQuota:        inv.NonQuotaSubtotal,
		NonDiscountable: inv.NonDiscountableAmount,
	}
}
