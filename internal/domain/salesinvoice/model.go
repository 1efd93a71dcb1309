package salesinvoice

import (
	"time"

	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/shopspring/decimal"
)

// SalesInvoice is the periodic bill for one sales person over one billing period.
// Amounts are integer currency units.
type SalesInvoice struct {
	ID                 string `db:"id" json:"id"`
	SalesPersonID      int64  `db:"sales_person_id" json:"sales_person_id"`
	InvoiceNumber      string `db:"invoice_number" json:"invoice_number"`
	RegistrationNumber string `db:"registration_number" json:"registration_number"`

	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	InvoiceDate time.Time `db:"invoice_date" json:"invoice_date"`
	ReceiptDate time.Time `db:"receipt_date" json:"receipt_date"`

	DiscountRateID int64           `db:"discount_rate_id" json:"discount_rate_id"`
	DiscountRate   decimal.Decimal `db:"discount_rate" json:"discount_rate"`

	QuotaSubtotal       int64 `db:"quota_subtotal" json:"quota_subtotal"`
	QuotaDiscountAmount int64 `db:"quota_discount_amount" json:"quota_discount_amount"`
	QuotaTotal          int64 `db:"quota_total" json:"quota_total"`

	NonQuotaSubtotal       int64 `db:"non_quota_subtotal" json:"non_quota_subtotal"`
	NonQuotaDiscountAmount int64 `db:"non_quota_discount_amount" json:"non_quota_discount_amount"`
	NonQuotaTotal          int64 `db:"non_quota_total" json:"non_quota_total"`

	NonDiscountableAmount int64 `db:"non_discountable_amount" json:"non_discountable_amount"`

	TotalExTax  int64           `db:"total_amount_ex_tax" json:"total_amount_ex_tax"`
	TaxRate     decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	TaxAmount   int64           `db:"tax_amount" json:"tax_amount"`
	TotalIncTax int64           `db:"total_amount_inc_tax" json:"total_amount_inc_tax"`

	Note string `db:"note" json:"note,omitempty"`

	Lines []*Line `db:"-" json:"lines"`

	types.BaseModel
}

// Line aggregates delivered quantity of one product at one unit price
type Line struct {
	ID             string                  `db:"id" json:"id"`
	SalesInvoiceID string                  `db:"sales_invoice_id" json:"sales_invoice_id"`
	ProductID      int64                   `db:"product_id" json:"product_id"`
	TotalQuantity  int64                   `db:"total_quantity" json:"total_quantity"`
	UnitPrice      int64                   `db:"unit_price" json:"unit_price"`
	Amount         int64                   `db:"amount" json:"amount"`
	Bucket         types.InvoiceLineBucket `db:"bucket" json:"bucket"`
}

// Period returns the billing period covered by the invoice
func (i *SalesInvoice) Period() types.BillingPeriod {
	return types.BillingPeriod{Start: i.StartDate, End: i.EndDate}
}

// Validate checks the totals invariants
func (i *SalesInvoice) Validate() error {
	if i.SalesPersonID <= 0 {
		return ierr.NewError("sales_person_id is required").Mark(ierr.ErrValidation)
	}
	if err := i.Period().Validate(); err != nil {
		return ierr.WithError(err).WithHint("Invalid invoice period").Mark(ierr.ErrValidation)
	}
	if i.QuotaTotal != i.QuotaSubtotal-i.QuotaDiscountAmount ||
		i.NonQuotaTotal != i.NonQuotaSubtotal-i.NonQuotaDiscountAmount {
		return ierr.NewError("bucket totals do not match subtotal minus discount").
			Mark(ierr.ErrValidation)
	}
	if i.TotalExTax != i.QuotaTotal+i.NonQuotaTotal+i.NonDiscountableAmount {
		return ierr.NewError("total_amount_ex_tax does not match bucket totals").
			Mark(ierr.ErrValidation)
	}
	if i.TotalIncTax != i.TotalExTax+i.TaxAmount {
		return ierr.NewError("total_amount_inc_tax does not match total_amount_ex_tax plus tax").
			Mark(ierr.ErrValidation)
	}
	return nil
}
