package discountrate

import (
	"github.com/shopspring/decimal"
)

// DiscountRate is static reference data selected by the tier resolver or by a manual edit
type DiscountRate struct {
	ID int64 `db:"id" json:"id"`

	// Rate is a fraction in [0,1]
	Rate decimal.Decimal `db:"rate" json:"rate"`

	// ThresholdAmount is the minimum quota subtotal for the automatic tier
	ThresholdAmount int64 `db:"threshold_amount" json:"threshold_amount"`

	AppliesToQuotaEligible bool `db:"customer_flag" json:"applies_to_quota_eligible"`

	// ManualOnly rows are never chosen by the resolver, only by an explicit edit
	ManualOnly bool `db:"manual_only" json:"manual_only"`

	Deleted bool `db:"deleted_flag" json:"-"`
}
