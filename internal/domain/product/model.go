package product

import (
	"github.com/flexprice/notebilling/internal/types"
)

// Product is a read-only reference row describing a deliverable item
type Product struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Price int64  `db:"price" json:"price"`

	// QuotaTarget marks products that count toward the discount tier threshold
	QuotaTarget bool `db:"quota_target_flag" json:"quota_target"`

	// DiscountExcluded products are billed at list price and skip both quota and discount
	DiscountExcluded bool `db:"discount_exclusion_flag" json:"discount_excluded"`

	DisplayOrder int  `db:"display_order" json:"display_order"`
	Deleted      bool `db:"deleted_flag" json:"-"`
}

// Bucket classifies the product for invoice aggregation
func (p *Product) Bucket() types.InvoiceLineBucket {
	switch {
	case p.DiscountExcluded:
		return types.InvoiceLineBucketNonDiscountable
	case p.QuotaTarget:
		return types.InvoiceLineBucketQuota
	default:
		return types.InvoiceLineBucketNonQuota
	}
}
