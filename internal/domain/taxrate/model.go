package taxrate

import (
	"github.com/shopspring/decimal"
)

// TaxRate is a consumption tax rate reference row. Rate is a fraction, 0.10 for 10%.
type TaxRate struct {
	ID          int64           `db:"id" json:"id"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	DisplayName string          `db:"display_name" json:"display_name"`
	Deleted     bool            `db:"deleted_flag" json:"-"`
}
