package salesperson

// SalesPerson is the representative an invoice is billed to
type SalesPerson struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Deleted bool   `db:"deleted_flag" json:"-"`
}
