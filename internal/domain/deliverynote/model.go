package deliverynote

import (
	"time"

	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
)

// DeliveryNote records goods handed to a sales person on one delivery date
type DeliveryNote struct {
	ID            string `db:"id" json:"id"`
	Number        string `db:"delivery_note_number" json:"delivery_note_number"`
	SalesPersonID int64  `db:"sales_person_id" json:"sales_person_id"`
	TaxRateID     int64  `db:"tax_rate_id" json:"tax_rate_id"`

	DeliveryDate time.Time `db:"delivery_date" json:"delivery_date"`

	// BillingDate is always BillingDateOf(DeliveryDate)
	BillingDate time.Time `db:"billing_date" json:"billing_date"`

	Remarks   string `db:"remarks" json:"remarks,omitempty"`
	ImagePath string `db:"file_path" json:"image_path,omitempty"`

	// RecognitionData keeps the raw recognizer output for notes committed from an image
	RecognitionData types.JSONB `db:"image_recognition_data" json:"recognition_data,omitempty"`

	Lines []*Line `db:"-" json:"lines"`

	types.BaseModel
}

// Line is one product row of a delivery note. Lines are replaced as a whole on edit.
type Line struct {
	ID             string `db:"id" json:"id"`
	DeliveryNoteID string `db:"delivery_note_id" json:"delivery_note_id"`
	ProductID      int64  `db:"product_id" json:"product_id"`
	Quantity       int64  `db:"quantity" json:"quantity"`
	UnitPrice      int64  `db:"unit_price" json:"unit_price"`
	Amount         int64  `db:"amount" json:"amount"`
	Remarks        string `db:"remarks" json:"remarks,omitempty"`
	Position       int    `db:"position" json:"-"`
}

// ApplyBillingDate normalizes the delivery date and derives the billing date from it
func (n *DeliveryNote) ApplyBillingDate() {
	n.DeliveryDate = types.DateOf(n.DeliveryDate)
	n.BillingDate = types.BillingDateOf(n.DeliveryDate)
}

// Total is the pre-tax amount of all lines
func (n *DeliveryNote) Total() int64 {
	return lo.SumBy(n.Lines, func(l *Line) int64 { return l.Amount })
}

func (n *DeliveryNote) Validate() error {
	if n.SalesPersonID <= 0 {
		return ierr.NewError("sales_person_id is required").
			WithHint("Please select a sales person").
			Mark(ierr.ErrValidation)
	}
	if n.TaxRateID <= 0 {
		return ierr.NewError("tax_rate_id is required").
			WithHint("Please select a tax rate").
			Mark(ierr.ErrValidation)
	}
	if n.DeliveryDate.IsZero() {
		return ierr.NewError("delivery_date is required").
			WithHint("Please provide a delivery date").
			Mark(ierr.ErrValidation)
	}
	if n.Number == "" {
		return ierr.NewError("delivery_note_number is required").
			Mark(ierr.ErrValidation)
	}
	if len(n.Lines) == 0 {
		return ierr.NewError("at least one line is required").
			WithHint("A delivery note needs at least one product line").
			Mark(ierr.ErrValidation)
	}
	for i, l := range n.Lines {
		if err := l.Validate(); err != nil {
			return ierr.WithError(err).
				WithReportableDetails(map[string]interface{}{"line": i}).
				Mark(ierr.ErrValidation)
		}
	}
	if !n.BillingDate.IsZero() && !n.BillingDate.Equal(types.BillingDateOf(n.DeliveryDate)) {
		return ierr.NewError("billing_date does not match delivery_date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (l *Line) Validate() error {
	if l.ProductID <= 0 {
		return ierr.NewError("product_id is required").
			WithHint("Please select a product").
			Mark(ierr.ErrValidation)
	}
	if l.Quantity < 1 {
		return ierr.NewError("quantity must be at least 1").
			WithHint("Quantity must be a positive integer").
			Mark(ierr.ErrValidation)
	}
	if l.UnitPrice < 0 {
		return ierr.NewError("unit_price must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
