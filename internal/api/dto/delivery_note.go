package dto

import (
	"context"

	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/flexprice/notebilling/internal/validator"
	"github.com/samber/lo"
)

// DeliveryNoteLineRequest is one product row of a create or update request
type DeliveryNoteLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int64 `json:"quantity" validate:"required,min=1"`

	// unit_price defaults to the product's list price when omitted
	UnitPrice *int64 `json:"unit_price,omitempty" validate:"omitempty,min=0"`

	Remarks string `json:"remarks,omitempty" validate:"omitempty,max=255"`
}

// CreateDeliveryNoteRequest represents the request to create a delivery note
// @Description Request object for recording a delivery note. billing_date is derived from delivery_date.
type CreateDeliveryNoteRequest struct {
	SalesPersonID int64      `json:"sales_person_id" validate:"required,min=1"`
	TaxRateID     int64      `json:"tax_rate_id" validate:"required,min=1"`
	DeliveryDate  types.Date `json:"delivery_date" swaggertype:"string" example:"2025-03-10"`

	// delivery_note_number is generated when omitted
	Number  string                    `json:"delivery_note_number,omitempty" validate:"omitempty,max=50"`
	Remarks string                    `json:"remarks,omitempty" validate:"omitempty,max=1000"`
	Lines   []DeliveryNoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r *CreateDeliveryNoteRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DeliveryDate.IsZero() {
		return ierr.NewError("delivery_date is required").
			WithHint("Please provide a delivery date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ToDeliveryNote builds the domain model; unit prices still missing are left at -1
// for the service to resolve.
func (r *CreateDeliveryNoteRequest) ToDeliveryNote(ctx context.Context) *deliverynote.DeliveryNote {
	note := &deliverynote.DeliveryNote{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_NOTE),
		Number:        r.Number,
		SalesPersonID: r.SalesPersonID,
		TaxRateID:     r.TaxRateID,
		DeliveryDate:  r.DeliveryDate.Time,
		Remarks:       r.Remarks,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	note.Lines = LinesFromRequest(note.ID, r.Lines)
	note.ApplyBillingDate()
	return note
}

// LinesFromRequest builds domain lines; a missing unit price becomes -1
func LinesFromRequest(noteID string, reqs []DeliveryNoteLineRequest) []*deliverynote.Line {
	return lo.Map(reqs, func(l DeliveryNoteLineRequest, i int) *deliverynote.Line {
		return &deliverynote.Line{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_NOTE_LINE),
			DeliveryNoteID: noteID,
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPrice:      lo.FromPtrOr(l.UnitPrice, -1),
			Remarks:        l.Remarks,
			Position:       i,
		}
	})
}

// UpdateDeliveryNoteRequest replaces the editable fields of a note. Lines, when given,
// replace the whole line sequence.
type UpdateDeliveryNoteRequest struct {
	SalesPersonID *int64                    `json:"sales_person_id,omitempty" validate:"omitempty,min=1"`
	TaxRateID     *int64                    `json:"tax_rate_id,omitempty" validate:"omitempty,min=1"`
	DeliveryDate  *types.Date               `json:"delivery_date,omitempty" swaggertype:"string"`
	Remarks       *string                   `json:"remarks,omitempty" validate:"omitempty,max=1000"`
	Lines         []DeliveryNoteLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

func (r *UpdateDeliveryNoteRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DeliveryDate != nil && r.DeliveryDate.IsZero() {
		return ierr.NewError("delivery_date must not be empty").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Apply writes the requested changes onto note
func (r *UpdateDeliveryNoteRequest) Apply(note *deliverynote.DeliveryNote) {
	if r.SalesPersonID != nil {
		note.SalesPersonID = *r.SalesPersonID
	}
	if r.TaxRateID != nil {
		note.TaxRateID = *r.TaxRateID
	}
	if r.DeliveryDate != nil {
		note.DeliveryDate = r.DeliveryDate.Time
	}
	if r.Remarks != nil {
		note.Remarks = *r.Remarks
	}
	if r.Lines != nil {
		note.Lines = LinesFromRequest(note.ID, r.Lines)
	}
	note.ApplyBillingDate()
}

// DeliveryNoteResponse represents a delivery note with its lines
type DeliveryNoteResponse struct {
	*deliverynote.DeliveryNote
	TotalAmount int64 `json:"total_amount"`
}

func NewDeliveryNoteResponse(n *deliverynote.DeliveryNote) *DeliveryNoteResponse {
	return &DeliveryNoteResponse{DeliveryNote: n, TotalAmount: n.Total()}
}

type ListDeliveryNotesResponse = types.ListResponse[*DeliveryNoteResponse]

// BillingDateResponse answers which closing date a delivery date falls into
type BillingDateResponse struct {
	DeliveryDate types.Date `json:"delivery_date" swaggertype:"string"`
	BillingDate  types.Date `json:"billing_date" swaggertype:"string"`
}
