package dto

import (
	"github.com/flexprice/notebilling/internal/domain/salesinvoice"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/flexprice/notebilling/internal/validator"
)

// GenerateSalesInvoiceRequest generates the invoice of one sales person for an explicit period
type GenerateSalesInvoiceRequest struct {
	SalesPersonID int64      `json:"sales_person_id" validate:"required,min=1"`
	StartDate     types.Date `json:"start_date" swaggertype:"string" example:"2025-02-21"`
	EndDate       types.Date `json:"end_date" swaggertype:"string" example:"2025-03-20"`
	Note          string     `json:"note,omitempty" validate:"omitempty,max=1000"`
}

func (r *GenerateSalesInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Period().Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Please provide a valid billing period").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *GenerateSalesInvoiceRequest) Period() types.BillingPeriod {
	return types.BillingPeriod{Start: r.StartDate.Time, End: r.EndDate.Time}
}

// BulkGenerateSalesInvoicesRequest generates invoices for every sales person in scope
// @Description Empty sales_person_ids means every active sales person.
type BulkGenerateSalesInvoicesRequest struct {
	ClosingDate    types.Date `json:"closing_date" swaggertype:"string" example:"2025-03-20"`
	SalesPersonIDs []int64    `json:"sales_person_ids,omitempty" validate:"omitempty,dive,min=1"`
}

func (r *BulkGenerateSalesInvoicesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.ClosingDate.IsZero() {
		return ierr.NewError("closing_date is required").
			WithHint("Please provide a closing date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BulkSkippedItem reports a sales person for whom no invoice was generated
type BulkSkippedItem struct {
	SalesPersonID int64                `json:"sales_person_id"`
	Reason        types.BulkSkipReason `json:"reason"`
	Message       string               `json:"message,omitempty"`
}

type BulkGenerateSalesInvoicesResponse struct {
	GeneratedCount int                     `json:"generated_count"`
	SkippedCount   int                     `json:"skipped_count"`
	Period         types.BillingPeriod     `json:"period"`
	Skipped        []BulkSkippedItem       `json:"skipped"`
	Invoices       []*SalesInvoiceResponse `json:"invoices"`
}

// UpdateSalesInvoiceRequest edits a generated invoice. Only a 0% <-> 10% discount
// change is accepted; totals are recomputed from the stored subtotals. The note and
// receipt date never touch the totals.
type UpdateSalesInvoiceRequest struct {
	DiscountRateID *int64      `json:"discount_rate_id,omitempty" validate:"omitempty,min=1"`
	Note           *string     `json:"note,omitempty" validate:"omitempty,max=1000"`
	ReceiptDate    *types.Date `json:"receipt_date,omitempty" swaggertype:"string" example:"2025-03-25"`
}

func (r *UpdateSalesInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.ReceiptDate != nil && r.ReceiptDate.IsZero() {
		return ierr.NewError("receipt_date must be a date").
			WithHint("Please provide the receipt date as YYYY-MM-DD").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SalesInvoiceResponse represents a sales invoice with its lines
type SalesInvoiceResponse struct {
	*salesinvoice.SalesInvoice
}

func NewSalesInvoiceResponse(inv *salesinvoice.SalesInvoice) *SalesInvoiceResponse {
	return &SalesInvoiceResponse{SalesInvoice: inv}
}

type ListSalesInvoicesResponse = types.ListResponse[*SalesInvoiceResponse]
