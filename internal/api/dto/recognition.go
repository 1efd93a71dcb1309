package dto

import (
	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/flexprice/notebilling/internal/validator"
)

// UploadedFile is one file of a multipart upload
type UploadedFile struct {
	FileName string
	Data     []byte
}

// RejectedUpload is a file refused at enqueue time
type RejectedUpload struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

type EnqueueRecognitionResponse struct {
	Entries  []*RecognitionEntryResponse `json:"entries"`
	Rejected []RejectedUpload            `json:"rejected"`
}

// RecognitionEntryResponse is a queue entry without its image bytes
type RecognitionEntryResponse struct {
	*recognition.Entry
}

func NewRecognitionEntryResponse(e *recognition.Entry) *RecognitionEntryResponse {
	return &RecognitionEntryResponse{Entry: e.WithoutPayload()}
}

type ListRecognitionEntriesResponse struct {
	Items []*RecognitionEntryResponse `json:"items"`

	// recognizing is true while any recognizer call is outstanding
	Recognizing bool `json:"recognizing"`
}

// CommitRecognitionRequest turns a recognized entry into a delivery note. Fields left
// empty keep the recognized values.
type CommitRecognitionRequest struct {
	// confirm_duplicate must be true to commit an entry flagged as a possible duplicate
	ConfirmDuplicate bool `json:"confirm_duplicate"`

	SalesPersonID *int64                    `json:"sales_person_id,omitempty" validate:"omitempty,min=1"`
	TaxRateID     *int64                    `json:"tax_rate_id,omitempty" validate:"omitempty,min=1"`
	DeliveryDate  *types.Date               `json:"delivery_date,omitempty" swaggertype:"string"`
	Remarks       *string                   `json:"remarks,omitempty" validate:"omitempty,max=1000"`
	Lines         []DeliveryNoteLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

func (r *CommitRecognitionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DeliveryDate != nil && r.DeliveryDate.IsZero() {
		return ierr.NewError("delivery_date must not be empty").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type RecognitionHistoryResponse struct {
	Items []*recognition.Attempt `json:"items"`
}
