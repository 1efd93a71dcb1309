package recognition

import (
	"encoding/json"
	"time"

	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
)

// Result is the normalized output of one recognizer call
type Result struct {
	Success bool `json:"success"`

	SalesPersonID int64        `json:"sales_person_id,omitempty"`
	DeliveryDate  types.Date   `json:"delivery_date,omitempty"`
	TaxRateID     int64        `json:"tax_rate_id,omitempty"`
	Lines         []ResultLine `json:"lines,omitempty"`

	// FailureReason is a human readable message, set when Success is false
	FailureReason string `json:"failure_reason,omitempty"`

	// Raw is the recognizer output the fields were parsed from
	Raw json.RawMessage `json:"raw,omitempty"`
}

type ResultLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// Failed builds an unsuccessful result
func Failed(reason string) *Result {
	return &Result{Success: false, FailureReason: reason}
}

// DuplicateInfo describes one reason an entry was flagged as a possible duplicate
type DuplicateInfo struct {
	Kind    types.DuplicateKind `json:"kind"`
	Message string              `json:"message"`

	// history matches
	PriorFileName     string     `json:"prior_file_name,omitempty"`
	PriorRecognizedAt *time.Time `json:"prior_recognized_at,omitempty"`
	PriorSuccess      *bool      `json:"prior_success,omitempty"`

	// delivery note matches
	DeliveryNoteID     string `json:"delivery_note_id,omitempty"`
	DeliveryNoteNumber string `json:"delivery_note_number,omitempty"`
}

// Entry is one uploaded image held by the recognition queue
type Entry struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`

	// Payload is the image itself; it is dropped once the entry leaves the queue
	Payload     []byte `json:"payload,omitempty"`
	Fingerprint string `json:"fingerprint"`

	State  types.RecognitionState `json:"state"`
	Result *Result                `json:"result,omitempty"`

	IsDuplicate bool            `json:"is_duplicate"`
	Duplicates  []DuplicateInfo `json:"duplicates,omitempty"`

	EnqueuedAt   time.Time  `json:"enqueued_at"`
	RecognizedAt *time.Time `json:"recognized_at,omitempty"`
}

// IsPending reports whether the entry still waits for a recognizer result
func (e *Entry) IsPending() bool {
	return e.Result == nil && !e.State.IsTerminal()
}

// Clone returns a copy that shares no mutable state with e
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	c.Payload = append([]byte(nil), e.Payload...)
	c.Duplicates = append([]DuplicateInfo(nil), e.Duplicates...)
	if e.Result != nil {
		r := *e.Result
		r.Lines = append([]ResultLine(nil), e.Result.Lines...)
		c.Result = &r
	}
	if e.RecognizedAt != nil {
		c.RecognizedAt = lo.ToPtr(*e.RecognizedAt)
	}
	return &c
}

// WithoutPayload returns a clone without the image bytes, for listings
func (e *Entry) WithoutPayload() *Entry {
	c := e.Clone()
	c.Payload = nil
	return c
}

// Attempt is one history record of a recognizer run against an image
type Attempt struct {
	FileName     string    `json:"file_name"`
	Fingerprint  string    `json:"fingerprint"`
	RecognizedAt time.Time `json:"recognized_at"`
	Success      bool      `json:"success"`
	ParsedFields *Result   `json:"parsed_fields,omitempty"`
}

// Snapshot is the persisted state of the queue
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Entries []*Entry  `json:"entries"`
}

const SnapshotVersion = 1
