package types

// RecognitionState is the lifecycle state of a recognition queue entry
type RecognitionState string

const (
	RecognitionStatePending    RecognitionState = "pending"
	RecognitionStateRecognized RecognitionState = "recognized"
	RecognitionStateCommitted  RecognitionState = "committed"
	RecognitionStateDiscarded  RecognitionState = "discarded"
)

// IsTerminal reports whether no further transition can leave the state
func (s RecognitionState) IsTerminal() bool {
	return s == RecognitionStateCommitted || s == RecognitionStateDiscarded
}

// DuplicateKind names which check flagged an entry
type DuplicateKind string

const (
	DuplicateKindHistory      DuplicateKind = "history"
	DuplicateKindDeliveryNote DuplicateKind = "delivery_note"
)

const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
)
