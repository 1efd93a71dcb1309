// Package recognizer turns delivery note images into structured fields by calling an
// external recognition model. The model is a black box; this package owns the prompt,
// the wire format and its normalization into domain types.
package recognizer

import (
	"context"

	"github.com/flexprice/notebilling/internal/domain/recognition"
)

// Image is one uploaded document image
type Image struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Recognizer extracts delivery note fields from an image.
//
// A returned error means the call itself failed (transport, timeout, unparseable
// output). A model that answers but cannot read the document returns a Result with
// Success false and a FailureReason.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (*recognition.Result, error)
}
