package recognizer

import (
	"context"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
)

// Disabled fails every call
type Disabled struct{}

func (Disabled) Recognize(_ context.Context, _ Image) (*recognition.Result, error) {
	return nil, ierr.NewError("recognizer disabled").
		WithHint("Image recognition is not configured on this server").
		Mark(ierr.ErrRecognition)
}
