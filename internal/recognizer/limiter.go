package recognizer

import (
	"context"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"golang.org/x/time/rate"
)

// RateLimited caps the call rate of the wrapped recognizer across all queue workers
type RateLimited struct {
	next    Recognizer
	limiter *rate.Limiter
}

// NewRateLimited wraps next. A non-positive perSecond disables limiting.
func NewRateLimited(next Recognizer, perSecond float64, burst int) Recognizer {
	if perSecond <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (r *RateLimited) Recognize(ctx context.Context, img Image) (*recognition.Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Recognition was cancelled while waiting for a slot").
			Mark(ierr.ErrRecognition)
	}
	return r.next.Recognize(ctx, img)
}
