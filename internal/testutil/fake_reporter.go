package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/notebilling/internal/sentry"
)

var _ sentry.Reporter = (*FakeReporter)(nil)

// ReportedError is one captured failure with its tags
type ReportedError struct {
	Err  error
	Tags map[string]string
}

// FakeReporter records captured errors instead of sending them
type FakeReporter struct {
	mu       sync.Mutex
	reported []ReportedError
}

func (f *FakeReporter) CaptureException(_ context.Context, err error, tags map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reported = append(f.reported, ReportedError{Err: err, Tags: tags})
}

func (f *FakeReporter) Reported() []ReportedError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReportedError(nil), f.reported...)
}
