package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/recognizer"
)

var _ recognizer.Recognizer = (*FakeRecognizer)(nil)

// FakeRecognizer returns canned results keyed by file name
type FakeRecognizer struct {
	mu      sync.Mutex
	results map[string]*recognition.Result
	errs    map[string]error
	calls   []string

	// gate, when set, holds every call until it is closed or ctx ends
	gate chan struct{}
}

func NewFakeRecognizer() *FakeRecognizer {
	return &FakeRecognizer{
		results: make(map[string]*recognition.Result),
		errs:    make(map[string]error),
	}
}

// Respond registers the result returned for fileName
func (f *FakeRecognizer) Respond(fileName string, res *recognition.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[fileName] = res
}

// Fail registers an error returned for fileName
func (f *FakeRecognizer) Fail(fileName string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[fileName] = err
}

// Hold makes calls block until Release
func (f *FakeRecognizer) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
}

func (f *FakeRecognizer) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Calls returns the file names recognized so far, in call order
func (f *FakeRecognizer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeRecognizer) Recognize(ctx context.Context, img recognizer.Image) (*recognition.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, img.FileName)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[img.FileName]; ok {
		return nil, err
	}
	if res, ok := f.results[img.FileName]; ok {
		c := *res
		c.Lines = append([]recognition.ResultLine(nil), res.Lines...)
		return &c, nil
	}
	return nil, ierr.NewErrorf("no canned result for %s", img.FileName).
		WithHint("The image could not be read").
		Mark(ierr.ErrRecognition)
}
