package service

import (
	"context"
	"sync"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	"github.com/samber/lo"
)

// RecognitionHistory is the bounded, newest-first log of recognizer attempts
type RecognitionHistory struct {
	store recognition.HistoryStore
	limit int

	mu       sync.RWMutex
	attempts []*recognition.Attempt
}

func NewRecognitionHistory(store recognition.HistoryStore, limit int) *RecognitionHistory {
	return &RecognitionHistory{store: store, limit: limit}
}

func (h *RecognitionHistory) Load(ctx context.Context) error {
	attempts, err := h.store.Load(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.attempts = capAttempts(attempts, h.limit)
	h.mu.Unlock()
	return nil
}

// Attempts returns a copy of the log, newest first
func (h *RecognitionHistory) Attempts() []*recognition.Attempt {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*recognition.Attempt(nil), h.attempts...)
}

// Record puts a at the head of the log, dropping older attempts for the same file name
// or fingerprint, and persists the result.
func (h *RecognitionHistory) Record(ctx context.Context, a *recognition.Attempt) error {
	h.mu.Lock()
	next := append([]*recognition.Attempt{a}, lo.Reject(h.attempts, func(prev *recognition.Attempt, _ int) bool {
		return prev.FileName == a.FileName || prev.Fingerprint == a.Fingerprint
	})...)
	h.attempts = capAttempts(next, h.limit)
	snapshot := append([]*recognition.Attempt(nil), h.attempts...)
	h.mu.Unlock()

	return h.store.Save(ctx, snapshot)
}

func capAttempts(attempts []*recognition.Attempt, limit int) []*recognition.Attempt {
	if limit > 0 && len(attempts) > limit {
		return attempts[:limit]
	}
	return attempts
}
