package store

import (
	"context"
	"sync"

	"github.com/flexprice/notebilling/internal/domain/recognition"
)

// MemorySnapshotStore keeps the encoded snapshot in memory; callers never share
// pointers with what is stored.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

func (s *MemorySnapshotStore) Load(_ context.Context) (*recognition.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeSnapshot(s.data)
}

func (s *MemorySnapshotStore) Save(_ context.Context, snapshot *recognition.Snapshot) error {
	b, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = b
	s.mu.Unlock()
	return nil
}

type MemoryHistoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{}
}

func (s *MemoryHistoryStore) Load(_ context.Context) ([]*recognition.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeHistory(s.data)
}

func (s *MemoryHistoryStore) Save(_ context.Context, attempts []*recognition.Attempt) error {
	b, err := encodeHistory(attempts)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = b
	s.mu.Unlock()
	return nil
}
