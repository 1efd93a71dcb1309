package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
)

// file is a JSON document on local disk written by replace-on-rename
type file struct {
	mu   sync.Mutex
	path string
}

func (f *file) read() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to read %s", f.path).
			Mark(ierr.ErrSystem)
	}
	return b, nil
}

// write never leaves a partially written file at path: the data goes to a temp file in
// the same directory, is synced and then renamed over the old one.
func (f *file) write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ierr.WithError(err).WithHintf("Failed to create %s", dir).Mark(ierr.ErrSystem)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return ierr.WithError(err).WithHint("Failed to create temp file").Mark(ierr.ErrSystem)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return ierr.WithError(err).WithHintf("Failed to write %s", f.path).Mark(ierr.ErrSystem)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return ierr.WithError(err).WithHintf("Failed to sync %s", f.path).Mark(ierr.ErrSystem)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return ierr.WithError(err).WithHintf("Failed to close %s", f.path).Mark(ierr.ErrSystem)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return ierr.WithError(err).WithHintf("Failed to replace %s", f.path).Mark(ierr.ErrSystem)
	}
	return nil
}

type FileSnapshotStore struct {
	f *file
}

func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{f: &file{path: path}}
}

func (s *FileSnapshotStore) Load(_ context.Context) (*recognition.Snapshot, error) {
	b, err := s.f.read()
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(b)
}

func (s *FileSnapshotStore) Save(_ context.Context, snapshot *recognition.Snapshot) error {
	b, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	return s.f.write(b)
}

type FileHistoryStore struct {
	f *file
}

func NewFileHistoryStore(path string) *FileHistoryStore {
	return &FileHistoryStore{f: &file{path: path}}
}

func (s *FileHistoryStore) Load(_ context.Context) ([]*recognition.Attempt, error) {
	b, err := s.f.read()
	if err != nil {
		return nil, err
	}
	return decodeHistory(b)
}

func (s *FileHistoryStore) Save(_ context.Context, attempts []*recognition.Attempt) error {
	b, err := encodeHistory(attempts)
	if err != nil {
		return err
	}
	return s.f.write(b)
}
