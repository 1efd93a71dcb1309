// Package store persists the recognition queue snapshot and the attempt history.
// Three backends share one JSON encoding: process memory, local files and S3.
package store

import (
	"time"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/s3"
	"github.com/flexprice/notebilling/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Stores bundles both stores of one backend
type Stores struct {
	Snapshots recognition.SnapshotStore
	History   recognition.HistoryStore
}

// New builds the stores selected by recognition.store
func New(cfg *config.Configuration, s3Service s3.Service, log *logger.Logger) (*Stores, error) {
	log.Infow("initializing recognition store", "store", cfg.Recognition.Store)
	switch cfg.Recognition.Store {
	case types.SnapshotStoreMemory:
		return &Stores{Snapshots: NewMemorySnapshotStore(), History: NewMemoryHistoryStore()}, nil
	case types.SnapshotStoreFile:
		return &Stores{
			Snapshots: NewFileSnapshotStore(cfg.Recognition.SnapshotPath),
			History:   NewFileHistoryStore(cfg.Recognition.HistoryPath),
		}, nil
	case types.SnapshotStoreS3:
		if s3Service == nil {
			return nil, ierr.NewError("s3 store selected without an s3 service").
				WithHint("Enable s3 or choose another recognition store").
				Mark(ierr.ErrValidation)
		}
		return &Stores{
			Snapshots: NewS3SnapshotStore(s3Service),
			History:   NewS3HistoryStore(s3Service),
		}, nil
	default:
		return nil, ierr.NewErrorf("unknown recognition store %q", cfg.Recognition.Store).
			Mark(ierr.ErrValidation)
	}
}

func emptySnapshot() *recognition.Snapshot {
	return &recognition.Snapshot{Version: recognition.SnapshotVersion, Entries: []*recognition.Entry{}}
}

func encodeSnapshot(s *recognition.Snapshot) ([]byte, error) {
	if s == nil {
		s = emptySnapshot()
	}
	out := *s
	out.Version = recognition.SnapshotVersion
	if out.SavedAt.IsZero() {
		out.SavedAt = time.Now().UTC()
	}
	b, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode recognition queue").
			Mark(ierr.ErrSystem)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (*recognition.Snapshot, error) {
	if len(b) == 0 {
		return emptySnapshot(), nil
	}
	var s recognition.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored recognition queue is corrupt").
			Mark(ierr.ErrSystem)
	}
	if s.Version > recognition.SnapshotVersion {
		return nil, ierr.NewErrorf("snapshot version %d is newer than supported version %d",
			s.Version, recognition.SnapshotVersion).
			Mark(ierr.ErrSystem)
	}
	if s.Entries == nil {
		s.Entries = []*recognition.Entry{}
	}
	return &s, nil
}

func encodeHistory(attempts []*recognition.Attempt) ([]byte, error) {
	if attempts == nil {
		attempts = []*recognition.Attempt{}
	}
	b, err := json.MarshalIndent(attempts, "", "  ")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to encode recognition history").
			Mark(ierr.ErrSystem)
	}
	return b, nil
}

func decodeHistory(b []byte) ([]*recognition.Attempt, error) {
	if len(b) == 0 {
		return []*recognition.Attempt{}, nil
	}
	var attempts []*recognition.Attempt
	if err := json.Unmarshal(b, &attempts); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Stored recognition history is corrupt").
			Mark(ierr.ErrSystem)
	}
	if attempts == nil {
		attempts = []*recognition.Attempt{}
	}
	return attempts, nil
}
