package recognition

import (
	"context"
)

// SnapshotStore persists the recognition queue. Load returns an empty snapshot when
// nothing was saved yet. Save replaces the previous snapshot atomically.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

// HistoryStore persists recognition attempts, newest first
type HistoryStore interface {
	Load(ctx context.Context) ([]*Attempt, error)
	Save(ctx context.Context, attempts []*Attempt) error
}
