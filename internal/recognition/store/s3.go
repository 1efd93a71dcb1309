package store

import (
	"context"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/s3"
)

const (
	snapshotObjectID = "queue"
	historyObjectID  = "history"
)

// S3SnapshotStore keeps the snapshot as a single JSON object. A missing object is an
// empty queue.
type S3SnapshotStore struct {
	s3 s3.Service
}

func NewS3SnapshotStore(service s3.Service) *S3SnapshotStore {
	return &S3SnapshotStore{s3: service}
}

func (s *S3SnapshotStore) Load(ctx context.Context) (*recognition.Snapshot, error) {
	b, err := s.s3.GetDocument(ctx, snapshotObjectID, s3.DocumentKindJSON, s3.DocumentTypeRecognitionSnapshot)
	if ierr.IsNotFound(err) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(b)
}

func (s *S3SnapshotStore) Save(ctx context.Context, snapshot *recognition.Snapshot) error {
	b, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	_, err = s.s3.UploadDocument(ctx, s3.NewJSONDocument(snapshotObjectID, b, s3.DocumentTypeRecognitionSnapshot))
	return err
}

type S3HistoryStore struct {
	s3 s3.Service
}

func NewS3HistoryStore(service s3.Service) *S3HistoryStore {
	return &S3HistoryStore{s3: service}
}

func (s *S3HistoryStore) Load(ctx context.Context) ([]*recognition.Attempt, error) {
	b, err := s.s3.GetDocument(ctx, historyObjectID, s3.DocumentKindJSON, s3.DocumentTypeRecognitionHistory)
	if ierr.IsNotFound(err) {
		return []*recognition.Attempt{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeHistory(b)
}

func (s *S3HistoryStore) Save(ctx context.Context, attempts []*recognition.Attempt) error {
	b, err := encodeHistory(attempts)
	if err != nil {
		return err
	}
	_, err = s.s3.UploadDocument(ctx, s3.NewJSONDocument(historyObjectID, b, s3.DocumentTypeRecognitionHistory))
	return err
}
