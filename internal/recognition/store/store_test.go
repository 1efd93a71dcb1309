package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/s3"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) key(id string, kind s3.DocumentKind, docType s3.DocumentType) string {
	return string(docType) + "/" + id + "." + string(kind)
}

func (f *fakeS3) UploadDocument(_ context.Context, doc *s3.Document) (string, error) {
	k := f.key(doc.ID, doc.Kind, doc.Type)
	f.objects[k] = append([]byte(nil), doc.Data...)
	return k, nil
}

func (f *fakeS3) GetPresignedUrl(_ context.Context, key string) (string, error) {
	return "https://example.invalid/" + key, nil
}

func (f *fakeS3) GetDocument(_ context.Context, id string, kind s3.DocumentKind, docType s3.DocumentType) ([]byte, error) {
	b, ok := f.objects[f.key(id, kind, docType)]
	if !ok {
		return nil, ierr.NewError("no such key").Mark(ierr.ErrNotFound)
	}
	return b, nil
}

func (f *fakeS3) Exists(_ context.Context, id string, kind s3.DocumentKind, docType s3.DocumentType) (bool, error) {
	_, ok := f.objects[f.key(id, kind, docType)]
	return ok, nil
}

type StoreSuite struct {
	suite.Suite
	ctx context.Context
	dir string
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
}

func (s *StoreSuite) snapshot() *recognition.Snapshot {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &recognition.Snapshot{
		Entries: []*recognition.Entry{
			{
				ID:          "rq_1",
				FileName:    "a.jpg",
				ContentType: types.ContentTypeJPEG,
				Payload:     []byte{0xff, 0xd8, 0xff},
				Fingerprint: "abc",
				State:       types.RecognitionStatePending,
				EnqueuedAt:  at,
			},
			{
				ID:           "rq_2",
				FileName:     "b.png",
				ContentType:  types.ContentTypePNG,
				Fingerprint:  "def",
				State:        types.RecognitionStateRecognized,
				Result:       recognition.Failed("blurred"),
				EnqueuedAt:   at,
				RecognizedAt: &at,
			},
		},
	}
}

func (s *StoreSuite) snapshotStores() map[string]recognition.SnapshotStore {
	return map[string]recognition.SnapshotStore{
		"memory": NewMemorySnapshotStore(),
		"file":   NewFileSnapshotStore(filepath.Join(s.dir, "queue.json")),
		"s3":     NewS3SnapshotStore(newFakeS3()),
	}
}

func (s *StoreSuite) TestSnapshotEmptyBeforeFirstSave() {
	for name, st := range s.snapshotStores() {
		s.Run(name, func() {
			snap, err := st.Load(s.ctx)
			s.Require().NoError(err)
			s.Empty(snap.Entries)
			s.Equal(recognition.SnapshotVersion, snap.Version)
		})
	}
}

func (s *StoreSuite) TestSnapshotRoundTrip() {
	for name, st := range s.snapshotStores() {
		s.Run(name, func() {
			s.Require().NoError(st.Save(s.ctx, s.snapshot()))

			got, err := st.Load(s.ctx)
			s.Require().NoError(err)
			s.Require().Len(got.Entries, 2)
			s.Equal([]byte{0xff, 0xd8, 0xff}, got.Entries[0].Payload)
			s.True(got.Entries[0].IsPending())
			s.False(got.Entries[1].IsPending())
			s.Equal("blurred", got.Entries[1].Result.FailureReason)
			s.False(got.SavedAt.IsZero())
		})
	}
}

func (s *StoreSuite) TestMemoryStoreIsolatesCallers() {
	st := NewMemorySnapshotStore()
	snap := s.snapshot()
	s.Require().NoError(st.Save(s.ctx, snap))

	snap.Entries[0].FileName = "mutated.jpg"

	got, err := st.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal("a.jpg", got.Entries[0].FileName)
}

func (s *StoreSuite) TestFileSaveLeavesNoTempFiles() {
	path := filepath.Join(s.dir, "nested", "queue.json")
	st := NewFileSnapshotStore(path)
	s.Require().NoError(st.Save(s.ctx, s.snapshot()))
	s.Require().NoError(st.Save(s.ctx, &recognition.Snapshot{}))

	files, err := os.ReadDir(filepath.Dir(path))
	s.Require().NoError(err)
	s.Len(files, 1)

	got, err := st.Load(s.ctx)
	s.Require().NoError(err)
	s.Empty(got.Entries)
}

func (s *StoreSuite) TestFileCorrupt() {
	path := filepath.Join(s.dir, "queue.json")
	s.Require().NoError(os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSnapshotStore(path).Load(s.ctx)
	s.Require().Error(err)
	s.True(ierr.IsSystem(err))
}

func (s *StoreSuite) TestHistoryRoundTrip() {
	stores := map[string]recognition.HistoryStore{
		"memory": NewMemoryHistoryStore(),
		"file":   NewFileHistoryStore(filepath.Join(s.dir, "history.json")),
		"s3":     NewS3HistoryStore(newFakeS3()),
	}
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	attempts := []*recognition.Attempt{
		{FileName: "b.jpg", Fingerprint: "2", RecognizedAt: at, Success: true},
		{FileName: "a.jpg", Fingerprint: "1", RecognizedAt: at.Add(-time.Hour)},
	}

	for name, st := range stores {
		s.Run(name, func() {
			empty, err := st.Load(s.ctx)
			s.Require().NoError(err)
			s.Empty(empty)

			s.Require().NoError(st.Save(s.ctx, attempts))
			got, err := st.Load(s.ctx)
			s.Require().NoError(err)
			s.Require().Len(got, 2)
			s.Equal("b.jpg", got[0].FileName)
			s.True(got[0].RecognizedAt.Equal(at))
		})
	}
}

func TestDecodeSnapshotRejectsNewerVersion(t *testing.T) {
	_, err := decodeSnapshot([]byte(`{"version": 99, "entries": []}`))
	require.Error(t, err)
	assert.True(t, ierr.IsSystem(err))
}
