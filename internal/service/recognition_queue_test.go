package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/notebilling/internal/api/dto"
	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/recognition/store"
	"github.com/flexprice/notebilling/internal/recognizer"
	"github.com/flexprice/notebilling/internal/testutil"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// pngFile returns a payload that sniffs as PNG; distinct seeds give distinct fingerprints
func pngFile(name, seed string) dto.UploadedFile {
	return dto.UploadedFile{FileName: name, Data: append(append([]byte(nil), pngMagic...), seed...)}
}

type RecognitionQueueServiceSuite struct {
	testutil.BaseServiceTestSuite
	params        ServiceParams
	deliveryNotes DeliveryNoteService
	queue         RecognitionQueueService
}

func TestRecognitionQueueService(t *testing.T) {
	suite.Run(t, new(RecognitionQueueServiceSuite))
}

func (s *RecognitionQueueServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.GetConfig().Recognition.Timeout = 5 * time.Second
	s.params = newTestParams(&s.BaseServiceTestSuite)
	s.deliveryNotes = NewDeliveryNoteService(s.params)
	s.queue = NewRecognitionQueueService(s.params, s.deliveryNotes)
}

func (s *RecognitionQueueServiceSuite) TearDownTest() {
	s.GetRecognizer().Release()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.NoError(s.queue.Stop(ctx))
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *RecognitionQueueServiceSuite) start() {
	s.Require().NoError(s.queue.Start(s.GetContext()))
}

func (s *RecognitionQueueServiceSuite) waitIdle() {
	ctx, cancel := context.WithTimeout(s.GetContext(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.queue.WaitIdle(ctx))
}

func (s *RecognitionQueueServiceSuite) enqueue(files ...dto.UploadedFile) *dto.EnqueueRecognitionResponse {
	resp, err := s.queue.Enqueue(s.GetContext(), files)
	s.Require().NoError(err)
	return resp
}

func (s *RecognitionQueueServiceSuite) entry(id string) *recognition.Entry {
	resp, err := s.queue.GetEntry(s.GetContext(), id)
	s.Require().NoError(err)
	return resp.Entry
}

// march10 is person 3 delivering two quota items on 2025-03-10 with the price left unread
func march10() *recognition.Result {
	return &recognition.Result{
		Success:       true,
		SalesPersonID: 3,
		DeliveryDate:  types.NewDate(testutil.Date(2025, time.March, 10)),
		TaxRateID:     testutil.TaxRateStandard,
		Lines:         []recognition.ResultLine{{ProductID: testutil.ProductQuota, Quantity: 2}},
		Raw:           []byte(`{"success":true}`),
	}
}

func (s *RecognitionQueueServiceSuite) TestEnqueue_RecognizesInBackground() {
	s.GetRecognizer().Respond("a.png", march10())
	s.start()

	resp := s.enqueue(pngFile("a.png", "a"))
	s.Require().Len(resp.Entries, 1)
	s.Empty(resp.Rejected)
	s.Equal(types.RecognitionStatePending, resp.Entries[0].State)
	s.Nil(resp.Entries[0].Payload)

	s.waitIdle()
	s.False(s.queue.Recognizing())

	e := s.entry(resp.Entries[0].ID)
	s.Equal(types.RecognitionStateRecognized, e.State)
	s.Require().NotNil(e.Result)
	s.True(e.Result.Success)
	s.NotNil(e.RecognizedAt)
	s.False(e.IsDuplicate)
	// unread price resolved to the list price
	s.Equal(int64(1000), e.Result.Lines[0].UnitPrice)

	history := s.queue.History(s.GetContext())
	s.Require().Len(history.Items, 1)
	s.Equal("a.png", history.Items[0].FileName)
	s.Equal(recognizer.Fingerprint(pngFile("a.png", "a").Data), history.Items[0].Fingerprint)

	snapshot, err := s.GetStores().SnapshotStore.Load(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(snapshot.Entries, 1)
	s.Equal(types.RecognitionStateRecognized, snapshot.Entries[0].State)
}

func (s *RecognitionQueueServiceSuite) TestEnqueue_RejectsUnsupportedFiles() {
	s.GetConfig().Recognition.MaxUploadBytes = 32
	s.start()

	resp := s.enqueue(
		dto.UploadedFile{FileName: "notes.txt", Data: []byte("plain text")},
		pngFile("huge.png", string(make([]byte, 64))),
	)
	s.Empty(resp.Entries)
	s.Len(resp.Rejected, 2)
	s.Empty(s.queue.ListEntries(s.GetContext()).Items)
	s.Empty(s.GetRecognizer().Calls())

	_, err := s.queue.Enqueue(s.GetContext(), nil)
	s.True(ierr.IsValidation(err))
}

func (s *RecognitionQueueServiceSuite) TestRecognitionFailure_IsRecorded() {
	s.GetRecognizer().Fail("blurry.png", ierr.NewError("model refused").
		WithHint("The image is too blurry to read").
		Mark(ierr.ErrRecognition))
	s.start()

	resp := s.enqueue(pngFile("blurry.png", "b"))
	s.waitIdle()

	e := s.entry(resp.Entries[0].ID)
	s.Equal(types.RecognitionStateRecognized, e.State)
	s.False(e.Result.Success)
	s.Equal("The image is too blurry to read", e.Result.FailureReason)

	history := s.queue.History(s.GetContext())
	s.Require().Len(history.Items, 1)
	s.False(history.Items[0].Success)
	s.Nil(history.Items[0].ParsedFields)

	_, err := s.queue.Commit(s.GetContext(), e.ID, nil)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *RecognitionQueueServiceSuite) TestRecognitionTimeout() {
	s.GetConfig().Recognition.Timeout = 50 * time.Millisecond
	s.GetRecognizer().Hold()
	s.start()

	resp := s.enqueue(pngFile("slow.png", "s"))
	s.waitIdle()

	e := s.entry(resp.Entries[0].ID)
	s.False(e.Result.Success)
	s.Equal("recognition timed out", e.Result.FailureReason)
}

func (s *RecognitionQueueServiceSuite) TestCommit() {
	s.GetRecognizer().Respond("a.png", march10())
	s.start()

	resp := s.enqueue(pngFile("a.png", "a"))
	s.waitIdle()
	id := resp.Entries[0].ID

	note, err := s.queue.Commit(s.GetContext(), id, nil)
	s.Require().NoError(err)

	s.Equal(int64(3), note.SalesPersonID)
	s.Equal(testutil.Date(2025, time.March, 20), note.BillingDate)
	s.Equal(s.GetConfig().Recognition.CommitRemarks, note.Remarks)
	s.JSONEq(`{"success":true}`, string(note.RecognitionData))
	s.Empty(note.ImagePath)
	s.Require().Len(note.Lines, 1)
	s.Equal(int64(1000), note.Lines[0].UnitPrice)
	s.Equal(int64(2000), note.TotalAmount)

	_, err = s.queue.GetEntry(s.GetContext(), id)
	s.True(ierr.IsNotFound(err))

	stored, err := s.GetStores().DeliveryNoteRepo.Get(s.GetContext(), note.ID)
	s.Require().NoError(err)
	s.Equal(note.Number, stored.Number)

	snapshot, err := s.GetStores().SnapshotStore.Load(s.GetContext())
	s.Require().NoError(err)
	s.Empty(snapshot.Entries)
}

func (s *RecognitionQueueServiceSuite) TestCommit_Overrides() {
	s.GetRecognizer().Respond("a.png", march10())
	s.start()

	resp := s.enqueue(pngFile("a.png", "a"))
	s.waitIdle()

	date := types.NewDate(testutil.Date(2025, time.March, 22))
	note, err := s.queue.Commit(s.GetContext(), resp.Entries[0].ID, &dto.CommitRecognitionRequest{
		SalesPersonID: lo.ToPtr(int64(1)),
		DeliveryDate:  &date,
		Remarks:       lo.ToPtr("checked by hand"),
		Lines: []dto.DeliveryNoteLineRequest{
			{ProductID: testutil.ProductNonQuota, Quantity: 5},
		},
	})
	s.Require().NoError(err)

	s.Equal(int64(1), note.SalesPersonID)
	s.Equal(testutil.Date(2025, time.April, 20), note.BillingDate)
	s.Equal("checked by hand", note.Remarks)
	s.Require().Len(note.Lines, 1)
	s.Equal(int64(2500), note.Lines[0].Amount)
}

func (s *RecognitionQueueServiceSuite) TestDuplicateOfExistingDeliveryNote() {
	_, err := s.deliveryNotes.CreateDeliveryNote(s.GetContext(), &dto.CreateDeliveryNoteRequest{
		SalesPersonID: 3,
		TaxRateID:     testutil.TaxRateStandard,
		DeliveryDate:  types.NewDate(testutil.Date(2025, time.March, 10)),
		Lines:         []dto.DeliveryNoteLineRequest{{ProductID: testutil.ProductQuota, Quantity: 2}},
	})
	s.Require().NoError(err)

	s.GetRecognizer().Respond("again.png", march10())
	s.start()

	resp := s.enqueue(pngFile("again.png", "x"))
	s.waitIdle()
	id := resp.Entries[0].ID

	e := s.entry(id)
	s.True(e.IsDuplicate)
	s.Require().Len(e.Duplicates, 1)
	s.Equal(types.DuplicateKindDeliveryNote, e.Duplicates[0].Kind)

	_, err = s.queue.Commit(s.GetContext(), id, nil)
	s.True(ierr.IsDuplicateWarning(err))
	s.Equal(types.RecognitionStateRecognized, s.entry(id).State)

	_, err = s.queue.Commit(s.GetContext(), id, &dto.CommitRecognitionRequest{ConfirmDuplicate: true})
	s.Require().NoError(err)

	count, err := s.GetStores().DeliveryNoteRepo.Count(s.GetContext(), types.NewNoLimitDeliveryNoteFilter())
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *RecognitionQueueServiceSuite) TestDuplicateOfEarlierUpload() {
	s.GetRecognizer().Respond("first.png", recognition.Failed("unreadable"))
	s.GetRecognizer().Respond("second.png", recognition.Failed("unreadable"))
	s.start()

	s.enqueue(pngFile("first.png", "same"))
	s.waitIdle()

	// same bytes under a new name
	resp := s.enqueue(pngFile("second.png", "same"))
	s.waitIdle()

	e := s.entry(resp.Entries[0].ID)
	s.True(e.IsDuplicate)
	s.Require().Len(e.Duplicates, 1)
	s.Equal(types.DuplicateKindHistory, e.Duplicates[0].Kind)
	s.Equal("first.png", e.Duplicates[0].PriorFileName)

	// the newer attempt supersedes the older one for the same fingerprint
	history := s.queue.History(s.GetContext())
	s.Require().Len(history.Items, 1)
	s.Equal("second.png", history.Items[0].FileName)
}

func (s *RecognitionQueueServiceSuite) TestDiscard_InFlight() {
	s.GetRecognizer().Respond("a.png", march10())
	s.GetRecognizer().Hold()
	s.start()

	resp := s.enqueue(pngFile("a.png", "a"))
	id := resp.Entries[0].ID
	s.True(s.queue.Recognizing())
	s.True(s.queue.ListEntries(s.GetContext()).Recognizing)

	s.Require().NoError(s.queue.Discard(s.GetContext(), id))
	s.waitIdle()

	s.False(s.queue.Recognizing())
	s.Empty(s.queue.ListEntries(s.GetContext()).Items)
	s.Empty(s.queue.History(s.GetContext()).Items)

	_, err := s.queue.GetEntry(s.GetContext(), id)
	s.True(ierr.IsNotFound(err))
	s.True(ierr.IsNotFound(s.queue.Discard(s.GetContext(), id)))

	snapshot, err := s.GetStores().SnapshotStore.Load(s.GetContext())
	s.Require().NoError(err)
	s.Empty(snapshot.Entries)
}

func (s *RecognitionQueueServiceSuite) TestStart_ResubmitsOnlyPendingEntries() {
	recognizedAt := time.Now().UTC().Add(-time.Hour)
	pending := pngFile("pending.png", "p")
	s.Require().NoError(s.GetStores().SnapshotStore.Save(s.GetContext(), &recognition.Snapshot{
		Version: recognition.SnapshotVersion,
		Entries: []*recognition.Entry{
			{
				ID:          "rec_pending",
				FileName:    pending.FileName,
				ContentType: types.ContentTypePNG,
				Payload:     pending.Data,
				Fingerprint: recognizer.Fingerprint(pending.Data),
				State:       types.RecognitionStatePending,
				EnqueuedAt:  recognizedAt,
			},
			{
				ID:           "rec_done",
				FileName:     "done.png",
				ContentType:  types.ContentTypePNG,
				Payload:      append([]byte(nil), pngMagic...),
				Fingerprint:  "fp-done",
				State:        types.RecognitionStateRecognized,
				Result:       march10(),
				EnqueuedAt:   recognizedAt,
				RecognizedAt: &recognizedAt,
			},
		},
	}))
	s.GetRecognizer().Respond("pending.png", march10())

	s.start()
	s.waitIdle()

	s.Equal([]string{"pending.png"}, s.GetRecognizer().Calls())

	list := s.queue.ListEntries(s.GetContext())
	s.Require().Len(list.Items, 2)
	s.Equal("rec_pending", list.Items[0].ID)
	for _, item := range list.Items {
		s.Equal(types.RecognitionStateRecognized, item.State)
	}
}

func (s *RecognitionQueueServiceSuite) TestStop_LeavesEntriesPending() {
	s.GetRecognizer().Hold()
	s.start()

	resp := s.enqueue(pngFile("a.png", "a"))

	ctx, cancel := context.WithTimeout(s.GetContext(), 5*time.Second)
	defer cancel()
	s.Require().NoError(s.queue.Stop(ctx))

	snapshot, err := s.GetStores().SnapshotStore.Load(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(snapshot.Entries, 1)
	s.Equal(resp.Entries[0].ID, snapshot.Entries[0].ID)
	s.True(snapshot.Entries[0].IsPending())
	s.NotEmpty(snapshot.Entries[0].Payload)
}

func (s *RecognitionQueueServiceSuite) TestEnqueue_BeforeStart() {
	_, err := s.queue.Enqueue(s.GetContext(), []dto.UploadedFile{pngFile("a.png", "a")})
	s.True(ierr.IsSystem(err))
}

// gatedSnapshotStore holds the first save that carries a recognized entry until
// release is closed
type gatedSnapshotStore struct {
	*store.MemorySnapshotStore
	once    sync.Once
	blocked chan struct{}
	release chan struct{}
}

func newGatedSnapshotStore() *gatedSnapshotStore {
	return &gatedSnapshotStore{
		MemorySnapshotStore: store.NewMemorySnapshotStore(),
		blocked:             make(chan struct{}),
		release:             make(chan struct{}),
	}
}

func (g *gatedSnapshotStore) Save(ctx context.Context, snapshot *recognition.Snapshot) error {
	recognized := lo.SomeBy(snapshot.Entries, func(e *recognition.Entry) bool {
		return e.State == types.RecognitionStateRecognized
	})
	if recognized {
		hold := false
		g.once.Do(func() { hold = true })
		if hold {
			close(g.blocked)
			<-g.release
		}
	}
	return g.MemorySnapshotStore.Save(ctx, snapshot)
}

func (s *RecognitionQueueServiceSuite) TestSnapshot_SlowSaveDoesNotDropLaterEntries() {
	gated := newGatedSnapshotStore()
	params := s.params
	params.SnapshotStore = gated
	s.queue = NewRecognitionQueueService(params, s.deliveryNotes)

	s.GetRecognizer().Respond("a.png", march10())
	s.start()
	s.enqueue(pngFile("a.png", "a"))

	select {
	case <-gated.blocked:
	case <-time.After(5 * time.Second):
		s.FailNow("completion save never started")
	}

	s.GetRecognizer().Hold()
	enqueued := make(chan error, 1)
	go func() {
		_, err := s.queue.Enqueue(s.GetContext(), []dto.UploadedFile{pngFile("b.png", "b")})
		enqueued <- err
	}()
	s.Eventually(func() bool {
		return len(s.queue.ListEntries(s.GetContext()).Items) == 2
	}, 5*time.Second, 5*time.Millisecond)

	close(gated.release)
	select {
	case err := <-enqueued:
		s.Require().NoError(err)
	case <-time.After(5 * time.Second):
		s.FailNow("enqueue did not return")
	}

	snapshot, err := gated.Load(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(snapshot.Entries, 2)
	states := lo.SliceToMap(snapshot.Entries, func(e *recognition.Entry) (string, types.RecognitionState) {
		return e.FileName, e.State
	})
	s.Equal(types.RecognitionStateRecognized, states["a.png"])
	s.Equal(types.RecognitionStatePending, states["b.png"])
}

func (s *RecognitionQueueServiceSuite) TestStart_RetriesAfterFailedLoad() {
	failing := &failingSnapshotStore{MemorySnapshotStore: store.NewMemorySnapshotStore(), fail: true}
	params := s.params
	params.SnapshotStore = failing
	s.queue = NewRecognitionQueueService(params, s.deliveryNotes)

	s.Error(s.queue.Start(s.GetContext()))
	_, err := s.queue.Enqueue(s.GetContext(), []dto.UploadedFile{pngFile("a.png", "a")})
	s.True(ierr.IsSystem(err))

	failing.fail = false
	s.Require().NoError(s.queue.Start(s.GetContext()))
	s.enqueue(pngFile("a.png", "a"))
}

// failingSnapshotStore fails Load while fail is set
type failingSnapshotStore struct {
	*store.MemorySnapshotStore
	fail bool
}

func (f *failingSnapshotStore) Load(ctx context.Context) (*recognition.Snapshot, error) {
	if f.fail {
		return nil, ierr.NewError("snapshot unreadable").Mark(ierr.ErrStorage)
	}
	return f.MemorySnapshotStore.Load(ctx)
}

// gatedNoteRepo holds the first List call until release is closed
type gatedNoteRepo struct {
	deliverynote.Repository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedNoteRepo) List(ctx context.Context, filter *types.DeliveryNoteFilter) ([]*deliverynote.DeliveryNote, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Repository.List(ctx, filter)
}

func (s *RecognitionQueueServiceSuite) TestDiscard_DuringDuplicateCheckSkipsHistory() {
	notes := &gatedNoteRepo{
		Repository: s.params.DeliveryNoteRepo,
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	params := s.params
	params.DeliveryNoteRepo = notes
	s.queue = NewRecognitionQueueService(params, s.deliveryNotes)

	s.GetRecognizer().Respond("a.png", march10())
	s.start()
	resp := s.enqueue(pngFile("a.png", "a"))

	select {
	case <-notes.entered:
	case <-time.After(5 * time.Second):
		s.FailNow("duplicate check never started")
	}
	s.Require().NoError(s.queue.Discard(s.GetContext(), resp.Entries[0].ID))
	close(notes.release)
	s.waitIdle()

	s.Empty(s.queue.ListEntries(s.GetContext()).Items)
	s.Empty(s.queue.History(s.GetContext()).Items)
	snapshot, err := s.GetStores().SnapshotStore.Load(s.GetContext())
	s.Require().NoError(err)
	s.Empty(snapshot.Entries)
}
