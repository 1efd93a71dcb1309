package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/notebilling/internal/api/dto"
	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/recognizer"
	"github.com/flexprice/notebilling/internal/s3"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/h2non/filetype"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
)

type RecognitionQueueService interface {
	// Start restores the persisted queue, attaches the completion handler and
	// resubmits every entry that was still waiting for a result.
	Start(ctx context.Context) error
	// Stop cancels outstanding calls and waits for workers and the handler to exit.
	// Pending entries stay pending in the snapshot.
	Stop(ctx context.Context) error

	Enqueue(ctx context.Context, files []dto.UploadedFile) (*dto.EnqueueRecognitionResponse, error)
	ListEntries(ctx context.Context) *dto.ListRecognitionEntriesResponse
	GetEntry(ctx context.Context, id string) (*dto.RecognitionEntryResponse, error)
	Discard(ctx context.Context, id string) error
	Commit(ctx context.Context, id string, req *dto.CommitRecognitionRequest) (*dto.DeliveryNoteResponse, error)
	History(ctx context.Context) *dto.RecognitionHistoryResponse

	// Recognizing is true while any recognizer call is outstanding
	Recognizing() bool
	// WaitIdle blocks until no call is outstanding and every completion was applied
	WaitIdle(ctx context.Context) error
}

// completionEvent is published by a worker when its recognizer call returns
type completionEvent struct {
	EntryID      string              `json:"entry_id"`
	Result       *recognition.Result `json:"result"`
	RecognizedAt time.Time           `json:"recognized_at"`
}

type recognitionQueueService struct {
	ServiceParams
	deliveryNotes DeliveryNoteService
	history       *RecognitionHistory
	detector      *DuplicateDetector

	// saveMu orders snapshot writes; it is taken before mu, never while holding it
	saveMu sync.Mutex

	mu        sync.Mutex
	entries   map[string]*recognition.Entry
	order     []string
	inflight  map[string]context.CancelFunc
	discarded map[string]struct{}
	// committing guards against two concurrent commits of one entry
	committing map[string]struct{}

	idle    chan struct{}
	started bool

	runCtx      context.Context
	cancelRun   context.CancelFunc
	workers     conc.WaitGroup
	handlerDone chan struct{}
}

func NewRecognitionQueueService(params ServiceParams, deliveryNotes DeliveryNoteService) RecognitionQueueService {
	history := NewRecognitionHistory(params.HistoryStore, params.Config.Recognition.HistoryLimit)
	idle := make(chan struct{})
	close(idle)

	return &recognitionQueueService{
		ServiceParams: params,
		deliveryNotes: deliveryNotes,
		history:       history,
		detector:      NewDuplicateDetector(history, params.DeliveryNoteRepo),
		entries:       make(map[string]*recognition.Entry),
		inflight:      make(map[string]context.CancelFunc),
		discarded:     make(map[string]struct{}),
		committing:    make(map[string]struct{}),
		idle:          idle,
	}
}

func (s *recognitionQueueService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ierr.NewError("recognition queue already started").Mark(ierr.ErrInvalidOperation)
	}
	s.started = true
	s.mu.Unlock()

	snapshot, msgs, err := s.restore(ctx)
	if err != nil {
		s.mu.Lock()
		s.started = false
		s.runCtx, s.cancelRun = nil, nil
		s.mu.Unlock()
		return err
	}
	go s.handleCompletions(msgs)

	s.mu.Lock()
	resubmitted := 0
	for _, e := range snapshot.Entries {
		if e.State.IsTerminal() {
			continue
		}
		s.entries[e.ID] = e
		s.order = append(s.order, e.ID)
		if e.IsPending() {
			s.submitLocked(e)
			resubmitted++
		}
	}
	restored := len(s.order)
	s.mu.Unlock()

	s.Logger.Infow("recognition queue started",
		"restored_entries", restored,
		"resubmitted_entries", resubmitted,
	)
	return nil
}

// restore loads the persisted history and queue and subscribes to completions
func (s *recognitionQueueService) restore(ctx context.Context) (*recognition.Snapshot, <-chan *message.Message, error) {
	if err := s.history.Load(ctx); err != nil {
		return nil, nil, err
	}
	snapshot, err := s.SnapshotStore.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	msgs, err := s.PubSub.Subscribe(runCtx, s.Config.Recognition.CompletionTopic)
	if err != nil {
		cancel()
		return nil, nil, ierr.WithError(err).
			WithHint("Failed to subscribe to recognition completions").
			Mark(ierr.ErrSystem)
	}
	s.mu.Lock()
	s.runCtx, s.cancelRun = runCtx, cancel
	s.handlerDone = make(chan struct{})
	s.mu.Unlock()
	return snapshot, msgs, nil
}

func (s *recognitionQueueService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started || s.cancelRun == nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.cancelRun()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		<-s.handlerDone
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sniffContentType accepts JPEG and PNG only, judged by the file's magic bytes
func sniffContentType(data []byte) (string, bool) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", false
	}
	switch kind.MIME.Value {
	case types.ContentTypeJPEG, types.ContentTypePNG:
		return kind.MIME.Value, true
	default:
		return "", false
	}
}

func (s *recognitionQueueService) Enqueue(ctx context.Context, files []dto.UploadedFile) (*dto.EnqueueRecognitionResponse, error) {
	if len(files) == 0 {
		return nil, ierr.NewError("no files uploaded").
			WithHint("Please select at least one image").
			Mark(ierr.ErrValidation)
	}

	resp := &dto.EnqueueRecognitionResponse{
		Entries:  []*dto.RecognitionEntryResponse{},
		Rejected: []dto.RejectedUpload{},
	}

	now := time.Now().UTC()
	var accepted []*recognition.Entry
	for _, f := range files {
		if int64(len(f.Data)) > s.Config.Recognition.MaxUploadBytes {
			resp.Rejected = append(resp.Rejected, dto.RejectedUpload{
				FileName: f.FileName,
				Reason:   fmt.Sprintf("file exceeds %d bytes", s.Config.Recognition.MaxUploadBytes),
			})
			continue
		}
		contentType, ok := sniffContentType(f.Data)
		if !ok {
			resp.Rejected = append(resp.Rejected, dto.RejectedUpload{
				FileName: f.FileName,
				Reason:   "only JPEG and PNG images are accepted",
			})
			continue
		}
		accepted = append(accepted, &recognition.Entry{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECOGNITION_ENTRY),
			FileName:    f.FileName,
			ContentType: contentType,
			Payload:     f.Data,
			Fingerprint: recognizer.Fingerprint(f.Data),
			State:       types.RecognitionStatePending,
			EnqueuedAt:  now,
		})
	}

	if len(accepted) == 0 {
		return resp, nil
	}

	s.mu.Lock()
	if s.runCtx == nil {
		s.mu.Unlock()
		return nil, ierr.NewError("recognition queue not started").Mark(ierr.ErrSystem)
	}
	for _, e := range accepted {
		s.entries[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	s.mu.Unlock()

	// the burst is on disk before any call is made, so a crash resubmits it on Start
	if err := s.persist(ctx); err != nil {
		s.mu.Lock()
		for _, e := range accepted {
			s.removeLocked(e.ID)
		}
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	for _, e := range accepted {
		// a discard may have raced the save
		if cur, ok := s.entries[e.ID]; ok {
			s.submitLocked(cur)
			resp.Entries = append(resp.Entries, dto.NewRecognitionEntryResponse(cur))
		}
	}
	s.mu.Unlock()

	s.Logger.Infow("enqueued images for recognition",
		"accepted", len(resp.Entries),
		"rejected", len(resp.Rejected),
	)
	return resp, nil
}

// submitLocked starts the recognizer call for e. s.mu must be held.
func (s *recognitionQueueService) submitLocked(e *recognition.Entry) {
	if _, running := s.inflight[e.ID]; running {
		return
	}

	callCtx, cancel := context.WithTimeout(s.runCtx, s.Config.Recognition.Timeout)
	if len(s.inflight) == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight[e.ID] = cancel

	img := recognizer.Image{
		Data:        append([]byte(nil), e.Payload...),
		ContentType: e.ContentType,
		FileName:    e.FileName,
	}
	entryID := e.ID

	s.workers.Go(func() {
		defer cancel()
		s.Profiler.Do(callCtx, "recognize", func(ctx context.Context) {
			s.recognize(ctx, entryID, img)
		})
	})
}

func (s *recognitionQueueService) recognize(ctx context.Context, entryID string, img recognizer.Image) {
	res, err := s.Recognizer.Recognize(ctx, img)

	// shutting down: leave the entry pending so the next Start resubmits it
	if s.runCtx.Err() != nil {
		return
	}

	if err != nil {
		reason := ierr.DisplayMessage(err)
		if ctx.Err() == context.DeadlineExceeded {
			reason = "recognition timed out"
		}
		s.Logger.Warnw("recognition failed", "entry_id", entryID, "file_name", img.FileName, "error", err)
		if !ierr.IsRecognition(err) && ctx.Err() == nil {
			s.Reporter.CaptureException(ctx, err, map[string]string{"operation": "recognize", "entry_id": entryID})
		}
		res = recognition.Failed(reason)
	}

	ev := completionEvent{EntryID: entryID, Result: res, RecognizedAt: time.Now().UTC()}
	payload, err := json.Marshal(ev)
	if err == nil {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		err = s.PubSub.Publish(s.runCtx, s.Config.Recognition.CompletionTopic, msg)
	}
	if err != nil {
		// without the event the entry would stay outstanding forever
		s.Logger.Errorw("failed to publish recognition completion", "entry_id", entryID, "error", err)
		s.applyCompletion(s.runCtx, ev)
	}
}

// handleCompletions is the only goroutine that applies recognizer results
func (s *recognitionQueueService) handleCompletions(msgs <-chan *message.Message) {
	defer close(s.handlerDone)

	for msg := range msgs {
		var ev completionEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			s.Logger.Errorw("dropping malformed recognition completion", "message_uuid", msg.UUID, "error", err)
			msg.Ack()
			continue
		}
		s.applyCompletion(s.runCtx, ev)
		msg.Ack()
	}
}

func (s *recognitionQueueService) applyCompletion(ctx context.Context, ev completionEvent) {
	defer s.finishCall(ev.EntryID)

	s.mu.Lock()
	if _, gone := s.discarded[ev.EntryID]; gone {
		delete(s.discarded, ev.EntryID)
		s.mu.Unlock()
		return
	}
	entry, ok := s.entries[ev.EntryID]
	if !ok || entry.State != types.RecognitionStatePending {
		s.mu.Unlock()
		return
	}
	fingerprint, fileName := entry.Fingerprint, entry.FileName
	s.mu.Unlock()

	log := s.Logger.With("entry_id", ev.EntryID, "file_name", fileName)

	res := ev.Result
	if res == nil {
		res = recognition.Failed("recognizer returned no result")
	}
	if res.Success {
		if err := s.resolveUnitPrices(ctx, res); err != nil {
			log.Warnw("failed to resolve list prices", "error", err)
		}
	}

	dups, err := s.detector.Detect(ctx, fingerprint, fileName, res)
	if err != nil {
		log.Warnw("duplicate check incomplete", "error", err)
	}

	attempt := &recognition.Attempt{
		FileName:     fileName,
		Fingerprint:  fingerprint,
		RecognizedAt: ev.RecognizedAt,
		Success:      res.Success,
	}
	if res.Success {
		attempt.ParsedFields = res
	}
	if !s.stillQueued(ev.EntryID) {
		return
	}
	if err := s.history.Record(ctx, attempt); err != nil {
		log.Errorw("failed to save recognition history", "error", err)
	}

	s.mu.Lock()
	entry, ok = s.entries[ev.EntryID]
	if !ok {
		delete(s.discarded, ev.EntryID)
		s.mu.Unlock()
		return
	}
	entry.Result = res
	entry.State = types.RecognitionStateRecognized
	entry.RecognizedAt = lo.ToPtr(ev.RecognizedAt)
	entry.Duplicates = dups
	entry.IsDuplicate = len(dups) > 0
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		log.Errorw("failed to save recognition queue", "error", err)
		s.Reporter.CaptureException(ctx, err, map[string]string{"operation": "save_recognition_queue", "entry_id": ev.EntryID})
	}

	log.Infow("recognition completed",
		"success", res.Success,
		"is_duplicate", len(dups) > 0,
	)
}

// finishCall marks the call for id as no longer outstanding
func (s *recognitionQueueService) finishCall(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[id]; !ok {
		return
	}
	delete(s.inflight, id)
	if len(s.inflight) == 0 {
		close(s.idle)
	}
}

// resolveUnitPrices fills unread unit prices with the product list price so that the
// duplicate check and the commit see the price the note would be saved with
func (s *recognitionQueueService) resolveUnitPrices(ctx context.Context, res *recognition.Result) error {
	missing := lo.Filter(res.Lines, func(l recognition.ResultLine, _ int) bool { return l.UnitPrice == 0 })
	if len(missing) == 0 {
		return nil
	}
	ids := lo.Uniq(lo.Map(missing, func(l recognition.ResultLine, _ int) int64 { return l.ProductID }))
	products, err := s.ProductRepo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := lo.KeyBy(products, func(p *product.Product) int64 { return p.ID })
	for i, l := range res.Lines {
		if p, ok := byID[l.ProductID]; ok && l.UnitPrice == 0 {
			res.Lines[i].UnitPrice = p.Price
		}
	}
	return nil
}

func (s *recognitionQueueService) Recognizing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight) > 0
}

func (s *recognitionQueueService) WaitIdle(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *recognitionQueueService) ListEntries(_ context.Context) *dto.ListRecognitionEntriesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*dto.RecognitionEntryResponse, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, dto.NewRecognitionEntryResponse(s.entries[id]))
	}
	return &dto.ListRecognitionEntriesResponse{Items: items, Recognizing: len(s.inflight) > 0}
}

func (s *recognitionQueueService) GetEntry(_ context.Context, id string) (*dto.RecognitionEntryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, entryNotFound(id)
	}
	return dto.NewRecognitionEntryResponse(e), nil
}

func (s *recognitionQueueService) Discard(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return entryNotFound(id)
	}
	if _, busy := s.committing[id]; busy {
		s.mu.Unlock()
		return ierr.NewError("entry is being committed").
			WithHint("The entry is being registered and can no longer be discarded").
			Mark(ierr.ErrInvalidOperation)
	}
	if cancel, running := s.inflight[id]; running {
		cancel()
		// the late completion still arrives and is dropped
		s.discarded[id] = struct{}{}
	}
	e.State = types.RecognitionStateDiscarded
	e.Payload = nil
	s.removeLocked(id)
	s.mu.Unlock()

	s.Logger.Infow("discarded recognition entry", "entry_id", id, "file_name", e.FileName)
	return s.persist(ctx)
}

func (s *recognitionQueueService) Commit(ctx context.Context, id string, req *dto.CommitRecognitionRequest) (*dto.DeliveryNoteResponse, error) {
	if req == nil {
		req = &dto.CommitRecognitionRequest{}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return nil, entryNotFound(id)
	}
	if _, busy := s.committing[id]; busy {
		s.mu.Unlock()
		return nil, ierr.NewError("entry is already being committed").Mark(ierr.ErrInvalidOperation)
	}
	if e.State != types.RecognitionStateRecognized || e.Result == nil || !e.Result.Success {
		s.mu.Unlock()
		return nil, ierr.NewError("entry has no successful recognition").
			WithHint("Only a successfully recognized image can be registered").
			WithReportableDetails(map[string]any{"entry_id": id, "state": e.State}).
			Mark(ierr.ErrInvalidOperation)
	}
	if e.IsDuplicate && !req.ConfirmDuplicate {
		dups := e.Duplicates
		s.mu.Unlock()
		return nil, ierr.NewError("entry may be a duplicate").
			WithHint("This image looks like a duplicate; confirm to register it anyway").
			WithReportableDetails(map[string]any{"entry_id": id, "duplicates": dups}).
			Mark(ierr.ErrDuplicateWarning)
	}
	s.committing[id] = struct{}{}
	entry := e.Clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.committing, id)
		s.mu.Unlock()
	}()

	note := s.noteFromEntry(entry, req)

	if s.S3 != nil {
		key, err := s.S3.UploadDocument(ctx, s3.NewImageDocument(note.ID, entry.Payload, entry.ContentType))
		if err != nil {
			return nil, err
		}
		note.ImagePath = key
	}

	if err := s.deliveryNotes.SaveDeliveryNote(ctx, note); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cur, ok := s.entries[id]; ok {
		cur.State = types.RecognitionStateCommitted
		cur.Payload = nil
	}
	s.removeLocked(id)
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		// the note exists; a stale snapshot only resurrects an already committed entry
		s.Logger.Errorw("failed to save recognition queue after commit", "entry_id", id, "error", err)
	}

	s.Logger.Infow("committed recognition entry",
		"entry_id", id,
		"delivery_note_id", note.ID,
		"delivery_note_number", note.Number,
	)
	return dto.NewDeliveryNoteResponse(note), nil
}

// noteFromEntry builds the delivery note from the recognized fields and any overrides
func (s *recognitionQueueService) noteFromEntry(e *recognition.Entry, req *dto.CommitRecognitionRequest) *deliverynote.DeliveryNote {
	res := e.Result
	note := &deliverynote.DeliveryNote{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_NOTE),
		Number:          generateNoteNumber(time.Now()),
		SalesPersonID:   lo.FromPtrOr(req.SalesPersonID, res.SalesPersonID),
		TaxRateID:       lo.FromPtrOr(req.TaxRateID, res.TaxRateID),
		DeliveryDate:    res.DeliveryDate.Time,
		Remarks:         lo.FromPtrOr(req.Remarks, s.Config.Recognition.CommitRemarks),
		RecognitionData: types.JSONB(res.Raw),
	}
	if req.DeliveryDate != nil {
		note.DeliveryDate = req.DeliveryDate.Time
	}

	if len(req.Lines) > 0 {
		note.Lines = dto.LinesFromRequest(note.ID, req.Lines)
	} else {
		note.Lines = lo.Map(res.Lines, func(l recognition.ResultLine, i int) *deliverynote.Line {
			price := l.UnitPrice
			if price == 0 {
				price = -1
			}
			return &deliverynote.Line{
				ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_NOTE_LINE),
				DeliveryNoteID: note.ID,
				ProductID:      l.ProductID,
				Quantity:       l.Quantity,
				UnitPrice:      price,
				Position:       i,
			}
		})
	}
	note.ApplyBillingDate()
	return note
}

func (s *recognitionQueueService) History(_ context.Context) *dto.RecognitionHistoryResponse {
	return &dto.RecognitionHistoryResponse{Items: s.history.Attempts()}
}

// removeLocked drops id from the queue. s.mu must be held.
func (s *recognitionQueueService) removeLocked(id string) {
	delete(s.entries, id)
	s.order = lo.Without(s.order, id)
}

// stillQueued reports whether id is still in the queue. A discarded id is forgotten.
func (s *recognitionQueueService) stillQueued(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		return true
	}
	delete(s.discarded, id)
	return false
}

// persist writes the current queue. Each save takes its snapshot only once it holds
// saveMu, so the last write always carries the newest state.
func (s *recognitionQueueService) persist(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	return s.SnapshotStore.Save(ctx, snapshot)
}

// snapshotLocked copies the queue for persistence. s.mu must be held.
func (s *recognitionQueueService) snapshotLocked() *recognition.Snapshot {
	entries := make([]*recognition.Entry, 0, len(s.order))
	for _, id := range s.order {
		entries = append(entries, s.entries[id].Clone())
	}
	return &recognition.Snapshot{
		Version: recognition.SnapshotVersion,
		SavedAt: time.Now().UTC(),
		Entries: entries,
	}
}

func entryNotFound(id string) error {
	return ierr.NewError("recognition entry not found").
		WithHintf("Recognition entry %s does not exist", id).
		WithReportableDetails(map[string]any{"entry_id": id}).
		Mark(ierr.ErrNotFound)
}
