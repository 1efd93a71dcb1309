package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	"github.com/flexprice/notebilling/internal/recognition/store"
	"github.com/flexprice/notebilling/internal/testutil"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recognizedMarch10() *recognition.Result {
	return &recognition.Result{
		Success:       true,
		SalesPersonID: 3,
		DeliveryDate:  types.NewDate(testutil.Date(2025, time.March, 10)),
		TaxRateID:     1,
		Lines: []recognition.ResultLine{
			{ProductID: 1, Quantity: 2, UnitPrice: 1000},
			{ProductID: 2, Quantity: 1, UnitPrice: 500},
		},
	}
}

func march10Note(number string, lines ...*deliverynote.Line) *deliverynote.DeliveryNote {
	n := &deliverynote.DeliveryNote{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_NOTE),
		Number:        number,
		SalesPersonID: 3,
		TaxRateID:     1,
		DeliveryDate:  testutil.Date(2025, time.March, 10),
		Lines:         lines,
		BaseModel:     types.GetDefaultBaseModel(context.Background()),
	}
	n.ApplyBillingDate()
	return n
}

func TestCheckDeliveryNotes(t *testing.T) {
	res := recognizedMarch10()

	tests := []struct {
		name  string
		note  *deliverynote.DeliveryNote
		match bool
	}{
		{
			name: "same lines in another order",
			note: march10Note("DN-1",
				&deliverynote.Line{ProductID: 2, Quantity: 1, UnitPrice: 500},
				&deliverynote.Line{ProductID: 1, Quantity: 2, UnitPrice: 1000},
			),
			match: true,
		},
		{
			name: "different quantity",
			note: march10Note("DN-2",
				&deliverynote.Line{ProductID: 1, Quantity: 3, UnitPrice: 1000},
				&deliverynote.Line{ProductID: 2, Quantity: 1, UnitPrice: 500},
			),
		},
		{
			name: "extra line",
			note: march10Note("DN-3",
				&deliverynote.Line{ProductID: 1, Quantity: 2, UnitPrice: 1000},
				&deliverynote.Line{ProductID: 2, Quantity: 1, UnitPrice: 500},
				&deliverynote.Line{ProductID: 3, Quantity: 1, UnitPrice: 300},
			),
		},
		{
			name: "different unit price",
			note: march10Note("DN-4",
				&deliverynote.Line{ProductID: 1, Quantity: 2, UnitPrice: 900},
				&deliverynote.Line{ProductID: 2, Quantity: 1, UnitPrice: 500},
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := CheckDeliveryNotes(res, []*deliverynote.DeliveryNote{tt.note})
			if !tt.match {
				assert.Empty(t, found)
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, types.DuplicateKindDeliveryNote, found[0].Kind)
			assert.Equal(t, tt.note.ID, found[0].DeliveryNoteID)
			assert.Equal(t, tt.note.Number, found[0].DeliveryNoteNumber)
		})
	}
}

func TestCheckDeliveryNotes_OtherSalesPersonOrDate(t *testing.T) {
	res := recognizedMarch10()
	line := func() []*deliverynote.Line {
		return []*deliverynote.Line{
			{ProductID: 1, Quantity: 2, UnitPrice: 1000},
			{ProductID: 2, Quantity: 1, UnitPrice: 500},
		}
	}

	other := march10Note("DN-5", line()...)
	other.SalesPersonID = 1
	later := march10Note("DN-6", line()...)
	later.DeliveryDate = testutil.Date(2025, time.March, 11)

	assert.Empty(t, CheckDeliveryNotes(res, []*deliverynote.DeliveryNote{other, later}))
}

func TestCheckHistory(t *testing.T) {
	at := time.Date(2025, time.March, 11, 9, 30, 0, 0, time.UTC)
	attempts := []*recognition.Attempt{
		{FileName: "a.png", Fingerprint: "fp-a", RecognizedAt: at, Success: true},
		{FileName: "b.png", Fingerprint: "fp-b", RecognizedAt: at, Success: false},
	}

	byContent := CheckHistory(attempts, "fp-a", "renamed.png")
	require.Len(t, byContent, 1)
	assert.Equal(t, types.DuplicateKindHistory, byContent[0].Kind)
	assert.Equal(t, "a.png", byContent[0].PriorFileName)
	assert.True(t, *byContent[0].PriorSuccess)

	byName := CheckHistory(attempts, "fp-new", "b.png")
	require.Len(t, byName, 1)
	assert.False(t, *byName[0].PriorSuccess)
	assert.Contains(t, byName[0].Message, "a file named b.png")

	assert.Empty(t, CheckHistory(attempts, "fp-new", "c.png"))
}

func TestCheckHistory_UnnamedUploads(t *testing.T) {
	at := time.Date(2025, time.March, 11, 9, 30, 0, 0, time.UTC)
	attempts := []*recognition.Attempt{{FileName: "", Fingerprint: "fp-a", RecognizedAt: at, Success: true}}

	assert.Empty(t, CheckHistory(attempts, "fp-b", ""))
	assert.Len(t, CheckHistory(attempts, "fp-a", ""), 1)
}

func TestDuplicateDetector_Detect(t *testing.T) {
	ctx := testutil.SetupContext()
	notes := testutil.NewInMemoryDeliveryNoteStore()
	require.NoError(t, notes.Create(ctx, march10Note("DN-7",
		&deliverynote.Line{ProductID: 1, Quantity: 2, UnitPrice: 1000},
		&deliverynote.Line{ProductID: 2, Quantity: 1, UnitPrice: 500},
	)))

	history := NewRecognitionHistory(store.NewMemoryHistoryStore(), 10)
	require.NoError(t, history.Record(ctx, &recognition.Attempt{
		FileName:     "note.jpg",
		Fingerprint:  "fp-1",
		RecognizedAt: time.Now().UTC(),
		Success:      true,
	}))

	detector := NewDuplicateDetector(history, notes)

	found, err := detector.Detect(ctx, "fp-1", "note.jpg", recognizedMarch10())
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, types.DuplicateKindHistory, found[0].Kind)
	assert.Equal(t, types.DuplicateKindDeliveryNote, found[1].Kind)

	// failed results only get the history check
	found, err = detector.Detect(ctx, "fp-2", "other.jpg", recognition.Failed("unreadable"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRecognitionHistory_Record(t *testing.T) {
	ctx := context.Background()
	hs := store.NewMemoryHistoryStore()
	history := NewRecognitionHistory(hs, 2)

	at := time.Now().UTC()
	for _, a := range []*recognition.Attempt{
		{FileName: "a.png", Fingerprint: "1", RecognizedAt: at},
		{FileName: "b.png", Fingerprint: "2", RecognizedAt: at},
		// supersedes the first attempt
		{FileName: "a.png", Fingerprint: "3", RecognizedAt: at},
		{FileName: "c.png", Fingerprint: "4", RecognizedAt: at},
	} {
		require.NoError(t, history.Record(ctx, a))
	}

	got := history.Attempts()
	require.Len(t, got, 2)
	assert.Equal(t, "c.png", got[0].FileName)
	assert.Equal(t, "a.png", got[1].FileName)
	assert.Equal(t, "3", got[1].Fingerprint)

	reloaded := NewRecognitionHistory(hs, 2)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.Attempts(), 2)
}
