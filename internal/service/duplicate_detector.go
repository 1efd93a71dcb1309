package service

import (
	"context"
	"fmt"

	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/recognition"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
)

// DuplicateDetector flags recognized images that were seen before or that match a
// delivery note already on file. It never blocks a commit by itself.
type DuplicateDetector struct {
	history *RecognitionHistory
	notes   deliverynote.Repository
}

func NewDuplicateDetector(history *RecognitionHistory, notes deliverynote.Repository) *DuplicateDetector {
	return &DuplicateDetector{history: history, notes: notes}
}

// Detect runs both checks. It must run before the entry's own attempt is recorded.
func (d *DuplicateDetector) Detect(ctx context.Context, fingerprint, fileName string, result *recognition.Result) ([]recognition.DuplicateInfo, error) {
	found := CheckHistory(d.history.Attempts(), fingerprint, fileName)

	if result == nil || !result.Success {
		return found, nil
	}

	filter := types.NewNoLimitDeliveryNoteFilter()
	filter.SalesPersonIDs = []int64{result.SalesPersonID}
	filter.DeliveryDate = lo.ToPtr(types.DateOf(result.DeliveryDate.Time))
	notes, err := d.notes.List(ctx, filter)
	if err != nil {
		return found, err
	}
	return append(found, CheckDeliveryNotes(result, notes)...), nil
}

// CheckHistory matches on fingerprint or, for named uploads, on file name
func CheckHistory(attempts []*recognition.Attempt, fingerprint, fileName string) []recognition.DuplicateInfo {
	var found []recognition.DuplicateInfo
	for _, a := range attempts {
		sameName := fileName != "" && a.FileName == fileName
		if a.Fingerprint != fingerprint && !sameName {
			continue
		}
		msg := fmt.Sprintf("%s was recognized before at %s", a.FileName, a.RecognizedAt.Format("2006-01-02 15:04"))
		if a.Fingerprint != fingerprint {
			msg = fmt.Sprintf("a file named %s was recognized before at %s", a.FileName, a.RecognizedAt.Format("2006-01-02 15:04"))
		}
		found = append(found, recognition.DuplicateInfo{
			Kind:              types.DuplicateKindHistory,
			Message:           msg,
			PriorFileName:     a.FileName,
			PriorRecognizedAt: lo.ToPtr(a.RecognizedAt),
			PriorSuccess:      lo.ToPtr(a.Success),
		})
	}
	return found
}

// CheckDeliveryNotes flags notes with the same sales person, delivery date, line count
// and a matching (product, quantity, unit price) line for every recognized line.
func CheckDeliveryNotes(result *recognition.Result, notes []*deliverynote.DeliveryNote) []recognition.DuplicateInfo {
	var found []recognition.DuplicateInfo
	for _, n := range notes {
		if n.SalesPersonID != result.SalesPersonID ||
			!types.SameDate(n.DeliveryDate, result.DeliveryDate.Time) ||
			len(n.Lines) != len(result.Lines) {
			continue
		}

		allMatch := lo.EveryBy(result.Lines, func(rl recognition.ResultLine) bool {
			return lo.ContainsBy(n.Lines, func(l *deliverynote.Line) bool {
				return l.ProductID == rl.ProductID && l.Quantity == rl.Quantity && l.UnitPrice == rl.UnitPrice
			})
		})
		if !allMatch {
			continue
		}

		found = append(found, recognition.DuplicateInfo{
			Kind:               types.DuplicateKindDeliveryNote,
			Message:            fmt.Sprintf("delivery note %s has the same date and lines", n.Number),
			DeliveryNoteID:     n.ID,
			DeliveryNoteNumber: n.Number,
		})
	}
	return found
}
