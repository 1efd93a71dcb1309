package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type deliveryNoteRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDeliveryNoteRepository(db *postgres.DB, logger *logger.Logger) deliverynote.Repository {
	return &deliveryNoteRepository{db: db, logger: logger}
}

const deliveryNoteColumns = `id, delivery_note_number, sales_person_id, tax_rate_id, delivery_date, billing_date,
	remarks, file_path, image_recognition_data, status, created_at, updated_at, created_by, updated_by`

var deliveryNoteSort = map[string]string{
	"created_at":    "created_at",
	"delivery_date": "delivery_date",
	"billing_date":  "billing_date",
	"number":        "delivery_note_number",
}

func (r *deliveryNoteRepository) Create(ctx context.Context, note *deliverynote.DeliveryNote) error {
	r.logger.Debugw("creating delivery note",
		"delivery_note_id", note.ID,
		"sales_person_id", note.SalesPersonID,
		"lines", len(note.Lines),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		_, err := q.ExecContext(ctx, `
			INSERT INTO delivery_notes (
				id, delivery_note_number, sales_person_id, tax_rate_id, delivery_date, billing_date,
				remarks, file_path, image_recognition_data, status, created_at, updated_at, created_by, updated_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			note.ID, note.Number, note.SalesPersonID, note.TaxRateID, note.DeliveryDate, note.BillingDate,
			note.Remarks, note.ImagePath, note.RecognitionData, note.Status,
			note.CreatedAt, note.UpdatedAt, note.CreatedBy, note.UpdatedBy,
		)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return ierr.WithError(err).
					WithHintf("Delivery note number %s already exists", note.Number).
					WithReportableDetails(map[string]any{"delivery_note_number": note.Number}).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create delivery note").
				Mark(ierr.ErrDatabase)
		}
		return r.insertLines(ctx, q, note)
	})
}

func (r *deliveryNoteRepository) insertLines(ctx context.Context, q postgres.Querier, note *deliverynote.DeliveryNote) error {
	for i, l := range note.Lines {
		l.DeliveryNoteID = note.ID
		l.Position = i
		_, err := q.ExecContext(ctx, `
			INSERT INTO delivery_note_details (
				id, delivery_note_id, product_id, quantity, unit_price, amount, remarks, position
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.ID, l.DeliveryNoteID, l.ProductID, l.Quantity, l.UnitPrice, l.Amount, l.Remarks, l.Position,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create delivery note line").
				WithReportableDetails(map[string]any{"line": i}).
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (r *deliveryNoteRepository) Get(ctx context.Context, id string) (*deliverynote.DeliveryNote, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *deliveryNoteRepository) GetByNumber(ctx context.Context, number string) (*deliverynote.DeliveryNote, error) {
	return r.getOne(ctx, `delivery_note_number = $1`, number)
}

func (r *deliveryNoteRepository) getOne(ctx context.Context, cond string, arg interface{}) (*deliverynote.DeliveryNote, error) {
	var note deliverynote.DeliveryNote
	query := `SELECT ` + deliveryNoteColumns + ` FROM delivery_notes WHERE ` + cond + ` AND status = $2`
	err := r.db.GetQuerier(ctx).GetContext(ctx, &note, query, arg, types.StatusPublished)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ierr.WithError(err).
				WithHint("Delivery note not found").
				WithReportableDetails(map[string]any{"delivery_note": arg}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get delivery note").
			Mark(ierr.ErrDatabase)
	}

	if err := r.loadLines(ctx, []*deliverynote.DeliveryNote{&note}); err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *deliveryNoteRepository) where(filter *types.DeliveryNoteFilter) *whereClause {
	w := &whereClause{}
	w.add("status = ?", filter.GetStatus())
	if len(filter.SalesPersonIDs) > 0 {
		w.add("sales_person_id = ANY(?)", pq.Array(filter.SalesPersonIDs))
	}
	if filter.DateRangeFilter != nil {
		if filter.StartDate != nil {
			w.add("delivery_date >= ?", types.DateOf(*filter.StartDate))
		}
		if filter.EndDate != nil {
			w.add("delivery_date <= ?", types.DateOf(*filter.EndDate))
		}
	}
	if filter.BillingDate != nil {
		w.add("billing_date = ?", types.DateOf(*filter.BillingDate))
	}
	if filter.DeliveryDate != nil {
		w.add("delivery_date = ?", types.DateOf(*filter.DeliveryDate))
	}
	return w
}

func (r *deliveryNoteRepository) List(ctx context.Context, filter *types.DeliveryNoteFilter) ([]*deliverynote.DeliveryNote, error) {
	if filter == nil {
		filter = types.NewNoLimitDeliveryNoteFilter()
	}
	w := r.where(filter)
	q := r.db.GetQuerier(ctx)
	query := paginate(`SELECT `+deliveryNoteColumns+` FROM delivery_notes`+w.String(), filter, deliveryNoteSort, "delivery_date")

	var notes []*deliverynote.DeliveryNote
	if err := q.SelectContext(ctx, &notes, q.Rebind(query), w.args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list delivery notes").
			Mark(ierr.ErrDatabase)
	}
	if err := r.loadLines(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *deliveryNoteRepository) Count(ctx context.Context, filter *types.DeliveryNoteFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitDeliveryNoteFilter()
	}
	w := r.where(filter)
	q := r.db.GetQuerier(ctx)

	var count int
	if err := q.GetContext(ctx, &count, q.Rebind(`SELECT COUNT(*) FROM delivery_notes`+w.String()), w.args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count delivery notes").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

// loadLines attaches lines to the given notes with a single query
func (r *deliveryNoteRepository) loadLines(ctx context.Context, notes []*deliverynote.DeliveryNote) error {
	if len(notes) == 0 {
		return nil
	}
	ids := lo.Map(notes, func(n *deliverynote.DeliveryNote, _ int) string { return n.ID })

	var lines []*deliverynote.Line
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &lines, `
		SELECT id, delivery_note_id, product_id, quantity, unit_price, amount, remarks, position
		FROM delivery_note_details
		WHERE delivery_note_id = ANY($1)
		ORDER BY delivery_note_id, position`, pq.Array(ids))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to load delivery note lines").
			Mark(ierr.ErrDatabase)
	}

	byNote := lo.GroupBy(lines, func(l *deliverynote.Line) string { return l.DeliveryNoteID })
	for _, n := range notes {
		n.Lines = byNote[n.ID]
		if n.Lines == nil {
			n.Lines = []*deliverynote.Line{}
		}
	}
	return nil
}

func (r *deliveryNoteRepository) Update(ctx context.Context, note *deliverynote.DeliveryNote) error {
	r.logger.Debugw("updating delivery note",
		"delivery_note_id", note.ID,
		"lines", len(note.Lines),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		res, err := q.ExecContext(ctx, `
			UPDATE delivery_notes SET
				delivery_note_number = $2,
				sales_person_id = $3,
				tax_rate_id = $4,
				delivery_date = $5,
				billing_date = $6,
				remarks = $7,
				file_path = $8,
				updated_at = $9,
				updated_by = $10
			WHERE id = $1 AND status = $11`,
			note.ID, note.Number, note.SalesPersonID, note.TaxRateID, note.DeliveryDate, note.BillingDate,
			note.Remarks, note.ImagePath, note.UpdatedAt, note.UpdatedBy, types.StatusPublished,
		)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return ierr.WithError(err).
					WithHintf("Delivery note number %s already exists", note.Number).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to update delivery note").
				Mark(ierr.ErrDatabase)
		}
		if err := requireRow(res, "Delivery note not found"); err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM delivery_note_details WHERE delivery_note_id = $1`, note.ID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to replace delivery note lines").
				Mark(ierr.ErrDatabase)
		}
		return r.insertLines(ctx, q, note)
	})
}

func (r *deliveryNoteRepository) Delete(ctx context.Context, note *deliverynote.DeliveryNote) error {
	r.logger.Debugw("deleting delivery note", "delivery_note_id", note.ID)

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, `
		UPDATE delivery_notes SET status = $2, updated_at = $3, updated_by = $4
		WHERE id = $1 AND status = $5`,
		note.ID, types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx), types.StatusPublished,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete delivery note").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "Delivery note not found")
}

func requireRow(res sql.Result, hint string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if n == 0 {
		return ierr.NewError("no rows affected").
			WithHint(hint).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
