package postgres

import (
	"context"
	"time"

	"github.com/flexprice/notebilling/internal/domain/salesinvoice"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

type salesInvoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSalesInvoiceRepository(db *postgres.DB, logger *logger.Logger) salesinvoice.Repository {
	return &salesInvoiceRepository{db: db, logger: logger}
}

const salesInvoiceColumns = `id, sales_person_id, invoice_number, registration_number,
	start_date, end_date, invoice_date, receipt_date, discount_rate_id, discount_rate,
	quota_subtotal, quota_discount_amount, quota_total,
	non_quota_subtotal, non_quota_discount_amount, non_quota_total,
	non_discountable_amount, total_amount_ex_tax, tax_rate, tax_amount, total_amount_inc_tax,
	note, status, created_at, updated_at, created_by, updated_by`

var salesInvoiceSort = map[string]string{
	"created_at": "created_at",
	"start_date": "start_date",
	"end_date":   "end_date",
}

func (r *salesInvoiceRepository) Create(ctx context.Context, inv *salesinvoice.SalesInvoice) error {
	r.logger.Debugw("creating sales invoice",
		"sales_invoice_id", inv.ID,
		"sales_person_id", inv.SalesPersonID,
		"period", inv.Period().String(),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.GetQuerier(ctx)
		_, err := q.NamedExecContext(ctx, `
			INSERT INTO sales_invoices (`+salesInvoiceColumns+`) VALUES (
				:id, :sales_person_id, :invoice_number, :registration_number,
				:start_date, :end_date, :invoice_date, :receipt_date, :discount_rate_id, :discount_rate,
				:quota_subtotal, :quota_discount_amount, :quota_total,
				:non_quota_subtotal, :non_quota_discount_amount, :non_quota_total,
				:non_discountable_amount, :total_amount_ex_tax, :tax_rate, :tax_amount, :total_amount_inc_tax,
				:note, :status, :created_at, :updated_at, :created_by, :updated_by
			)`, inv)
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return ierr.WithError(err).
					WithHint("An invoice already exists for this sales person and period").
					WithReportableDetails(map[string]any{
						"sales_person_id": inv.SalesPersonID,
						"start_date":      inv.StartDate.Format(types.DateLayout),
						"end_date":        inv.EndDate.Format(types.DateLayout),
					}).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create sales invoice").
				Mark(ierr.ErrDatabase)
		}

		for _, l := range inv.Lines {
			l.SalesInvoiceID = inv.ID
			if _, err := q.NamedExecContext(ctx, `
				INSERT INTO sales_invoice_details (
					id, sales_invoice_id, product_id, total_quantity, unit_price, amount, bucket
				) VALUES (
					:id, :sales_invoice_id, :product_id, :total_quantity, :unit_price, :amount, :bucket
				)`, l); err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create sales invoice line").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *salesInvoiceRepository) Get(ctx context.Context, id string) (*salesinvoice.SalesInvoice, error) {
	var inv salesinvoice.SalesInvoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv,
		`SELECT `+salesInvoiceColumns+` FROM sales_invoices WHERE id = $1 AND status = $2`,
		id, types.StatusPublished)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ierr.WithError(err).
				WithHint("Sales invoice not found").
				WithReportableDetails(map[string]any{"sales_invoice_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get sales invoice").
			Mark(ierr.ErrDatabase)
	}
	if err := r.loadLines(ctx, []*salesinvoice.SalesInvoice{&inv}); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *salesInvoiceRepository) GetByPeriod(ctx context.Context, salesPersonID int64, start, end time.Time) (*salesinvoice.SalesInvoice, error) {
	var inv salesinvoice.SalesInvoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, `
		SELECT `+salesInvoiceColumns+` FROM sales_invoices
		WHERE sales_person_id = $1 AND start_date = $2 AND end_date = $3 AND status = $4`,
		salesPersonID, types.DateOf(start), types.DateOf(end), types.StatusPublished)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, ierr.WithError(err).
				WithHint("Sales invoice not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get sales invoice").
			Mark(ierr.ErrDatabase)
	}
	if err := r.loadLines(ctx, []*salesinvoice.SalesInvoice{&inv}); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *salesInvoiceRepository) where(filter *types.SalesInvoiceFilter) *whereClause {
	w := &whereClause{}
	w.add("status = ?", filter.GetStatus())
	if len(filter.SalesPersonIDs) > 0 {
		w.add("sales_person_id = ANY(?)", pq.Array(filter.SalesPersonIDs))
	}
	if filter.DateRangeFilter != nil {
		// an invoice matches when its period overlaps the range
		if filter.StartDate != nil {
			w.add("end_date >= ?", types.DateOf(*filter.StartDate))
		}
		if filter.EndDate != nil {
			w.add("start_date <= ?", types.DateOf(*filter.EndDate))
		}
	}
	return w
}

func (r *salesInvoiceRepository) List(ctx context.Context, filter *types.SalesInvoiceFilter) ([]*salesinvoice.SalesInvoice, error) {
	if filter == nil {
		filter = types.NewNoLimitSalesInvoiceFilter()
	}
	w := r.where(filter)
	q := r.db.GetQuerier(ctx)
	query := paginate(`SELECT `+salesInvoiceColumns+` FROM sales_invoices`+w.String(), filter, salesInvoiceSort, "end_date")

	var invoices []*salesinvoice.SalesInvoice
	if err := q.SelectContext(ctx, &invoices, q.Rebind(query), w.args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list sales invoices").
			Mark(ierr.ErrDatabase)
	}
	if err := r.loadLines(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *salesInvoiceRepository) Count(ctx context.Context, filter *types.SalesInvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitSalesInvoiceFilter()
	}
	w := r.where(filter)
	q := r.db.GetQuerier(ctx)

	var count int
	if err := q.GetContext(ctx, &count, q.Rebind(`SELECT COUNT(*) FROM sales_invoices`+w.String()), w.args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count sales invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *salesInvoiceRepository) loadLines(ctx context.Context, invoices []*salesinvoice.SalesInvoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := lo.Map(invoices, func(i *salesinvoice.SalesInvoice, _ int) string { return i.ID })

	var lines []*salesinvoice.Line
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &lines, `
		SELECT id, sales_invoice_id, product_id, total_quantity, unit_price, amount, bucket
		FROM sales_invoice_details
		WHERE sales_invoice_id = ANY($1)
		ORDER BY sales_invoice_id, product_id, unit_price`, pq.Array(ids))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to load sales invoice lines").
			Mark(ierr.ErrDatabase)
	}

	byInvoice := lo.GroupBy(lines, func(l *salesinvoice.Line) string { return l.SalesInvoiceID })
	for _, inv := range invoices {
		inv.Lines = byInvoice[inv.ID]
		if inv.Lines == nil {
			inv.Lines = []*salesinvoice.Line{}
		}
	}
	return nil
}

func (r *salesInvoiceRepository) Update(ctx context.Context, inv *salesinvoice.SalesInvoice) error {
	r.logger.Debugw("updating sales invoice",
		"sales_invoice_id", inv.ID,
		"discount_rate_id", inv.DiscountRateID,
	)

	res, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, `
		UPDATE sales_invoices SET
			discount_rate_id = :discount_rate_id,
			discount_rate = :discount_rate,
			quota_discount_amount = :quota_discount_amount,
			quota_total = :quota_total,
			non_quota_discount_amount = :non_quota_discount_amount,
			non_quota_total = :non_quota_total,
			total_amount_ex_tax = :total_amount_ex_tax,
			tax_amount = :tax_amount,
			total_amount_inc_tax = :total_amount_inc_tax,
			receipt_date = :receipt_date,
			note = :note,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND status = 'published'`, inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update sales invoice").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "Sales invoice not found")
}

func (r *salesInvoiceRepository) Delete(ctx context.Context, inv *salesinvoice.SalesInvoice) error {
	r.logger.Debugw("deleting sales invoice", "sales_invoice_id", inv.ID)

	res, err := r.db.GetQuerier(ctx).ExecContext(ctx, `
		UPDATE sales_invoices SET status = $2, updated_at = $3, updated_by = $4
		WHERE id = $1 AND status = $5`,
		inv.ID, types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx), types.StatusPublished,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete sales invoice").
			Mark(ierr.ErrDatabase)
	}
	return requireRow(res, "Sales invoice not found")
}
