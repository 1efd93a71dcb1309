package service

import (
	"context"
	"strconv"

	"github.com/flexprice/notebilling/internal/api/dto"
	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesinvoice"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
)

type SalesInvoiceService interface {
	// GenerateSalesInvoice bills one sales person for an explicit period
	GenerateSalesInvoice(ctx context.Context, req *dto.GenerateSalesInvoiceRequest) (*dto.SalesInvoiceResponse, error)

	// BulkGenerateSalesInvoices bills every sales person in scope for the period closed by
	// the closing date. Existing invoices are never overwritten.
	BulkGenerateSalesInvoices(ctx context.Context, req *dto.BulkGenerateSalesInvoicesRequest) (*dto.BulkGenerateSalesInvoicesResponse, error)

	GetSalesInvoice(ctx context.Context, id string) (*dto.SalesInvoiceResponse, error)
	ListSalesInvoices(ctx context.Context, filter *types.SalesInvoiceFilter) (*dto.ListSalesInvoicesResponse, error)
	UpdateSalesInvoice(ctx context.Context, id string, req *dto.UpdateSalesInvoiceRequest) (*dto.SalesInvoiceResponse, error)
	DeleteSalesInvoice(ctx context.Context, id string) error
}

type salesInvoiceService struct {
	ServiceParams
	discountRates DiscountRateService
}

func NewSalesInvoiceService(params ServiceParams, discountRates DiscountRateService) SalesInvoiceService {
	return &salesInvoiceService{ServiceParams: params, discountRates: discountRates}
}

func (s *salesInvoiceService) GenerateSalesInvoice(ctx context.Context, req *dto.GenerateSalesInvoiceRequest) (*dto.SalesInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	period := req.Period()

	if _, err := s.SalesPersonRepo.Get(ctx, req.SalesPersonID); err != nil {
		return nil, err
	}

	if err := s.ensureNotInvoiced(ctx, req.SalesPersonID, period); err != nil {
		return nil, err
	}

	notes, err := s.notesInPeriod(ctx, []int64{req.SalesPersonID}, period)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, ierr.NewError("no delivery notes in period").
			WithHintf("Sales person %d has no deliveries between %s", req.SalesPersonID, period.String()).
			WithReportableDetails(map[string]any{
				"sales_person_id": req.SalesPersonID,
				"start_date":      period.Start.Format(types.DateLayout),
				"end_date":        period.End.Format(types.DateLayout),
			}).
			Mark(ierr.ErrValidation)
	}

	inv, err := s.buildInvoice(ctx, req.SalesPersonID, period, notes)
	if err != nil {
		return nil, err
	}
	inv.Note = req.Note

	if err := s.SalesInvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("generated sales invoice",
		"sales_invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"sales_person_id", inv.SalesPersonID,
		"period", period.String(),
		"total_amount_inc_tax", inv.TotalIncTax,
	)
	return dto.NewSalesInvoiceResponse(inv), nil
}

func (s *salesInvoiceService) BulkGenerateSalesInvoices(ctx context.Context, req *dto.BulkGenerateSalesInvoicesRequest) (*dto.BulkGenerateSalesInvoicesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	period := types.BulkPeriodFor(req.ClosingDate.Time)

	persons, err := s.SalesPersonRepo.List(ctx, lo.Uniq(req.SalesPersonIDs))
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, ierr.NewError("no sales persons in scope").
			WithHint("No active sales person matches the request").
			WithReportableDetails(map[string]any{"sales_person_ids": req.SalesPersonIDs}).
			Mark(ierr.ErrNotFound)
	}

	personIDs := lo.Map(persons, func(p *salesperson.SalesPerson, _ int) int64 { return p.ID })
	notes, err := s.notesInPeriod(ctx, personIDs, period)
	if err != nil {
		return nil, err
	}
	notesByPerson := lo.GroupBy(notes, func(n *deliverynote.DeliveryNote) int64 { return n.SalesPersonID })

	resp := &dto.BulkGenerateSalesInvoicesResponse{
		Period:   period,
		Skipped:  []dto.BulkSkippedItem{},
		Invoices: []*dto.SalesInvoiceResponse{},
	}
	skip := func(id int64, reason types.BulkSkipReason, msg string) {
		resp.Skipped = append(resp.Skipped, dto.BulkSkippedItem{SalesPersonID: id, Reason: reason, Message: msg})
	}

	for _, person := range persons {
		personNotes := notesByPerson[person.ID]
		if len(personNotes) == 0 {
			skip(person.ID, types.BulkSkipNoDeliveries, "")
			continue
		}

		if err := s.ensureNotInvoiced(ctx, person.ID, period); err != nil {
			if ierr.IsAlreadyExists(err) {
				skip(person.ID, types.BulkSkipAlreadyInvoiced, "")
				continue
			}
			s.Logger.Errorw("failed to check existing invoice",
				"sales_person_id", person.ID, "period", period.String(), "error", err)
			s.reportBulkFailure(ctx, err, person.ID, period)
			skip(person.ID, types.BulkSkipPersistenceFailure, err.Error())
			continue
		}

		inv, err := s.buildInvoice(ctx, person.ID, period, personNotes)
		if err == nil {
			err = s.SalesInvoiceRepo.Create(ctx, inv)
		}
		if err != nil {
			if ierr.IsAlreadyExists(err) {
				// another run created it between the check and the insert
				skip(person.ID, types.BulkSkipAlreadyInvoiced, "")
				continue
			}
			s.Logger.Errorw("failed to generate sales invoice",
				"sales_person_id", person.ID, "period", period.String(), "error", err)
			s.reportBulkFailure(ctx, err, person.ID, period)
			skip(person.ID, types.BulkSkipPersistenceFailure, err.Error())
			continue
		}

		resp.Invoices = append(resp.Invoices, dto.NewSalesInvoiceResponse(inv))
	}

	resp.GeneratedCount = len(resp.Invoices)
	resp.SkippedCount = len(resp.Skipped)

	s.Logger.Infow("bulk invoice generation finished",
		"period", period.String(),
		"generated_count", resp.GeneratedCount,
		"skipped_count", resp.SkippedCount,
	)
	return resp, nil
}

// ensureNotInvoiced fails with ErrAlreadyExists when the person already has an invoice
// for exactly this period
func (s *salesInvoiceService) ensureNotInvoiced(ctx context.Context, salesPersonID int64, period types.BillingPeriod) error {
	existing, err := s.SalesInvoiceRepo.GetByPeriod(ctx, salesPersonID, period.Start, period.End)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil
		}
		return err
	}
	return ierr.NewError("sales invoice already exists").
		WithHint("An invoice for this sales person and period already exists").
		WithReportableDetails(map[string]any{
			"sales_invoice_id": existing.ID,
			"invoice_number":   existing.InvoiceNumber,
		}).
		Mark(ierr.ErrAlreadyExists)
}

func (s *salesInvoiceService) notesInPeriod(ctx context.Context, salesPersonIDs []int64, period types.BillingPeriod) ([]*deliverynote.DeliveryNote, error) {
	filter := types.NewNoLimitDeliveryNoteFilter()
	filter.SalesPersonIDs = salesPersonIDs
	filter.DateRangeFilter = &types.DateRangeFilter{
		StartDate: lo.ToPtr(types.DateOf(period.Start)),
		EndDate:   lo.ToPtr(types.DateOf(period.End)),
	}
	notes, err := s.DeliveryNoteRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	// the repository filters on the range already; this keeps the period rule authoritative
	return lo.Filter(notes, func(n *deliverynote.DeliveryNote, _ int) bool {
		return period.Contains(n.DeliveryDate)
	}), nil
}

// buildInvoice aggregates the notes and fills every invoice field except the note
func (s *salesInvoiceService) buildInvoice(
	ctx context.Context,
	salesPersonID int64,
	period types.BillingPeriod,
	notes []*deliverynote.DeliveryNote,
) (*salesinvoice.SalesInvoice, error) {
	productIDs := lo.Uniq(lo.FlatMap(notes, func(n *deliverynote.DeliveryNote, _ int) []int64 {
		return lo.Map(n.Lines, func(l *deliverynote.Line, _ int) int64 { return l.ProductID })
	}))
	products, err := s.ProductRepo.ListByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	agg, err := AggregateLines(notes, lo.KeyBy(products, func(p *product.Product) int64 { return p.ID }))
	if err != nil {
		return nil, err
	}

	rateRow, err := s.discountRates.ResolveForSubtotal(ctx, agg.Subtotals.Quota)
	if err != nil {
		return nil, err
	}
	tax, err := s.TaxRateRepo.GetDefault(ctx)
	if err != nil {
		return nil, err
	}

	end := types.DateOf(period.End)
	inv := &salesinvoice.SalesInvoice{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SALES_INVOICE),
		SalesPersonID:      salesPersonID,
		InvoiceNumber:      types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_SALES_INVOICE),
		RegistrationNumber: s.Config.Billing.RegistrationNumber,
		StartDate:          types.DateOf(period.Start),
		EndDate:            end,
		InvoiceDate:        end,
		ReceiptDate:        types.ReceiptDateOf(end, s.Config.Billing.ReceiptDay),
		DiscountRateID:     rateRow.ID,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	applyTotals(inv, ComputeTotals(agg.Subtotals, rateRow.Rate, tax.Rate))

	inv.Lines = agg.Lines
	for _, l := range inv.Lines {
		l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SALES_INVOICE_LINE)
		l.SalesInvoiceID = inv.ID
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *salesInvoiceService) GetSalesInvoice(ctx context.Context, id string) (*dto.SalesInvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("sales_invoice_id is required").
			WithHint("Sales invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.SalesInvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSalesInvoiceResponse(inv), nil
}

func (s *salesInvoiceService) ListSalesInvoices(ctx context.Context, filter *types.SalesInvoiceFilter) (*dto.ListSalesInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewSalesInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.SalesInvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.SalesInvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *salesinvoice.SalesInvoice, _ int) *dto.SalesInvoiceResponse {
		return dto.NewSalesInvoiceResponse(inv)
	})
	resp := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

// reportBulkFailure sends a per-person failure that bulk generation skips over
func (s *salesInvoiceService) reportBulkFailure(ctx context.Context, err error, salesPersonID int64, period types.BillingPeriod) {
	s.Reporter.CaptureException(ctx, err, map[string]string{
		"operation":       "bulk_generate_sales_invoices",
		"sales_person_id": strconv.FormatInt(salesPersonID, 10),
		"period":          period.String(),
	})
}

func (s *salesInvoiceService) UpdateSalesInvoice(ctx context.Context, id string, req *dto.UpdateSalesInvoiceRequest) (*dto.SalesInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.SalesInvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountRateID != nil && *req.DiscountRateID != inv.DiscountRateID {
		row, err := s.DiscountRateRepo.Get(ctx, *req.DiscountRateID)
		if err != nil {
			return nil, err
		}
		if !types.IsAllowedManualDiscountTransition(inv.DiscountRate, row.Rate) {
			return nil, ierr.NewError("discount rate change not allowed").
				WithHint("Only a change between 0% and 10% can be made manually").
				WithReportableDetails(map[string]any{
					"current_rate":   inv.DiscountRate.String(),
					"requested_rate": row.Rate.String(),
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		// totals derive from the stored subtotals only; lines are not reread
		applyTotals(inv, ComputeTotals(subtotalsOf(inv), row.Rate, inv.TaxRate))
		inv.DiscountRateID = row.ID
	}
	if req.Note != nil {
		inv.Note = *req.Note
	}
	if req.ReceiptDate != nil {
		inv.ReceiptDate = types.DateOf(req.ReceiptDate.Time)
	}
	inv.Touch(ctx)

	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := s.SalesInvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return dto.NewSalesInvoiceResponse(inv), nil
}

func (s *salesInvoiceService) DeleteSalesInvoice(ctx context.Context, id string) error {
	inv, err := s.SalesInvoiceRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.SalesInvoiceRepo.Delete(ctx, inv)
}
