package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/notebilling/internal/api/dto"
	"github.com/flexprice/notebilling/internal/domain/deliverynote"
	"github.com/flexprice/notebilling/internal/domain/product"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
)

type DeliveryNoteService interface {
	CreateDeliveryNote(ctx context.Context, req *dto.CreateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error)
	GetDeliveryNote(ctx context.Context, id string) (*dto.DeliveryNoteResponse, error)
	ListDeliveryNotes(ctx context.Context, filter *types.DeliveryNoteFilter) (*dto.ListDeliveryNotesResponse, error)
	UpdateDeliveryNote(ctx context.Context, id string, req *dto.UpdateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error)
	DeleteDeliveryNote(ctx context.Context, id string) error

	// BillingDate reports the closing date a delivery date is billed on
	BillingDate(deliveryDate time.Time) *dto.BillingDateResponse

	// SaveDeliveryNote fills defaults on a domain note, validates and persists it.
	// Lines with a negative unit price take the product's list price.
	SaveDeliveryNote(ctx context.Context, note *deliverynote.DeliveryNote) error
}

type deliveryNoteService struct {
	ServiceParams
}

func NewDeliveryNoteService(params ServiceParams) DeliveryNoteService {
	return &deliveryNoteService{ServiceParams: params}
}

// generateNoteNumber returns DN-<unix millis>-<short id>
func generateNoteNumber(now time.Time) string {
	sid := strings.TrimPrefix(types.GenerateShortIDWithPrefix(types.DELIVERY_NOTE_NUMBER_PREFIX), types.DELIVERY_NOTE_NUMBER_PREFIX)
	return fmt.Sprintf("%s%d-%s", types.DELIVERY_NOTE_NUMBER_PREFIX, now.UnixMilli(), strings.ToLower(sid))
}

func (s *deliveryNoteService) CreateDeliveryNote(ctx context.Context, req *dto.CreateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	note := req.ToDeliveryNote(ctx)
	if err := s.SaveDeliveryNote(ctx, note); err != nil {
		return nil, err
	}

	s.Logger.Infow("created delivery note",
		"delivery_note_id", note.ID,
		"delivery_note_number", note.Number,
		"sales_person_id", note.SalesPersonID,
		"billing_date", note.BillingDate.Format(types.DateLayout),
	)
	return dto.NewDeliveryNoteResponse(note), nil
}

func (s *deliveryNoteService) SaveDeliveryNote(ctx context.Context, note *deliverynote.DeliveryNote) error {
	if note.ID == "" {
		note.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_NOTE)
	}
	if note.Status == "" {
		note.BaseModel = types.GetDefaultBaseModel(ctx)
	}
	if note.Number == "" {
		note.Number = generateNoteNumber(time.Now())
	}

	if err := s.prepare(ctx, note); err != nil {
		return err
	}

	if _, err := s.DeliveryNoteRepo.GetByNumber(ctx, note.Number); err == nil {
		return ierr.NewError("delivery note number already exists").
			WithHint("A delivery note with this number already exists").
			WithReportableDetails(map[string]any{"delivery_note_number": note.Number}).
			Mark(ierr.ErrAlreadyExists)
	} else if !ierr.IsNotFound(err) {
		return err
	}

	return s.DeliveryNoteRepo.Create(ctx, note)
}

// prepare checks references, fills default unit prices, derives amounts and the
// billing date, then validates the note.
func (s *deliveryNoteService) prepare(ctx context.Context, note *deliverynote.DeliveryNote) error {
	if note.SalesPersonID > 0 {
		if _, err := s.SalesPersonRepo.Get(ctx, note.SalesPersonID); err != nil {
			if ierr.IsNotFound(err) {
				return ierr.WithError(err).
					WithHintf("Sales person %d does not exist", note.SalesPersonID).
					Mark(ierr.ErrValidation)
			}
			return err
		}
	}
	if note.TaxRateID > 0 {
		if _, err := s.TaxRateRepo.Get(ctx, note.TaxRateID); err != nil {
			if ierr.IsNotFound(err) {
				return ierr.WithError(err).
					WithHintf("Tax rate %d does not exist", note.TaxRateID).
					Mark(ierr.ErrValidation)
			}
			return err
		}
	}

	ids := lo.Uniq(lo.Map(note.Lines, func(l *deliverynote.Line, _ int) int64 { return l.ProductID }))
	products, err := s.ProductRepo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := lo.KeyBy(products, func(p *product.Product) int64 { return p.ID })

	for i, l := range note.Lines {
		p, ok := byID[l.ProductID]
		if !ok {
			return ierr.NewErrorf("product %d not found", l.ProductID).
				WithHintf("Product %d does not exist", l.ProductID).
				WithReportableDetails(map[string]any{"line": i}).
				Mark(ierr.ErrValidation)
		}
		if l.UnitPrice < 0 {
			l.UnitPrice = p.Price
		}
		l.Amount = l.Quantity * l.UnitPrice
		l.DeliveryNoteID = note.ID
		l.Position = i
		if l.ID == "" {
			l.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DELIVERY_NOTE_LINE)
		}
	}

	note.ApplyBillingDate()
	return note.Validate()
}

func (s *deliveryNoteService) GetDeliveryNote(ctx context.Context, id string) (*dto.DeliveryNoteResponse, error) {
	if id == "" {
		return nil, ierr.NewError("delivery_note_id is required").
			WithHint("Delivery note ID is required").
			Mark(ierr.ErrValidation)
	}

	note, err := s.DeliveryNoteRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewDeliveryNoteResponse(note), nil
}

func (s *deliveryNoteService) ListDeliveryNotes(ctx context.Context, filter *types.DeliveryNoteFilter) (*dto.ListDeliveryNotesResponse, error) {
	if filter == nil {
		filter = types.NewDeliveryNoteFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	notes, err := s.DeliveryNoteRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.DeliveryNoteRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(notes, func(n *deliverynote.DeliveryNote, _ int) *dto.DeliveryNoteResponse {
		return dto.NewDeliveryNoteResponse(n)
	})
	resp := types.NewListResponse(items, count, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *deliveryNoteService) UpdateDeliveryNote(ctx context.Context, id string, req *dto.UpdateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	note, err := s.DeliveryNoteRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(note)
	if err := s.prepare(ctx, note); err != nil {
		return nil, err
	}
	note.Touch(ctx)

	if err := s.DeliveryNoteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return dto.NewDeliveryNoteResponse(note), nil
}

func (s *deliveryNoteService) DeleteDeliveryNote(ctx context.Context, id string) error {
	note, err := s.DeliveryNoteRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.DeliveryNoteRepo.Delete(ctx, note)
}

func (s *deliveryNoteService) BillingDate(deliveryDate time.Time) *dto.BillingDateResponse {
	return &dto.BillingDateResponse{
		DeliveryDate: types.NewDate(deliveryDate),
		BillingDate:  types.NewDate(types.BillingDateOf(deliveryDate)),
	}
}
