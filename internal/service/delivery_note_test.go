package service

import (
	"strings"
	"testing"
	"time"

	"github.com/flexprice/notebilling/internal/api/dto"
	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/testutil"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type DeliveryNoteServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DeliveryNoteService
}

func TestDeliveryNoteService(t *testing.T) {
	suite.Run(t, new(DeliveryNoteServiceSuite))
}

func (s *DeliveryNoteServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDeliveryNoteService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *DeliveryNoteServiceSuite) createRequest(delivered time.Time, lines ...dto.DeliveryNoteLineRequest) *dto.CreateDeliveryNoteRequest {
	return &dto.CreateDeliveryNoteRequest{
		SalesPersonID: 1,
		TaxRateID:     testutil.TaxRateStandard,
		DeliveryDate:  types.NewDate(delivered),
		Lines:         lines,
	}
}

func (s *DeliveryNoteServiceSuite) TestCreateDeliveryNote() {
	req := s.createRequest(testutil.Date(2025, time.March, 10),
		dto.DeliveryNoteLineRequest{ProductID: testutil.ProductQuota, Quantity: 3},
		dto.DeliveryNoteLineRequest{ProductID: testutil.ProductNonQuota, Quantity: 2, UnitPrice: lo.ToPtr(int64(450))},
	)

	resp, err := s.service.CreateDeliveryNote(s.GetContext(), req)
	s.Require().NoError(err)

	s.NotEmpty(resp.ID)
	s.True(len(resp.Number) > len(types.DELIVERY_NOTE_NUMBER_PREFIX))
	s.Equal(testutil.Date(2025, time.March, 20), resp.BillingDate)
	s.Require().Len(resp.Lines, 2)

	// missing unit price takes the list price
	s.Equal(int64(1000), resp.Lines[0].UnitPrice)
	s.Equal(int64(3000), resp.Lines[0].Amount)
	s.Equal(int64(450), resp.Lines[1].UnitPrice)
	s.Equal(int64(900), resp.Lines[1].Amount)
	s.Equal(int64(3900), resp.TotalAmount)

	stored, err := s.GetStores().DeliveryNoteRepo.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(types.DefaultUserID, stored.CreatedBy)
}

func (s *DeliveryNoteServiceSuite) TestCreateDeliveryNote_BillingDate() {
	tests := []struct {
		delivered time.Time
		billing   time.Time
	}{
		{testutil.Date(2025, time.March, 1), testutil.Date(2025, time.March, 20)},
		{testutil.Date(2025, time.March, 20), testutil.Date(2025, time.March, 20)},
		{testutil.Date(2025, time.March, 21), testutil.Date(2025, time.April, 20)},
		{testutil.Date(2025, time.December, 25), testutil.Date(2026, time.January, 20)},
	}
	for _, tt := range tests {
		resp, err := s.service.CreateDeliveryNote(s.GetContext(), s.createRequest(tt.delivered,
			dto.DeliveryNoteLineRequest{ProductID: testutil.ProductQuota, Quantity: 1}))
		s.Require().NoError(err)
		s.Equal(tt.billing, resp.BillingDate, "delivered %s", tt.delivered.Format(types.DateLayout))
	}
}

func (s *DeliveryNoteServiceSuite) TestCreateDeliveryNote_Validation() {
	tests := []struct {
		name   string
		modify func(r *dto.CreateDeliveryNoteRequest)
	}{
		{"missing lines", func(r *dto.CreateDeliveryNoteRequest) { r.Lines = nil }},
		{"zero quantity", func(r *dto.CreateDeliveryNoteRequest) { r.Lines[0].Quantity = 0 }},
		{"unknown product", func(r *dto.CreateDeliveryNoteRequest) { r.Lines[0].ProductID = 999 }},
		{"unknown sales person", func(r *dto.CreateDeliveryNoteRequest) { r.SalesPersonID = 999 }},
		{"unknown tax rate", func(r *dto.CreateDeliveryNoteRequest) { r.TaxRateID = 999 }},
		{"missing delivery date", func(r *dto.CreateDeliveryNoteRequest) { r.DeliveryDate = types.Date{} }},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := s.createRequest(testutil.Date(2025, time.March, 10),
				dto.DeliveryNoteLineRequest{ProductID: testutil.ProductQuota, Quantity: 1})
			tt.modify(req)

			_, err := s.service.CreateDeliveryNote(s.GetContext(), req)
			s.Require().Error(err)
			s.True(ierr.IsValidation(err), "got %v", err)
		})
	}
}

func (s *DeliveryNoteServiceSuite) TestCreateDeliveryNote_DuplicateNumber() {
	req := s.createRequest(testutil.Date(2025, time.March, 10),
		dto.DeliveryNoteLineRequest{ProductID: testutil.ProductQuota, Quantity: 1})
	req.Number = "DN-0001"

	_, err := s.service.CreateDeliveryNote(s.GetContext(), req)
	s.Require().NoError(err)

	_, err = s.service.CreateDeliveryNote(s.GetContext(), req)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *DeliveryNoteServiceSuite) TestUpdateDeliveryNote() {
	created, err := s.service.CreateDeliveryNote(s.GetContext(), s.createRequest(testutil.Date(2025, time.March, 10),
		dto.DeliveryNoteLineRequest{ProductID: testutil.ProductQuota, Quantity: 1},
		dto.DeliveryNoteLineRequest{ProductID: testutil.ProductNonQuota, Quantity: 1},
	))
	s.Require().NoError(err)

	newDate := types.NewDate(testutil.Date(2025, time.March, 25))
	updated, err := s.service.UpdateDeliveryNote(s.GetContext(), created.ID, &dto.UpdateDeliveryNoteRequest{
		DeliveryDate: &newDate,
		Lines: []dto.DeliveryNoteLineRequest{
			{ProductID: testutil.ProductNonDiscountable, Quantity: 4},
		},
	})
	s.Require().NoError(err)

	s.Equal(testutil.Date(2025, time.April, 20), updated.BillingDate)
	s.Require().Len(updated.Lines, 1)
	s.Equal(testutil.ProductNonDiscountable, updated.Lines[0].ProductID)
	s.Equal(int64(1200), updated.TotalAmount)
}

func (s *DeliveryNoteServiceSuite) TestListDeliveryNotes_ByBillingDate() {
	for _, d := range []time.Time{
		testutil.Date(2025, time.March, 5),
		testutil.Date(2025, time.March, 20),
		testutil.Date(2025, time.March, 21),
	} {
		_, err := s.service.CreateDeliveryNote(s.GetContext(), s.createRequest(d,
			dto.DeliveryNoteLineRequest{ProductID: testutil.ProductQuota, Quantity: 1}))
		s.Require().NoError(err)
	}

	filter := types.NewDeliveryNoteFilter()
	filter.BillingDate = lo.ToPtr(testutil.Date(2025, time.March, 20))

	resp, err := s.service.ListDeliveryNotes(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
}

func (s *DeliveryNoteServiceSuite) TestDeleteDeliveryNote() {
	created, err := s.service.CreateDeliveryNote(s.GetContext(), s.createRequest(testutil.Date(2025, time.March, 10),
		dto.DeliveryNoteLineRequest{ProductID: testutil.ProductQuota, Quantity: 1}))
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteDeliveryNote(s.GetContext(), created.ID))

	_, err = s.service.GetDeliveryNote(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *DeliveryNoteServiceSuite) TestBillingDate() {
	resp := s.service.BillingDate(time.Date(2025, time.January, 31, 15, 4, 0, 0, time.UTC))
	s.Equal("2025-01-31", resp.DeliveryDate.String())
	s.Equal("2025-02-20", resp.BillingDate.String())
}

func (s *DeliveryNoteServiceSuite) TestGenerateNoteNumber_SameInstant() {
	now := time.Now()
	a, b := generateNoteNumber(now), generateNoteNumber(now)
	s.NotEqual(a, b)
	s.True(strings.HasPrefix(a, types.DELIVERY_NOTE_NUMBER_PREFIX))
}
