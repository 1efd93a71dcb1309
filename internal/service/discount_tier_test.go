package service

import (
	"testing"

	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DiscountRateServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DiscountRateService
}

func TestDiscountRateService(t *testing.T) {
	suite.Run(t, new(DiscountRateServiceSuite))
}

func (s *DiscountRateServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDiscountRateService(newTestParams(&s.BaseServiceTestSuite))
}

func (s *DiscountRateServiceSuite) TestResolveForSubtotal() {
	tests := []struct {
		subtotal int64
		wantID   int64
	}{
		{0, 1},
		{21000, 1},
		{41999, 1},
		{42000, 3},
		{199999, 3},
		{200000, 4},
		{400000, 5},
		{10000000, 5},
	}
	for _, tt := range tests {
		row, err := s.service.ResolveForSubtotal(s.GetContext(), tt.subtotal)
		s.Require().NoError(err)
		s.Equal(tt.wantID, row.ID, "subtotal %d", tt.subtotal)
	}
}

func (s *DiscountRateServiceSuite) TestGetForRate_ManualOnly() {
	ten := decimal.NewFromFloat(0.10)

	_, err := s.service.GetForRate(s.GetContext(), ten, false)
	s.True(ierr.IsNotFound(err))

	row, err := s.service.GetForRate(s.GetContext(), ten, true)
	s.Require().NoError(err)
	s.Equal(int64(2), row.ID)
}

func (s *DiscountRateServiceSuite) TestList() {
	resp, err := s.service.List(s.GetContext())
	s.Require().NoError(err)
	s.Len(resp.Items, 5)
	s.Equal(int64(5), resp.Items[0].ID)
}
