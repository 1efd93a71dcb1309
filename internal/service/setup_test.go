package service

import (
	"github.com/flexprice/notebilling/internal/testutil"
)

// newTestParams wires the suite fakes into ServiceParams
func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		nil,
		stores.DeliveryNoteRepo,
		stores.SalesInvoiceRepo,
		stores.ProductRepo,
		stores.SalesPersonRepo,
		stores.TaxRateRepo,
		stores.DiscountRateRepo,
		s.GetRecognizer(),
		stores.SnapshotStore,
		stores.HistoryStore,
		s.GetPubSub(),
		s.GetReporter(),
		nil,
	)
}
