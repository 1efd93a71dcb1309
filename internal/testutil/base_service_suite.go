package testutil

import (
	"context"
	"time"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/domain/discountrate"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/flexprice/notebilling/internal/pubsub"
	"github.com/flexprice/notebilling/internal/pubsub/memory"
	"github.com/flexprice/notebilling/internal/recognition/store"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/flexprice/notebilling/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository fakes for testing
type Stores struct {
	DeliveryNoteRepo *InMemoryDeliveryNoteStore
	SalesInvoiceRepo *InMemorySalesInvoiceStore
	ProductRepo      *InMemoryProductStore
	SalesPersonRepo  *InMemorySalesPersonStore
	TaxRateRepo      *InMemoryTaxRateStore
	DiscountRateRepo *InMemoryDiscountRateStore

	SnapshotStore *store.MemorySnapshotStore
	HistoryStore  *store.MemoryHistoryStore
}

// Reference data seeded before every test
const (
	ProductQuota           int64 = 1
	ProductNonQuota        int64 = 2
	ProductNonDiscountable int64 = 3

	TaxRateStandard int64 = 1
)

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	recognizer *FakeRecognizer
	reporter   *FakeReporter
	pubsub     pubsub.PubSub
	db         postgres.IClient
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.config = config.GetDefaultConfig()
	s.ctx = SetupContext()
	s.setupStores()
	s.seedReferenceData()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	if s.pubsub != nil {
		_ = s.pubsub.Close()
	}
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		DeliveryNoteRepo: NewInMemoryDeliveryNoteStore(),
		SalesInvoiceRepo: NewInMemorySalesInvoiceStore(),
		ProductRepo:      NewInMemoryProductStore(),
		SalesPersonRepo:  NewInMemorySalesPersonStore(),
		TaxRateRepo:      NewInMemoryTaxRateStore(),
		DiscountRateRepo: NewInMemoryDiscountRateStore(),
		SnapshotStore:    store.NewMemorySnapshotStore(),
		HistoryStore:     store.NewMemoryHistoryStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.recognizer = NewFakeRecognizer()
	s.reporter = &FakeReporter{}
	s.pubsub = memory.NewPubSub(s.logger)
}

func (s *BaseServiceTestSuite) seedReferenceData() {
	s.stores.SalesPersonRepo.Add(
		&salesperson.SalesPerson{ID: 1, Name: "Sato"},
		&salesperson.SalesPerson{ID: 2, Name: "Suzuki"},
		&salesperson.SalesPerson{ID: 3, Name: "Takahashi"},
	)
	s.stores.TaxRateRepo.Add(
		&taxrate.TaxRate{ID: TaxRateStandard, Rate: decimal.NewFromFloat(0.10), DisplayName: "10%"},
	)
	s.stores.ProductRepo.Add(
		&product.Product{ID: ProductQuota, Name: "Quota item", Price: 1000, QuotaTarget: true, DisplayOrder: 1},
		&product.Product{ID: ProductNonQuota, Name: "Regular item", Price: 500, DisplayOrder: 2},
		&product.Product{ID: ProductNonDiscountable, Name: "Fixed price item", Price: 300, DiscountExcluded: true, DisplayOrder: 3},
	)
	s.stores.DiscountRateRepo.Add(
		&discountrate.DiscountRate{ID: 1, Rate: decimal.Zero, ThresholdAmount: 0, AppliesToQuotaEligible: true},
		&discountrate.DiscountRate{ID: 2, Rate: decimal.NewFromFloat(0.10), ThresholdAmount: 21000, AppliesToQuotaEligible: true, ManualOnly: true},
		&discountrate.DiscountRate{ID: 3, Rate: decimal.NewFromFloat(0.20), ThresholdAmount: 42000, AppliesToQuotaEligible: true},
		&discountrate.DiscountRate{ID: 4, Rate: decimal.NewFromFloat(0.30), ThresholdAmount: 200000, AppliesToQuotaEligible: true},
		&discountrate.DiscountRate{ID: 5, Rate: decimal.NewFromFloat(0.40), ThresholdAmount: 400000, AppliesToQuotaEligible: true},
	)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.DeliveryNoteRepo.Clear()
	s.stores.SalesInvoiceRepo.Clear()
	s.stores.ProductRepo.Clear()
	s.stores.SalesPersonRepo.Clear()
	s.stores.TaxRateRepo.Clear()
	s.stores.DiscountRateRepo.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetRecognizer returns the fake recognizer
func (s *BaseServiceTestSuite) GetRecognizer() *FakeRecognizer {
	return s.recognizer
}

// GetReporter returns the fake error reporter
func (s *BaseServiceTestSuite) GetReporter() *FakeReporter {
	return s.reporter
}

// GetPubSub returns the in-process event bus
func (s *BaseServiceTestSuite) GetPubSub() pubsub.PubSub {
	return s.pubsub
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// Date is shorthand for a calendar date in tests
func Date(year int, month time.Month, day int) time.Time {
	return types.NewCalendarDate(year, month, day)
}
