package recognizer

import (
	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/domain/product"
	"github.com/flexprice/notebilling/internal/domain/salesperson"
	"github.com/flexprice/notebilling/internal/domain/taxrate"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/types"
)

// New builds the configured recognizer, rate limited
func New(
	cfg *config.Configuration,
	salesPersons salesperson.Repository,
	products product.Repository,
	taxRates taxrate.Repository,
	log *logger.Logger,
) (Recognizer, error) {
	var r Recognizer
	switch cfg.Recognition.Recognizer {
	case types.RecognizerOpenAI:
		oa, err := NewOpenAIRecognizer(cfg, salesPersons, products, taxRates, log)
		if err != nil {
			return nil, err
		}
		r = oa
	default:
		log.Warnw("image recognition disabled", "recognizer", cfg.Recognition.Recognizer)
		r = Disabled{}
	}
	return NewRateLimited(r, cfg.Recognition.RatePerSecond, cfg.Recognition.Burst), nil
}
