package cache

import (
	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/logger"
)

// Initialize builds the process wide in-memory cache
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache", "enabled", cfg.Cache.Enabled)
	return NewInMemoryCache(cfg)
}
