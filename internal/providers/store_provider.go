package providers

import (
	"fmt"
	"storybank/internal/models"
	"storybank/internal/structures"
)

// NewStoreProvider opens the configured key-value driver and puts the read cache in
// front of it. The returned cleanup closes the underlying database, if any.
func NewStoreProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) (models.KeyValueStore, func(), error) {
	var (
		base    models.KeyValueStore
		cleanup = func() {}
	)

	switch conf.Storage.Driver {
	case "sqlite":
		s, err := models.OpenSQLiteStore(conf.Storage.DSN, conf.Storage.QuotaBytes)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		base = s
		cleanup = func() {
			if err := s.Close(); err != nil {
				logger.Errorf(TypeStorage, "Closing sqlite store: %s", err)
			}
		}
		logger.Infof(TypeStorage, "SQLite store opened at %s", conf.Storage.DSN)
	case "memory", "":
		base = models.NewMemoryStore(conf.Storage.QuotaBytes)
		logger.Infof(TypeStorage, "In-memory store initialized, quota %d bytes", conf.Storage.QuotaBytes)
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}

	return NewInstrumentedCacheProvider(conf, logger, metrics, base), cleanup, nil
}
