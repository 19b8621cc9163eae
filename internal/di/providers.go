package di

import (
	"storybank/internal/client"
	"storybank/internal/persistence"
	"storybank/internal/persistence/interfaces"
	"storybank/internal/providers"
	"storybank/internal/services"
	"storybank/internal/structures"
)

func provideLogger(conf *structures.Config) (providers.Logger, func(), error) {
	logger, err := providers.NewLogProvider(conf)
	if err != nil {
		return nil, nil, err
	}
	return logger, logger.Close, nil
}

// provideFileManager snapshots through the CacheStore lock, never the raw store.
func provideFileManager(compressor interfaces.CompressorInterface, cache *services.CacheStore, logger providers.Logger) (*persistence.FileManager, func()) {
	fm := persistence.NewFileManager(compressor, cache, logger)
	return fm, fm.Close
}

func provideBackend(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) client.BackendInterface {
	return client.NewClient(conf, logger, metrics)
}
