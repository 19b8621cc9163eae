//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"storybank/internal"
	"storybank/internal/controllers"
	"storybank/internal/persistence"
	"storybank/internal/providers"
	"storybank/internal/services"
	"storybank/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		provideLogger,
		providers.NewMetricsProvider,
		providers.NewStoreProvider,

		services.NewCacheStore,
		wire.Bind(new(services.CacheStoreInterface), new(*services.CacheStore)),
		services.NewActivityLog,
		wire.Bind(new(services.ActivityLogInterface), new(*services.ActivityLog)),
		services.NewStatsAggregator,
		wire.Bind(new(services.StatsAggregatorInterface), new(*services.StatsAggregator)),
		services.NewChannelCache,
		wire.Bind(new(services.ChannelCacheInterface), new(*services.ChannelCache)),

		persistence.NewZstdCompressor,
		provideFileManager,
		persistence.NewScheduler,

		provideBackend,
		controllers.NewApiController,
		controllers.NewSyncController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
