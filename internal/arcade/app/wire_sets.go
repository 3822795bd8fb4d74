//go:build wireinject

package app

import "github.com/google/wire"

var arcadeProviderSet = wire.NewSet(
	newArcadeTelemetry,
	newArcadeCatalog,
	newArcadeDataRedis,
	newArcadeDB,
	newArcadeRepository,
	newArcadeMetrics,
	newArcadeStores,
	newArcadeDataSource,
	newArcadeServices,
	newArcadeHTTPHandler,
	newArcadeHTTPServer,
	newArcadeSeasonScheduler,
	newArcadeServerApp,
)
