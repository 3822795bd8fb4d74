//go:build !wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/bootstrap"
)

// Initialize 는 arcade 애플리케이션 의존성을 초기화하고 ServerApp을 반환한다.
func Initialize(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	tp, cleanupTelemetry, err := newArcadeTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cat, err := newArcadeCatalog()
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	dataValkeyClient, cleanupDataValkey, err := newArcadeDataRedis(ctx, cfg, logger)
	if err != nil {
		cleanupTelemetry()
		return nil, nil, err
	}

	db, cleanupDB, err := newArcadeDB(ctx, cfg, logger)
	if err != nil {
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	repo, err := newArcadeRepository(ctx, db)
	if err != nil {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
		return nil, nil, err
	}

	m := newArcadeMetrics()
	stores := newArcadeStores(cfg, dataValkeyClient, logger)
	ds := newArcadeDataSource(cfg, logger)
	services := newArcadeServices(cfg, cat, repo, stores, ds, m, logger)

	handler := newArcadeHTTPHandler(cfg, cat, services, repo, dataValkeyClient, m, logger)
	httpServer := newArcadeHTTPServer(cfg, handler, tp)
	scheduler := newArcadeSeasonScheduler(cfg, services, logger)

	serverApp := newArcadeServerApp(logger, httpServer, services, scheduler)

	cleanup := func() {
		cleanupDB()
		cleanupDataValkey()
		cleanupTelemetry()
	}

	return serverApp, cleanup, nil
}
