package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/httpapi"
	aredis "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/redis"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/service"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/dbutil"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/di"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/httpserver"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/metrics"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/retry"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/valkeyx"
)

func newArcadeTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*telemetry.Provider, func(), error) {
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}
	return provider, cleanup, nil
}

func newArcadeDataRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (di.DataValkeyClient, func(), error) {
	client, cleanup, err := bootstrap.NewAndPingDataValkeyClient(ctx, cfg.Redis, logger)
	if err != nil {
		return di.DataValkeyClient{}, nil, fmt.Errorf("connect valkey failed: %w", err)
	}
	return client, cleanup, nil
}

func newArcadeDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	retryCfg := dbutil.RetryConfig{
		MaxAttempts: cfg.DBRetry.MaxAttempts,
		BaseDelay:   cfg.DBRetry.BaseDelay,
		MaxDelay:    cfg.DBRetry.MaxDelay,
	}
	db, sqlDB, err := dbutil.OpenWithRetry(ctx, func(ctx context.Context) (*gorm.DB, *sql.DB, error) {
		return openPostgres(ctx, cfg.Postgres)
	}, retryCfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres failed: %w", err)
	}

	closeFn := func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("postgres_close_failed", "err", closeErr)
		}
	}
	return db, closeFn, nil
}

func newArcadeRepository(ctx context.Context, db *gorm.DB) (*repository.Repository, error) {
	repo := repository.New(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	return repo, nil
}

func newArcadeCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog failed: %w", err)
	}
	return cat, nil
}

func newArcadeMetrics() *metrics.Metrics {
	return metrics.New(config.ServiceName)
}

type arcadeStores struct {
	sessions    *aredis.SessionStorage
	profileLock *aredis.ProfileLock
	snapshots   *aredis.SnapshotStore
}

func newArcadeStores(cfg *config.Config, client di.DataValkeyClient, logger *slog.Logger) *arcadeStores {
	return &arcadeStores{
		sessions:    aredis.NewSessionStorage(client.Client, logger, cfg.Session.TTL),
		profileLock: aredis.NewProfileLock(client.Client, logger, cfg.Session.LockTTL, cfg.Session.LockWait),
		snapshots:   aredis.NewSnapshotStore(client.Client, logger),
	}
}

func newArcadeDataSource(cfg *config.Config, logger *slog.Logger) *service.DataSource {
	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.DataSource.MaxRetries
	return service.NewDataSource(policy, logger)
}

type arcadeServices struct {
	sessions     *service.SessionService
	leaderboard  *service.LeaderboardService
	history      *service.HistoryService
	rewards      *service.RewardService
	submissions  *service.SubmissionService
	achievements *service.AchievementService
	stats        *service.StatsService
	seasons      *service.SeasonService
	reactions    *service.ReactionService
}

func newArcadeServices(
	cfg *config.Config,
	cat *catalog.Catalog,
	repo *repository.Repository,
	stores *arcadeStores,
	ds *service.DataSource,
	m *metrics.Metrics,
	logger *slog.Logger,
) *arcadeServices {
	sessions := service.NewSessionService(stores.sessions, stores.profileLock, ds, logger)
	leaderboard := service.NewLeaderboardService(cat, repo, stores.snapshots, ds, cfg.Leaderboard, m, logger)
	rewards := service.NewRewardService(cat, repo, repo, ds, m, logger)
	limiter := service.NewSubmissionLimiter(cfg.Submission)

	return &arcadeServices{
		sessions:     sessions,
		leaderboard:  leaderboard,
		history:      service.NewHistoryService(cat, repo, ds, logger),
		rewards:      rewards,
		submissions:  service.NewSubmissionService(cat, sessions, repo, rewards, leaderboard, limiter, ds, cfg.Submission, m, logger),
		achievements: service.NewAchievementService(cat, sessions, logger),
		stats:        service.NewStatsService(repo, repo, rewards, ds, logger),
		seasons:      service.NewSeasonService(cat, repo, repo, ds, logger),
		reactions:    service.NewReactionService(cat, sessions, repo, ds, logger),
	}
}

func newArcadeHTTPHandler(
	cfg *config.Config,
	cat *catalog.Catalog,
	services *arcadeServices,
	repo *repository.Repository,
	client di.DataValkeyClient,
	m *metrics.Metrics,
	logger *slog.Logger,
) http.Handler {
	return httpapi.NewHandler(httpapi.Deps{
		Catalog:      cat,
		Sessions:     services.sessions,
		Leaderboard:  services.leaderboard,
		History:      services.history,
		Rewards:      services.rewards,
		Submissions:  services.submissions,
		Achievements: services.achievements,
		Stats:        services.stats,
		Seasons:      services.seasons,
		Reactions:    services.reactions,
		Metrics:      m,
		Checks: map[string]health.Checker{
			"postgres": repo.Ping,
			"valkey": func(ctx context.Context) error {
				return valkeyx.Ping(ctx, client.Client)
			},
		},
		AdminAPIKey:    cfg.Admin.APIKey,
		RequestTimeout: cfg.DataSource.Timeout,
		Logger:         logger,
	})
}

func newArcadeHTTPServer(cfg *config.Config, handler http.Handler, tp *telemetry.Provider) *http.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	opts := httpserver.ServerOptions{
		UseH2C:            true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
	}
	if tp.IsEnabled() {
		opts.TraceOperation = config.ServiceName + ".http"
	}
	return httpserver.NewServer(addr, handler, opts)
}

func newArcadeSeasonScheduler(cfg *config.Config, services *arcadeServices, logger *slog.Logger) *service.SeasonScheduler {
	return service.NewSeasonScheduler(services.seasons, cfg.Seasons.SweepInterval, logger)
}

func newArcadeServerApp(
	logger *slog.Logger,
	server *http.Server,
	services *arcadeServices,
	scheduler *service.SeasonScheduler,
) *bootstrap.ServerApp {
	return bootstrap.NewServerApp(
		config.ServiceName,
		logger,
		server,
		config.ShutdownTimeoutSeconds*time.Second,
		bootstrap.BackgroundTask{
			Name:        "season_scheduler",
			ErrorLogKey: "season_scheduler_failed",
			Run: func(ctx context.Context) error {
				// 시드 실패는 스케줄러를 막지 않는다 (다음 sweep 은 기존 시즌으로 동작)
				if err := services.seasons.SeedFromCatalog(ctx); err != nil {
					logger.Warn("season_seed_failed", "err", err)
				}
				return scheduler.Run(ctx)
			},
		},
	)
}

func openPostgres(ctx context.Context, cfg config.PostgresConfig) (*gorm.DB, *sql.DB, error) {
	host := cfg.Host
	if cfg.SocketPath != "" {
		host = cfg.SocketPath
	}
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("gorm open failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("db ping failed: %w", err)
	}

	return db, sqlDB, nil
}
