package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SeasonScheduler: 주기적으로 SeasonService.Sweep 을 실행한다.
type SeasonScheduler struct {
	seasons  *SeasonService
	interval time.Duration
	logger   *slog.Logger
}

// NewSeasonScheduler: interval 이 0 이하이면 1분.
func NewSeasonScheduler(seasons *SeasonService, interval time.Duration, logger *slog.Logger) *SeasonScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SeasonScheduler{seasons: seasons, interval: interval, logger: logger}
}

// Run: ctx 가 끝날 때까지 스케줄러를 실행한다. 시작 즉시 한 번 실행된다.
func (s *SeasonScheduler) Run(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler failed: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.sweep(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("register season sweep failed: %w", err)
	}

	sched.Start()
	s.logger.Info("season_scheduler_started", "interval", s.interval)

	<-ctx.Done()
	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("scheduler shutdown failed: %w", err)
	}
	return nil
}

func (s *SeasonScheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.seasons.Sweep(ctx); err != nil {
		s.logger.Warn("season_sweep_failed", "err", err)
	}
}
