package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	aredis "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/redis"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/cache"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/metrics"
)

const leaderboardCacheName = "leaderboard"

// LeaderboardService: 리더보드 뷰 조회
// 조회 결과는 짧게 캐시되고, 같은 뷰 동시 조회는 singleflight 로 합쳐진다.
type LeaderboardService struct {
	catalog   *catalog.Catalog
	scores    ScoreStore
	snapshots SnapshotStore
	ds        *DataSource
	metrics   *metrics.Metrics
	logger    *slog.Logger

	cache      *cache.TTLLRUCache[[]model.ScoreRecord]
	group      singleflight.Group
	generation atomic.Uint64
	workers    int
	now        func() time.Time
}

// NewLeaderboardService: 새 LeaderboardService 를 생성합니다.
func NewLeaderboardService(
	cat *catalog.Catalog,
	scores ScoreStore,
	snapshots SnapshotStore,
	ds *DataSource,
	cfg config.LeaderboardConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.CategoryWorkers
	if workers <= 0 {
		workers = 1
	}
	return &LeaderboardService{
		catalog:   cat,
		scores:    scores,
		snapshots: snapshots,
		ds:        ds,
		metrics:   m,
		logger:    logger,
		cache:     cache.NewTTLLRUCache[[]model.ScoreRecord](cfg.CacheSize, cfg.CacheTTL),
		workers:   workers,
		now:       time.Now,
	}
}

type leaderboardView struct {
	gameID    string
	category  string
	timeRange model.TimeRange
}

func (v leaderboardView) key() string {
	return viewKey(v.gameID, v.category, v.timeRange)
}

func (s *LeaderboardService) resolve(q model.LeaderboardQuery) (leaderboardView, error) {
	tr, ok := model.ParseTimeRange(string(q.TimeRange))
	if !ok {
		return leaderboardView{}, aerrors.Validation("timeRange", "unknown time range %q", q.TimeRange)
	}
	gameID := strings.TrimSpace(q.GameID)
	if gameID != "" {
		if _, ok := s.catalog.Game(gameID); !ok {
			return leaderboardView{}, aerrors.Validation("gameId", "unknown game %q", gameID)
		}
	}
	category, ok := s.catalog.CanonicalCategory(q.Category)
	if !ok {
		return leaderboardView{}, aerrors.Validation("category", "unknown category %q", q.Category)
	}
	return leaderboardView{gameID: gameID, category: category, timeRange: tr}, nil
}

// GetLeaderboard: 필터링된 뷰의 순위를 반환한다. 기록이 없으면 빈 slice.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, q model.LeaderboardQuery) ([]model.ScoreRecord, error) {
	view, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	return s.leaderboard(ctx, view)
}

// CategoryLeaderboards: 카탈로그 카테고리별 리더보드 (카테고리 이름순)
func (s *LeaderboardService) CategoryLeaderboards(ctx context.Context, timeRange model.TimeRange) ([]model.CategoryLeaderboard, error) {
	tr, ok := model.ParseTimeRange(string(timeRange))
	if !ok {
		return nil, aerrors.Validation("timeRange", "unknown time range %q", timeRange)
	}

	p := pool.NewWithResults[model.CategoryLeaderboard]().
		WithContext(ctx).
		WithMaxGoroutines(s.workers).
		WithCancelOnError()
	for _, category := range s.catalog.Categories() {
		p.Go(func(ctx context.Context) (model.CategoryLeaderboard, error) {
			entries, err := s.leaderboard(ctx, leaderboardView{category: category, timeRange: tr})
			if err != nil {
				return model.CategoryLeaderboard{}, err
			}
			return summarizeCategory(category, entries), nil
		})
	}
	boards, err := p.Wait()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(boards, func(a, b model.CategoryLeaderboard) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return boards, nil
}

// Invalidate: 캐시를 비운다. 점수 추가 후 호출된다.
func (s *LeaderboardService) Invalidate() {
	s.generation.Add(1)
	s.cache.Purge()
}

func (s *LeaderboardService) leaderboard(ctx context.Context, view leaderboardView) ([]model.ScoreRecord, error) {
	key := view.key()
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.CacheLookup(leaderboardCacheName, true)
		return slices.Clone(cached), nil
	}
	s.metrics.CacheLookup(leaderboardCacheName, false)

	// 무효화 이전에 시작된 조회와 합쳐지지 않도록 세대 번호를 키에 포함한다
	gen := s.generation.Load()
	flightKey := strconv.FormatUint(gen, 10) + "|" + key
	v, err, _ := s.group.Do(flightKey, func() (any, error) {
		ranked, err := s.compute(ctx, view)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() == gen {
			s.cache.Set(key, ranked)
		}
		return ranked, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]model.ScoreRecord)), nil
}

func (s *LeaderboardService) compute(ctx context.Context, view leaderboardView) ([]model.ScoreRecord, error) {
	now := s.now()
	key := view.key()

	records, err := call(ctx, s.ds, "list_scores", func(ctx context.Context) ([]model.ScoreRecord, error) {
		return s.scores.ListScores(ctx, repository.ScoreFilter{
			GameID:   view.gameID,
			Category: view.category,
			Since:    view.timeRange.Since(now),
		})
	})
	if err != nil {
		return nil, err
	}

	snap, err := call(ctx, s.ds, "load_rank_snapshot", func(ctx context.Context) (*aredis.RankSnapshot, error) {
		return s.snapshots.Load(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	fp := fingerprint(records)
	var previous map[string]int
	rotate := true
	if snap != nil {
		if snap.Fingerprint == fp {
			previous = snap.Previous
			rotate = false
		} else {
			previous = snap.Current
		}
	}

	ranked := Rank(records, previous)
	for i := range ranked {
		ranked[i].TimeRange = view.timeRange
	}

	if rotate {
		next := aredis.RankSnapshot{
			Fingerprint: fp,
			Current:     rankIndex(ranked),
			Previous:    previous,
			UpdatedAt:   now,
		}
		if err := s.snapshots.Save(ctx, key, next); err != nil {
			s.logger.Warn("rank_snapshot_save_failed", "view", key, "err", err)
		}
	}
	return ranked, nil
}
