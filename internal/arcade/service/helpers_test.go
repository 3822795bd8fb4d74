package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	aredis "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/redis"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/metrics"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/retry"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/testhelper"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	repo     *repository.Repository
	mr       *miniredis.Miniredis
	catalog  *catalog.Catalog
	clock    *testClock
	ds       *DataSource
	storage  *aredis.SessionStorage
	lock     *aredis.ProfileLock
	metrics  *metrics.Metrics
	limiter  *SubmissionLimiter
	snapshot *aredis.SnapshotStore
	kv       SessionStorage // nil 이면 storage 사용

	leaderboard  *LeaderboardService
	history      *HistoryService
	rewards      *RewardService
	sessions     *SessionService
	submissions  *SubmissionService
	achievements *AchievementService
	stats        *StatsService
	seasons      *SeasonService
	reactions    *ReactionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog failed: %v", err)
	}
	repo := repository.New(testhelper.NewTestDB(t))
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	client, mr := testhelper.NewMiniredisClient(t)

	env := &testEnv{
		repo:     repo,
		mr:       mr,
		catalog:  cat,
		clock:    &testClock{now: time.Date(2025, 4, 3, 12, 0, 0, 0, time.UTC)},
		ds:       NewDataSource(retry.Policy{MaxRetries: 0, BaseDelay: time.Millisecond}, nil),
		storage:  aredis.NewSessionStorage(client, nil, time.Hour),
		lock:     aredis.NewProfileLock(client, nil, 5*time.Second, time.Second),
		metrics:  metrics.New("arcade_test"),
		limiter:  NewSubmissionLimiter(config.SubmissionConfig{}),
		snapshot: aredis.NewSnapshotStore(client, nil),
	}
	env.build(repo)
	return env
}

// build: scores 저장소를 바꿔 끼울 수 있도록 서비스 그래프를 구성한다.
func (e *testEnv) build(scores ScoreStore) {
	e.leaderboard = NewLeaderboardService(e.catalog, scores, e.snapshot, e.ds, config.LeaderboardConfig{
		CacheTTL:        time.Minute,
		CacheSize:       64,
		CategoryWorkers: 2,
	}, e.metrics, nil)
	e.history = NewHistoryService(e.catalog, scores, e.ds, nil)
	e.rewards = NewRewardService(e.catalog, scores, e.repo, e.ds, e.metrics, nil)
	var kv SessionStorage = e.storage
	if e.kv != nil {
		kv = e.kv
	}
	e.sessions = NewSessionService(kv, e.lock, e.ds, nil)
	e.submissions = NewSubmissionService(e.catalog, e.sessions, scores, e.rewards, e.leaderboard, e.limiter, e.ds,
		config.SubmissionConfig{DefaultSessionMinutes: 10}, e.metrics, nil)
	e.achievements = NewAchievementService(e.catalog, e.sessions, nil)
	e.stats = NewStatsService(scores, e.repo, e.rewards, e.ds, nil)
	e.seasons = NewSeasonService(e.catalog, e.repo, scores, e.ds, nil)
	e.reactions = NewReactionService(e.catalog, e.sessions, e.repo, e.ds, nil)

	now := e.clock.Now
	e.leaderboard.now = now
	e.rewards.now = now
	e.sessions.now = now
	e.submissions.now = now
	e.achievements.now = now
	e.seasons.now = now
	e.reactions.now = now
}

func (e *testEnv) register(t *testing.T, sessionID string, username string) *model.User {
	t.Helper()
	user, err := e.sessions.Register(context.Background(), sessionID, RegisterInput{
		Username: username,
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return user
}

func (e *testEnv) submit(t *testing.T, sessionID string, gameID string, score int64) *SubmissionResult {
	t.Helper()
	res, err := e.submissions.SubmitScore(context.Background(), sessionID, SubmitScoreInput{GameID: gameID, Score: score})
	if err != nil {
		t.Fatalf("submit %s/%d failed: %v", gameID, score, err)
	}
	return res
}

// seedScore: 세션을 거치지 않고 기록을 직접 추가한다.
func (e *testEnv) seedScore(t *testing.T, id string, playerID string, gameID string, score int64, at time.Time) model.ScoreRecord {
	t.Helper()
	game, ok := e.catalog.Game(gameID)
	if !ok {
		t.Fatalf("unknown game %s", gameID)
	}
	rec, _, err := e.repo.InsertScore(context.Background(), model.ScoreRecord{
		ID:           id,
		SubmissionID: "seed-" + id,
		PlayerID:     playerID,
		PlayerName:   playerID,
		GameID:       game.ID,
		GameName:     game.Title,
		Category:     game.Category,
		Score:        score,
		Date:         at,
	})
	if err != nil {
		t.Fatalf("seed score failed: %v", err)
	}
	e.leaderboard.Invalidate()
	return rec
}
