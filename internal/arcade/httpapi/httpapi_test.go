package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	aredis "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/redis"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/service"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/httputil"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/metrics"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/retry"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/testhelper"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/valkeyx"
)

const testAdminKey = "secret-key"

func newTestHandler(t *testing.T, checks map[string]health.Checker) http.Handler {
	t.Helper()

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog failed: %v", err)
	}
	repo := repository.New(testhelper.NewTestDB(t))
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	client, _ := testhelper.NewMiniredisClient(t)

	m := metrics.New("arcade_test")
	ds := service.NewDataSource(retry.Policy{MaxRetries: 0, BaseDelay: time.Millisecond}, nil)
	storage := aredis.NewSessionStorage(client, nil, time.Hour)
	lock := aredis.NewProfileLock(client, nil, 5*time.Second, time.Second)

	leaderboard := service.NewLeaderboardService(cat, repo, aredis.NewSnapshotStore(client, nil), ds,
		config.LeaderboardConfig{CacheTTL: time.Minute, CacheSize: 16, CategoryWorkers: 2}, m, nil)
	rewards := service.NewRewardService(cat, repo, repo, ds, m, nil)
	sessions := service.NewSessionService(storage, lock, ds, nil)
	seasons := service.NewSeasonService(cat, repo, repo, ds, nil)

	if checks == nil {
		checks = map[string]health.Checker{
			"postgres": repo.Ping,
			"valkey":   func(ctx context.Context) error { return valkeyx.Ping(ctx, client) },
		}
	}

	return NewHandler(Deps{
		Catalog:     cat,
		Sessions:    sessions,
		Leaderboard: leaderboard,
		History:     service.NewHistoryService(cat, repo, ds, nil),
		Rewards:     rewards,
		Submissions: service.NewSubmissionService(cat, sessions, repo, rewards, leaderboard,
			service.NewSubmissionLimiter(config.SubmissionConfig{}), ds, config.SubmissionConfig{}, m, nil),
		Achievements:   service.NewAchievementService(cat, sessions, nil),
		Stats:          service.NewStatsService(repo, repo, rewards, ds, nil),
		Seasons:        seasons,
		Reactions:      service.NewReactionService(cat, sessions, repo, ds, nil),
		Metrics:        m,
		Checks:         checks,
		AdminAPIKey:    testAdminKey,
		RequestTimeout: 5 * time.Second,
	})
}

type call struct {
	method  string
	path    string
	body    any
	session string
	apiKey  string
}

func do(t *testing.T, h http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		if raw, ok := c.body.(string); ok {
			body.WriteString(raw)
		} else if err := json.NewEncoder(&body).Encode(c.body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set(httputil.HeaderContentType, httputil.ContentTypeJSON)
	if c.session != "" {
		req.Header.Set(httputil.HeaderSessionID, c.session)
	}
	if c.apiKey != "" {
		req.Header.Set(httputil.HeaderAPIKey, c.apiKey)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q failed: %v", rec.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) httputil.ErrorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	resp := decode[httputil.ErrorResponse](t, rec)
	if resp.Error != code {
		t.Errorf("expected code %s, got %s", code, resp.Error)
	}
	return resp
}

func registerUser(t *testing.T, h http.Handler, username string) AuthResponse {
	t.Helper()
	rec := do(t, h, call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"username": username,
		"email":    username + "@example.com",
	}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	resp := decode[AuthResponse](t, rec)
	if resp.SessionID == "" || rec.Header().Get(httputil.HeaderSessionID) != resp.SessionID {
		t.Fatalf("session id must be issued: %+v", resp)
	}
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := do(t, h, call{method: http.MethodGet, path: "/health"})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	resp := decode[health.Response](t, rec)
	if resp.Status != "ok" || resp.Components["postgres"] != "ok" || resp.Components["valkey"] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}

	t.Run("degraded", func(t *testing.T) {
		h := newTestHandler(t, map[string]health.Checker{
			"postgres": func(context.Context) error { return errors.New("down") },
		})
		rec := do(t, h, call{method: http.MethodGet, path: "/health"})
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})
}

func TestAuthFlow(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, call{method: http.MethodGet, path: "/api/auth/me"})
	expectError(t, rec, http.StatusUnauthorized, errorAuthRequired)

	auth := registerUser(t, h, "GameMaster")
	rec = do(t, h, call{method: http.MethodGet, path: "/api/auth/me", session: auth.SessionID})
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed: %d", rec.Code)
	}
	if me := decode[model.User](t, rec); me.ID != auth.User.ID {
		t.Errorf("unexpected user: %+v", me)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/auth/logout", session: auth.SessionID})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout failed: %d", rec.Code)
	}
	rec = do(t, h, call{method: http.MethodGet, path: "/api/auth/me", session: auth.SessionID})
	expectError(t, rec, http.StatusUnauthorized, errorAuthRequired)

	t.Run("login reuses header session", func(t *testing.T) {
		rec := do(t, h, call{method: http.MethodPost, path: "/api/auth/login", session: "tab-1", body: map[string]string{
			"email": "player@example.com",
		}})
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
		}
		if resp := decode[AuthResponse](t, rec); resp.SessionID != "tab-1" || resp.User.Username != "player" {
			t.Errorf("unexpected login: %+v", resp)
		}
	})

	t.Run("validation details", func(t *testing.T) {
		rec := do(t, h, call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
			"username": "x",
			"email":    "nope",
		}})
		resp := expectError(t, rec, http.StatusUnprocessableEntity, errorValidation)
		if resp.Details["username"] == "" || resp.Details["email"] == "" {
			t.Errorf("expected field details, got %+v", resp.Details)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(t, h, call{method: http.MethodPost, path: "/api/auth/register", body: "{"})
		expectError(t, rec, http.StatusBadRequest, errorInvalidRequest)
	})
}

func TestSubmitAndLeaderboard(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, call{method: http.MethodPost, path: "/api/scores", body: map[string]any{"gameId": "tetris", "score": 10}})
	expectError(t, rec, http.StatusUnauthorized, errorAuthRequired)

	auth := registerUser(t, h, "alice")
	body := map[string]any{"gameId": "tetris", "score": 99875, "submissionId": "sub-1"}
	rec = do(t, h, call{method: http.MethodPost, path: "/api/scores", session: auth.SessionID, body: body})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d %s", rec.Code, rec.Body.String())
	}
	res := decode[service.SubmissionResult](t, rec)
	if res.Record.Score != 99875 || len(res.NewRewards) == 0 || res.User.Stats.GamesPlayed != 1 {
		t.Errorf("unexpected result: %+v", res)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/scores", session: auth.SessionID, body: body})
	if rec.Code != http.StatusOK || !decode[service.SubmissionResult](t, rec).Duplicate {
		t.Errorf("retry must be reported as duplicate: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/leaderboard?gameId=tetris&timeRange=week"})
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard failed: %d", rec.Code)
	}
	board := decode[LeaderboardResponse](t, rec)
	if board.TimeRange != model.TimeRangeWeek || len(board.Entries) != 1 || board.Entries[0].Rank != 1 || board.Entries[0].PlayerID != auth.User.ID {
		t.Errorf("unexpected board: %+v", board)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/leaderboard?timeRange=decade"})
	resp := expectError(t, rec, http.StatusUnprocessableEntity, errorValidation)
	if _, ok := resp.Details["timeRange"]; !ok {
		t.Errorf("expected timeRange detail, got %+v", resp.Details)
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/leaderboard/categories"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Puzzle"`) {
		t.Errorf("unexpected categories: %d %s", rec.Code, rec.Body.String())
	}

	t.Run("player views", func(t *testing.T) {
		base := "/api/players/" + auth.User.ID
		rec := do(t, h, call{method: http.MethodGet, path: base + "/history?gameId=tetris"})
		if rec.Code != http.StatusOK || decode[model.PlayerHistory](t, rec).BestScore != 99875 {
			t.Errorf("unexpected history: %d %s", rec.Code, rec.Body.String())
		}
		rec = do(t, h, call{method: http.MethodGet, path: base + "/stats"})
		if rec.Code != http.StatusOK || decode[model.PlayerStats](t, rec).TopGame != "tetris" {
			t.Errorf("unexpected stats: %d %s", rec.Code, rec.Body.String())
		}
		rec = do(t, h, call{method: http.MethodGet, path: base + "/rewards"})
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"reward1"`) {
			t.Errorf("unexpected rewards: %d %s", rec.Code, rec.Body.String())
		}
		rec = do(t, h, call{method: http.MethodPost, path: "/api/rewards/check", session: auth.SessionID})
		if rec.Code != http.StatusOK || len(decode[CheckRewardsResponse](t, rec).NewRewards) != 0 {
			t.Errorf("second check must be empty: %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid score", func(t *testing.T) {
		rec := do(t, h, call{method: http.MethodPost, path: "/api/scores", session: auth.SessionID, body: map[string]any{"gameId": "tetris", "score": -1}})
		expectError(t, rec, http.StatusUnprocessableEntity, errorValidation)
	})
}

func TestGamesAndReactions(t *testing.T) {
	h := newTestHandler(t, nil)

	rec := do(t, h, call{method: http.MethodGet, path: "/api/games?category=puzzle"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"tetris"`) || strings.Contains(rec.Body.String(), `"snake"`) {
		t.Errorf("unexpected games: %s", rec.Body.String())
	}
	rec = do(t, h, call{method: http.MethodGet, path: "/api/games?category=racing"})
	expectError(t, rec, http.StatusUnprocessableEntity, errorValidation)
	rec = do(t, h, call{method: http.MethodGet, path: "/api/games/chess"})
	expectError(t, rec, http.StatusNotFound, errorNotFound)

	auth := registerUser(t, h, "bob")
	rec = do(t, h, call{method: http.MethodPost, path: "/api/games/pacman/reactions", session: auth.SessionID, body: ReactionRequest{Kind: model.ReactionLike}})
	if rec.Code != http.StatusOK || decode[model.ReactionSummary](t, rec).Likes != 1 {
		t.Errorf("react failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, call{method: http.MethodGet, path: "/api/games/pacman", session: auth.SessionID})
	game := decode[GameResponse](t, rec)
	if game.Game.ID != "pacman" || game.Reactions.Mine != model.ReactionLike {
		t.Errorf("unexpected game: %+v", game)
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/achievements/ach1/unlock", session: auth.SessionID})
	if rec.Code != http.StatusOK || !decode[UnlockAchievementResponse](t, rec).Unlocked {
		t.Errorf("unlock failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, call{method: http.MethodPost, path: "/api/achievements/ach1/unlock", session: auth.SessionID})
	if decode[UnlockAchievementResponse](t, rec).Unlocked {
		t.Error("second unlock must report false")
	}
}

func TestAdminSeasons(t *testing.T) {
	h := newTestHandler(t, nil)
	body := CreateSeasonRequest{
		Name:      "Summer Cup",
		StartDate: time.Now().Add(-time.Hour).UTC(),
		EndDate:   time.Now().Add(24 * time.Hour).UTC(),
	}

	rec := do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons", body: body})
	expectError(t, rec, http.StatusUnauthorized, errorAdminUnauthorized)
	rec = do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons", body: body, apiKey: "wrong"})
	expectError(t, rec, http.StatusUnauthorized, errorAdminUnauthorized)

	rec = do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons", body: body, apiKey: testAdminKey})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	season := decode[model.Season](t, rec)
	if season.ID != "summer-cup" {
		t.Errorf("unexpected season id: %s", season.ID)
	}
	rec = do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons", body: body, apiKey: testAdminKey})
	expectError(t, rec, http.StatusConflict, errorConflict)

	rec = do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons/summer-cup/activate", apiKey: testAdminKey})
	if rec.Code != http.StatusOK || !decode[model.Season](t, rec).Active {
		t.Fatalf("activate failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, call{method: http.MethodGet, path: "/api/seasons/summer-cup"})
	if rec.Code != http.StatusOK || !decode[model.SeasonView](t, rec).Live {
		t.Errorf("active season must be live: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons/summer-cup/close", apiKey: testAdminKey})
	if rec.Code != http.StatusOK || !decode[model.Season](t, rec).Closed() {
		t.Fatalf("close failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons/summer-cup/close", apiKey: testAdminKey})
	expectError(t, rec, http.StatusConflict, errorConflict)

	rec = do(t, h, call{method: http.MethodPost, path: "/api/admin/seasons/missing/activate", apiKey: testAdminKey})
	expectError(t, rec, http.StatusNotFound, errorNotFound)

	rec = do(t, h, call{method: http.MethodGet, path: "/api/seasons"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"summer-cup"`) {
		t.Errorf("unexpected list: %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(t, nil)
	do(t, h, call{method: http.MethodGet, path: "/api/games"})
	do(t, h, call{method: http.MethodGet, path: "/api/games/tetris"})

	rec := do(t, h, call{method: http.MethodGet, path: "/metrics"})
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics failed: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`arcade_test_http_requests_total{method="GET",route="GET /api/games",status="200"} 1`,
		`arcade_test_http_requests_total{method="GET",route="GET /api/games/{gameId}",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("request metric missing %s:\n%s", want, body)
		}
	}
	if strings.Contains(body, `route="unmatched",status="200"`) {
		t.Errorf("matched routes must carry their pattern:\n%s", body)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := classify(c.err).status; got != c.status {
			t.Errorf("%v: expected %d, got %d", c.err, c.status, got)
		}
	}

	t.Run("submission id in details", func(t *testing.T) {
		err := aerrors.SubmissionError{
			SubmissionID: "sub-42",
			Err:          aerrors.DataSourceError{Operation: "session_set", Err: errors.New("timeout"), Retryable: true},
		}
		got := classify(err)
		if got.status != http.StatusServiceUnavailable || got.details["submissionId"] != "sub-42" {
			t.Errorf("unexpected mapping: %+v", got)
		}
	})
}
