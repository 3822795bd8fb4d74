// Package httpapi 는 arcade HTTP JSON API 라우트를 등록한다.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/service"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/httpserver"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/httputil"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/metrics"
)

// Deps: 핸들러 의존성
type Deps struct {
	Catalog      *catalog.Catalog
	Sessions     *service.SessionService
	Leaderboard  *service.LeaderboardService
	History      *service.HistoryService
	Rewards      *service.RewardService
	Submissions  *service.SubmissionService
	Achievements *service.AchievementService
	Stats        *service.StatsService
	Seasons      *service.SeasonService
	Reactions    *service.ReactionService
	Metrics      *metrics.Metrics
	Checks       map[string]health.Checker
	AdminAPIKey  string
	// RequestTimeout: 요청마다 적용되는 저장소 호출 제한 시간 (0 이면 미적용)
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewHandler: 라우트를 등록하고 metrics/timeout 미들웨어를 적용한 핸들러를 반환합니다.
func NewHandler(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	mux := http.NewServeMux()
	Register(mux, deps)
	RegisterAdminRoutes(mux, deps)
	// metrics 는 ServeMux 가 패턴을 기록하는 요청을 그대로 받아야 하므로 가장 안쪽에 둔다
	return httpserver.Chain(mux, withTimeout(deps.RequestTimeout), deps.Metrics.Middleware)
}

func withTimeout(timeout time.Duration) httpserver.Middleware {
	if timeout <= 0 {
		return nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(httputil.HeaderSessionID))
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	_ = httputil.WriteJSON(w, status, v)
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
