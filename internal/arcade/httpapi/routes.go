package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/service"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/httputil"
)

type (
	// AuthResponse: 가입/로그인 응답 DTO. 이후 요청은 SessionID 를 X-Session-Id 로 보낸다.
	AuthResponse struct {
		SessionID string      `json:"sessionId"`
		User      *model.User `json:"user"`
	}

	// GameResponse: 게임 상세 + 반응 집계
	GameResponse struct {
		Game      model.Game            `json:"game"`
		Reactions model.ReactionSummary `json:"reactions"`
	}

	// LeaderboardResponse: 리더보드 조회 응답 DTO
	LeaderboardResponse struct {
		TimeRange model.TimeRange     `json:"timeRange"`
		Entries   []model.ScoreRecord `json:"entries"`
	}

	// ReactionRequest: 반응 요청 DTO (like | dislike)
	ReactionRequest struct {
		Kind model.ReactionKind `json:"kind"`
	}

	// UnlockAchievementResponse: 업적 해제 결과. 이미 보유 중이면 Unlocked=false.
	UnlockAchievementResponse struct {
		AchievementID string `json:"achievementId"`
		Unlocked      bool   `json:"unlocked"`
	}

	// CheckRewardsResponse: 이번 확인으로 새로 해제된 보상
	CheckRewardsResponse struct {
		NewRewards []model.Reward `json:"newRewards"`
		User       *model.User    `json:"user"`
	}
)

// Register: 공개 API 라우트 등록.
func Register(mux *http.ServeMux, deps Deps) {
	h := &handlers{Deps: deps}

	// GET /health - 헬스체크 (DB/Valkey 점검 포함)
	mux.HandleFunc("GET /health", h.health)
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	mux.HandleFunc("GET /api/games", h.listGames)
	mux.HandleFunc("GET /api/games/{gameId}", h.getGame)
	mux.HandleFunc("POST /api/games/{gameId}/reactions", h.react)

	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/logout", h.logout)
	mux.HandleFunc("GET /api/auth/me", h.me)

	mux.HandleFunc("GET /api/leaderboard", h.leaderboard)
	mux.HandleFunc("GET /api/leaderboard/categories", h.categoryLeaderboards)

	mux.HandleFunc("GET /api/players/{playerId}/history", h.playerHistory)
	mux.HandleFunc("GET /api/players/{playerId}/stats", h.playerStats)
	mux.HandleFunc("GET /api/players/{playerId}/rewards", h.playerRewards)

	mux.HandleFunc("POST /api/rewards/check", h.checkRewards)
	mux.HandleFunc("POST /api/scores", h.submitScore)
	mux.HandleFunc("POST /api/achievements/{achievementId}/unlock", h.unlockAchievement)

	mux.HandleFunc("GET /api/seasons", h.listSeasons)
	mux.HandleFunc("GET /api/seasons/{seasonId}", h.getSeason)

	deps.Logger.Info("arcade_http_api_registered")
}

type handlers struct {
	Deps
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	resp := health.Check(r.Context(), h.Checks)
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

func (h *handlers) listGames(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	games, ok := h.Catalog.Games(category)
	if !ok {
		respondError(w, h.Logger, "LIST_GAMES_FAILED", aerrors.Validation("category", "unknown category %q", category))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (h *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	game, ok := h.Catalog.Game(gameID)
	if !ok {
		respondError(w, h.Logger, "GET_GAME_FAILED", aerrors.NotFoundError{Kind: "game", ID: gameID})
		return
	}

	// 로그인 세션이면 내 반응도 함께 내려준다
	var playerID string
	if user, err := h.Sessions.Hydrate(r.Context(), sessionID(r)); err == nil && user != nil {
		playerID = user.ID
	}
	summary, err := h.Reactions.Summary(r.Context(), game.ID, playerID)
	if err != nil {
		respondError(w, h.Logger, "GET_GAME_FAILED", err, "gameId", game.ID)
		return
	}
	respondJSON(w, http.StatusOK, GameResponse{Game: game, Reactions: summary})
}

func (h *handlers) react(w http.ResponseWriter, r *http.Request) {
	var req ReactionRequest
	if err := httputil.ReadJSON(r, &req, config.MaxRequestBodyBytes); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	summary, err := h.Reactions.React(r.Context(), sessionID(r), r.PathValue("gameId"), req.Kind)
	if err != nil {
		respondError(w, h.Logger, "REACT_FAILED", err, "gameId", r.PathValue("gameId"))
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := httputil.ReadJSON(r, &req, config.MaxRequestBodyBytes); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	sid := sessionOrNew(r)
	start := time.Now()
	user, err := h.Sessions.Register(r.Context(), sid, req)
	if err != nil {
		respondError(w, h.Logger, "REGISTER_FAILED", err, "duration", elapsedMs(start))
		return
	}
	h.Logger.Info("REGISTER_SUCCESS", "userId", user.ID, "duration", elapsedMs(start))
	w.Header().Set(httputil.HeaderSessionID, sid)
	respondJSON(w, http.StatusCreated, AuthResponse{SessionID: sid, User: user})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if err := httputil.ReadJSON(r, &req, config.MaxRequestBodyBytes); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	sid := sessionOrNew(r)
	start := time.Now()
	user, err := h.Sessions.Login(r.Context(), sid, req)
	if err != nil {
		respondError(w, h.Logger, "LOGIN_FAILED", err, "duration", elapsedMs(start))
		return
	}
	h.Logger.Info("LOGIN_SUCCESS", "userId", user.ID, "duration", elapsedMs(start))
	w.Header().Set(httputil.HeaderSessionID, sid)
	respondJSON(w, http.StatusOK, AuthResponse{SessionID: sid, User: user})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context(), sessionID(r)); err != nil {
		respondError(w, h.Logger, "LOGOUT_FAILED", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Sessions.Current(r.Context(), sessionID(r))
	if err != nil {
		respondError(w, h.Logger, "ME_FAILED", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *handlers) leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := model.LeaderboardQuery{
		GameID:    q.Get("gameId"),
		Category:  q.Get("category"),
		TimeRange: model.TimeRange(q.Get("timeRange")),
	}
	entries, err := h.Leaderboard.GetLeaderboard(r.Context(), query)
	if err != nil {
		respondError(w, h.Logger, "LEADERBOARD_FAILED", err, "gameId", query.GameID, "category", query.Category)
		return
	}
	tr, _ := model.ParseTimeRange(string(query.TimeRange))
	respondJSON(w, http.StatusOK, LeaderboardResponse{TimeRange: tr, Entries: entries})
}

func (h *handlers) categoryLeaderboards(w http.ResponseWriter, r *http.Request) {
	tr := model.TimeRange(r.URL.Query().Get("timeRange"))
	boards, err := h.Leaderboard.CategoryLeaderboards(r.Context(), tr)
	if err != nil {
		respondError(w, h.Logger, "CATEGORY_LEADERBOARDS_FAILED", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": boards})
}

func (h *handlers) playerHistory(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("playerId")
	history, err := h.History.GetPlayerHistory(r.Context(), playerID, r.URL.Query().Get("gameId"))
	if err != nil {
		respondError(w, h.Logger, "PLAYER_HISTORY_FAILED", err, "playerId", playerID)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (h *handlers) playerStats(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("playerId")
	start := time.Now()
	stats, err := h.Stats.GetPlayerStats(r.Context(), playerID)
	if err != nil {
		respondError(w, h.Logger, "PLAYER_STATS_FAILED", err, "playerId", playerID, "duration", elapsedMs(start))
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *handlers) playerRewards(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("playerId")
	rewards, err := h.Rewards.PlayerRewards(r.Context(), playerID)
	if err != nil {
		respondError(w, h.Logger, "PLAYER_REWARDS_FAILED", err, "playerId", playerID)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
}

// checkRewards: 세션 플레이어의 보상을 확인하고 해제된 보상을 프로필에 병합한다.
func (h *handlers) checkRewards(w http.ResponseWriter, r *http.Request) {
	var newRewards []model.Reward
	user, err := h.Sessions.Mutate(r.Context(), sessionID(r), "check_rewards", func(ctx context.Context, user *model.User) error {
		var err error
		newRewards, err = h.Rewards.CheckRewards(ctx, user.ID)
		if err != nil {
			return err
		}
		unlocked, err := h.Rewards.UnlockedRewards(ctx, user.ID)
		if err != nil {
			return err
		}
		user.MergeRewards(unlocked)
		return nil
	})
	if err != nil {
		respondError(w, h.Logger, "CHECK_REWARDS_FAILED", err)
		return
	}
	respondJSON(w, http.StatusOK, CheckRewardsResponse{NewRewards: newRewards, User: user})
}

func (h *handlers) submitScore(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitScoreInput
	if err := httputil.ReadJSON(r, &req, config.MaxRequestBodyBytes); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	sid := sessionID(r)
	h.Logger.Info("SUBMIT_SCORE_REQUEST", "gameId", req.GameID, "score", req.Score)

	start := time.Now()
	res, err := h.Submissions.SubmitScore(r.Context(), sid, req)
	if err != nil {
		respondError(w, h.Logger, "SUBMIT_SCORE_FAILED", err, "gameId", req.GameID, "duration", elapsedMs(start))
		return
	}
	h.Logger.Info("SUBMIT_SCORE_SUCCESS",
		"gameId", req.GameID,
		"recordId", res.Record.ID,
		"duplicate", res.Duplicate,
		"duration", elapsedMs(start),
	)
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	respondJSON(w, status, res)
}

func (h *handlers) unlockAchievement(w http.ResponseWriter, r *http.Request) {
	achievementID := r.PathValue("achievementId")
	unlocked, err := h.Achievements.UnlockAchievement(r.Context(), sessionID(r), achievementID)
	if err != nil {
		respondError(w, h.Logger, "UNLOCK_ACHIEVEMENT_FAILED", err, "achievementId", achievementID)
		return
	}
	respondJSON(w, http.StatusOK, UnlockAchievementResponse{AchievementID: achievementID, Unlocked: unlocked})
}

func (h *handlers) listSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.Seasons.List(r.Context())
	if err != nil {
		respondError(w, h.Logger, "LIST_SEASONS_FAILED", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"seasons": seasons})
}

func (h *handlers) getSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := r.PathValue("seasonId")
	view, err := h.Seasons.Get(r.Context(), seasonID)
	if err != nil {
		respondError(w, h.Logger, "GET_SEASON_FAILED", err, "seasonId", seasonID)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// sessionOrNew: 세션 헤더가 없으면 새 세션 ID 를 발급한다.
func sessionOrNew(r *http.Request) string {
	if sid := sessionID(r); sid != "" {
		return sid
	}
	return uuid.NewString()
}
