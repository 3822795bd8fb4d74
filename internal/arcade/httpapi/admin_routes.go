package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/httputil"
)

// CreateSeasonRequest: 시즌 생성 요청 DTO
type CreateSeasonRequest struct {
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// RegisterAdminRoutes: 시즌 관리 API 라우트 등록. 모든 요청은 X-API-Key 가 필요하다.
func RegisterAdminRoutes(mux *http.ServeMux, deps Deps) {
	h := &handlers{Deps: deps}
	mux.Handle("POST /api/admin/seasons", h.requireAdmin(h.adminCreateSeason))
	mux.Handle("POST /api/admin/seasons/{seasonId}/activate", h.requireAdmin(h.adminActivateSeason))
	mux.Handle("POST /api/admin/seasons/{seasonId}/close", h.requireAdmin(h.adminCloseSeason))

	deps.Logger.Info("arcade_admin_api_registered", "routes", 3, "enabled", deps.AdminAPIKey != "")
}

// requireAdmin: API 키가 설정되지 않았으면 관리자 API 는 항상 거부된다.
func (h *handlers) requireAdmin(next http.HandlerFunc) http.Handler {
	want := []byte(h.AdminAPIKey)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := []byte(strings.TrimSpace(r.Header.Get(httputil.HeaderAPIKey)))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			h.Logger.Warn("ADMIN_UNAUTHORIZED", "path", r.URL.Path)
			_ = httputil.WriteErrorJSON(w, http.StatusUnauthorized, errorAdminUnauthorized, "invalid api key")
			return
		}
		next(w, r)
	})
}

func (h *handlers) adminCreateSeason(w http.ResponseWriter, r *http.Request) {
	var req CreateSeasonRequest
	if err := httputil.ReadJSON(r, &req, config.MaxRequestBodyBytes); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	season, err := h.Seasons.Create(r.Context(), req.Name, req.StartDate, req.EndDate)
	if err != nil {
		respondError(w, h.Logger, "ADMIN_CREATE_SEASON_FAILED", err, "name", req.Name)
		return
	}
	h.Logger.Info("ADMIN_CREATE_SEASON_SUCCESS", "seasonId", season.ID)
	respondJSON(w, http.StatusCreated, season)
}

func (h *handlers) adminActivateSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := r.PathValue("seasonId")
	season, err := h.Seasons.Activate(r.Context(), seasonID)
	if err != nil {
		respondError(w, h.Logger, "ADMIN_ACTIVATE_SEASON_FAILED", err, "seasonId", seasonID)
		return
	}
	respondJSON(w, http.StatusOK, season)
}

func (h *handlers) adminCloseSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := r.PathValue("seasonId")
	start := time.Now()
	season, err := h.Seasons.Close(r.Context(), seasonID)
	if err != nil {
		respondError(w, h.Logger, "ADMIN_CLOSE_SEASON_FAILED", err, "seasonId", seasonID, "duration", elapsedMs(start))
		return
	}
	h.Logger.Info("ADMIN_CLOSE_SEASON_SUCCESS", "seasonId", seasonID, "duration", elapsedMs(start))
	respondJSON(w, http.StatusOK, season)
}
