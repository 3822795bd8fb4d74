package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/metrics"
)

// 제출 결과 metrics label
const (
	submitOutcomeAccepted    = "accepted"
	submitOutcomeDuplicate   = "duplicate"
	submitOutcomeRejected    = "rejected"
	submitOutcomeRateLimited = "rate_limited"
	submitOutcomeFailed      = "failed"
)

// SubmitScoreInput: 점수 제출 입력
type SubmitScoreInput struct {
	GameID          string `json:"gameId" validate:"required,max=64"`
	Score           int64  `json:"score" validate:"gte=0"`
	DurationMinutes *int   `json:"durationMinutes,omitempty" validate:"omitempty,gte=0,lte=1440"`
	SubmissionID    string `json:"submissionId,omitempty" validate:"omitempty,max=128"`
}

// SubmissionResult: 저장된 기록, 이번 제출로 새로 해제된 보상, 갱신된 프로필
type SubmissionResult struct {
	Record     model.ScoreRecord `json:"record"`
	NewRewards []model.Reward    `json:"newRewards"`
	User       *model.User       `json:"user"`
	Duplicate  bool              `json:"duplicate"`
}

// SubmissionService: 점수 제출과 프로필 갱신
type SubmissionService struct {
	catalog        *catalog.Catalog
	sessions       *SessionService
	scores         ScoreStore
	rewards        *RewardService
	leaderboard    *LeaderboardService
	limiter        *SubmissionLimiter
	ds             *DataSource
	metrics        *metrics.Metrics
	logger         *slog.Logger
	defaultMinutes int
	now            func() time.Time
}

// NewSubmissionService: 새 SubmissionService 를 생성합니다.
func NewSubmissionService(
	cat *catalog.Catalog,
	sessions *SessionService,
	scores ScoreStore,
	rewards *RewardService,
	leaderboard *LeaderboardService,
	limiter *SubmissionLimiter,
	ds *DataSource,
	cfg config.SubmissionConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	minutes := cfg.DefaultSessionMinutes
	if minutes <= 0 {
		minutes = 10
	}
	return &SubmissionService{
		catalog:        cat,
		sessions:       sessions,
		scores:         scores,
		rewards:        rewards,
		leaderboard:    leaderboard,
		limiter:        limiter,
		ds:             ds,
		metrics:        m,
		logger:         logger,
		defaultMinutes: minutes,
		now:            time.Now,
	}
}

// SubmitScore: 점수를 기록하고 세션 프로필(통계, 최근 게임, 보상)을 갱신한다.
// 로그인되지 않은 세션은 AuthRequiredError 이며 기록도 남기지 않는다.
// 같은 SubmissionID 재시도는 기록을 중복 생성하지 않으며, 세션에 아직 반영되지 않은 제출만 통계에 반영한다.
// 실패 시 SubmissionError 로 재시도에 쓸 SubmissionID 를 돌려준다.
func (s *SubmissionService) SubmitScore(ctx context.Context, sessionID string, in SubmitScoreInput) (*SubmissionResult, error) {
	in.GameID = strings.TrimSpace(in.GameID)
	in.SubmissionID = strings.TrimSpace(in.SubmissionID)
	if err := validateInput(in); err != nil {
		s.metrics.ScoreSubmitted(submitOutcomeRejected)
		return nil, err
	}
	game, ok := s.catalog.Game(in.GameID)
	if !ok {
		s.metrics.ScoreSubmitted(submitOutcomeRejected)
		return nil, aerrors.Validation("gameId", "unknown game %q", in.GameID)
	}
	if !s.limiter.Allow(sessionID) {
		s.metrics.ScoreSubmitted(submitOutcomeRateLimited)
		return nil, aerrors.RateLimitedError{SessionID: sessionID}
	}

	minutes := s.defaultMinutes
	if in.DurationMinutes != nil {
		minutes = *in.DurationMinutes
	}
	submissionID := in.SubmissionID
	if submissionID == "" {
		submissionID = uuid.NewString()
	}

	result := &SubmissionResult{}
	user, err := s.sessions.Mutate(ctx, sessionID, "submit_score", func(ctx context.Context, user *model.User) error {
		now := s.now().UTC()
		rec := model.ScoreRecord{
			ID:           uuid.NewString(),
			SubmissionID: submissionID,
			PlayerID:     user.ID,
			PlayerName:   user.DisplayName,
			PlayerAvatar: user.Avatar,
			GameID:       game.ID,
			GameName:     game.Title,
			Category:     game.Category,
			Score:        in.Score,
			Date:         now,
		}

		stored, err := call(ctx, s.ds, "insert_score", func(ctx context.Context) (insertResult, error) {
			stored, created, err := s.scores.InsertScore(ctx, rec)
			return insertResult{record: stored, created: created}, err
		})
		if err != nil {
			return err
		}
		if stored.record.PlayerID != user.ID {
			return aerrors.Validation("submissionId", "already used by another player")
		}
		result.Record = stored.record
		result.Duplicate = !stored.created

		if stored.created {
			s.leaderboard.Invalidate()
		}
		// 이전 시도에서 기록만 저장되고 세션 저장이 실패했다면 여기서 반영한다
		if !user.HasAppliedSubmission(submissionID) {
			storedGame, ok := s.catalog.Game(stored.record.GameID)
			if !ok {
				storedGame = game
			}
			applyScore(user, storedGame, stored.record.Score, minutes, stored.record.Date)
			user.MarkSubmissionApplied(submissionID, config.MaxAppliedSubmissions)
		}

		if _, err := s.rewards.CheckRewards(ctx, user.ID); err != nil {
			return err
		}
		unlocked, err := s.rewards.UnlockedRewards(ctx, user.ID)
		if err != nil {
			return err
		}
		result.NewRewards = unmergedSince(user, unlocked, stored.record.Date)
		user.MergeRewards(unlocked)
		return nil
	})
	if err != nil {
		if aerrors.IsExpectedUserBehavior(err) {
			s.metrics.ScoreSubmitted(submitOutcomeRejected)
		} else {
			s.metrics.ScoreSubmitted(submitOutcomeFailed)
		}
		return nil, aerrors.SubmissionError{SubmissionID: submissionID, Err: err}
	}

	result.User = user
	if result.Duplicate {
		s.metrics.ScoreSubmitted(submitOutcomeDuplicate)
	} else {
		s.metrics.ScoreSubmitted(submitOutcomeAccepted)
	}
	s.logger.Info("score_submitted",
		"player_id", user.ID,
		"game_id", game.ID,
		"score", in.Score,
		"duplicate", result.Duplicate,
		"new_rewards", len(result.NewRewards),
	)
	return result, nil
}

type insertResult struct {
	record  model.ScoreRecord
	created bool
}

// unmergedSince: since 이후 해제되었지만 세션에 아직 없는 보상. 이번 제출(또는 실패한 이전 시도)로 해제된 보상이다.
func unmergedSince(user *model.User, unlocked []model.Reward, since time.Time) []model.Reward {
	cutoff := since.Truncate(time.Second)
	out := make([]model.Reward, 0)
	for _, r := range unlocked {
		if user.HasReward(r.ID) || r.UnlockedAt == nil || r.UnlockedAt.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// applyScore: 통계/경험치/레벨과 최근 게임을 갱신한다.
func applyScore(user *model.User, game model.Game, score int64, minutes int, at time.Time) {
	st := &user.Stats
	st.GamesPlayed++
	st.TotalPlaytime += minutes
	st.AverageScore += (float64(score) - st.AverageScore) / float64(st.GamesPlayed)
	st.Experience += score / config.ExperiencePerScore
	st.Level = 1 + int(st.Experience/config.ExperiencePerLevel)

	user.TouchRecentGame(game, score, minutes, at, config.MaxRecentGames)
}
