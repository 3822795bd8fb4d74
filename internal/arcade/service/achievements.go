package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

var errAchievementOwned = errors.New("achievement already unlocked")

// AchievementService: 세션 프로필 업적 해제
type AchievementService struct {
	catalog  *catalog.Catalog
	sessions *SessionService
	logger   *slog.Logger
	now      func() time.Time
}

// NewAchievementService: 새 AchievementService 를 생성합니다.
func NewAchievementService(cat *catalog.Catalog, sessions *SessionService, logger *slog.Logger) *AchievementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AchievementService{catalog: cat, sessions: sessions, logger: logger, now: time.Now}
}

// UnlockAchievement: 업적을 해제한다. 이미 보유 중이면 아무것도 쓰지 않고 false.
func (s *AchievementService) UnlockAchievement(ctx context.Context, sessionID string, achievementID string) (bool, error) {
	def, ok := s.catalog.Achievement(strings.TrimSpace(achievementID))
	if !ok {
		return false, aerrors.Validation("achievementId", "unknown achievement %q", achievementID)
	}

	user, err := s.sessions.Mutate(ctx, sessionID, "unlock_achievement", func(_ context.Context, user *model.User) error {
		if user.HasAchievement(def.ID) {
			return errAchievementOwned
		}
		user.Achievements = append(user.Achievements, model.Achievement{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Icon:        def.Icon,
			Points:      def.Points,
			GameID:      def.GameID,
			UnlockedAt:  s.now().UTC(),
		})
		user.Stats.AchievementsUnlocked++
		return nil
	})
	if errors.Is(err, errAchievementOwned) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Info("achievement_unlocked", "user_id", user.ID, "achievement_id", def.ID)
	return true, nil
}
