package service

import (
	"context"
	"errors"
	"testing"

	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
)

func TestUnlockAchievement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "s1", "player")

	unlocked, err := env.achievements.UnlockAchievement(ctx, "s1", "tetris-lines-100")
	if err != nil || !unlocked {
		t.Fatalf("expected unlock, got %v %v", unlocked, err)
	}
	user, _ := env.sessions.Current(ctx, "s1")
	if len(user.Achievements) != 1 || user.Achievements[0].Points != 25 || user.Achievements[0].GameID != "tetris" {
		t.Errorf("unexpected achievements: %+v", user.Achievements)
	}
	if !user.Achievements[0].UnlockedAt.Equal(env.clock.Now()) || user.Stats.AchievementsUnlocked != 1 {
		t.Errorf("unexpected unlock state: %+v", user)
	}

	t.Run("already owned", func(t *testing.T) {
		before, _ := env.mr.Get("arcade:session:s1:user")
		unlocked, err := env.achievements.UnlockAchievement(ctx, "s1", "tetris-lines-100")
		if err != nil || unlocked {
			t.Errorf("expected no-op, got %v %v", unlocked, err)
		}
		after, _ := env.mr.Get("arcade:session:s1:user")
		if before != after {
			t.Error("profile must not be rewritten")
		}
	})

	t.Run("unknown achievement", func(t *testing.T) {
		_, err := env.achievements.UnlockAchievement(ctx, "s1", "ach-missing")
		if !errors.As(err, new(aerrors.ValidationError)) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := env.achievements.UnlockAchievement(ctx, "anon", "ach1")
		if !errors.As(err, new(aerrors.AuthRequiredError)) {
			t.Errorf("expected AuthRequiredError, got %v", err)
		}
	})
}
