package service

import (
	"context"
	"errors"
	"testing"
	"time"

	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

const userKey = "arcade:session:s1:user"

func TestSession_Hydrate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		user, err := env.sessions.Hydrate(ctx, "s1")
		if err != nil || user != nil {
			t.Errorf("expected logged-out state, got %+v %v", user, err)
		}
		if user, err := env.sessions.Hydrate(ctx, ""); err != nil || user != nil {
			t.Errorf("empty session must be logged out, got %+v %v", user, err)
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		if err := env.mr.Set(userKey, "{broken"); err != nil {
			t.Fatal(err)
		}
		user, err := env.sessions.Hydrate(ctx, "s1")
		if err != nil || user != nil {
			t.Errorf("expected logged-out state, got %+v %v", user, err)
		}
		if env.mr.Exists(userKey) {
			t.Error("malformed payload should be removed")
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		env.mr.SetError("connection lost")
		defer env.mr.SetError("")
		_, err := env.sessions.Hydrate(ctx, "s1")
		var ds aerrors.DataSourceError
		if !errors.As(err, &ds) {
			t.Errorf("expected DataSourceError, got %v", err)
		}
	})
}

func TestSession_RegisterLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.sessions.Current(ctx, "s1"); !errors.As(err, new(aerrors.AuthRequiredError)) {
		t.Fatalf("expected AuthRequiredError, got %v", err)
	}

	user := env.register(t, "s1", "GameMaster")
	if user.ID == "" || user.DisplayName != "GameMaster" || user.Avatar != defaultAvatar || user.Stats.Level != 1 {
		t.Errorf("unexpected new user: %+v", user)
	}
	if !env.mr.Exists(userKey) {
		t.Fatal("expected user stored in session")
	}

	current, err := env.sessions.Current(ctx, "s1")
	if err != nil || current.ID != user.ID {
		t.Fatalf("unexpected current: %+v %v", current, err)
	}

	t.Run("login same email keeps profile", func(t *testing.T) {
		env.clock.Advance(time.Hour)
		again, err := env.sessions.Login(ctx, "s1", LoginInput{Email: "GAMEMASTER@example.com"})
		if err != nil {
			t.Fatal(err)
		}
		if again.ID != user.ID || !again.LastLogin.Equal(env.clock.Now()) {
			t.Errorf("expected refreshed profile, got %+v", again)
		}
	})

	t.Run("login other email creates profile", func(t *testing.T) {
		other, err := env.sessions.Login(ctx, "s1", LoginInput{Email: "other@example.com"})
		if err != nil {
			t.Fatal(err)
		}
		if other.ID == user.ID || other.Username != "other" {
			t.Errorf("expected new profile, got %+v", other)
		}
	})

	t.Run("logout", func(t *testing.T) {
		if err := env.sessions.Logout(ctx, "s1"); err != nil {
			t.Fatal(err)
		}
		if env.mr.Exists(userKey) {
			t.Error("expected user removed")
		}
	})

	t.Run("validation", func(t *testing.T) {
		_, err := env.sessions.Register(ctx, "s1", RegisterInput{Username: "x", Email: "not-an-email"})
		var verrs aerrors.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) != 2 {
			t.Errorf("expected 2 validation errors, got %v", err)
		}
	})
}

func TestSession_MutateFailureWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "s1", "player")
	before, _ := env.mr.Get(userKey)

	boom := errors.New("boom")
	_, err := env.sessions.Mutate(ctx, "s1", "test", func(_ context.Context, user *model.User) error {
		user.Stats.GamesPlayed = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	after, _ := env.mr.Get(userKey)
	if before != after {
		t.Error("session must not change when mutation fails")
	}

	if _, err := env.sessions.Mutate(ctx, "nobody", "test", func(context.Context, *model.User) error { return nil }); !errors.As(err, new(aerrors.AuthRequiredError)) {
		t.Errorf("expected AuthRequiredError, got %v", err)
	}
}
