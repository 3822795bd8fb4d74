package valkeyx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
)

func TestBuildKey(t *testing.T) {
	if got := BuildKey("arcade:session", " s1 ", "user"); got != "arcade:session:s1:user" {
		t.Errorf("unexpected key: %s", got)
	}
	if got := BuildKey("arcade"); got != "arcade" {
		t.Errorf("unexpected key: %s", got)
	}
}

func TestCommands(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(Config{Addr: mr.Addr(), DisableCache: true, ForceSingleClient: true})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := Ping(ctx, client); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	t.Run("get_missing", func(t *testing.T) {
		_, ok, err := GetBytes(ctx, client, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected ok=false")
		}
	})

	t.Run("set_get_delete", func(t *testing.T) {
		if err := SetStringEX(ctx, client, "k1", "v1", time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if ttl := mr.TTL("k1"); ttl != time.Minute {
			t.Errorf("expected ttl 1m, got %v", ttl)
		}

		raw, ok, err := GetBytes(ctx, client, "k1")
		if err != nil || !ok || string(raw) != "v1" {
			t.Fatalf("unexpected get result: %q %v %v", raw, ok, err)
		}

		if err := DeleteKeys(ctx, client, "k1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if mr.Exists("k1") {
			t.Error("expected key deleted")
		}
	})

	t.Run("no_ttl", func(t *testing.T) {
		if err := SetStringEX(ctx, client, "k2", "v2", 0); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		if ttl := mr.TTL("k2"); ttl != 0 {
			t.Errorf("expected no ttl, got %v", ttl)
		}
	})
}

func TestIsNilAndWrap(t *testing.T) {
	if IsNil(nil) {
		t.Error("nil error is not valkey nil")
	}
	if IsNil(errors.New("boom")) {
		t.Error("plain error is not valkey nil")
	}

	wrapped := WrapRedisError("op", fmt.Errorf("x"))
	var redisErr cerrors.RedisError
	if !errors.As(wrapped, &redisErr) || redisErr.Operation != "op" {
		t.Errorf("expected RedisError, got %v", wrapped)
	}
	if WrapRedisError("op", nil) != nil {
		t.Error("nil should stay nil")
	}
}
