package jsonstore

import (
	"context"
	"errors"
	"testing"
	"time"

	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/testhelper"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore(t *testing.T) {
	client, mr := testhelper.NewMiniredisClient(t)
	store := New[payload](client, nil, Config{
		KeyFunc: func(id string) string { return "test:" + id },
		TTL:     time.Hour,
	})
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		got, err := store.Load(ctx, "nope")
		if err != nil || got != nil {
			t.Fatalf("expected nil,nil got %v,%v", got, err)
		}
	})

	t.Run("save load delete", func(t *testing.T) {
		if err := store.Save(ctx, "a", payload{Name: "x", Count: 3}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if ttl := mr.TTL("test:a"); ttl != time.Hour {
			t.Errorf("ttl = %v", ttl)
		}
		got, err := store.Load(ctx, "a")
		if err != nil || got == nil || got.Count != 3 {
			t.Fatalf("unexpected load: %+v %v", got, err)
		}
		if err := store.Delete(ctx, "a"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if mr.Exists("test:a") {
			t.Error("expected key removed")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if err := mr.Set("test:bad", "{not json"); err != nil {
			t.Fatal(err)
		}
		_, err := store.Load(ctx, "bad")
		var malformed cerrors.MalformedInputError
		if !errors.As(err, &malformed) {
			t.Errorf("expected MalformedInputError, got %v", err)
		}
	})
}
