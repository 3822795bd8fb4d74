package service

import (
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
)

func TestSubmissionLimiter(t *testing.T) {
	t.Run("unlimited", func(t *testing.T) {
		l := NewSubmissionLimiter(config.SubmissionConfig{})
		for i := 0; i < 100; i++ {
			if !l.Allow("s1") {
				t.Fatal("unlimited limiter must allow")
			}
		}
		var nilLimiter *SubmissionLimiter
		if !nilLimiter.Allow("s1") {
			t.Error("nil limiter must allow")
		}
	})

	t.Run("per session bucket", func(t *testing.T) {
		l := NewSubmissionLimiter(config.SubmissionConfig{RatePerSecond: 1, Burst: 2})
		now := time.Unix(1000, 0)
		l.now = func() time.Time { return now }

		if !l.Allow("s1") || !l.Allow("s1") {
			t.Fatal("burst must be allowed")
		}
		if l.Allow("s1") {
			t.Error("third request must be limited")
		}
		if !l.Allow("s2") {
			t.Error("other session has its own bucket")
		}
		now = now.Add(time.Second)
		if !l.Allow("s1") {
			t.Error("token must refill")
		}
	})

	t.Run("idle sweep", func(t *testing.T) {
		l := NewSubmissionLimiter(config.SubmissionConfig{RatePerSecond: 1, Burst: 1})
		now := time.Unix(1000, 0)
		l.now = func() time.Time { return now }

		l.Allow("old")
		now = now.Add(time.Hour)
		l.Allow("new")
		if _, ok := l.limiters["old"]; ok {
			t.Error("idle limiter must be swept")
		}
		if len(l.limiters) != 1 {
			t.Errorf("expected 1 limiter, got %d", len(l.limiters))
		}
	})
}
