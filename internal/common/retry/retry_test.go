package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(retries int) Policy {
	return Policy{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		got, err := Do(ctx, fastPolicy(3), nil, "test", func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 || calls != 3 {
			t.Errorf("got=%d calls=%d", got, calls)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		_, err := Do(ctx, fastPolicy(2), nil, "test", func(context.Context) (int, error) {
			calls++
			return 0, boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if calls != 3 {
			t.Errorf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("permanent stops immediately", func(t *testing.T) {
		calls := 0
		fatal := errors.New("fatal")
		err := DoErr(ctx, fastPolicy(5), nil, "test", func(context.Context) error {
			calls++
			return Permanent(fatal)
		})
		if !errors.Is(err, fatal) {
			t.Fatalf("expected fatal, got %v", err)
		}
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
	})

	t.Run("per attempt timeout", func(t *testing.T) {
		p := fastPolicy(0)
		p.Timeout = 5 * time.Millisecond
		err := DoErr(ctx, p, nil, "test", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})
}
