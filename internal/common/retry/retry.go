// Package retry 는 외부 의존성(DB, Valkey) 호출의 재시도 정책을 제공한다.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy: 재시도 정책
type Policy struct {
	MaxRetries int           // 첫 시도 이후 최대 재시도 횟수
	BaseDelay  time.Duration // 초기 대기 시간
	MaxDelay   time.Duration // 최대 대기 시간
	Timeout    time.Duration // 시도 1회당 타임아웃 (0이면 미적용)
}

// DefaultPolicy: 기본 정책 (3회 재시도, 50ms 부터 최대 1s)
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   time.Second,
	}
}

// Permanent: 재시도하지 않을 에러로 표시합니다.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		b.InitialInterval = p.BaseDelay
	}
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}
	// 횟수로만 제한
	b.MaxElapsedTime = 0

	var bo backoff.BackOff = b
	if p.MaxRetries >= 0 {
		bo = backoff.WithMaxRetries(bo, uint64(p.MaxRetries))
	}
	return backoff.WithContext(bo, ctx)
}

// Do: op 를 정책에 따라 재시도합니다. Permanent 로 감싼 에러는 즉시 반환됩니다.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, name string, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	operation := func() (T, error) {
		attempt++
		callCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}
		return op(callCtx)
	}

	notify := func(err error, delay time.Duration) {
		if logger == nil {
			return
		}
		logger.Warn("retry_scheduled",
			slog.String("operation", name),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.Any("error", err),
		)
	}

	result, err := backoff.RetryNotifyWithData(operation, p.backOff(ctx), notify)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		var zero T
		return zero, err
	}
	return result, nil
}

// DoErr: 결과 값이 없는 연산용 Do 입니다.
func DoErr(ctx context.Context, p Policy, logger *slog.Logger, name string, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, logger, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
