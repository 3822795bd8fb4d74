package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/retry"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/telemetry"
)

// DataSource: 저장소 호출에 재시도 정책, span, DataSourceError 변환을 적용한다.
type DataSource struct {
	policy retry.Policy
	logger *slog.Logger
}

// NewDataSource: 새 DataSource 를 생성합니다.
func NewDataSource(policy retry.Policy, logger *slog.Logger) *DataSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataSource{policy: policy, logger: logger}
}

// call: fn 을 재시도 정책으로 실행한다.
// 저장소 상태 에러(시즌 충돌 등)는 재시도하지 않고 그대로 반환하며, 그 외 실패는 DataSourceError 로 감싼다.
func call[T any](ctx context.Context, ds *DataSource, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := telemetry.StartSpan(ctx, "arcade."+op, attribute.String("arcade.operation", op))

	result, err := retry.Do(ctx, ds.policy, ds.logger, op, func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		if err != nil && !isTransient(err) {
			return v, retry.Permanent(err)
		}
		return v, err
	})
	if err != nil && !isStateError(err) {
		err = aerrors.WrapDataSource(op, err)
	}

	telemetry.EndSpan(span, err)
	return result, err
}

func callErr(ctx context.Context, ds *DataSource, op string, fn func(ctx context.Context) error) error {
	_, err := call(ctx, ds, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func isStateError(err error) bool {
	return errors.Is(err, repository.ErrSeasonNotFound) ||
		errors.Is(err, repository.ErrSeasonExists) ||
		errors.Is(err, repository.ErrSeasonClosed) ||
		errors.Is(err, repository.ErrSeasonActiveExists)
}

func isTransient(err error) bool {
	if isStateError(err) || errors.Is(err, context.Canceled) {
		return false
	}
	var ds aerrors.DataSourceError
	if errors.As(err, &ds) {
		return ds.Retryable
	}
	return true
}
