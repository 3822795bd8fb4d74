// Package errors: 리더보드/보상/세션 도메인 에러 타입을 정의한다.
// 공통 에러 타입(RedisError, LockError 등)은 common/errors 패키지를 직접 사용한다.
package errors

import (
	"errors"
	"fmt"
	"strings"

	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
)

// AuthRequiredError: 로그인된 세션 없이 변경 작업을 호출했을 때 발생하는 에러
type AuthRequiredError struct {
	Operation string
}

func (e AuthRequiredError) Error() string {
	if e.Operation == "" {
		return "authentication required"
	}
	return fmt.Sprintf("authentication required operation=%s", e.Operation)
}

// ValidationError: 입력 필드 하나가 잘못되었을 때 발생하는 에러
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidationErrors: 여러 필드 검증 실패 묶음
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Error())
	}
	return strings.Join(parts, "; ")
}

// DataSourceError: 저장소 읽기/쓰기 실패. 재시도 가능한 경우 Retryable 이 true.
type DataSourceError struct {
	Operation string
	Err       error
	Retryable bool
}

func (e DataSourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("data source error operation=%s", e.Operation)
	}
	return fmt.Sprintf("data source error operation=%s: %v", e.Operation, e.Err)
}

func (e DataSourceError) Unwrap() error { return e.Err }

// NotFoundError: 조회 대상이 없을 때 발생하는 에러
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found id=%s", e.Kind, e.ID)
}

// SeasonConflictError: 활성 시즌 중복 또는 종료된 시즌 변경 시도
type SeasonConflictError struct {
	SeasonID string
	Reason   string
}

func (e SeasonConflictError) Error() string {
	return fmt.Sprintf("season conflict id=%s: %s", e.SeasonID, e.Reason)
}

// RateLimitedError: 세션별 제출 속도 제한 초과
type RateLimitedError struct {
	SessionID string
}

func (e RateLimitedError) Error() string { return "too many submissions" }

// SubmissionError: 제출 실패. 같은 SubmissionID 로 재시도하면 기록이 중복되지 않는다.
type SubmissionError struct {
	SubmissionID string
	Err          error
}

func (e SubmissionError) Error() string {
	return fmt.Sprintf("submission %s failed: %v", e.SubmissionID, e.Err)
}

func (e SubmissionError) Unwrap() error { return e.Err }

// Validation: 단일 필드 ValidationError 생성 헬퍼
func Validation(field, format string, args ...any) error {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// WrapDataSource: 인프라 에러를 DataSourceError 로 감싼다. 이미 도메인 에러면 그대로 둔다.
func WrapDataSource(operation string, err error) error {
	if err == nil {
		return nil
	}
	var ds DataSourceError
	if errors.As(err, &ds) {
		return err
	}
	return DataSourceError{Operation: operation, Err: err, Retryable: true}
}

var domainExpected = []func() any{
	func() any { return new(AuthRequiredError) },
	func() any { return new(ValidationError) },
	func() any { return new(ValidationErrors) },
	func() any { return new(NotFoundError) },
	func() any { return new(SeasonConflictError) },
	func() any { return new(RateLimitedError) },
}

// IsExpectedUserBehavior: WARN 레벨로 로깅할 사용자 측 에러인지 확인한다.
func IsExpectedUserBehavior(err error) bool {
	return cerrors.IsExpectedUserBehavior(err, domainExpected...)
}
