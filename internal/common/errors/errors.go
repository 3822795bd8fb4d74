// Package errors: 서비스 전체에서 공용으로 사용되는 인프라스트럭처 에러 타입을 정의한다.
// 도메인 특화 에러(인증, 검증 등)는 각 도메인 패키지에서 정의한다.
package errors

import (
	"errors"
	"fmt"
)

// RedisError: Redis(Valkey) 작업을 수행하는 도중 발생한 에러
type RedisError struct {
	Operation string
	Err       error
}

func (e RedisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("redis error operation=%s", e.Operation)
	}
	return fmt.Sprintf("redis error operation=%s: %v", e.Operation, e.Err)
}

func (e RedisError) Unwrap() error { return e.Err }

// DatabaseError: 데이터베이스(PostgreSQL 등) 작업을 수행하는 도중 발생한 에러
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("db error operation=%s", e.Operation)
	}
	return fmt.Sprintf("db error operation=%s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error { return e.Err }

// LockError: 분산 락 획득 실패 등 락 관련 처리 중 발생하는 에러
type LockError struct {
	Key         string
	Description string
}

func (e LockError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = "failed to acquire lock"
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s key=%s", msg, e.Key)
	}
	return msg
}

// MalformedInputError: 입력 형식이 올바르지 않을 때 발생하는 에러
type MalformedInputError struct {
	Message string
}

func (e MalformedInputError) Error() string {
	if e.Message == "" {
		return "malformed input"
	}
	return e.Message
}

// expectedUserBehaviorTypes: 사용자의 정상적인 패턴 내 실수로 간주되는 에러 타입들
var expectedUserBehaviorTypes = []func() any{
	func() any { return new(MalformedInputError) },
	func() any { return new(LockError) },
}

// IsExpectedUserBehavior: 에러가 사용자의 정상적인(예상된) 패턴 내의 실수인지 확인한다.
// 로그 레벨을 낮추는 용도이며, 도메인 특화 에러는 extra 로 확장한다.
func IsExpectedUserBehavior(err error, extra ...func() any) bool {
	if err == nil {
		return false
	}
	for _, targetFn := range expectedUserBehaviorTypes {
		if errors.As(err, targetFn()) {
			return true
		}
	}
	for _, targetFn := range extra {
		if errors.As(err, targetFn()) {
			return true
		}
	}
	return false
}
