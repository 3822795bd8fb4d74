package valkeyx

import (
	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
)

// WrapRedisError: Redis 관련 에러를 공통 타입으로 감싼다. nil 은 그대로 반환한다.
func WrapRedisError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.RedisError{Operation: operation, Err: err}
}
