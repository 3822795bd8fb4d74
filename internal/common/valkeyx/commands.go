package valkeyx

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// SetStringEX: 문자열 값을 TTL 과 함께 저장한다. ttl 이 0 이하이면 만료 없이 저장한다.
func SetStringEX(ctx context.Context, client valkey.Client, key string, value string, ttl time.Duration) error {
	var cmd valkey.Completed
	if ttl > 0 {
		cmd = client.B().Set().Key(key).Value(value).Ex(ttl).Build()
	} else {
		cmd = client.B().Set().Key(key).Value(value).Build()
	}
	if err := client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set %s failed: %w", key, err)
	}
	return nil
}

// GetBytes: 키의 값을 조회한다. 키가 없으면 ok=false 와 nil 에러를 반환한다.
func GetBytes(ctx context.Context, client valkey.Client, key string) ([]byte, bool, error) {
	raw, err := client.Do(ctx, client.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if IsNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s failed: %w", key, err)
	}
	return raw, true, nil
}

// DeleteKeys: 여러 키를 한 번에 삭제한다.
func DeleteKeys(ctx context.Context, client valkey.Client, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := client.Do(ctx, client.B().Del().Key(keys...).Build()).Error(); err != nil {
		return fmt.Errorf("del %d keys failed: %w", len(keys), err)
	}
	return nil
}
