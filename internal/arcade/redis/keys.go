// Package redis 는 arcade 세션 KV, 순위 스냅샷, 프로필 락의 Valkey 구현을 제공한다.
package redis

import (
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/valkeyx"
)

// sessionKey 는 세션 범위 KV 키를 생성한다.
// 형식: arcade:session:{sessionID}:{key}
func sessionKey(sessionID string, key string) string {
	return valkeyx.BuildKey(config.RedisKeySessionPrefix, sessionID, key)
}

// snapshotKey 는 리더보드 뷰별 순위 스냅샷 키를 생성한다.
// 형식: arcade:rank-snapshot:{viewKey}
func snapshotKey(viewKey string) string {
	return valkeyx.BuildKey(config.RedisKeySnapshotPrefix, viewKey)
}

// profileLockKey 는 세션 프로필 쓰기 락 키를 생성한다.
// 형식: arcade:lock:profile:{sessionID}
func profileLockKey(sessionID string) string {
	return valkeyx.BuildKey(config.RedisKeyLockPrefix, sessionID)
}
