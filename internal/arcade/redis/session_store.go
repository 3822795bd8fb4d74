package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/valkeyx"
)

// KeyValueStore: 세션 범위 문자열 KV 포트
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

// SessionStorage: 세션 ID 별 KeyValueStore 를 만들어 주는 Valkey 저장소
type SessionStorage struct {
	client valkey.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewSessionStorage: ttl 은 세션 키 만료 시간이며, 읽기/쓰기 시 갱신됩니다. 0 이하이면 만료 없음.
func NewSessionStorage(client valkey.Client, logger *slog.Logger, ttl time.Duration) *SessionStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStorage{client: client, logger: logger, ttl: ttl}
}

// For: 세션 ID 범위의 KV 를 반환합니다.
func (s *SessionStorage) For(sessionID string) KeyValueStore {
	return &sessionKV{storage: s, sessionID: strings.TrimSpace(sessionID)}
}

type sessionKV struct {
	storage   *SessionStorage
	sessionID string
}

var errEmptySessionID = errors.New("session id is empty")

func (kv *sessionKV) Get(ctx context.Context, key string) (string, bool, error) {
	if kv.sessionID == "" {
		return "", false, errEmptySessionID
	}
	client := kv.storage.client
	fullKey := sessionKey(kv.sessionID, key)

	if kv.storage.ttl <= 0 {
		raw, ok, err := valkeyx.GetBytes(ctx, client, fullKey)
		if err != nil {
			return "", false, valkeyx.WrapRedisError("session_get", err)
		}
		return string(raw), ok, nil
	}

	// 조회와 TTL 갱신을 한 번에 보낸다
	resps := client.DoMulti(ctx,
		client.B().Get().Key(fullKey).Build(),
		client.B().Expire().Key(fullKey).Seconds(int64(kv.storage.ttl/time.Second)).Build(),
	)
	value, err := resps[0].ToString()
	if err != nil {
		if valkeyx.IsNil(err) {
			return "", false, nil
		}
		return "", false, valkeyx.WrapRedisError("session_get", err)
	}
	if err := resps[1].Error(); err != nil {
		kv.storage.logger.Warn("session_ttl_refresh_failed", "session_id", kv.sessionID, "key", key, "err", err)
	}
	return value, true, nil
}

func (kv *sessionKV) Set(ctx context.Context, key string, value string) error {
	if kv.sessionID == "" {
		return errEmptySessionID
	}
	if err := valkeyx.SetStringEX(ctx, kv.storage.client, sessionKey(kv.sessionID, key), value, kv.storage.ttl); err != nil {
		return valkeyx.WrapRedisError("session_set", err)
	}
	return nil
}

func (kv *sessionKV) Remove(ctx context.Context, key string) error {
	if kv.sessionID == "" {
		return errEmptySessionID
	}
	if err := valkeyx.DeleteKeys(ctx, kv.storage.client, sessionKey(kv.sessionID, key)); err != nil {
		return valkeyx.WrapRedisError("session_remove", err)
	}
	return nil
}
