// Package jsonstore 는 값을 JSON 으로 직렬화해 Valkey 에 보관하는 제네릭 저장소를 제공한다.
package jsonstore

import (
	"context"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/valkeyx"
)

// KeyFunc: 식별자로 Valkey 키를 생성하는 함수 타입입니다.
type KeyFunc func(id string) string

// Store: 키 프리픽스/TTL/데이터 타입만 주입해 재사용하는 JSON 저장소입니다.
type Store[T any] struct {
	client  valkey.Client
	logger  *slog.Logger
	keyFunc KeyFunc
	ttl     time.Duration
}

// Config: 저장소 생성 설정. TTL 이 0 이하이면 만료 없이 저장합니다.
type Config struct {
	KeyFunc KeyFunc
	TTL     time.Duration
}

// New: 새로운 제네릭 저장소 인스턴스를 생성합니다.
func New[T any](client valkey.Client, logger *slog.Logger, cfg Config) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store[T]{
		client:  client,
		logger:  logger,
		keyFunc: cfg.KeyFunc,
		ttl:     cfg.TTL,
	}
}

// Save: 값을 JSON으로 직렬화하여 저장합니다.
func (s *Store[T]) Save(ctx context.Context, id string, data T) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return cerrors.RedisError{Operation: "jsonstore_marshal", Err: err}
	}

	if err := valkeyx.SetStringEX(ctx, s.client, s.keyFunc(id), string(payload), s.ttl); err != nil {
		return cerrors.RedisError{Operation: "jsonstore_save", Err: err}
	}
	return nil
}

// Load: 저장된 값을 조회합니다. 없으면 (nil, nil) 입니다.
// 역직렬화에 실패하면 MalformedInputError 를 반환하며, 삭제 여부는 호출자가 결정합니다.
func (s *Store[T]) Load(ctx context.Context, id string) (*T, error) {
	raw, ok, err := valkeyx.GetBytes(ctx, s.client, s.keyFunc(id))
	if err != nil {
		return nil, cerrors.RedisError{Operation: "jsonstore_load", Err: err}
	}
	if !ok {
		return nil, nil
	}

	var data T
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("jsonstore_malformed_payload", "id", id, "err", err)
		return nil, cerrors.MalformedInputError{Message: "malformed stored payload: " + err.Error()}
	}
	return &data, nil
}

// Delete: 값을 삭제합니다.
func (s *Store[T]) Delete(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.keyFunc(id))
	}
	if err := valkeyx.DeleteKeys(ctx, s.client, keys...); err != nil {
		return cerrors.RedisError{Operation: "jsonstore_delete", Err: err}
	}
	return nil
}
