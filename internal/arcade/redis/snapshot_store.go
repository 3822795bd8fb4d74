package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/jsonstore"
)

// RankSnapshot: 리더보드 뷰 하나의 순위 스냅샷 (recordID -> rank)
// Fingerprint 가 바뀌면 Current 가 Previous 로 회전한다.
type RankSnapshot struct {
	Fingerprint string         `json:"fingerprint"`
	Current     map[string]int `json:"current"`
	Previous    map[string]int `json:"previous"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// SnapshotStore: 뷰별 순위 스냅샷 저장소
type SnapshotStore struct {
	base   *jsonstore.Store[RankSnapshot]
	logger *slog.Logger
}

// NewSnapshotStore: 새 SnapshotStore 를 생성합니다.
func NewSnapshotStore(client valkey.Client, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		base: jsonstore.New[RankSnapshot](client, logger, jsonstore.Config{
			KeyFunc: snapshotKey,
			TTL:     time.Duration(config.RedisSnapshotTTLSeconds) * time.Second,
		}),
		logger: logger,
	}
}

// Load: 스냅샷 조회. 없거나 손상된 경우 nil 을 반환합니다. (손상된 값은 삭제)
func (s *SnapshotStore) Load(ctx context.Context, viewKey string) (*RankSnapshot, error) {
	snap, err := s.base.Load(ctx, viewKey)
	if err != nil {
		var malformed cerrors.MalformedInputError
		if errors.As(err, &malformed) {
			s.logger.Warn("rank_snapshot_dropped", "view", viewKey, "err", err)
			if delErr := s.base.Delete(ctx, viewKey); delErr != nil {
				return nil, fmt.Errorf("drop snapshot: %w", delErr)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Save: 스냅샷 저장
func (s *SnapshotStore) Save(ctx context.Context, viewKey string, snap RankSnapshot) error {
	if err := s.base.Save(ctx, viewKey, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
