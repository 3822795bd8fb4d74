// Package service 는 리더보드, 보상, 세션 프로필, 시즌 도메인 로직을 제공한다.
package service

import (
	"context"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	aredis "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/redis"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
)

// ScoreStore: 점수 기록 저장소
type ScoreStore interface {
	InsertScore(ctx context.Context, rec model.ScoreRecord) (model.ScoreRecord, bool, error)
	ListScores(ctx context.Context, f repository.ScoreFilter) ([]model.ScoreRecord, error)
	PlayerScores(ctx context.Context, playerID string, gameID string) ([]model.ScoreRecord, error)
}

// RewardStore: 보상 해제 기록 저장소
type RewardStore interface {
	UnlockRewards(ctx context.Context, playerID string, rewardIDs []string, at time.Time) ([]string, error)
	PlayerUnlocks(ctx context.Context, playerID string) ([]repository.RewardUnlock, error)
}

// SeasonStore: 시즌/스냅샷 저장소
type SeasonStore interface {
	CreateSeason(ctx context.Context, season model.Season) error
	GetSeason(ctx context.Context, id string) (model.Season, error)
	ListSeasons(ctx context.Context) ([]model.Season, error)
	CountSeasons(ctx context.Context) (int64, error)
	ActiveSeason(ctx context.Context) (model.Season, bool, error)
	ActivateSeason(ctx context.Context, id string) (model.Season, error)
	CloseSeason(ctx context.Context, id string, closedAt time.Time, entries []repository.SeasonSnapshotEntry) (model.Season, error)
	SnapshotEntries(ctx context.Context, seasonID string) ([]repository.SeasonSnapshotEntry, error)
	PlayerSnapshotEntries(ctx context.Context, seasonID string, board string, playerID string) ([]repository.SeasonSnapshotEntry, error)
}

// ReactionStore: 게임 반응 저장소
type ReactionStore interface {
	SetReaction(ctx context.Context, playerID string, gameID string, kind model.ReactionKind, at time.Time) (model.ReactionKind, error)
	CountReactions(ctx context.Context, gameID string) (int64, int64, error)
	PlayerReaction(ctx context.Context, playerID string, gameID string) (model.ReactionKind, error)
}

// SnapshotStore: 리더보드 뷰별 순위 스냅샷 저장소
type SnapshotStore interface {
	Load(ctx context.Context, viewKey string) (*aredis.RankSnapshot, error)
	Save(ctx context.Context, viewKey string, snap aredis.RankSnapshot) error
}

// SessionStorage: 세션 ID 별 KV 를 제공한다.
type SessionStorage interface {
	For(sessionID string) aredis.KeyValueStore
}

// ProfileLocker: 세션 프로필 쓰기 직렬화
type ProfileLocker interface {
	WithLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error
}

var (
	_ ScoreStore     = (*repository.Repository)(nil)
	_ RewardStore    = (*repository.Repository)(nil)
	_ SeasonStore    = (*repository.Repository)(nil)
	_ ReactionStore  = (*repository.Repository)(nil)
	_ SnapshotStore  = (*aredis.SnapshotStore)(nil)
	_ SessionStorage = (*aredis.SessionStorage)(nil)
	_ ProfileLocker  = (*aredis.ProfileLock)(nil)
)
