package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
)

// 시즌 상태 관련 sentinel 에러
var (
	ErrSeasonNotFound     = errors.New("season not found")
	ErrSeasonExists       = errors.New("season already exists")
	ErrSeasonClosed       = errors.New("season already closed")
	ErrSeasonActiveExists = errors.New("another season is active")
)

// Repository: DB 접근을 위한 GORM 기반 리포지토리
// 메서드들은 도메인별 파일로 분리됨:
//   - scores.go: 점수 기록 추가/조회
//   - rewards.go: 보상 해제 기록
//   - seasons.go: 시즌/스냅샷
//   - reactions.go: 게임 반응
type Repository struct {
	db *gorm.DB
}

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AutoMigrate: 자동으로 DB 테이블 스키마를 마이그레이션한다.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).AutoMigrate(
		&ScoreEntity{},
		&RewardUnlock{},
		&SeasonEntity{},
		&SeasonSnapshotEntry{},
		&ReactionEntity{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Ping: DB 연결 상태를 점검한다.
func (r *Repository) Ping(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db failed: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError("ping", err)
	}
	return nil
}

func (r *Repository) ready() error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	return nil
}

func dbError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.DatabaseError{Operation: operation, Err: err}
}
