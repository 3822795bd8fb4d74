package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

const snapshotBatchSize = 200

// CreateSeason: 시즌을 추가한다. 같은 ID 가 있으면 ErrSeasonExists.
func (r *Repository) CreateSeason(ctx context.Context, season model.Season) error {
	if err := r.ready(); err != nil {
		return err
	}
	entity := SeasonEntity{
		ID:        season.ID,
		Name:      season.Name,
		StartDate: season.StartDate.UTC(),
		EndDate:   season.EndDate.UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&SeasonEntity{}).Where("id = ?", season.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSeasonExists
		}
		return tx.Create(&entity).Error
	})
	if errors.Is(err, ErrSeasonExists) {
		return err
	}
	return dbError("create_season", err)
}

// GetSeason: 시즌 조회. 없으면 ErrSeasonNotFound.
func (r *Repository) GetSeason(ctx context.Context, id string) (model.Season, error) {
	if err := r.ready(); err != nil {
		return model.Season{}, err
	}
	var row SeasonEntity
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Season{}, ErrSeasonNotFound
	}
	if err != nil {
		return model.Season{}, dbError("get_season", err)
	}
	return toSeason(row), nil
}

// ListSeasons: 시작일 순 시즌 목록
func (r *Repository) ListSeasons(ctx context.Context) ([]model.Season, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []SeasonEntity
	if err := r.db.WithContext(ctx).Order("start_date ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError("list_seasons", err)
	}
	out := make([]model.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSeason(row))
	}
	return out, nil
}

// CountSeasons: 시즌 수
func (r *Repository) CountSeasons(ctx context.Context) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&SeasonEntity{}).Count(&count).Error; err != nil {
		return 0, dbError("count_seasons", err)
	}
	return count, nil
}

// ActiveSeason: 활성 시즌 조회. 없으면 ok=false.
func (r *Repository) ActiveSeason(ctx context.Context) (model.Season, bool, error) {
	if err := r.ready(); err != nil {
		return model.Season{}, false, err
	}
	var row SeasonEntity
	err := r.db.WithContext(ctx).Where("active = ?", true).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Season{}, false, nil
	}
	if err != nil {
		return model.Season{}, false, dbError("active_season", err)
	}
	return toSeason(row), true, nil
}

// ActivateSeason: 시즌을 활성화한다.
// 종료된 시즌이면 ErrSeasonClosed, 다른 활성 시즌이 있으면 ErrSeasonActiveExists. 이미 활성이면 no-op.
func (r *Repository) ActivateSeason(ctx context.Context, id string) (model.Season, error) {
	if err := r.ready(); err != nil {
		return model.Season{}, err
	}

	var activated SeasonEntity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&activated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeasonNotFound
			}
			return err
		}
		if activated.ClosedAt != nil {
			return ErrSeasonClosed
		}
		if activated.Active {
			return nil
		}

		var others int64
		if err := tx.Model(&SeasonEntity{}).
			Where("active = ? AND id <> ?", true, id).
			Count(&others).Error; err != nil {
			return err
		}
		if others > 0 {
			return ErrSeasonActiveExists
		}

		activated.Active = true
		return tx.Model(&SeasonEntity{}).Where("id = ?", id).Update("active", true).Error
	})
	if err != nil {
		if isSeasonStateError(err) {
			return model.Season{}, err
		}
		return model.Season{}, dbError("activate_season", err)
	}
	return toSeason(activated), nil
}

// CloseSeason: 스냅샷을 저장하고 시즌을 종료한다. (하나의 트랜잭션)
func (r *Repository) CloseSeason(ctx context.Context, id string, closedAt time.Time, entries []SeasonSnapshotEntry) (model.Season, error) {
	if err := r.ready(); err != nil {
		return model.Season{}, err
	}

	closedAt = closedAt.UTC()
	var closed SeasonEntity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&closed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSeasonNotFound
			}
			return err
		}
		if closed.ClosedAt != nil {
			return ErrSeasonClosed
		}

		for i := range entries {
			entries[i].ID = 0
			entries[i].SeasonID = id
			entries[i].PlayedAt = entries[i].PlayedAt.UTC()
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, snapshotBatchSize).Error; err != nil {
				return fmt.Errorf("insert snapshot failed: %w", err)
			}
		}

		closed.Active = false
		closed.ClosedAt = &closedAt
		return tx.Model(&SeasonEntity{}).Where("id = ?", id).Updates(map[string]any{
			"active":    false,
			"closed_at": closedAt,
		}).Error
	})
	if err != nil {
		if isSeasonStateError(err) {
			return model.Season{}, err
		}
		return model.Season{}, dbError("close_season", err)
	}
	return toSeason(closed), nil
}

// SnapshotEntries: 종료 시즌 스냅샷 (board, rank 순)
func (r *Repository) SnapshotEntries(ctx context.Context, seasonID string) ([]SeasonSnapshotEntry, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []SeasonSnapshotEntry
	if err := r.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("board ASC").
		Order("rank ASC").
		Find(&rows).Error; err != nil {
		return nil, dbError("snapshot_entries", err)
	}
	return rows, nil
}

// PlayerSnapshotEntries: 특정 보드에서 플레이어의 스냅샷 항목 (rank 순)
func (r *Repository) PlayerSnapshotEntries(ctx context.Context, seasonID string, board string, playerID string) ([]SeasonSnapshotEntry, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []SeasonSnapshotEntry
	if err := r.db.WithContext(ctx).
		Where("season_id = ? AND board = ? AND player_id = ?", seasonID, board, playerID).
		Order("rank ASC").
		Find(&rows).Error; err != nil {
		return nil, dbError("player_snapshot_entries", err)
	}
	return rows, nil
}

func isSeasonStateError(err error) bool {
	return errors.Is(err, ErrSeasonNotFound) ||
		errors.Is(err, ErrSeasonClosed) ||
		errors.Is(err, ErrSeasonActiveExists) ||
		errors.Is(err, ErrSeasonExists)
}

func toSeason(e SeasonEntity) model.Season {
	s := model.Season{
		ID:        e.ID,
		Name:      e.Name,
		StartDate: e.StartDate.UTC(),
		EndDate:   e.EndDate.UTC(),
		Active:    e.Active,
	}
	if e.ClosedAt != nil {
		t := e.ClosedAt.UTC()
		s.ClosedAt = &t
	}
	return s
}

// SnapshotRecord: 스냅샷 항목을 리더보드 항목으로 변환한다.
func SnapshotRecord(e SeasonSnapshotEntry) model.ScoreRecord {
	return model.ScoreRecord{
		ID:           e.RecordID,
		PlayerID:     e.PlayerID,
		PlayerName:   e.PlayerName,
		PlayerAvatar: e.PlayerAvatar,
		GameID:       e.GameID,
		GameName:     e.GameName,
		Category:     e.Category,
		Score:        e.Score,
		Date:         e.PlayedAt.UTC(),
		Rank:         e.Rank,
	}
}

// NewSnapshotEntry: 순위가 매겨진 리더보드 항목을 스냅샷 항목으로 변환한다.
func NewSnapshotEntry(board string, rec model.ScoreRecord) SeasonSnapshotEntry {
	return SeasonSnapshotEntry{
		Board:        board,
		Rank:         rec.Rank,
		RecordID:     rec.ID,
		PlayerID:     rec.PlayerID,
		PlayerName:   rec.PlayerName,
		PlayerAvatar: rec.PlayerAvatar,
		GameID:       rec.GameID,
		GameName:     rec.GameName,
		Category:     rec.Category,
		Score:        rec.Score,
		PlayedAt:     rec.Date.UTC(),
	}
}
