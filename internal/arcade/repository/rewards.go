package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnlockRewards: (player, reward) 해제 기록을 추가한다. 실제로 새로 추가된 rewardID 만 반환한다.
func (r *Repository) UnlockRewards(ctx context.Context, playerID string, rewardIDs []string, at time.Time) ([]string, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if playerID == "" || len(rewardIDs) == 0 {
		return nil, nil
	}

	inserted := make([]string, 0, len(rewardIDs))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rewardID := range rewardIDs {
			row := RewardUnlock{PlayerID: playerID, RewardID: rewardID, UnlockedAt: at.UTC()}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "player_id"}, {Name: "reward_id"}},
				DoNothing: true,
			}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				inserted = append(inserted, rewardID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, dbError("unlock_rewards", err)
	}
	return inserted, nil
}

// PlayerUnlocks: 플레이어의 보상 해제 기록 (해제 시각순)
func (r *Repository) PlayerUnlocks(ctx context.Context, playerID string) ([]RewardUnlock, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var rows []RewardUnlock
	if err := r.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("unlocked_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, dbError("player_unlocks", err)
	}
	return rows, nil
}
