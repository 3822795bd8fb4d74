package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

// SetReaction: 반응을 토글한다. 같은 종류를 다시 누르면 해제, 다른 종류면 교체.
// 적용 후 플레이어의 현재 반응을 반환한다. (해제 시 빈 값)
func (r *Repository) SetReaction(ctx context.Context, playerID string, gameID string, kind model.ReactionKind, at time.Time) (model.ReactionKind, error) {
	if err := r.ready(); err != nil {
		return "", err
	}

	var mine model.ReactionKind
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ReactionEntity
		err := tx.Where("player_id = ? AND game_id = ?", playerID, gameID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			mine = kind
			return tx.Create(&ReactionEntity{
				PlayerID:  playerID,
				GameID:    gameID,
				Kind:      string(kind),
				UpdatedAt: at.UTC(),
			}).Error
		case err != nil:
			return err
		case existing.Kind == string(kind):
			mine = ""
			return tx.Delete(&ReactionEntity{}, existing.ID).Error
		default:
			mine = kind
			return tx.Model(&ReactionEntity{}).Where("id = ?", existing.ID).Updates(map[string]any{
				"kind":       string(kind),
				"updated_at": at.UTC(),
			}).Error
		}
	})
	if err != nil {
		return "", dbError("set_reaction", err)
	}
	return mine, nil
}

// CountReactions: 게임의 좋아요/싫어요 수
func (r *Repository) CountReactions(ctx context.Context, gameID string) (likes int64, dislikes int64, err error) {
	if err := r.ready(); err != nil {
		return 0, 0, err
	}

	var rows []struct {
		Kind  string
		Total int64
	}
	if err := r.db.WithContext(ctx).
		Model(&ReactionEntity{}).
		Select("kind, COUNT(*) AS total").
		Where("game_id = ?", gameID).
		Group("kind").
		Scan(&rows).Error; err != nil {
		return 0, 0, dbError("count_reactions", err)
	}
	for _, row := range rows {
		switch model.ReactionKind(row.Kind) {
		case model.ReactionLike:
			likes = row.Total
		case model.ReactionDislike:
			dislikes = row.Total
		}
	}
	return likes, dislikes, nil
}

// PlayerReaction: 플레이어의 현재 반응. 없으면 빈 값.
func (r *Repository) PlayerReaction(ctx context.Context, playerID string, gameID string) (model.ReactionKind, error) {
	if err := r.ready(); err != nil {
		return "", err
	}
	var row ReactionEntity
	err := r.db.WithContext(ctx).Where("player_id = ? AND game_id = ?", playerID, gameID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", dbError("player_reaction", err)
	}
	return model.ReactionKind(row.Kind), nil
}
