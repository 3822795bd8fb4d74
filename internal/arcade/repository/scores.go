package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

// ScoreFilter: 점수 조회 필터. 빈 값은 조건 없음.
type ScoreFilter struct {
	GameID   string
	Category string
	PlayerID string
	Since    time.Time
	Until    time.Time
}

// InsertScore: 점수 기록을 추가한다. SubmissionID 가 이미 있으면 기존 기록을 반환하고 created=false.
func (r *Repository) InsertScore(ctx context.Context, rec model.ScoreRecord) (model.ScoreRecord, bool, error) {
	if err := r.ready(); err != nil {
		return model.ScoreRecord{}, false, err
	}

	rec.SubmissionID = strings.TrimSpace(rec.SubmissionID)
	if rec.ID == "" || rec.SubmissionID == "" {
		return model.ScoreRecord{}, false, fmt.Errorf("record id and submission id are required")
	}

	entity := ScoreEntity{
		ID:           rec.ID,
		SubmissionID: rec.SubmissionID,
		PlayerID:     rec.PlayerID,
		PlayerName:   rec.PlayerName,
		PlayerAvatar: rec.PlayerAvatar,
		GameID:       rec.GameID,
		GameName:     rec.GameName,
		Category:     rec.Category,
		Score:        rec.Score,
		PlayedAt:     rec.Date.UTC(),
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "submission_id"}},
		DoNothing: true,
	}).Create(&entity)
	if res.Error != nil {
		return model.ScoreRecord{}, false, dbError("insert_score", res.Error)
	}
	if res.RowsAffected > 0 {
		return toScoreRecord(entity), true, nil
	}

	var existing ScoreEntity
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", rec.SubmissionID).
		Take(&existing).Error; err != nil {
		return model.ScoreRecord{}, false, dbError("reload_score", err)
	}
	return toScoreRecord(existing), false, nil
}

// ListScores: 필터에 맞는 기록을 순위 순서(score desc, played_at, seq)로 반환한다.
func (r *Repository) ListScores(ctx context.Context, f ScoreFilter) ([]model.ScoreRecord, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	var rows []ScoreEntity
	err := applyScoreFilter(r.db.WithContext(ctx), f).
		Order("score DESC").
		Order("played_at ASC").
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, dbError("list_scores", err)
	}
	return toScoreRecords(rows), nil
}

// PlayerScores: 플레이어 기록을 시간순(played_at, seq)으로 반환한다. gameID 가 비어있으면 전체.
func (r *Repository) PlayerScores(ctx context.Context, playerID string, gameID string) ([]model.ScoreRecord, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}

	var rows []ScoreEntity
	err := applyScoreFilter(r.db.WithContext(ctx), ScoreFilter{PlayerID: playerID, GameID: gameID}).
		Order("played_at ASC").
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, dbError("player_scores", err)
	}
	return toScoreRecords(rows), nil
}

// ScoreBySubmission: SubmissionID 로 기록을 조회한다. 없으면 ok=false.
func (r *Repository) ScoreBySubmission(ctx context.Context, submissionID string) (model.ScoreRecord, bool, error) {
	if err := r.ready(); err != nil {
		return model.ScoreRecord{}, false, err
	}
	var row ScoreEntity
	err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ScoreRecord{}, false, nil
	}
	if err != nil {
		return model.ScoreRecord{}, false, dbError("score_by_submission", err)
	}
	return toScoreRecord(row), true, nil
}

func applyScoreFilter(q *gorm.DB, f ScoreFilter) *gorm.DB {
	q = q.Model(&ScoreEntity{})
	if f.GameID != "" {
		q = q.Where("game_id = ?", f.GameID)
	}
	if f.Category != "" && f.Category != model.CategoryAll {
		q = q.Where("category = ?", f.Category)
	}
	if f.PlayerID != "" {
		q = q.Where("player_id = ?", f.PlayerID)
	}
	if !f.Since.IsZero() {
		q = q.Where("played_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		q = q.Where("played_at <= ?", f.Until.UTC())
	}
	return q
}

func toScoreRecord(e ScoreEntity) model.ScoreRecord {
	return model.ScoreRecord{
		ID:           e.ID,
		PlayerID:     e.PlayerID,
		PlayerName:   e.PlayerName,
		PlayerAvatar: e.PlayerAvatar,
		GameID:       e.GameID,
		GameName:     e.GameName,
		Category:     e.Category,
		Score:        e.Score,
		Date:         e.PlayedAt.UTC(),
		SubmissionID: e.SubmissionID,
		Seq:          e.Seq,
	}
}

func toScoreRecords(rows []ScoreEntity) []model.ScoreRecord {
	out := make([]model.ScoreRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toScoreRecord(row))
	}
	return out
}
