package repository

import "time"

// ScoreEntity: 점수 제출 기록
// 정렬 인덱스: idx_score_records_order (score desc, played_at, seq)
type ScoreEntity struct {
	Seq          int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID           string    `gorm:"column:id;not null;uniqueIndex"`
	SubmissionID string    `gorm:"column:submission_id;not null;uniqueIndex"`
	PlayerID     string    `gorm:"column:player_id;not null;index"`
	PlayerName   string    `gorm:"column:player_name;not null;default:''"`
	PlayerAvatar string    `gorm:"column:player_avatar;not null;default:''"`
	GameID       string    `gorm:"column:game_id;not null;index"`
	GameName     string    `gorm:"column:game_name;not null;default:''"`
	Category     string    `gorm:"column:category;not null;index"`
	Score        int64     `gorm:"column:score;not null;index:idx_score_records_order,priority:1,sort:desc"`
	PlayedAt     time.Time `gorm:"column:played_at;not null;index:idx_score_records_order,priority:2"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (ScoreEntity) TableName() string { return "score_records" }

// RewardUnlock: 플레이어별 보상 해제 기록 (한 번 해제되면 유지)
type RewardUnlock struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	PlayerID   string    `gorm:"column:player_id;not null;uniqueIndex:idx_reward_unlocks_player_reward"`
	RewardID   string    `gorm:"column:reward_id;not null;uniqueIndex:idx_reward_unlocks_player_reward"`
	UnlockedAt time.Time `gorm:"column:unlocked_at;not null"`
}

func (RewardUnlock) TableName() string { return "reward_unlocks" }

// SeasonEntity: 시즌
type SeasonEntity struct {
	ID        string     `gorm:"column:id;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	StartDate time.Time  `gorm:"column:start_date;not null;index"`
	EndDate   time.Time  `gorm:"column:end_date;not null"`
	Active    bool       `gorm:"column:active;not null;default:false;index"`
	ClosedAt  *time.Time `gorm:"column:closed_at"`
	CreatedAt time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (SeasonEntity) TableName() string { return "seasons" }

// SnapshotBoardGlobal: 시즌 스냅샷의 전체 보드 이름 (그 외는 카테고리 이름)
const SnapshotBoardGlobal = "__global__"

// SeasonSnapshotEntry: 종료된 시즌의 순위 스냅샷 한 줄
// 복합 인덱스: idx_season_snapshot_board (season_id, board, rank)
type SeasonSnapshotEntry struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	SeasonID     string    `gorm:"column:season_id;not null;index:idx_season_snapshot_board,priority:1"`
	Board        string    `gorm:"column:board;not null;index:idx_season_snapshot_board,priority:2"`
	Rank         int       `gorm:"column:rank;not null;index:idx_season_snapshot_board,priority:3"`
	RecordID     string    `gorm:"column:record_id;not null"`
	PlayerID     string    `gorm:"column:player_id;not null;index"`
	PlayerName   string    `gorm:"column:player_name;not null;default:''"`
	PlayerAvatar string    `gorm:"column:player_avatar;not null;default:''"`
	GameID       string    `gorm:"column:game_id;not null"`
	GameName     string    `gorm:"column:game_name;not null;default:''"`
	Category     string    `gorm:"column:category;not null"`
	Score        int64     `gorm:"column:score;not null"`
	PlayedAt     time.Time `gorm:"column:played_at;not null"`
}

func (SeasonSnapshotEntry) TableName() string { return "season_snapshot_entries" }

// ReactionEntity: 게임 좋아요/싫어요 (플레이어-게임당 1개)
type ReactionEntity struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	PlayerID  string    `gorm:"column:player_id;not null;uniqueIndex:idx_game_reactions_player_game"`
	GameID    string    `gorm:"column:game_id;not null;uniqueIndex:idx_game_reactions_player_game;index"`
	Kind      string    `gorm:"column:kind;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (ReactionEntity) TableName() string { return "game_reactions" }
