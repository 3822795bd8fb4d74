// Package model 은 리더보드/보상/세션 도메인 타입을 정의한다.
package model

import "time"

// CategoryAll: 카테고리 필터 없음
const CategoryAll = "all"

// ScoreRecord: 리더보드 항목. Rank/Change/TimeRange 는 조회 뷰 기준으로 계산된다.
type ScoreRecord struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId"`
	PlayerName   string    `json:"playerName"`
	PlayerAvatar string    `json:"playerAvatar"`
	GameID       string    `json:"gameId"`
	GameName     string    `json:"gameName"`
	Category     string    `json:"category"`
	Score        int64     `json:"score"`
	Date         time.Time `json:"date"`
	Rank         int       `json:"rank"`
	Change       int       `json:"change"`
	TimeRange    TimeRange `json:"timeRange,omitempty"`
	SubmissionID string    `json:"submissionId,omitempty"`
	Seq          int64     `json:"-"`
}

// LeaderboardQuery: 리더보드 뷰 필터
type LeaderboardQuery struct {
	GameID    string
	Category  string
	TimeRange TimeRange
}

// HistorySample: 플레이어 기록 1건
type HistorySample struct {
	Score int64     `json:"score"`
	Date  time.Time `json:"date"`
	Rank  int       `json:"rank"`
}

// PlayerHistory: 플레이어 장기 통계 (조회 시 계산)
type PlayerHistory struct {
	PlayerID        string          `json:"playerId"`
	GameID          string          `json:"gameId,omitempty"`
	Samples         []HistorySample `json:"history"`
	BestScore       int64           `json:"bestScore"`
	AverageScore    float64         `json:"averageScore"`
	TotalGames      int             `json:"totalGames"`
	ImprovementRate float64         `json:"improvementRate"`
}

// CategoryLeaderboard: 카테고리별 리더보드
type CategoryLeaderboard struct {
	Category     string        `json:"category"`
	Entries      []ScoreRecord `json:"entries"`
	TotalPlayers int           `json:"totalPlayers"`
	AverageScore float64       `json:"averageScore"`
}

// RewardType 보상 종류.
type RewardType string

// RewardTypeBadge 는 보상 종류 상수 목록이다.
const (
	RewardTypeBadge   RewardType = "badge"
	RewardTypeTitle   RewardType = "title"
	RewardTypeTheme   RewardType = "theme"
	RewardTypeFeature RewardType = "feature"
)

// Rarity 보상 희귀도.
type Rarity string

// RarityCommon 는 희귀도 상수 목록이다.
const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// RequirementType 보상 조건 종류.
type RequirementType string

// RequirementRank 는 보상 조건 종류 상수 목록이다.
const (
	RequirementRank  RequirementType = "rank"
	RequirementScore RequirementType = "score"
)

// Requirement: 보상 해제 조건. rank 는 threshold 이하, score 는 threshold 이상.
type Requirement struct {
	Type      RequirementType `json:"type" mapstructure:"type" validate:"required,oneof=rank score"`
	Threshold int64           `json:"threshold" mapstructure:"threshold" validate:"gte=1"`
	Category  string          `json:"category,omitempty" mapstructure:"category"`
	GameID    string          `json:"gameId,omitempty" mapstructure:"gameId"`
}

// Reward: 보상 정의 + 플레이어별 해제 상태
type Reward struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Type        RewardType  `json:"type"`
	Rarity      Rarity      `json:"rarity"`
	Requirement Requirement `json:"requirement"`
	Unlocked    bool        `json:"unlocked"`
	UnlockedAt  *time.Time  `json:"unlockedAt,omitempty"`
}

// Game: 카탈로그 게임
type Game struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	EmbedURL    string  `json:"embedUrl"`
}

// AchievementDef: 카탈로그 업적 정의
type AchievementDef struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
	GameID      string `json:"gameId"`
}

// Season: 시즌. 종료된 시즌은 스냅샷을 가지며 변경 불가.
type Season struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	Active    bool       `json:"active"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

// Closed: 종료 여부
func (s Season) Closed() bool { return s.ClosedAt != nil }

// Contains: t 가 시즌 기간 [start, end] 에 포함되는지
func (s Season) Contains(t time.Time) bool {
	return !t.Before(s.StartDate) && !t.After(s.EndDate)
}

// SeasonView: 시즌 + 리더보드 (종료 시 스냅샷, 진행 중이면 실시간)
type SeasonView struct {
	Season     Season                `json:"season"`
	Global     []ScoreRecord         `json:"leaderboard"`
	Categories []CategoryLeaderboard `json:"categories"`
	Live       bool                  `json:"live"`
}

// RankPoint: 순위 추이 1점
type RankPoint struct {
	Date  time.Time `json:"date"`
	Rank  int       `json:"rank"`
	Score int64     `json:"score"`
}

// SeasonSummary: 플레이어의 시즌별 요약
type SeasonSummary struct {
	SeasonID string   `json:"seasonId"`
	Rank     int      `json:"rank"`
	Score    int64    `json:"score"`
	Rewards  []Reward `json:"rewards"`
}

// PlayerStats: 플레이어 종합 통계
type PlayerStats struct {
	PlayerID     string          `json:"playerId"`
	TotalScore   int64           `json:"totalScore"`
	AverageScore float64         `json:"averageScore"`
	GamesPlayed  int             `json:"gamesPlayed"`
	TopRank      int             `json:"topRank"`
	TopGame      string          `json:"topGame"`
	TopCategory  string          `json:"topCategory"`
	RankHistory  []RankPoint     `json:"rankHistory"`
	Rewards      []Reward        `json:"rewards"`
	Seasons      []SeasonSummary `json:"seasons"`
}

// ReactionKind 좋아요/싫어요.
type ReactionKind string

// ReactionLike 는 반응 종류 상수 목록이다.
const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// ReactionSummary: 게임 반응 집계
type ReactionSummary struct {
	GameID   string       `json:"gameId"`
	Likes    int64        `json:"likes"`
	Dislikes int64        `json:"dislikes"`
	Mine     ReactionKind `json:"mine,omitempty"`
}
