package model

import (
	"slices"
	"time"
)

// UserStats: 프로필 누적 통계
type UserStats struct {
	GamesPlayed          int     `json:"gamesPlayed"`
	TotalPlaytime        int     `json:"totalPlaytime"` // minutes
	AchievementsUnlocked int     `json:"achievementsUnlocked"`
	AverageScore         float64 `json:"averageScore"`
	Level                int     `json:"level"`
	Experience           int64   `json:"experience"`
}

// Achievement: 해제된 업적
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Points      int       `json:"points"`
	GameID      string    `json:"gameId"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// RecentGame: 최근 플레이한 게임 (최신순)
type RecentGame struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	LastPlayed time.Time `json:"lastPlayed"`
	Playtime   int       `json:"playtime"` // minutes
	HighScore  int64     `json:"highScore"`
}

// User: 세션에 저장되는 사용자 프로필
type User struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	Email         string        `json:"email"`
	DisplayName   string        `json:"displayName"`
	Avatar        string        `json:"avatar"`
	EmailVerified bool          `json:"emailVerified"`
	MFAEnabled    bool          `json:"mfaEnabled"`
	CreatedAt     time.Time     `json:"createdAt"`
	LastLogin     time.Time     `json:"lastLogin"`
	Stats         UserStats     `json:"stats"`
	Achievements  []Achievement `json:"achievements"`
	RecentGames   []RecentGame  `json:"recentGames"`
	Rewards       []Reward      `json:"rewards"`

	// 프로필에 반영된 최근 SubmissionID (오래된 것부터)
	AppliedSubmissions []string `json:"appliedSubmissions,omitempty"`
}

// HasAchievement: 업적 보유 여부
func (u *User) HasAchievement(id string) bool {
	return slices.ContainsFunc(u.Achievements, func(a Achievement) bool { return a.ID == id })
}

// HasReward: 보상 보유 여부
func (u *User) HasReward(id string) bool {
	return slices.ContainsFunc(u.Rewards, func(r Reward) bool { return r.ID == id })
}

// HasAppliedSubmission: 해당 제출이 이미 통계에 반영되었는지 확인한다.
func (u *User) HasAppliedSubmission(submissionID string) bool {
	return slices.Contains(u.AppliedSubmissions, submissionID)
}

// MarkSubmissionApplied: 반영된 제출을 기록하고 최근 limit 개만 유지한다.
func (u *User) MarkSubmissionApplied(submissionID string, limit int) {
	if u.HasAppliedSubmission(submissionID) {
		return
	}
	u.AppliedSubmissions = append(u.AppliedSubmissions, submissionID)
	if limit > 0 && len(u.AppliedSubmissions) > limit {
		u.AppliedSubmissions = slices.Clone(u.AppliedSubmissions[len(u.AppliedSubmissions)-limit:])
	}
}

// MergeRewards: 아직 없는 보상만 추가한다. 추가된 개수를 반환한다.
func (u *User) MergeRewards(rewards []Reward) int {
	added := 0
	for _, r := range rewards {
		if u.HasReward(r.ID) {
			continue
		}
		u.Rewards = append(u.Rewards, r)
		added++
	}
	return added
}

// TouchRecentGame: 최근 게임을 맨 앞으로 올리고 최대 limit 개로 자른다.
func (u *User) TouchRecentGame(game Game, score int64, minutes int, at time.Time, limit int) {
	entry := RecentGame{ID: game.ID, Title: game.Title}
	if idx := slices.IndexFunc(u.RecentGames, func(g RecentGame) bool { return g.ID == game.ID }); idx >= 0 {
		entry = u.RecentGames[idx]
		u.RecentGames = slices.Delete(u.RecentGames, idx, idx+1)
	}
	entry.Title = game.Title
	entry.LastPlayed = at
	entry.Playtime += minutes
	entry.HighScore = max(entry.HighScore, score)

	u.RecentGames = slices.Insert(u.RecentGames, 0, entry)
	if limit > 0 && len(u.RecentGames) > limit {
		u.RecentGames = u.RecentGames[:limit]
	}
}
