package service

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

// Rank: 기록을 점수 내림차순(동점은 이른 날짜, 먼저 제출된 순)으로 정렬하고 1부터 순위를 매긴다.
// previous 에 있는 기록은 change = 이전 순위 - 현재 순위, 없으면 0.
func Rank(records []model.ScoreRecord, previous map[string]int) []model.ScoreRecord {
	out := append(make([]model.ScoreRecord, 0, len(records)), records...)
	slices.SortStableFunc(out, compareRecords)
	for i := range out {
		out[i].Rank = i + 1
		out[i].Change = 0
		if prev, ok := previous[out[i].ID]; ok {
			out[i].Change = prev - out[i].Rank
		}
	}
	return out
}

func compareRecords(a, b model.ScoreRecord) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}

func rankIndex(ranked []model.ScoreRecord) map[string]int {
	out := make(map[string]int, len(ranked))
	for _, rec := range ranked {
		out[rec.ID] = rec.Rank
	}
	return out
}

// fingerprint: 기록 집합이 바뀌었는지 판단하는 값. 기록은 추가만 되므로 개수와 seq 로 충분하다.
func fingerprint(records []model.ScoreRecord) string {
	var maxSeq, sum int64
	for _, rec := range records {
		maxSeq = max(maxSeq, rec.Seq)
		sum += rec.Seq
	}
	return strconv.Itoa(len(records)) + ":" + strconv.FormatInt(maxSeq, 10) + ":" + strconv.FormatInt(sum, 10)
}

// viewKey 형식: {gameId|all}:{category|all}:{timeRange}
func viewKey(gameID string, category string, timeRange model.TimeRange) string {
	if gameID == "" {
		gameID = model.CategoryAll
	}
	if category == "" {
		category = model.CategoryAll
	}
	return strings.Join([]string{gameID, category, string(timeRange)}, ":")
}

func summarizeCategory(category string, entries []model.ScoreRecord) model.CategoryLeaderboard {
	players := make(map[string]struct{}, len(entries))
	var total int64
	for _, e := range entries {
		players[e.PlayerID] = struct{}{}
		total += e.Score
	}
	avg := 0.0
	if len(entries) > 0 {
		avg = float64(total) / float64(len(entries))
	}
	return model.CategoryLeaderboard{
		Category:     category,
		Entries:      entries,
		TotalPlayers: len(players),
		AverageScore: avg,
	}
}
