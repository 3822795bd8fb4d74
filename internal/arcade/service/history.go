package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
)

// HistoryService: 플레이어 기록 추이. 항상 조회 시점에 계산한다.
type HistoryService struct {
	catalog *catalog.Catalog
	scores  ScoreStore
	ds      *DataSource
	logger  *slog.Logger
}

// NewHistoryService: 새 HistoryService 를 생성합니다.
func NewHistoryService(cat *catalog.Catalog, scores ScoreStore, ds *DataSource, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{catalog: cat, scores: scores, ds: ds, logger: logger}
}

// GetPlayerHistory: 플레이어 기록을 시간순으로 반환한다.
// 각 기록의 rank 는 같은 범위(gameID 가 있으면 해당 게임, 없으면 전체)의 전체 기간 뷰 기준이다.
// 기록이 없는 플레이어는 빈 결과를 반환한다.
func (s *HistoryService) GetPlayerHistory(ctx context.Context, playerID string, gameID string) (model.PlayerHistory, error) {
	playerID = strings.TrimSpace(playerID)
	gameID = strings.TrimSpace(gameID)
	if playerID == "" {
		return model.PlayerHistory{}, aerrors.Validation("playerId", "must not be empty")
	}
	if gameID != "" {
		if _, ok := s.catalog.Game(gameID); !ok {
			return model.PlayerHistory{}, aerrors.Validation("gameId", "unknown game %q", gameID)
		}
	}

	ranked, err := rankedScope(ctx, s.ds, s.scores, repository.ScoreFilter{GameID: gameID})
	if err != nil {
		return model.PlayerHistory{}, err
	}
	return buildHistory(playerID, gameID, ranked), nil
}

// rankedScope: 시간 제한 없는 뷰를 캐시 없이 계산한다. change 는 계산하지 않는다.
func rankedScope(ctx context.Context, ds *DataSource, scores ScoreStore, filter repository.ScoreFilter) ([]model.ScoreRecord, error) {
	records, err := call(ctx, ds, "list_scores", func(ctx context.Context) ([]model.ScoreRecord, error) {
		return scores.ListScores(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return Rank(records, nil), nil
}

// buildHistory: 순위가 매겨진 범위 기록에서 플레이어 기록을 뽑아 통계를 계산한다.
func buildHistory(playerID string, gameID string, ranked []model.ScoreRecord) model.PlayerHistory {
	mine := make([]model.ScoreRecord, 0)
	for _, rec := range ranked {
		if rec.PlayerID == playerID {
			mine = append(mine, rec)
		}
	}
	slices.SortStableFunc(mine, func(a, b model.ScoreRecord) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})

	h := model.PlayerHistory{
		PlayerID:   playerID,
		GameID:     gameID,
		Samples:    make([]model.HistorySample, 0, len(mine)),
		TotalGames: len(mine),
	}
	if len(mine) == 0 {
		return h
	}

	var total int64
	for _, rec := range mine {
		h.Samples = append(h.Samples, model.HistorySample{Score: rec.Score, Date: rec.Date, Rank: rec.Rank})
		h.BestScore = max(h.BestScore, rec.Score)
		total += rec.Score
	}
	h.AverageScore = float64(total) / float64(len(mine))
	h.ImprovementRate = improvementRate(mine[0].Score, mine[len(mine)-1].Score, len(mine))
	return h
}

// improvementRate: (last-first)/first*100. 기록이 2개 미만이거나 first 가 0 이면 0.
func improvementRate(first int64, last int64, samples int) float64 {
	if samples < 2 || first == 0 {
		return 0
	}
	return float64(last-first) / float64(first) * 100
}
