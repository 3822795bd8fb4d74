package service

import (
	"cmp"
	"context"
	"log/slog"
	"strings"

	"github.com/sourcegraph/conc/pool"

	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
)

// StatsService: 플레이어 종합 통계
type StatsService struct {
	scores  ScoreStore
	seasons SeasonStore
	rewards *RewardService
	ds      *DataSource
	logger  *slog.Logger
}

// NewStatsService: 새 StatsService 를 생성합니다.
func NewStatsService(scores ScoreStore, seasons SeasonStore, rewards *RewardService, ds *DataSource, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{scores: scores, seasons: seasons, rewards: rewards, ds: ds, logger: logger}
}

// GetPlayerStats: 플레이어 통계. 하위 조회(기록, 전체 순위, 보상, 시즌)는 병렬로 실행된다.
func (s *StatsService) GetPlayerStats(ctx context.Context, playerID string) (model.PlayerStats, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return model.PlayerStats{}, aerrors.Validation("playerId", "must not be empty")
	}

	var (
		records []model.ScoreRecord
		history model.PlayerHistory
		rewards []model.Reward
		seasons []model.Season
	)

	p := pool.New().WithErrors().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		records, err = call(ctx, s.ds, "player_scores", func(ctx context.Context) ([]model.ScoreRecord, error) {
			return s.scores.PlayerScores(ctx, playerID, "")
		})
		return err
	})
	p.Go(func(ctx context.Context) error {
		ranked, err := rankedScope(ctx, s.ds, s.scores, repository.ScoreFilter{})
		if err != nil {
			return err
		}
		history = buildHistory(playerID, "", ranked)
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		rewards, err = s.rewards.UnlockedRewards(ctx, playerID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		seasons, err = call(ctx, s.ds, "list_seasons", func(ctx context.Context) ([]model.Season, error) {
			return s.seasons.ListSeasons(ctx)
		})
		return err
	})
	if err := p.Wait(); err != nil {
		return model.PlayerStats{}, err
	}

	stats := model.PlayerStats{
		PlayerID:    playerID,
		GamesPlayed: len(records),
		RankHistory: make([]model.RankPoint, 0, len(history.Samples)),
		Rewards:     rewards,
	}
	summarizeRecords(&stats, records)
	for _, sample := range history.Samples {
		stats.RankHistory = append(stats.RankHistory, model.RankPoint{Date: sample.Date, Rank: sample.Rank, Score: sample.Score})
		if stats.TopRank == 0 || sample.Rank < stats.TopRank {
			stats.TopRank = sample.Rank
		}
	}

	summaries, err := s.seasonSummaries(ctx, playerID, seasons, rewards)
	if err != nil {
		return model.PlayerStats{}, err
	}
	stats.Seasons = summaries
	return stats, nil
}

// summarizeRecords: 총점/평균, 최고 점수 게임, 가장 많이 플레이한 카테고리(동률이면 이름순)
func summarizeRecords(stats *model.PlayerStats, records []model.ScoreRecord) {
	if len(records) == 0 {
		return
	}
	var best model.ScoreRecord
	perCategory := make(map[string]int)
	for i, rec := range records {
		stats.TotalScore += rec.Score
		if i == 0 || compareRecords(rec, best) < 0 {
			best = rec
		}
		perCategory[rec.Category]++
	}
	stats.AverageScore = float64(stats.TotalScore) / float64(len(records))
	stats.TopGame = best.GameID

	topCount := 0
	for category, count := range perCategory {
		if count > topCount || (count == topCount && cmp.Less(category, stats.TopCategory)) {
			stats.TopCategory = category
			topCount = count
		}
	}
}

// seasonSummaries: 종료 시즌은 스냅샷, 활성 시즌은 실시간 기준. 참여하지 않은 시즌은 제외한다.
func (s *StatsService) seasonSummaries(ctx context.Context, playerID string, seasons []model.Season, rewards []model.Reward) ([]model.SeasonSummary, error) {
	out := make([]model.SeasonSummary, 0, len(seasons))
	for _, season := range seasons {
		var (
			rank  int
			score int64
			found bool
		)
		switch {
		case season.Closed():
			entries, err := call(ctx, s.ds, "player_snapshot_entries", func(ctx context.Context) ([]repository.SeasonSnapshotEntry, error) {
				return s.seasons.PlayerSnapshotEntries(ctx, season.ID, repository.SnapshotBoardGlobal, playerID)
			})
			if err != nil {
				return nil, err
			}
			if len(entries) > 0 {
				rank, score, found = entries[0].Rank, entries[0].Score, true
			}
		case season.Active:
			ranked, err := rankedScope(ctx, s.ds, s.scores, repository.ScoreFilter{Since: season.StartDate, Until: season.EndDate})
			if err != nil {
				return nil, err
			}
			for _, rec := range ranked {
				if rec.PlayerID == playerID {
					rank, score, found = rec.Rank, rec.Score, true
					break
				}
			}
		}
		if !found {
			continue
		}

		seasonRewards := make([]model.Reward, 0)
		for _, r := range rewards {
			if r.UnlockedAt != nil && season.Contains(*r.UnlockedAt) {
				seasonRewards = append(seasonRewards, r)
			}
		}
		out = append(out, model.SeasonSummary{SeasonID: season.ID, Rank: rank, Score: score, Rewards: seasonRewards})
	}
	return out, nil
}
