package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/metrics"
)

// RewardService: 보상 조건 평가와 플레이어별 해제 상태
type RewardService struct {
	catalog *catalog.Catalog
	scores  ScoreStore
	rewards RewardStore
	ds      *DataSource
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewRewardService: 새 RewardService 를 생성합니다.
func NewRewardService(
	cat *catalog.Catalog,
	scores ScoreStore,
	rewards RewardStore,
	ds *DataSource,
	m *metrics.Metrics,
	logger *slog.Logger,
) *RewardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardService{
		catalog: cat,
		scores:  scores,
		rewards: rewards,
		ds:      ds,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// CheckRewards: 아직 해제되지 않은 보상 조건을 평가하고, 이번 호출에서 새로 해제된 보상만 반환한다.
// 해제는 단조적이며 같은 보상을 다시 보고하지 않는다.
func (s *RewardService) CheckRewards(ctx context.Context, playerID string) ([]model.Reward, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, aerrors.Validation("playerId", "must not be empty")
	}

	unlocked, err := s.unlockMap(ctx, playerID)
	if err != nil {
		return nil, err
	}

	pending := make([]model.Reward, 0)
	for _, r := range s.catalog.Rewards() {
		if _, ok := unlocked[r.ID]; !ok {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return []model.Reward{}, nil
	}

	records, err := call(ctx, s.ds, "list_scores", func(ctx context.Context) ([]model.ScoreRecord, error) {
		return s.scores.ListScores(ctx, repository.ScoreFilter{})
	})
	if err != nil {
		return nil, err
	}
	eval := newEvaluator(playerID, records)

	candidates := make(map[string]model.Reward)
	ids := make([]string, 0)
	for _, r := range pending {
		if eval.satisfies(r.Requirement) {
			candidates[r.ID] = r
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return []model.Reward{}, nil
	}

	at := s.now().UTC()
	inserted, err := call(ctx, s.ds, "unlock_rewards", func(ctx context.Context) ([]string, error) {
		return s.rewards.UnlockRewards(ctx, playerID, ids, at)
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Reward, 0, len(inserted))
	for _, id := range inserted {
		r := candidates[id]
		r.Unlocked = true
		unlockedAt := at
		r.UnlockedAt = &unlockedAt
		out = append(out, r)
		s.metrics.RewardUnlocked(id)
	}
	if len(out) > 0 {
		s.logger.Info("rewards_unlocked", "player_id", playerID, "rewards", inserted)
	}
	return out, nil
}

// PlayerRewards: 전체 보상 카탈로그에 플레이어별 해제 상태를 채워 반환한다.
func (s *RewardService) PlayerRewards(ctx context.Context, playerID string) ([]model.Reward, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, aerrors.Validation("playerId", "must not be empty")
	}
	unlocked, err := s.unlockMap(ctx, playerID)
	if err != nil {
		return nil, err
	}
	rewards := s.catalog.Rewards()
	for i := range rewards {
		if at, ok := unlocked[rewards[i].ID]; ok {
			rewards[i].Unlocked = true
			rewards[i].UnlockedAt = &at
		}
	}
	return rewards, nil
}

// UnlockedRewards: 플레이어가 해제한 보상만 반환한다.
func (s *RewardService) UnlockedRewards(ctx context.Context, playerID string) ([]model.Reward, error) {
	all, err := s.PlayerRewards(ctx, playerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Reward, 0, len(all))
	for _, r := range all {
		if r.Unlocked {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RewardService) unlockMap(ctx context.Context, playerID string) (map[string]time.Time, error) {
	rows, err := call(ctx, s.ds, "player_unlocks", func(ctx context.Context) ([]repository.RewardUnlock, error) {
		return s.rewards.PlayerUnlocks(ctx, playerID)
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		out[row.RewardID] = row.UnlockedAt.UTC()
	}
	return out, nil
}

// standing: 조건 범위의 전체 기간 리더보드 하나에서 플레이어의 최고 순위와 최고 점수
type standing struct {
	rank  int
	score int64
	found bool
}

// scopeKey: gameId 우선, 다음 category, 둘 다 없으면 전체 리더보드.
func scopeKey(req model.Requirement) string {
	switch {
	case req.GameID != "":
		return "game:" + req.GameID
	case req.Category != "":
		return "category:" + req.Category
	default:
		return "all"
	}
}

func inScope(rec model.ScoreRecord, req model.Requirement) bool {
	switch {
	case req.GameID != "":
		return rec.GameID == req.GameID
	case req.Category != "":
		return rec.Category == req.Category
	default:
		return true
	}
}

// evaluator: 범위별 standing 을 한 번만 계산한다.
type evaluator struct {
	playerID string
	records  []model.ScoreRecord
	cache    map[string]standing
}

func newEvaluator(playerID string, records []model.ScoreRecord) *evaluator {
	return &evaluator{playerID: playerID, records: records, cache: make(map[string]standing)}
}

func (e *evaluator) lookup(req model.Requirement) standing {
	key := scopeKey(req)
	if st, ok := e.cache[key]; ok {
		return st
	}

	view := make([]model.ScoreRecord, 0, len(e.records))
	for _, rec := range e.records {
		if inScope(rec, req) {
			view = append(view, rec)
		}
	}
	var st standing
	// 정렬된 뷰에서 플레이어의 첫 기록이 최고 순위이자 최고 점수다
	for _, rec := range Rank(view, nil) {
		if rec.PlayerID == e.playerID {
			st = standing{rank: rec.Rank, score: rec.Score, found: true}
			break
		}
	}
	e.cache[key] = st
	return st
}

func (e *evaluator) satisfies(req model.Requirement) bool {
	st := e.lookup(req)
	if !st.found {
		return false
	}
	switch req.Type {
	case model.RequirementRank:
		return int64(st.rank) <= req.Threshold
	case model.RequirementScore:
		return st.score >= req.Threshold
	}
	return false
}
