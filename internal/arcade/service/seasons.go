package service

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/repository"
)

// SeasonService: 시즌 생성/활성화/종료와 시즌 리더보드
type SeasonService struct {
	catalog *catalog.Catalog
	seasons SeasonStore
	scores  ScoreStore
	ds      *DataSource
	logger  *slog.Logger
	now     func() time.Time
}

// NewSeasonService: 새 SeasonService 를 생성합니다.
func NewSeasonService(cat *catalog.Catalog, seasons SeasonStore, scores ScoreStore, ds *DataSource, logger *slog.Logger) *SeasonService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeasonService{catalog: cat, seasons: seasons, scores: scores, ds: ds, logger: logger, now: time.Now}
}

// Create: 시즌을 만든다. ID 는 이름의 slug.
func (s *SeasonService) Create(ctx context.Context, name string, start time.Time, end time.Time) (model.Season, error) {
	name = strings.TrimSpace(name)
	id := slug.Make(name)
	if name == "" || id == "" {
		return model.Season{}, aerrors.Validation("name", "must contain letters or digits")
	}
	if start.IsZero() || end.IsZero() {
		return model.Season{}, aerrors.Validation("startDate", "start and end dates are required")
	}
	if !end.After(start) {
		return model.Season{}, aerrors.Validation("endDate", "must be after startDate")
	}

	season := model.Season{ID: id, Name: name, StartDate: start.UTC(), EndDate: end.UTC()}
	err := callErr(ctx, s.ds, "create_season", func(ctx context.Context) error {
		return s.seasons.CreateSeason(ctx, season)
	})
	if err != nil {
		return model.Season{}, seasonError(id, err)
	}
	s.logger.Info("season_created", "season_id", id, "start", season.StartDate, "end", season.EndDate)
	return season, nil
}

// Activate: 시즌을 활성화한다. 다른 활성 시즌이 있거나 종료된 시즌이면 SeasonConflictError.
func (s *SeasonService) Activate(ctx context.Context, id string) (model.Season, error) {
	season, err := call(ctx, s.ds, "activate_season", func(ctx context.Context) (model.Season, error) {
		return s.seasons.ActivateSeason(ctx, id)
	})
	if err != nil {
		return model.Season{}, seasonError(id, err)
	}
	s.logger.Info("season_activated", "season_id", id)
	return season, nil
}

// Close: 시즌 기간 [start, end] 의 전체/카테고리 순위를 스냅샷으로 저장하고 시즌을 종료한다.
// 종료된 시즌은 다시 변경할 수 없다.
func (s *SeasonService) Close(ctx context.Context, id string) (model.Season, error) {
	season, err := s.get(ctx, id)
	if err != nil {
		return model.Season{}, err
	}
	if season.Closed() {
		return model.Season{}, aerrors.SeasonConflictError{SeasonID: id, Reason: "season already closed"}
	}

	global, categories, err := s.liveBoards(ctx, season)
	if err != nil {
		return model.Season{}, err
	}
	entries := make([]repository.SeasonSnapshotEntry, 0, len(global)*2)
	for _, rec := range global {
		entries = append(entries, repository.NewSnapshotEntry(repository.SnapshotBoardGlobal, rec))
	}
	for _, board := range categories {
		for _, rec := range board.Entries {
			entries = append(entries, repository.NewSnapshotEntry(board.Category, rec))
		}
	}

	closedAt := s.now().UTC()
	closed, err := call(ctx, s.ds, "close_season", func(ctx context.Context) (model.Season, error) {
		return s.seasons.CloseSeason(ctx, id, closedAt, entries)
	})
	if err != nil {
		return model.Season{}, seasonError(id, err)
	}
	s.logger.Info("season_closed", "season_id", id, "entries", len(global))
	return closed, nil
}

// Get: 종료된 시즌은 스냅샷, 그 외는 실시간 리더보드를 반환한다.
func (s *SeasonService) Get(ctx context.Context, id string) (model.SeasonView, error) {
	season, err := s.get(ctx, id)
	if err != nil {
		return model.SeasonView{}, err
	}

	if !season.Closed() {
		global, categories, err := s.liveBoards(ctx, season)
		if err != nil {
			return model.SeasonView{}, err
		}
		return model.SeasonView{Season: season, Global: global, Categories: categories, Live: true}, nil
	}

	entries, err := call(ctx, s.ds, "snapshot_entries", func(ctx context.Context) ([]repository.SeasonSnapshotEntry, error) {
		return s.seasons.SnapshotEntries(ctx, id)
	})
	if err != nil {
		return model.SeasonView{}, err
	}
	boards := make(map[string][]model.ScoreRecord)
	for _, e := range entries {
		boards[e.Board] = append(boards[e.Board], repository.SnapshotRecord(e))
	}
	for _, recs := range boards {
		slices.SortFunc(recs, func(a, b model.ScoreRecord) int { return cmp.Compare(a.Rank, b.Rank) })
	}

	view := model.SeasonView{
		Season:     season,
		Global:     nonNil(boards[repository.SnapshotBoardGlobal]),
		Categories: make([]model.CategoryLeaderboard, 0, len(s.catalog.Categories())),
	}
	for _, category := range s.catalog.Categories() {
		view.Categories = append(view.Categories, summarizeCategory(category, nonNil(boards[category])))
	}
	return view, nil
}

// List: 시작일 순 시즌 목록
func (s *SeasonService) List(ctx context.Context) ([]model.Season, error) {
	return call(ctx, s.ds, "list_seasons", func(ctx context.Context) ([]model.Season, error) {
		return s.seasons.ListSeasons(ctx)
	})
}

// SeedFromCatalog: 시즌 테이블이 비어 있으면 카탈로그 시드 시즌을 만든다.
func (s *SeasonService) SeedFromCatalog(ctx context.Context) error {
	count, err := call(ctx, s.ds, "count_seasons", func(ctx context.Context) (int64, error) {
		return s.seasons.CountSeasons(ctx)
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, seed := range s.catalog.SeedSeasons() {
		if _, err := s.Create(ctx, seed.Name, seed.Start, seed.End); err != nil {
			var conflict aerrors.SeasonConflictError
			if errors.As(err, &conflict) {
				continue
			}
			return err
		}
	}
	return nil
}

// Sweep: 기간이 끝난 활성 시즌을 종료하고, 활성 시즌이 없으면 현재 기간에 해당하는 대기 시즌을 활성화한다.
func (s *SeasonService) Sweep(ctx context.Context) error {
	now := s.now().UTC()

	active, ok, err := s.active(ctx)
	if err != nil {
		return err
	}
	if ok && now.After(active.EndDate) {
		if _, err := s.Close(ctx, active.ID); err != nil {
			return err
		}
		ok = false
	}
	if ok {
		return nil
	}

	seasons, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, season := range seasons {
		if season.Closed() || !season.Contains(now) {
			continue
		}
		if _, err := s.Activate(ctx, season.ID); err != nil {
			return err
		}
		return nil
	}
	return nil
}

func (s *SeasonService) get(ctx context.Context, id string) (model.Season, error) {
	season, err := call(ctx, s.ds, "get_season", func(ctx context.Context) (model.Season, error) {
		return s.seasons.GetSeason(ctx, id)
	})
	if err != nil {
		return model.Season{}, seasonError(id, err)
	}
	return season, nil
}

func (s *SeasonService) active(ctx context.Context) (model.Season, bool, error) {
	type activeResult struct {
		season model.Season
		ok     bool
	}
	res, err := call(ctx, s.ds, "active_season", func(ctx context.Context) (activeResult, error) {
		season, ok, err := s.seasons.ActiveSeason(ctx)
		return activeResult{season: season, ok: ok}, err
	})
	return res.season, res.ok, err
}

// liveBoards: 시즌 기간으로 제한한 전체/카테고리 리더보드
func (s *SeasonService) liveBoards(ctx context.Context, season model.Season) ([]model.ScoreRecord, []model.CategoryLeaderboard, error) {
	global, err := rankedScope(ctx, s.ds, s.scores, repository.ScoreFilter{Since: season.StartDate, Until: season.EndDate})
	if err != nil {
		return nil, nil, err
	}

	byCategory := make(map[string][]model.ScoreRecord)
	for _, rec := range global {
		byCategory[rec.Category] = append(byCategory[rec.Category], rec)
	}
	categories := make([]model.CategoryLeaderboard, 0, len(s.catalog.Categories()))
	for _, category := range s.catalog.Categories() {
		categories = append(categories, summarizeCategory(category, Rank(byCategory[category], nil)))
	}
	return global, categories, nil
}

// seasonError: 저장소 상태 에러를 도메인 에러로 변환한다.
func seasonError(id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrSeasonNotFound):
		return aerrors.NotFoundError{Kind: "season", ID: id}
	case errors.Is(err, repository.ErrSeasonExists):
		return aerrors.SeasonConflictError{SeasonID: id, Reason: "season already exists"}
	case errors.Is(err, repository.ErrSeasonClosed):
		return aerrors.SeasonConflictError{SeasonID: id, Reason: "season already closed"}
	case errors.Is(err, repository.ErrSeasonActiveExists):
		return aerrors.SeasonConflictError{SeasonID: id, Reason: "another season is active"}
	default:
		return err
	}
}

func nonNil(recs []model.ScoreRecord) []model.ScoreRecord {
	if recs == nil {
		return []model.ScoreRecord{}
	}
	return recs
}
