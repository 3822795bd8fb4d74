package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/testhelper"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo := New(testhelper.NewTestDB(t))
	if err := repo.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return repo
}

func scoreRecord(id string, player string, game string, category string, score int64, at time.Time) model.ScoreRecord {
	return model.ScoreRecord{
		ID:           id,
		SubmissionID: "sub-" + id,
		PlayerID:     player,
		PlayerName:   player,
		GameID:       game,
		GameName:     game,
		Category:     category,
		Score:        score,
		Date:         at,
	}
}

func TestRepository_NilDB(t *testing.T) {
	var repo *Repository
	if err := repo.AutoMigrate(context.Background()); err == nil {
		t.Error("expected error for nil repository")
	}
	if _, err := New(nil).ListScores(context.Background(), ScoreFilter{}); err == nil {
		t.Error("expected error for nil db")
	}
}

func TestRepository_Scores(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	records := []model.ScoreRecord{
		scoreRecord("r1", "p1", "tetris", "Puzzle", 100, base),
		scoreRecord("r2", "p2", "tetris", "Puzzle", 100, base),
		scoreRecord("r3", "p3", "snake", "Arcade", 300, base.Add(time.Hour)),
		scoreRecord("r4", "p1", "snake", "Arcade", 50, base.Add(-48*time.Hour)),
	}
	for _, rec := range records {
		if _, created, err := repo.InsertScore(ctx, rec); err != nil || !created {
			t.Fatalf("insert %s failed: created=%v err=%v", rec.ID, created, err)
		}
	}

	t.Run("idempotent submission", func(t *testing.T) {
		dup := scoreRecord("r9", "p1", "tetris", "Puzzle", 999, base)
		dup.SubmissionID = "sub-r1"
		stored, created, err := repo.InsertScore(ctx, dup)
		if err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if created {
			t.Error("duplicate submission must not create a record")
		}
		if stored.ID != "r1" || stored.Score != 100 {
			t.Errorf("expected original record, got %+v", stored)
		}
		all, err := repo.ListScores(ctx, ScoreFilter{})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(all) != 4 {
			t.Errorf("expected 4 records, got %d", len(all))
		}
	})

	t.Run("ordering with ties", func(t *testing.T) {
		got, err := repo.ListScores(ctx, ScoreFilter{GameID: "tetris"})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "r1" || got[1].ID != "r2" {
			t.Fatalf("unexpected order: %+v", got)
		}
		if got[0].Seq >= got[1].Seq {
			t.Error("expected insertion seq to increase")
		}
	})

	t.Run("filters", func(t *testing.T) {
		got, err := repo.ListScores(ctx, ScoreFilter{Category: "Arcade"})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "r3" {
			t.Errorf("unexpected arcade view: %+v", got)
		}

		got, err = repo.ListScores(ctx, ScoreFilter{Category: model.CategoryAll, Since: base.Add(-time.Hour)})
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected 3 recent records, got %d", len(got))
		}
	})

	t.Run("player scores chronological", func(t *testing.T) {
		got, err := repo.PlayerScores(ctx, "p1", "")
		if err != nil {
			t.Fatalf("player scores failed: %v", err)
		}
		if len(got) != 2 || got[0].ID != "r4" || got[1].ID != "r1" {
			t.Errorf("unexpected order: %+v", got)
		}
	})

	t.Run("by submission", func(t *testing.T) {
		if _, ok, err := repo.ScoreBySubmission(ctx, "missing"); err != nil || ok {
			t.Errorf("expected miss, got ok=%v err=%v", ok, err)
		}
		rec, ok, err := repo.ScoreBySubmission(ctx, "sub-r3")
		if err != nil || !ok || rec.ID != "r3" {
			t.Errorf("unexpected: %+v %v %v", rec, ok, err)
		}
	})
}

func TestRepository_UnlockRewards(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	inserted, err := repo.UnlockRewards(ctx, "p1", []string{"reward1", "reward4"}, at)
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if len(inserted) != 2 {
		t.Fatalf("expected 2 inserted, got %v", inserted)
	}

	inserted, err = repo.UnlockRewards(ctx, "p1", []string{"reward1", "reward2"}, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	if len(inserted) != 1 || inserted[0] != "reward2" {
		t.Errorf("expected only reward2, got %v", inserted)
	}

	unlocks, err := repo.PlayerUnlocks(ctx, "p1")
	if err != nil {
		t.Fatalf("player unlocks failed: %v", err)
	}
	if len(unlocks) != 3 {
		t.Errorf("expected 3 unlocks, got %d", len(unlocks))
	}
	if !unlocks[0].UnlockedAt.Equal(at) {
		t.Errorf("first unlock time must be preserved, got %v", unlocks[0].UnlockedAt)
	}

	other, err := repo.PlayerUnlocks(ctx, "p2")
	if err != nil || len(other) != 0 {
		t.Errorf("unlocks are per player: %v %v", other, err)
	}
}

func TestRepository_Seasons(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	spring := model.Season{ID: "spring", Name: "Spring", StartDate: start, EndDate: start.AddDate(0, 3, 0)}
	summer := model.Season{ID: "summer", Name: "Summer", StartDate: start.AddDate(0, 3, 0), EndDate: start.AddDate(0, 6, 0)}
	for _, s := range []model.Season{summer, spring} {
		if err := repo.CreateSeason(ctx, s); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	if err := repo.CreateSeason(ctx, spring); !errors.Is(err, ErrSeasonExists) {
		t.Errorf("expected ErrSeasonExists, got %v", err)
	}
	if _, err := repo.GetSeason(ctx, "winter"); !errors.Is(err, ErrSeasonNotFound) {
		t.Errorf("expected ErrSeasonNotFound, got %v", err)
	}

	list, err := repo.ListSeasons(ctx)
	if err != nil || len(list) != 2 || list[0].ID != "spring" {
		t.Fatalf("unexpected list: %+v %v", list, err)
	}
	if n, err := repo.CountSeasons(ctx); err != nil || n != 2 {
		t.Errorf("unexpected count: %d %v", n, err)
	}

	t.Run("single active season", func(t *testing.T) {
		if _, err := repo.ActivateSeason(ctx, "spring"); err != nil {
			t.Fatalf("activate failed: %v", err)
		}
		if _, err := repo.ActivateSeason(ctx, "spring"); err != nil {
			t.Errorf("re-activate must be no-op: %v", err)
		}
		if _, err := repo.ActivateSeason(ctx, "summer"); !errors.Is(err, ErrSeasonActiveExists) {
			t.Errorf("expected ErrSeasonActiveExists, got %v", err)
		}
		active, ok, err := repo.ActiveSeason(ctx)
		if err != nil || !ok || active.ID != "spring" {
			t.Errorf("unexpected active: %+v %v %v", active, ok, err)
		}
	})

	t.Run("close stores snapshot", func(t *testing.T) {
		entries := []SeasonSnapshotEntry{
			NewSnapshotEntry(SnapshotBoardGlobal, model.ScoreRecord{ID: "r1", PlayerID: "p1", Score: 500, Rank: 1, Category: "Arcade", Date: start}),
			NewSnapshotEntry(SnapshotBoardGlobal, model.ScoreRecord{ID: "r2", PlayerID: "p2", Score: 300, Rank: 2, Category: "Puzzle", Date: start}),
			NewSnapshotEntry("Arcade", model.ScoreRecord{ID: "r1", PlayerID: "p1", Score: 500, Rank: 1, Category: "Arcade", Date: start}),
		}
		closedAt := start.AddDate(0, 3, 1)
		closed, err := repo.CloseSeason(ctx, "spring", closedAt, entries)
		if err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if closed.Active || closed.ClosedAt == nil || !closed.ClosedAt.Equal(closedAt) {
			t.Errorf("unexpected closed season: %+v", closed)
		}

		got, err := repo.SnapshotEntries(ctx, "spring")
		if err != nil || len(got) != 3 {
			t.Fatalf("unexpected snapshot: %d %v", len(got), err)
		}
		mine, err := repo.PlayerSnapshotEntries(ctx, "spring", SnapshotBoardGlobal, "p2")
		if err != nil || len(mine) != 1 || mine[0].Rank != 2 {
			t.Errorf("unexpected player snapshot: %+v %v", mine, err)
		}
		if rec := SnapshotRecord(mine[0]); rec.ID != "r2" || rec.Score != 300 {
			t.Errorf("unexpected record: %+v", rec)
		}
	})

	t.Run("closed season is immutable", func(t *testing.T) {
		if _, err := repo.CloseSeason(ctx, "spring", time.Now(), nil); !errors.Is(err, ErrSeasonClosed) {
			t.Errorf("expected ErrSeasonClosed, got %v", err)
		}
		if _, err := repo.ActivateSeason(ctx, "spring"); !errors.Is(err, ErrSeasonClosed) {
			t.Errorf("expected ErrSeasonClosed, got %v", err)
		}
		got, err := repo.SnapshotEntries(ctx, "spring")
		if err != nil || len(got) != 3 {
			t.Errorf("snapshot must be unchanged: %d %v", len(got), err)
		}
		if _, ok, _ := repo.ActiveSeason(ctx); ok {
			t.Error("no season should be active after close")
		}
		if _, err := repo.ActivateSeason(ctx, "summer"); err != nil {
			t.Errorf("summer activate failed: %v", err)
		}
	})
}

func TestRepository_Reactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	steps := []struct {
		player   string
		kind     model.ReactionKind
		wantMine model.ReactionKind
		likes    int64
		dislikes int64
	}{
		{"p1", model.ReactionLike, model.ReactionLike, 1, 0},
		{"p2", model.ReactionLike, model.ReactionLike, 2, 0},
		{"p1", model.ReactionDislike, model.ReactionDislike, 1, 1},
		{"p1", model.ReactionDislike, "", 1, 0},
	}
	for i, step := range steps {
		mine, err := repo.SetReaction(ctx, step.player, "tetris", step.kind, now)
		if err != nil {
			t.Fatalf("step %d: set failed: %v", i, err)
		}
		if mine != step.wantMine {
			t.Errorf("step %d: mine = %q, want %q", i, mine, step.wantMine)
		}
		likes, dislikes, err := repo.CountReactions(ctx, "tetris")
		if err != nil {
			t.Fatalf("step %d: count failed: %v", i, err)
		}
		if likes != step.likes || dislikes != step.dislikes {
			t.Errorf("step %d: got %d/%d, want %d/%d", i, likes, dislikes, step.likes, step.dislikes)
		}
	}

	if kind, err := repo.PlayerReaction(ctx, "p2", "tetris"); err != nil || kind != model.ReactionLike {
		t.Errorf("unexpected p2 reaction: %q %v", kind, err)
	}
	if kind, err := repo.PlayerReaction(ctx, "p1", "tetris"); err != nil || kind != "" {
		t.Errorf("unexpected p1 reaction: %q %v", kind, err)
	}
}

func TestDBError(t *testing.T) {
	if dbError("op", nil) != nil {
		t.Error("nil should stay nil")
	}
	var dbErr cerrors.DatabaseError
	if !errors.As(dbError("op", errors.New("x")), &dbErr) || dbErr.Operation != "op" {
		t.Error("expected DatabaseError")
	}
}
