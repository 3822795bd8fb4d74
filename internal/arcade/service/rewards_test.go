package service

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

func rewardIDs(rewards []model.Reward) []string {
	ids := make([]string, 0, len(rewards))
	for _, r := range rewards {
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	return ids
}

func TestRewards_UnlockOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	env.seedScore(t, "t1", "p1", "tetris", 500, now)

	first, err := env.rewards.CheckRewards(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got := rewardIDs(first); !slices.Equal(got, []string{"reward1", "reward4"}) {
		t.Fatalf("unexpected first unlock: %v", got)
	}
	for _, r := range first {
		if !r.Unlocked || r.UnlockedAt == nil || !r.UnlockedAt.Equal(now) {
			t.Errorf("reward %s missing unlock state: %+v", r.ID, r)
		}
	}

	second, err := env.rewards.CheckRewards(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 0 {
		t.Errorf("second check must be empty, got %v", rewardIDs(second))
	}

	t.Run("category rank and score", func(t *testing.T) {
		env.seedScore(t, "s1", "p1", "snake", 60000, now)
		got, err := env.rewards.CheckRewards(ctx, "p1")
		if err != nil {
			t.Fatal(err)
		}
		if ids := rewardIDs(got); !slices.Equal(ids, []string{"reward3", "reward5"}) {
			t.Errorf("unexpected unlocks: %v", ids)
		}

		env.seedScore(t, "g1", "p1", "2048", 100000, now)
		got, _ = env.rewards.CheckRewards(ctx, "p1")
		if ids := rewardIDs(got); !slices.Equal(ids, []string{"reward2"}) {
			t.Errorf("unexpected unlocks: %v", ids)
		}
	})

	t.Run("player rewards", func(t *testing.T) {
		all, err := env.rewards.PlayerRewards(ctx, "p1")
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != len(env.catalog.Rewards()) {
			t.Fatalf("expected full catalog, got %d", len(all))
		}
		for _, r := range all {
			if !r.Unlocked {
				t.Errorf("reward %s should be unlocked", r.ID)
			}
		}

		other, _ := env.rewards.PlayerRewards(ctx, "p2")
		for _, r := range other {
			if r.Unlocked {
				t.Errorf("unlock state must be per player, %s leaked", r.ID)
			}
		}
	})
}

func TestRewards_RankThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	for i := 0; i < 10; i++ {
		env.seedScore(t, fmt.Sprintf("top%d", i), fmt.Sprintf("pro%d", i), "tetris", int64(1000+i), now.Add(-time.Hour))
	}
	env.seedScore(t, "mine", "rookie", "tetris", 10, now)

	got, err := env.rewards.CheckRewards(ctx, "rookie")
	if err != nil {
		t.Fatal(err)
	}
	if ids := rewardIDs(got); !slices.Equal(ids, []string{"reward4"}) {
		t.Errorf("rank 11 must not unlock reward1, got %v", ids)
	}

	// 혼자 플레이한 게임이라도 전체 리더보드 순위는 11위다
	env.seedScore(t, "mine2", "rookie", "puzzleworld", 10, now)
	got, _ = env.rewards.CheckRewards(ctx, "rookie")
	if len(got) != 0 {
		t.Errorf("per-game first place must not count, got %v", rewardIDs(got))
	}

	env.seedScore(t, "mine3", "rookie", "tetris", 1005, now)
	got, _ = env.rewards.CheckRewards(ctx, "rookie")
	if ids := rewardIDs(got); !slices.Equal(ids, []string{"reward1"}) {
		t.Errorf("expected reward1 inside the top 10, got %v", ids)
	}
	again, _ := env.rewards.CheckRewards(ctx, "rookie")
	if len(again) != 0 {
		t.Errorf("reward1 must not be reported twice, got %v", rewardIDs(again))
	}
}

func TestRewards_CategoryScopedRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	env.seedScore(t, "o1", "other", "pacman", 1000, now)
	env.seedScore(t, "m1", "me", "snake", 10, now)

	got, err := env.rewards.CheckRewards(ctx, "me")
	if err != nil {
		t.Fatal(err)
	}
	if ids := rewardIDs(got); !slices.Equal(ids, []string{"reward1", "reward4"}) {
		t.Errorf("second place in Arcade must not unlock reward3, got %v", ids)
	}

	env.seedScore(t, "m2", "me", "flappybird", 2000, now)
	got, _ = env.rewards.CheckRewards(ctx, "me")
	if ids := rewardIDs(got); !slices.Equal(ids, []string{"reward3"}) {
		t.Errorf("expected reward3 after taking Arcade first place, got %v", ids)
	}
}

const puzzleRankCatalog = `
games:
  - id: tetris
    title: Tetris Classic
    category: Puzzle
  - id: "2048"
    title: "2048"
    category: Puzzle
  - id: snake
    title: Snake
    category: Arcade
rewards:
  - id: puzzle-top10
    title: Puzzle Top 10
    type: badge
    rarity: rare
    requirement:
      type: rank
      threshold: 10
      category: Puzzle
`

func TestRewards_PuzzleTopTenUnlocksOnce(t *testing.T) {
	env := newTestEnv(t)
	cat, err := catalog.Parse([]byte(puzzleRankCatalog))
	if err != nil {
		t.Fatalf("parse catalog failed: %v", err)
	}
	env.catalog = cat
	env.build(env.repo)

	ctx := context.Background()
	now := env.clock.Now()
	for i := 0; i < 10; i++ {
		game := "tetris"
		if i%2 == 1 {
			game = "2048"
		}
		env.seedScore(t, fmt.Sprintf("pro%d", i), fmt.Sprintf("pro%d", i), game, int64(1000+i), now.Add(-time.Hour))
	}

	steps := []struct {
		name   string
		gameID string
		score  int64
		want   []string
	}{
		{name: "arcade first place", gameID: "snake", score: 999999, want: []string{}},
		{name: "puzzle rank 11", gameID: "tetris", score: 10, want: []string{}},
		{name: "puzzle top ten", gameID: "2048", score: 1005, want: []string{"puzzle-top10"}},
		{name: "unrelated submission", gameID: "snake", score: 5, want: []string{}},
		{name: "puzzle rank 1", gameID: "tetris", score: 5000, want: []string{}},
	}
	for i, step := range steps {
		env.seedScore(t, fmt.Sprintf("rookie%d", i), "rookie", step.gameID, step.score, now)
		got, err := env.rewards.CheckRewards(ctx, "rookie")
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if ids := rewardIDs(got); !slices.Equal(ids, step.want) {
			t.Errorf("%s: got %v, want %v", step.name, ids, step.want)
		}
	}
}
func TestRewards_NoRecords(t *testing.T) {
	env := newTestEnv(t)
	got, err := env.rewards.CheckRewards(context.Background(), "nobody")
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("expected empty result, got %v %v", got, err)
	}
	if _, err := env.rewards.CheckRewards(context.Background(), ""); err == nil {
		t.Error("expected validation error for empty player")
	}
}
