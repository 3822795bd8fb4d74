// Package catalog 는 내장 YAML 로 정의된 게임/보상/업적/시드 시즌 카탈로그를 제공한다.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/validation"
)

//go:embed catalog.yaml
var embedded []byte

type gameDef struct {
	ID          string  `yaml:"id" json:"id" validate:"required"`
	Title       string  `yaml:"title" json:"title" validate:"required"`
	Category    string  `yaml:"category" json:"category" validate:"required"`
	Rating      float64 `yaml:"rating" json:"rating" validate:"gte=0,lte=5"`
	Description string  `yaml:"description" json:"description"`
	Thumbnail   string  `yaml:"thumbnail" json:"thumbnail" validate:"omitempty,url"`
	EmbedURL    string  `yaml:"embedUrl" json:"embedUrl"`
}

type rewardDef struct {
	ID          string         `yaml:"id" json:"id" validate:"required"`
	Title       string         `yaml:"title" json:"title" validate:"required"`
	Description string         `yaml:"description" json:"description"`
	Icon        string         `yaml:"icon" json:"icon"`
	Type        string         `yaml:"type" json:"type" validate:"required,oneof=badge title theme feature"`
	Rarity      string         `yaml:"rarity" json:"rarity" validate:"required,oneof=common uncommon rare epic legendary"`
	Requirement map[string]any `yaml:"requirement" json:"requirement" validate:"required"`
}

type achievementDef struct {
	ID          string `yaml:"id" json:"id" validate:"required"`
	Title       string `yaml:"title" json:"title" validate:"required"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Points      int    `yaml:"points" json:"points" validate:"gte=0"`
	GameID      string `yaml:"gameId" json:"gameId"`
}

type seasonDef struct {
	Name  string    `yaml:"name" json:"name" validate:"required"`
	Start time.Time `yaml:"start" json:"start" validate:"required"`
	End   time.Time `yaml:"end" json:"end" validate:"required,gtfield=Start"`
}

type document struct {
	Games        []gameDef        `yaml:"games"`
	Rewards      []rewardDef      `yaml:"rewards"`
	Achievements []achievementDef `yaml:"achievements"`
	Seasons      []seasonDef      `yaml:"seasons"`
}

// SeedSeason: 시즌 테이블이 비어있을 때 생성할 시즌
type SeedSeason struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Catalog: 읽기 전용 카탈로그. 생성 후 변경되지 않으므로 동시 접근에 안전하다.
type Catalog struct {
	games        []model.Game
	gameIndex    map[string]int
	categories   []string
	categoryKeys map[string]string // 정규화 라벨 -> 카탈로그 표기
	rewards      []model.Reward
	rewardIndex  map[string]int
	achievements []model.AchievementDef
	achIndex     map[string]int
	seasons      []SeedSeason
}

// Load: 내장 카탈로그를 파싱한다.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse: YAML 카탈로그를 파싱하고 검증한다.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog yaml failed: %w", err)
	}

	c := &Catalog{
		gameIndex:    make(map[string]int, len(doc.Games)),
		categoryKeys: make(map[string]string),
		rewardIndex:  make(map[string]int, len(doc.Rewards)),
		achIndex:     make(map[string]int, len(doc.Achievements)),
	}

	for _, g := range doc.Games {
		if err := validation.Struct(g); err != nil {
			return nil, fmt.Errorf("game %q: %w", g.ID, err)
		}
		if _, dup := c.gameIndex[g.ID]; dup {
			return nil, fmt.Errorf("duplicate game id %q", g.ID)
		}
		category := strings.TrimSpace(g.Category)
		key := NormalizeLabel(category)
		if existing, ok := c.categoryKeys[key]; ok {
			category = existing
		} else {
			c.categoryKeys[key] = category
			c.categories = append(c.categories, category)
		}
		c.gameIndex[g.ID] = len(c.games)
		c.games = append(c.games, model.Game{
			ID:          g.ID,
			Title:       g.Title,
			Category:    category,
			Rating:      g.Rating,
			Description: g.Description,
			Thumbnail:   g.Thumbnail,
			EmbedURL:    g.EmbedURL,
		})
	}
	sort.Strings(c.categories)

	for _, r := range doc.Rewards {
		reward, err := c.buildReward(r)
		if err != nil {
			return nil, err
		}
		c.rewardIndex[reward.ID] = len(c.rewards)
		c.rewards = append(c.rewards, reward)
	}

	for _, a := range doc.Achievements {
		if err := validation.Struct(a); err != nil {
			return nil, fmt.Errorf("achievement %q: %w", a.ID, err)
		}
		if a.GameID != "" {
			if _, ok := c.gameIndex[a.GameID]; !ok {
				return nil, fmt.Errorf("achievement %q references unknown game %q", a.ID, a.GameID)
			}
		}
		if _, dup := c.achIndex[a.ID]; dup {
			return nil, fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		c.achIndex[a.ID] = len(c.achievements)
		c.achievements = append(c.achievements, model.AchievementDef(a))
	}

	for _, s := range doc.Seasons {
		if err := validation.Struct(s); err != nil {
			return nil, fmt.Errorf("season %q: %w", s.Name, err)
		}
		c.seasons = append(c.seasons, SeedSeason{Name: s.Name, Start: s.Start.UTC(), End: s.End.UTC()})
	}

	return c, nil
}

func (c *Catalog) buildReward(r rewardDef) (model.Reward, error) {
	if err := validation.Struct(r); err != nil {
		return model.Reward{}, fmt.Errorf("reward %q: %w", r.ID, err)
	}
	if _, dup := c.rewardIndex[r.ID]; dup {
		return model.Reward{}, fmt.Errorf("duplicate reward id %q", r.ID)
	}

	req, err := DecodeRequirement(r.Requirement)
	if err != nil {
		return model.Reward{}, fmt.Errorf("reward %q: %w", r.ID, err)
	}
	if req.Category != "" {
		canonical, ok := c.CanonicalCategory(req.Category)
		if !ok || canonical == model.CategoryAll {
			return model.Reward{}, fmt.Errorf("reward %q references unknown category %q", r.ID, req.Category)
		}
		req.Category = canonical
	}
	if req.GameID != "" {
		if _, ok := c.gameIndex[req.GameID]; !ok {
			return model.Reward{}, fmt.Errorf("reward %q references unknown game %q", r.ID, req.GameID)
		}
	}

	return model.Reward{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Icon:        r.Icon,
		Type:        model.RewardType(r.Type),
		Rarity:      model.Rarity(r.Rarity),
		Requirement: req,
	}, nil
}

// Game: ID 로 게임을 조회한다.
func (c *Catalog) Game(id string) (model.Game, bool) {
	idx, ok := c.gameIndex[strings.TrimSpace(id)]
	if !ok {
		return model.Game{}, false
	}
	return c.games[idx], true
}

// Games: 카테고리에 속한 게임 목록. 빈 값이나 "all" 은 전체. 모르는 카테고리는 false.
func (c *Catalog) Games(category string) ([]model.Game, bool) {
	canonical, ok := c.CanonicalCategory(category)
	if !ok {
		return nil, false
	}
	if canonical == model.CategoryAll {
		return slices.Clone(c.games), true
	}
	out := make([]model.Game, 0, len(c.games))
	for _, g := range c.games {
		if g.Category == canonical {
			out = append(out, g)
		}
	}
	return out, true
}

// Categories: 카탈로그 카테고리 (이름순)
func (c *Catalog) Categories() []string {
	return slices.Clone(c.categories)
}

// CanonicalCategory: 대소문자/유니코드 정규화 후 카탈로그 카테고리 표기를 반환한다.
// 빈 값과 "all" 은 model.CategoryAll 로 취급한다.
func (c *Catalog) CanonicalCategory(label string) (string, bool) {
	key := NormalizeLabel(label)
	if key == "" || key == model.CategoryAll {
		return model.CategoryAll, true
	}
	canonical, ok := c.categoryKeys[key]
	return canonical, ok
}

// Reward: ID 로 보상 정의를 조회한다.
func (c *Catalog) Reward(id string) (model.Reward, bool) {
	idx, ok := c.rewardIndex[id]
	if !ok {
		return model.Reward{}, false
	}
	return c.rewards[idx], true
}

// Rewards: 전체 보상 정의 (정의 순서)
func (c *Catalog) Rewards() []model.Reward {
	return slices.Clone(c.rewards)
}

// Achievement: ID 로 업적 정의를 조회한다.
func (c *Catalog) Achievement(id string) (model.AchievementDef, bool) {
	idx, ok := c.achIndex[strings.TrimSpace(id)]
	if !ok {
		return model.AchievementDef{}, false
	}
	return c.achievements[idx], true
}

// Achievements: 전체 업적 정의
func (c *Catalog) Achievements() []model.AchievementDef {
	return slices.Clone(c.achievements)
}

// SeedSeasons: 초기 시즌 목록
func (c *Catalog) SeedSeasons() []SeedSeason {
	return slices.Clone(c.seasons)
}
