package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/catalog"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

// ReactionService: 게임 좋아요/싫어요
type ReactionService struct {
	catalog   *catalog.Catalog
	sessions  *SessionService
	reactions ReactionStore
	ds        *DataSource
	logger    *slog.Logger
	now       func() time.Time
}

// NewReactionService: 새 ReactionService 를 생성합니다.
func NewReactionService(cat *catalog.Catalog, sessions *SessionService, reactions ReactionStore, ds *DataSource, logger *slog.Logger) *ReactionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReactionService{catalog: cat, sessions: sessions, reactions: reactions, ds: ds, logger: logger, now: time.Now}
}

// React: 반응을 토글한다. 좋아요/싫어요는 배타적이며 같은 종류를 다시 보내면 해제된다.
func (s *ReactionService) React(ctx context.Context, sessionID string, gameID string, kind model.ReactionKind) (model.ReactionSummary, error) {
	gameID = strings.TrimSpace(gameID)
	if _, ok := s.catalog.Game(gameID); !ok {
		return model.ReactionSummary{}, aerrors.Validation("gameId", "unknown game %q", gameID)
	}
	kind = model.ReactionKind(strings.ToLower(strings.TrimSpace(string(kind))))
	if kind != model.ReactionLike && kind != model.ReactionDislike {
		return model.ReactionSummary{}, aerrors.Validation("kind", "must be like or dislike")
	}

	user, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return model.ReactionSummary{}, err
	}

	mine, err := call(ctx, s.ds, "set_reaction", func(ctx context.Context) (model.ReactionKind, error) {
		return s.reactions.SetReaction(ctx, user.ID, gameID, kind, s.now())
	})
	if err != nil {
		return model.ReactionSummary{}, err
	}

	summary, err := s.counts(ctx, gameID)
	if err != nil {
		return model.ReactionSummary{}, err
	}
	summary.Mine = mine
	return summary, nil
}

// Summary: 게임 반응 집계. playerID 가 있으면 해당 플레이어의 반응도 채운다.
func (s *ReactionService) Summary(ctx context.Context, gameID string, playerID string) (model.ReactionSummary, error) {
	gameID = strings.TrimSpace(gameID)
	if _, ok := s.catalog.Game(gameID); !ok {
		return model.ReactionSummary{}, aerrors.Validation("gameId", "unknown game %q", gameID)
	}
	summary, err := s.counts(ctx, gameID)
	if err != nil {
		return model.ReactionSummary{}, err
	}
	if playerID = strings.TrimSpace(playerID); playerID != "" {
		mine, err := call(ctx, s.ds, "player_reaction", func(ctx context.Context) (model.ReactionKind, error) {
			return s.reactions.PlayerReaction(ctx, playerID, gameID)
		})
		if err != nil {
			return model.ReactionSummary{}, err
		}
		summary.Mine = mine
	}
	return summary, nil
}

func (s *ReactionService) counts(ctx context.Context, gameID string) (model.ReactionSummary, error) {
	type counts struct{ likes, dislikes int64 }
	c, err := call(ctx, s.ds, "count_reactions", func(ctx context.Context) (counts, error) {
		likes, dislikes, err := s.reactions.CountReactions(ctx, gameID)
		return counts{likes: likes, dislikes: dislikes}, err
	})
	if err != nil {
		return model.ReactionSummary{}, err
	}
	return model.ReactionSummary{GameID: gameID, Likes: c.likes, Dislikes: c.dislikes}, nil
}
