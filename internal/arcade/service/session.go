package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	aerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/model"
)

const defaultAvatar = "/placeholder.svg"

// RegisterInput: 신규 프로필 생성 입력
type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=2,max=32"`
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"omitempty,max=64"`
	Avatar      string `json:"avatar" validate:"omitempty,max=512"`
}

// LoginInput: 모의 로그인 입력. 자격 증명 검증은 하지 않는다.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"omitempty,min=2,max=32"`
}

// SessionService: 세션 KV 에 저장된 사용자 프로필 관리
type SessionService struct {
	storage SessionStorage
	lock    ProfileLocker
	ds      *DataSource
	logger  *slog.Logger
	now     func() time.Time
}

// NewSessionService: 새 SessionService 를 생성합니다.
func NewSessionService(storage SessionStorage, lock ProfileLocker, ds *DataSource, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{storage: storage, lock: lock, ds: ds, logger: logger, now: time.Now}
}

type storedValue struct {
	raw string
	ok  bool
}

// Hydrate: 세션의 사용자 프로필을 읽는다.
// 없거나 손상된 경우 nil 을 반환한다. (로그아웃 상태) 손상된 값은 삭제된다.
func (s *SessionService) Hydrate(ctx context.Context, sessionID string) (*model.User, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	kv := s.storage.For(sessionID)

	stored, err := call(ctx, s.ds, "session_get", func(ctx context.Context) (storedValue, error) {
		raw, ok, err := kv.Get(ctx, config.SessionUserKey)
		return storedValue{raw: raw, ok: ok}, err
	})
	if err != nil {
		return nil, err
	}
	if !stored.ok {
		return nil, nil
	}

	var user model.User
	if err := json.Unmarshal([]byte(stored.raw), &user); err != nil || user.ID == "" {
		s.logger.Warn("session_payload_malformed", "session_id", sessionID, "err", err)
		if rmErr := kv.Remove(ctx, config.SessionUserKey); rmErr != nil {
			s.logger.Warn("session_payload_remove_failed", "session_id", sessionID, "err", rmErr)
		}
		return nil, nil
	}
	return &user, nil
}

// Current: 로그인된 사용자를 반환한다. 없으면 AuthRequiredError.
func (s *SessionService) Current(ctx context.Context, sessionID string) (*model.User, error) {
	user, err := s.Hydrate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, aerrors.AuthRequiredError{Operation: "current"}
	}
	return user, nil
}

// Register: 새 프로필을 만들어 세션에 저장한다. 기존 세션 프로필은 덮어쓴다.
func (s *SessionService) Register(ctx context.Context, sessionID string, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, aerrors.Validation("sessionId", "must not be empty")
	}

	user := s.newUser(in.Username, in.Email, in.DisplayName, in.Avatar)
	err := s.lock.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return s.save(ctx, sessionID, user)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user_registered", "session_id", sessionID, "user_id", user.ID)
	return user, nil
}

// Login: 모의 로그인. 같은 이메일의 프로필이 세션에 있으면 LastLogin 만 갱신하고, 없으면 새로 만든다.
func (s *SessionService) Login(ctx context.Context, sessionID string, in LoginInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, aerrors.Validation("sessionId", "must not be empty")
	}

	var user *model.User
	err := s.lock.WithLock(ctx, sessionID, func(ctx context.Context) error {
		existing, err := s.Hydrate(ctx, sessionID)
		if err != nil {
			return err
		}
		if existing != nil && strings.EqualFold(existing.Email, in.Email) {
			existing.LastLogin = s.now().UTC()
			user = existing
		} else {
			username := in.Username
			if username == "" {
				username, _, _ = strings.Cut(in.Email, "@")
			}
			user = s.newUser(username, in.Email, "", "")
		}
		return s.save(ctx, sessionID, user)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user_logged_in", "session_id", sessionID, "user_id", user.ID)
	return user, nil
}

// Logout: 세션의 프로필을 삭제한다.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	kv := s.storage.For(sessionID)
	return s.lock.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return callErr(ctx, s.ds, "session_remove", func(ctx context.Context) error {
			return kv.Remove(ctx, config.SessionUserKey)
		})
	})
}

// Mutate: 프로필 락 안에서 read-modify-write 를 수행한다. fn 이 실패하면 아무것도 저장하지 않는다.
func (s *SessionService) Mutate(ctx context.Context, sessionID string, op string, fn func(ctx context.Context, user *model.User) error) (*model.User, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, aerrors.AuthRequiredError{Operation: op}
	}

	var user *model.User
	err := s.lock.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := s.Hydrate(ctx, sessionID)
		if err != nil {
			return err
		}
		if current == nil {
			return aerrors.AuthRequiredError{Operation: op}
		}
		if err := fn(ctx, current); err != nil {
			return err
		}
		if err := s.save(ctx, sessionID, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SessionService) save(ctx context.Context, sessionID string, user *model.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return aerrors.WrapDataSource("session_marshal", err)
	}
	kv := s.storage.For(sessionID)
	return callErr(ctx, s.ds, "session_set", func(ctx context.Context) error {
		return kv.Set(ctx, config.SessionUserKey, string(payload))
	})
}

func (s *SessionService) newUser(username, email, displayName, avatar string) *model.User {
	now := s.now().UTC()
	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}
	if strings.TrimSpace(avatar) == "" {
		avatar = defaultAvatar
	}
	return &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		Avatar:       strings.TrimSpace(avatar),
		CreatedAt:    now,
		LastLogin:    now,
		Stats:        model.UserStats{Level: 1},
		Achievements: []model.Achievement{},
		RecentGames:  []model.RecentGame{},
		Rewards:      []model.Reward{},
	}
}
