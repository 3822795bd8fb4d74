package lockutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valkey-io/valkey-go"

	cerrors "github.com/park285/llm-kakao-bots/arcade-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/valkeyx"
)

// releaseScript: 토큰이 일치할 때만 락을 해제한다. (다른 소유자의 락 삭제 방지)
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var errNotAcquired = errors.New("lock not acquired")

// Options: 락 TTL 및 대기 정책입니다.
type Options struct {
	TTL           time.Duration // 락 보유 최대 시간
	WaitTimeout   time.Duration // 획득 대기 최대 시간 (0이면 1회 시도)
	RetryInterval time.Duration // 재시도 초기 간격
}

// Locker: SET NX PX 기반 토큰 락을 제공합니다.
type Locker struct {
	client  valkey.Client
	logger  *slog.Logger
	opts    Options
	release *valkey.Lua
}

// Lease: 획득한 락 핸들입니다.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// NewLocker: 새 Locker를 생성합니다.
func NewLocker(client valkey.Client, logger *slog.Logger, opts Options) *Locker {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 25 * time.Millisecond
	}
	return &Locker{
		client:  client,
		logger:  logger,
		opts:    opts,
		release: valkey.NewLuaScript(releaseScript),
	}
}

// NewToken: 락 식별을 위한 임의 토큰을 생성합니다.
func NewToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("rand read failed: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// Acquire: 락을 획득합니다. WaitTimeout 동안 지수 백오프로 재시도하며, 끝내 실패하면 LockError를 반환합니다.
func (l *Locker) Acquire(ctx context.Context, key string) (*Lease, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("lock key is empty")
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	tryOnce := func() error {
		cmd := l.client.B().Set().Key(key).Value(token).Nx().Px(l.opts.TTL).Build()
		if err := l.client.Do(ctx, cmd).Error(); err != nil {
			if valkeyx.IsNil(err) {
				return errNotAcquired
			}
			return backoff.Permanent(cerrors.RedisError{Operation: "lock_acquire", Err: err})
		}
		return nil
	}

	if l.opts.WaitTimeout <= 0 {
		err = tryOnce()
	} else {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = l.opts.RetryInterval
		b.MaxInterval = 8 * l.opts.RetryInterval
		b.MaxElapsedTime = l.opts.WaitTimeout
		err = backoff.Retry(tryOnce, backoff.WithContext(b, ctx))
	}

	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		if errors.Is(err, errNotAcquired) {
			l.logger.Debug("lock_busy", "key", key)
			return nil, cerrors.LockError{Key: key, Description: "lock busy"}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("lock acquire cancelled: %w", ctxErr)
		}
		return nil, err
	}

	l.logger.Debug("lock_acquired", "key", key)
	return &Lease{locker: l, key: key, token: token}, nil
}

// Release: 보유 중인 락을 해제합니다. 이미 만료되어 다른 소유자에게 넘어간 경우 아무것도 하지 않습니다.
func (le *Lease) Release(ctx context.Context) error {
	if le == nil {
		return nil
	}
	resp := le.locker.release.Exec(ctx, le.locker.client, []string{le.key}, []string{le.token})
	deleted, err := resp.AsInt64()
	if err != nil {
		return cerrors.RedisError{Operation: "lock_release", Err: err}
	}
	if deleted == 0 {
		le.locker.logger.Warn("lock_release_skipped", "key", le.key, "reason", "expired_or_stolen")
	}
	return nil
}

// WithLock: 락을 획득한 상태에서 fn을 실행하고 항상 해제합니다.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lease, err := l.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		// 요청 컨텍스트가 취소되어도 해제는 시도한다
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if relErr := lease.Release(releaseCtx); relErr != nil {
			l.logger.Warn("lock_release_failed", "key", key, "err", relErr)
		}
	}()
	return fn(ctx)
}
