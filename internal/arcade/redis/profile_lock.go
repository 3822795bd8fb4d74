package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/lockutil"
)

// ProfileLock: 세션 프로필 read-modify-write 직렬화를 위한 락
// 여러 탭에서 동시에 제출해도 프로필 갱신이 순서대로 적용된다.
type ProfileLock struct {
	locker *lockutil.Locker
}

// NewProfileLock: ttl 은 락 최대 보유 시간, wait 는 획득 대기 시간.
func NewProfileLock(client valkey.Client, logger *slog.Logger, ttl time.Duration, wait time.Duration) *ProfileLock {
	return &ProfileLock{
		locker: lockutil.NewLocker(client, logger, lockutil.Options{
			TTL:         ttl,
			WaitTimeout: wait,
		}),
	}
}

// WithLock: 세션 프로필 락을 잡고 fn 을 실행합니다.
func (p *ProfileLock) WithLock(ctx context.Context, sessionID string, fn func(ctx context.Context) error) error {
	return p.locker.WithLock(ctx, profileLockKey(sessionID), fn)
}
