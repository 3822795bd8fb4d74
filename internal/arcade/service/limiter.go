package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
)

// SubmissionLimiter: 세션별 점수 제출 속도 제한 (token bucket)
type SubmissionLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterEntry
	idleTTL  time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSubmissionLimiter: RatePerSecond 가 0 이하이면 제한하지 않는다.
func NewSubmissionLimiter(cfg config.SubmissionConfig) *SubmissionLimiter {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &SubmissionLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

// Allow: 세션의 제출을 허용하는지 확인한다.
func (l *SubmissionLimiter) Allow(sessionID string) bool {
	if l == nil || l.limit == rate.Inf {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[sessionID]
	if !ok {
		l.sweepLocked(now)
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[sessionID] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// sweepLocked: 오래 사용되지 않은 세션 limiter 를 정리한다.
func (l *SubmissionLimiter) sweepLocked(now time.Time) {
	for id, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.limiters, id)
		}
	}
}
