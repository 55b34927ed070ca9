// Package services implementa a lógica central de rate limiting.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/ratewall/ratewall/internal/core/domain"
	"github.com/ratewall/ratewall/internal/core/ports"
)

// SlidingWindowLimiter keeps, per client key, the timestamps of admitted
// requests that are still inside the window and decides admission by
// counting them. State lives in process memory only: it does not survive a
// restart, and horizontally scaled instances do not share it. Deployments
// that need one global limit across instances should use the Redis-backed
// limiter instead.
type SlidingWindowLimiter struct {
	windowMs int64
	max      int

	mu       sync.Mutex
	requests map[string][]int64

	now func() time.Time
}

var _ ports.Limiter = (*SlidingWindowLimiter)(nil)

// NewSlidingWindowLimiter cria uma nova instância do limiter em memória.
func NewSlidingWindowLimiter(limit domain.Limit) (*SlidingWindowLimiter, error) {
	if limit.Window <= 0 || limit.MaxRequests <= 0 {
		return nil, domain.ErrInvalidConfig
	}

	return &SlidingWindowLimiter{
		windowMs: limit.Window.Milliseconds(),
		max:      limit.MaxRequests,
		requests: make(map[string][]int64),
		now:      time.Now,
	}, nil
}

// Allow avalia se a requisição identificada pela chave pode prosseguir.
// It never fails in steady state; the error return exists to satisfy
// ports.Limiter alongside backends that can.
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (domain.Decision, error) {
	return l.decide(key, l.now().UnixMilli()), nil
}

// Len reports how many keys are currently tracked.
func (l *SlidingWindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// decide is the synchronous decision path. All arithmetic is integer
// milliseconds; the retry hint rounds up to the next whole second so a
// client honouring it lands at or past window expiry.
func (l *SlidingWindowLimiter) decide(key string, nowMs int64) domain.Decision {
	windowStart := nowMs - l.windowMs

	l.mu.Lock()
	defer l.mu.Unlock()

	valid := pruneLog(l.requests[key], windowStart)

	var decision domain.Decision
	if len(valid) >= l.max {
		// Rejected requests are not recorded: they must not extend the
		// window for future admissions.
		retryMs := valid[0] + l.windowMs - nowMs
		decision = domain.Decision{
			Key:               key,
			RetryAfterSeconds: int((retryMs + 999) / 1000),
		}
		l.requests[key] = valid
	} else {
		valid = append(valid, nowMs)
		l.requests[key] = valid
		decision = domain.Decision{
			Allowed:   true,
			Key:       key,
			Remaining: l.max - len(valid),
		}
	}

	l.pruneAllLocked(key, windowStart)

	return decision
}

// pruneAllLocked drops aged-out timestamps for every other key and evicts
// keys whose logs drained completely. Running it on every decision keeps
// memory bounded by the set of active keys without a background sweep: an
// idle key is evicted the next time any key is checked.
func (l *SlidingWindowLimiter) pruneAllLocked(current string, windowStart int64) {
	for key, log := range l.requests {
		if key == current {
			continue
		}
		valid := pruneLog(log, windowStart)
		if len(valid) == 0 {
			delete(l.requests, key)
			continue
		}
		l.requests[key] = valid
	}
}

// pruneLog keeps timestamps strictly newer than windowStart. Entries are
// appended in arrival order, so the log is sorted and a single scan finds
// the cut point. An entry aged exactly one window is already expired.
func pruneLog(log []int64, windowStart int64) []int64 {
	cut := 0
	for cut < len(log) && log[cut] <= windowStart {
		cut++
	}
	if cut == 0 {
		return log
	}
	return append([]int64(nil), log[cut:]...)
}
