// Package redis disponibiliza a implementação do limiter baseada em Redis.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ratewall/ratewall/internal/core/domain"
	"github.com/ratewall/ratewall/internal/core/ports"
)

// Limiter mirrors the in-memory sliding window semantics on a Redis sorted
// set, so several instances can enforce one shared limit. Member scores are
// admission timestamps in milliseconds; aged entries are removed before
// counting and rejected requests are never recorded.
type Limiter struct {
	client *redis.Client
	limit  domain.Limit

	now func() time.Time
	seq atomic.Int64
}

var _ ports.Limiter = (*Limiter)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config, limit domain.Limit) (*Limiter, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if limit.Window <= 0 || limit.MaxRequests <= 0 {
		return nil, domain.ErrInvalidConfig
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Limiter{client: client, limit: limit, now: time.Now}, nil
}

func (l *Limiter) Close() error {
	return l.client.Close()
}

func (l *Limiter) Allow(ctx context.Context, key string) (domain.Decision, error) {
	nowMs := l.now().UnixMilli()
	windowMs := l.limit.Window.Milliseconds()
	windowStart := nowMs - windowMs
	setKey := "ratelimit:window:" + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, setKey, "-inf", strconv.FormatInt(windowStart, 10))
	count := pipe.ZCard(ctx, setKey)
	oldest := pipe.ZRangeWithScores(ctx, setKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Decision{}, err
	}

	if int(count.Val()) >= l.limit.MaxRequests {
		retryMs := windowMs
		if entries := oldest.Val(); len(entries) > 0 {
			retryMs = int64(entries[0].Score) + windowMs - nowMs
		}
		return domain.Decision{
			Key:               key,
			RetryAfterSeconds: int((retryMs + 999) / 1000),
		}, nil
	}

	// Members must be unique even when two admissions land on the same
	// millisecond, so a process-local sequence disambiguates them.
	member := strconv.FormatInt(nowMs, 10) + "-" + strconv.FormatInt(l.seq.Add(1), 10)

	record := l.client.TxPipeline()
	record.ZAdd(ctx, setKey, redis.Z{Score: float64(nowMs), Member: member})
	record.Expire(ctx, setKey, l.limit.Window)
	if _, err := record.Exec(ctx); err != nil {
		return domain.Decision{}, err
	}

	return domain.Decision{
		Allowed:   true,
		Key:       key,
		Remaining: l.limit.MaxRequests - int(count.Val()) - 1,
	}, nil
}
