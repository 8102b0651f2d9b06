package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segyhp/membership-fees/internal/domain"
	customError "github.com/segyhp/membership-fees/pkg/errors"
)

const (
	statsKeyPrefix = "fees:dashboard:stats:"
	generationKey  = "fees:dashboard:gen"
)

// StatsCache keeps computed dashboard stats in Redis for a short TTL.
// Entries are keyed by a write generation; Invalidate bumps the generation,
// so a result computed from a scan that raced a write lands under a key no
// later reader asks for. A nil *StatsCache is valid and always misses.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache returns nil when caching is disabled (no client or ttl <= 0).
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(gen int64) string {
	return statsKeyPrefix + strconv.FormatInt(gen, 10)
}

// Generation returns the current write generation. Zero until the first
// Invalidate.
func (c *StatsCache) Generation(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}

	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, customError.WrapCacheError(fmt.Errorf("get stats generation: %w", err))
	}
	return gen, nil
}

// Get returns the stats cached for gen; ok is false on a miss.
func (c *StatsCache) Get(ctx context.Context, gen int64) (*domain.DashboardStats, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	raw, err := c.client.Get(ctx, statsKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, customError.WrapCacheError(fmt.Errorf("get stats cache: %w", err))
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, customError.WrapCacheError(fmt.Errorf("decode stats cache: %w", err))
	}
	return &stats, true, nil
}

// Set stores stats computed while gen was current.
func (c *StatsCache) Set(ctx context.Context, gen int64, stats *domain.DashboardStats) error {
	if c == nil || stats == nil {
		return nil
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return customError.WrapCacheError(fmt.Errorf("encode stats cache: %w", err))
	}
	if err := c.client.Set(ctx, statsKey(gen), raw, c.ttl).Err(); err != nil {
		return customError.WrapCacheError(fmt.Errorf("set stats cache: %w", err))
	}
	return nil
}

// Invalidate advances the generation and drops the entry it replaces.
// Called after every write that changes the dashboard.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	gen, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		return customError.WrapCacheError(fmt.Errorf("invalidate stats cache: %w", err))
	}
	if err := c.client.Del(ctx, statsKey(gen-1)).Err(); err != nil {
		return customError.WrapCacheError(fmt.Errorf("drop stale stats: %w", err))
	}
	return nil
}
