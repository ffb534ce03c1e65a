package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/remitflow/remitflow/pkg/cache"
)

// RedisRateCache implements cache.RateCache on Redis, for deployments
// where several bot processes should share one rate cache. Entries are
// written without expiry so stale rates survive as a last-resort
// fallback; freshness is judged by the resolver from FetchedAt.
type RedisRateCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisRateCache creates a RedisRateCache from a redis URL.
func NewRedisRateCache(url string, logger *slog.Logger) (*RedisRateCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRateCache{client: redis.NewClient(opt), logger: logger}, nil
}

// Get returns the cached entry for the ordered pair, or nil on a miss.
func (r *RedisRateCache) Get(ctx context.Context, from, to string) (*cache.Entry, error) {
	val, err := r.client.Get(ctx, pairKey(from, to)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("redis cache get failed", "from", from, "to", to, "error", err)
		return nil, err
	}
	var entry cache.Entry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		r.logger.Error("redis cache unmarshal failed", "from", from, "to", to, "error", err)
		return nil, err
	}
	return &entry, nil
}

// Set stores an entry for the ordered pair.
func (r *RedisRateCache) Set(ctx context.Context, from, to string, entry *cache.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, pairKey(from, to), data, 0).Err()
}

// Close releases the underlying Redis connection pool.
func (r *RedisRateCache) Close() error {
	return r.client.Close()
}
