package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "ledger:version"

// Cache wraps Redis based caching of summary payloads with a version counter
// for invalidation. Caching is best-effort: a nil client or a failing Redis
// degrades to direct loads, never to request errors.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version. When Redis is
// unreachable the unversioned key is returned; FetchJSON will then bypass the
// cache for it anyway.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) string {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined
	}
	ver, err := c.version(ctx)
	if err != nil {
		c.logger.Warn("summary cache unavailable, skipping version", slog.Any("error", err))
		return joined
	}
	return fmt.Sprintf("%s:%d", joined, ver)
}

func loadInto(ctx context.Context, dest any, loader func(context.Context) (any, error)) ([]byte, error) {
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return raw, json.Unmarshal(raw, dest)
}

// FetchJSON loads a cached value or populates it using the loader. Redis
// read/write failures count as cache misses: the loader result is returned
// and the failure is logged.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if c == nil || c.client == nil {
		_, err := loadInto(ctx, dest, loader)
		return err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		c.logger.Warn("summary cache read failed, loading directly", slog.Any("error", err))
		_, lerr := loadInto(ctx, dest, loader)
		return lerr
	}
	raw, err := loadInto(ctx, dest, loader)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("summary cache write failed", slog.Any("error", err))
	}
	return nil
}

// Bump invalidates all cached summaries by incrementing the version. A Redis
// failure here is tolerable: versioned reads already fall back to direct
// loads when Redis is down.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
