// Package cache provides an optional Redis read-through cache for
// redirect lookups. The relational store stays authoritative: cache
// errors are logged and treated as misses, never surfaced to clients.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/chote-app/chote/internal/logger"
)

const (
	keyPrefix    = "chote:url:"
	cacheTimeout = 24 * time.Hour
	opTimeout    = 500 * time.Millisecond
)

// RedirectCache caches short code → long URL lookups.
type RedirectCache struct {
	client *redis.Client
}

// New connects to Redis at addr and returns a RedirectCache.
func New(ctx context.Context, addr string) (*RedirectCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedirectCache{client: client}, nil
}

// Get returns the cached long URL for code, reporting presence.
func (c *RedirectCache) Get(ctx context.Context, code string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	longURL, err := c.client.Get(ctx, keyPrefix+code).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Debugln("redirect cache get failed", zap.Error(err))
		}
		return "", false
	}

	return longURL, true
}

// Set stores the code → long URL mapping with the cache TTL.
func (c *RedirectCache) Set(ctx context.Context, code, longURL string) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, keyPrefix+code, longURL, cacheTimeout).Err(); err != nil {
		logger.Log.Debugln("redirect cache set failed", zap.Error(err))
	}
}

// Close releases the Redis connection.
func (c *RedirectCache) Close() error {
	return c.client.Close()
}
