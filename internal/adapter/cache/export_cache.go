// Package cache keeps finished export files in Redis, keyed by a hash of
// the markup and page geometry that produced them.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "resume:export:"
	DefaultTTL = 24 * time.Hour
)

type ExportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewExportCache wraps rdb. A nil client yields a cache that always misses.
func NewExportCache(rdb *redis.Client, ttl time.Duration) *ExportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ExportCache{rdb: rdb, ttl: ttl}
}

func (c *ExportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	b, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *ExportCache) Set(ctx context.Context, key string, pdf []byte) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Set(ctx, keyPrefix+key, pdf, c.ttl).Err()
}
