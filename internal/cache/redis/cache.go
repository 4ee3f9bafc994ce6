// Package redis is the shared Redis list-cache driver.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/srdex/internal/cache"
	"github.com/kailas-cloud/srdex/internal/db"
)

const flushBatch = 500

// Compile-time check: Cache implements cache.Store.
var _ cache.Store = (*Cache)(nil)

// store is the consumer interface for the Redis cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Ping(ctx context.Context) error
}

// Cache stores entries under a key prefix in Redis.
type Cache struct {
	store  store
	prefix string
}

// New creates a Redis cache. Every key is stored under prefix, which also
// bounds FlushAll.
func New(s store, prefix string) (*Cache, error) {
	if prefix == "" {
		return nil, fmt.Errorf("cache key prefix is required")
	}
	return &Cache{store: s, prefix: prefix}, nil
}

// Get returns the cached value or cache.ErrMiss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.store.Get(ctx, c.prefix+key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return data, nil
}

// Set stores value with SET EX.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.store.SetWithTTL(ctx, c.prefix+key, value, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// FlushAll deletes every key under the cache prefix. Documents and indexes
// sharing the same Redis are not touched.
func (c *Cache) FlushAll(ctx context.Context) error {
	keys, err := c.store.Scan(ctx, c.prefix+"*")
	if err != nil {
		return fmt.Errorf("cache flush scan: %w", err)
	}
	for start := 0; start < len(keys); start += flushBatch {
		end := min(start+flushBatch, len(keys))
		if err := c.store.Del(ctx, keys[start:end]...); err != nil {
			return fmt.Errorf("cache flush del: %w", err)
		}
	}
	return nil
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("cache ping: %w", err)
	}
	return nil
}
