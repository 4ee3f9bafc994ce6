// Package memory is the in-process list-cache driver backed by ristretto.
package memory

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/kailas-cloud/srdex/internal/cache"
)

// Compile-time check: Cache implements cache.Store.
var _ cache.Store = (*Cache)(nil)

// Config sizes the ristretto cache. MaxCost is in bytes of cached values.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// Cache is a process-local cache. Entries are not shared between replicas.
type Cache struct {
	c *ristretto.Cache
}

// New creates a memory cache.
func New(cfg Config) (*Cache, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("memory cache: invalid config")
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get returns the cached value or cache.ErrMiss.
func (m *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, cache.ErrMiss
	}
	b, _ := v.([]byte)
	if b == nil {
		m.c.Del(key)
		return nil, cache.ErrMiss
	}
	return b, nil
}

// Set stores value with its length as cost. Writes are applied before
// Set returns; an entry rejected by the admission policy is not an error.
func (m *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	cost := int64(len(value))
	if ttl > 0 {
		m.c.SetWithTTL(key, value, cost, ttl)
	} else {
		m.c.Set(key, value, cost)
	}
	m.c.Wait()
	return nil
}

// FlushAll drops every entry.
func (m *Cache) FlushAll(_ context.Context) error {
	m.c.Clear()
	return nil
}

// Ping always succeeds.
func (m *Cache) Ping(_ context.Context) error { return nil }

// Close stops the cache's background goroutines.
func (m *Cache) Close() {
	m.c.Wait()
	m.c.Close()
}
