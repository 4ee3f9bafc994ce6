// Package cache defines the list-cache contract shared by its drivers.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a byte cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Supported driver names.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)
