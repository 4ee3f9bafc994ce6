package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/cache"
	cacheMemory "github.com/kailas-cloud/srdex/internal/cache/memory"
	cacheRedis "github.com/kailas-cloud/srdex/internal/cache/redis"
	"github.com/kailas-cloud/srdex/internal/config"
	dbRedis "github.com/kailas-cloud/srdex/internal/db/redis"
)

// openStore connects to the document store and waits until it answers.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))
	return store, nil
}

// openCache builds the list cache selected by cache.driver. The returned
// close func releases driver resources and is always non-nil.
func openCache(cfg config.CacheConfig, store *dbRedis.Store) (cache.Store, func(), error) {
	switch cfg.Driver {
	case cache.DriverRedis:
		c, err := cacheRedis.New(store, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("create redis cache: %w", err)
		}
		return c, func() {}, nil
	case cache.DriverMemory:
		c, err := cacheMemory.New(cacheMemory.Config{
			NumCounters: cfg.Memory.NumCounters,
			MaxCost:     cfg.Memory.MaxCostMB << 20,
			BufferItems: cfg.Memory.BufferItems,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create memory cache: %w", err)
		}
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
