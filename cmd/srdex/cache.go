package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the list cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Drop every cached list",
	Long: `Delete all list cache entries under cache.key_prefix. Documents are
never touched. Run this after reloading SRD data.`,
	RunE: runCacheFlush,
}

func init() {
	cacheCmd.AddCommand(cacheFlushCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheFlush(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Cache.Driver != cache.DriverRedis {
		// The memory cache lives inside the server process.
		logger.Warn("cache.driver is not redis; restart the server to drop cached lists",
			zap.String("driver", cfg.Cache.Driver))
		return nil
	}

	c, closeCache, err := openCache(cfg.Cache, store)
	if err != nil {
		return err
	}
	defer closeCache()

	if err := c.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	logger.Info("Flushed list cache", zap.String("prefix", cfg.Cache.KeyPrefix))
	return nil
}
