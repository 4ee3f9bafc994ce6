package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/codec"
	"github.com/kailas-cloud/srdex/internal/domain/collection"
	"github.com/kailas-cloud/srdex/internal/domain/envelope"
	"github.com/kailas-cloud/srdex/internal/metrics"
	recordrepo "github.com/kailas-cloud/srdex/internal/repository/record"
	chiTransport "github.com/kailas-cloud/srdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/srdex/internal/usecase/health"
	resourceuc "github.com/kailas-cloud/srdex/internal/usecase/resource"
	"github.com/kailas-cloud/srdex/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the read-only API. On startup the server waits for the document
store, creates missing search indexes and, when cache.flush_on_start is set,
drops every cached list so entries written by an older data load are not served.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting srdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("cache_codec", cfg.Cache.Codec),
	)

	ctx := cmd.Context()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterResourceMetrics()

	catalog := collection.SRD()

	created, err := recordrepo.NewIndexer(store, cfg.Storage.KeyPrefix).Ensure(ctx, catalog.All())
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if len(created) > 0 {
		logger.Info("Created search indexes", zap.Strings("indexes", created))
	}

	listCache, closeCache, err := openCache(cfg.Cache, store)
	if err != nil {
		return err
	}
	defer closeCache()

	if cfg.Cache.FlushOnStart {
		if err := listCache.FlushAll(ctx); err != nil {
			// A stale cache is still served correctly until entries expire.
			logger.Warn("Failed to flush list cache", zap.Error(err))
		} else {
			logger.Info("Flushed list cache")
		}
	}

	listCodec, err := codec.New[envelope.List](cfg.Cache.Codec)
	if err != nil {
		return fmt.Errorf("cache codec: %w", err)
	}

	repo := recordrepo.New(store, cfg.Storage.KeyPrefix, metrics.StoreQueryDuration)
	resources := resourceuc.New(catalog, repo, listCache, logger).
		WithCodec(listCodec).
		WithTTL(cfg.Cache.TTL()).
		WithCacheMetrics(metrics.ListCacheTotal)
	healthSvc := healthuc.New(store, listCache)

	server := chiTransport.NewServer(resources, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
