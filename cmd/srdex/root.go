package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/config"
	logpkg "github.com/kailas-cloud/srdex/internal/logger"
	"github.com/kailas-cloud/srdex/internal/version"
)

// Global flags.
var env string

var rootCmd = &cobra.Command{
	Use:   "srdex",
	Short: "Read-only REST API for tabletop SRD reference data",
	Long: `srdex serves classes, spells, monsters, equipment and rules from a
Redis document store, with a cache-aside layer in front of list queries.

Examples:
  # Run the API server
  srdex serve

  # Create missing search indexes
  srdex indexes ensure

  # Drop every cached list
  srdex cache flush`,
	Version:      version.String(),
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", config.GetEnv(),
		"environment; selects config/<env>.yaml (default from ENV)")
}

// bootstrap loads the configuration and builds the logger for a command.
func bootstrap() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
