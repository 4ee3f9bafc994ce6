package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/domain/collection"
	recordrepo "github.com/kailas-cloud/srdex/internal/repository/record"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Manage document search indexes",
}

var indexesEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create missing search indexes",
	Long: `Create one search index per SRD collection over the documents stored
under storage.key_prefix. Existing indexes are left untouched unless
--recreate is given, in which case every index is dropped and rebuilt with
the current schema. Stored documents are kept.`,
	RunE: runIndexesEnsure,
}

var recreateIndexes bool

func init() {
	indexesEnsureCmd.Flags().BoolVar(&recreateIndexes, "recreate", false,
		"drop and rebuild existing indexes")
	indexesCmd.AddCommand(indexesEnsureCmd)
	rootCmd.AddCommand(indexesCmd)
}

func runIndexesEnsure(cmd *cobra.Command, _ []string) error {
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

	cols := collection.SRD().All()
	indexer := recordrepo.NewIndexer(store, cfg.Storage.KeyPrefix)
	ensure := indexer.Ensure
	if recreateIndexes {
		ensure = indexer.Recreate
	}
	created, err := ensure(ctx, cols)
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("Indexes ensured",
		zap.Int("collections", len(cols)),
		zap.Bool("recreate", recreateIndexes),
		zap.Strings("created", created),
	)
	return nil
}
