package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/srdex/internal/db"
	"github.com/kailas-cloud/srdex/internal/domain/collection"
	"github.com/kailas-cloud/srdex/internal/domain/collection/field"
)

// indexStore is the consumer interface for index management (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Indexer creates the FT indexes backing record queries.
type Indexer struct {
	store  indexStore
	prefix string
}

// NewIndexer creates an indexer. Empty prefix falls back to the default key prefix.
func NewIndexer(s indexStore, prefix string) *Indexer {
	return &Indexer{store: s, prefix: resolvePrefix(prefix)}
}

// Ensure creates missing indexes for cols and returns the names it created.
// Existing indexes are left untouched.
func (ix *Indexer) Ensure(ctx context.Context, cols []collection.Collection) ([]string, error) {
	var created []string
	for _, col := range cols {
		def, err := buildIndex(ix.prefix, col)
		if err != nil {
			return created, fmt.Errorf("build index %s: %w", col.Name(), err)
		}

		exists, err := ix.store.IndexExists(ctx, def.Name)
		if err != nil {
			return created, fmt.Errorf("check index %s: %w", def.Name, err)
		}
		if exists {
			continue
		}

		if err := ix.store.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return created, fmt.Errorf("create index %s: %w", def.Name, err)
		}
		created = append(created, def.Name)
	}
	return created, nil
}

// Recreate drops and rebuilds the indexes for cols so schema changes take
// effect. Stored records are kept and re-indexed by the server.
func (ix *Indexer) Recreate(ctx context.Context, cols []collection.Collection) ([]string, error) {
	var created []string
	for _, col := range cols {
		def, err := buildIndex(ix.prefix, col)
		if err != nil {
			return created, fmt.Errorf("build index %s: %w", col.Name(), err)
		}

		if err := ix.store.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return created, fmt.Errorf("drop index %s: %w", def.Name, err)
		}
		if err := ix.store.CreateIndex(ctx, def); err != nil {
			return created, fmt.Errorf("create index %s: %w", def.Name, err)
		}
		created = append(created, def.Name)
	}
	return created, nil
}

// buildIndex maps a collection's filter and scope fields to a JSON FT index.
// Every index carries a case-sensitive sortable "index" tag used for ordering
// and exact lookups.
func buildIndex(prefix string, col collection.Collection) (*db.IndexDefinition, error) {
	b := db.NewIndex(indexName(prefix, col.Name())).
		Prefix(collectionPrefix(prefix, col.Name())).
		NoStopWords().
		TagWithOpts("$.index", "", true).As(sortField).Sortable()

	for _, f := range col.IndexedFields() {
		switch f.FieldType() {
		case field.Tag:
			b.TagWithOpts(f.Path(), "|", false).As(f.Name())
		case field.Scope:
			b.TagWithOpts(f.Path(), "|", true).As(f.Name())
		case field.Numeric:
			b.Numeric(f.Path()).As(f.Name())
		case field.Text:
			b.Text(f.Path()).As(f.Name()).SuffixTrie()
		default:
			return nil, fmt.Errorf("unknown field type: %s", f.FieldType())
		}
	}

	return b.Build()
}
