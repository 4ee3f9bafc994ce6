package record

import (
	"context"

	"github.com/kailas-cloud/srdex/internal/db"
)

// mockStore implements the consumer interfaces for tests.
type mockStore struct {
	jsonGetFn     func(ctx context.Context, key string, paths ...string) ([]byte, error)
	searchJSONFn  func(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) SearchJSON(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if m.searchJSONFn != nil {
		return m.searchJSONFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}
