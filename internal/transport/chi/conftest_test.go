package chi

import (
	"context"
	"net/url"

	"github.com/kailas-cloud/srdex/internal/domain"
	"github.com/kailas-cloud/srdex/internal/domain/envelope"
	"github.com/kailas-cloud/srdex/internal/domain/record"
	resourceuc "github.com/kailas-cloud/srdex/internal/usecase/resource"
)

type mockResources struct {
	directoryFn func() map[string]string
	listFn      func(ctx context.Context, collection string, params url.Values) (envelope.List, error)
	getFn       func(ctx context.Context, collection, index string) (record.Record, error)
	nestedFn    func(ctx context.Context, parent, index, route, level string) (resourceuc.Result, error)
}

func (m *mockResources) Directory() map[string]string {
	if m.directoryFn != nil {
		return m.directoryFn()
	}
	return map[string]string{}
}

func (m *mockResources) List(ctx context.Context, collection string, params url.Values) (envelope.List, error) {
	if m.listFn != nil {
		return m.listFn(ctx, collection, params)
	}
	return envelope.NewList(nil), nil
}

func (m *mockResources) Get(ctx context.Context, collection, index string) (record.Record, error) {
	if m.getFn != nil {
		return m.getFn(ctx, collection, index)
	}
	return nil, domain.ErrNotFound
}

func (m *mockResources) Nested(ctx context.Context, parent, index, route, level string) (resourceuc.Result, error) {
	if m.nestedFn != nil {
		return m.nestedFn(ctx, parent, index, route, level)
	}
	return resourceuc.Result{}, domain.ErrNotFound
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }
