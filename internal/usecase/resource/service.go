// Package resource resolves list, record and nested sub-resource reads.
package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/codec"
	"github.com/kailas-cloud/srdex/internal/domain"
	"github.com/kailas-cloud/srdex/internal/domain/collection"
	"github.com/kailas-cloud/srdex/internal/domain/collection/field"
	"github.com/kailas-cloud/srdex/internal/domain/envelope"
	"github.com/kailas-cloud/srdex/internal/domain/filter"
	"github.com/kailas-cloud/srdex/internal/domain/record"
	"github.com/kailas-cloud/srdex/internal/logger"
	"github.com/kailas-cloud/srdex/internal/usecase/query"
)

// DefaultTTL is the list cache expiry used when none is configured.
const DefaultTTL = time.Hour

// Result is a nested sub-resource response. Shape selects which of List or
// Record is populated.
type Result struct {
	Shape  collection.Shape
	List   envelope.List
	Record record.Record
}

// Service resolves reads against the catalog, the document store and the list cache.
type Service struct {
	catalog    *collection.Catalog
	store      DocumentStore
	cache      Cache
	codec      codec.Codec[envelope.List]
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a resource service. cache may be nil to disable list caching.
func New(catalog *collection.Catalog, store DocumentStore, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		cache:   cache,
		codec:   codec.JSON[envelope.List]{},
		ttl:     DefaultTTL,
		logger:  logger,
	}
}

// WithCodec sets the cache value codec.
func (s *Service) WithCodec(c codec.Codec[envelope.List]) *Service {
	if c != nil {
		s.codec = c
	}
	return s
}

// WithTTL sets the list cache expiry.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithCacheMetrics sets a counter vec with label "result" ("hit"/"miss"/"error").
func (s *Service) WithCacheMetrics(cacheTotal *prometheus.CounterVec) *Service {
	s.cacheTotal = cacheTotal
	return s
}

// Directory maps every collection name to its list path.
func (s *Service) Directory() map[string]string {
	out := make(map[string]string, len(s.catalog.Names()))
	for _, name := range s.catalog.Names() {
		out[name] = "/api/" + name
	}
	return out
}

// List returns the records of a collection matching the request's filter
// parameters, served through the list cache.
func (s *Service) List(ctx context.Context, collectionName string, params url.Values) (envelope.List, error) {
	col, ok := s.catalog.Lookup(collectionName)
	if !ok {
		return envelope.List{}, s.notFound(ctx, "collection", collectionName)
	}
	return s.resolveList(ctx, col, query.Normalize(col, params), listView(col))
}

// Get returns a single record by its exact index. Records are never cached.
func (s *Service) Get(ctx context.Context, collectionName, index string) (record.Record, error) {
	col, ok := s.catalog.Lookup(collectionName)
	if !ok {
		return nil, s.notFound(ctx, "collection", collectionName)
	}
	rec, err := s.store.FindOne(ctx, col.Name(), index)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.notFound(ctx, col.Name(), index)
		}
		return nil, unavailable(err)
	}
	return rec, nil
}

// Nested resolves /{parent}/{index}/{route}. The parent record is resolved
// first; the child collection is then scoped by the parent's index and, for
// level routes, by level.
func (s *Service) Nested(ctx context.Context, parent, index, route, level string) (Result, error) {
	n, ok := s.catalog.Nested(parent, route)
	if !ok {
		return Result{}, s.notFound(ctx, "route", parent+"/"+route)
	}

	owner, err := s.Get(ctx, n.Parent, index)
	if err != nil {
		return Result{}, err
	}

	child, _ := s.catalog.Lookup(n.Child)
	expr, err := s.scope(child, n, owner.Index(), level)
	if err != nil {
		return Result{}, s.notFound(ctx, "level", level)
	}

	v := view{rootOnly: n.RootOnly}
	if n.Shape == collection.ShapeSingle {
		return s.resolveSingle(ctx, child, expr, v, owner.Index())
	}
	if !n.FullRecords {
		v.projection = child.ListProjection()
	}

	list, err := s.resolveList(ctx, child, expr, v)
	if err != nil {
		return Result{}, err
	}
	return Result{Shape: n.Shape, List: list}, nil
}

// resolveSingle reads a single-record sub-resource straight from the store.
// Like Get, it bypasses the list cache.
func (s *Service) resolveSingle(
	ctx context.Context, child collection.Collection, expr filter.Expression, v view, ownerIndex string,
) (Result, error) {
	records, err := s.store.Find(ctx, child.Name(), expr)
	if err != nil {
		return Result{}, unavailable(err)
	}
	records = v.apply(records)
	if len(records) == 0 {
		return Result{}, s.notFound(ctx, child.Name(), ownerIndex)
	}
	return Result{Shape: collection.ShapeSingle, Record: records[0]}, nil
}

func (s *Service) scope(
	child collection.Collection, n collection.Nested, ownerIndex, level string,
) (filter.Expression, error) {
	f, _ := child.Scope(n.ScopeField)
	var owner filter.Condition
	var err error
	if f.FieldType() == field.Scope {
		owner, err = filter.NewScope(n.ScopeField, ownerIndex)
	} else {
		owner, err = filter.NewMatch(n.ScopeField, ownerIndex)
	}
	if err != nil {
		return filter.Expression{}, err
	}
	expr := filter.NewExpression(owner)

	if n.ByLevel {
		lvl, err := strconv.Atoi(level)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("level %q: %w", level, err)
		}
		c, err := filter.NewNumericSet("level", float64(lvl))
		if err != nil {
			return filter.Expression{}, err
		}
		expr = expr.With(c)
	}
	return expr, nil
}

func (s *Service) notFound(ctx context.Context, kind, key string) error {
	logger.FromContext(ctx).Debug("Resource not found", zap.String("kind", kind), zap.String("key", key))
	return fmt.Errorf("%s %q: %w", kind, key, domain.ErrNotFound)
}

func unavailable(err error) error {
	if errors.Is(err, domain.ErrServiceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrServiceUnavailable, err)
}
