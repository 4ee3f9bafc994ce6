package resource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/cache"
	"github.com/kailas-cloud/srdex/internal/domain/collection"
	"github.com/kailas-cloud/srdex/internal/domain/envelope"
	"github.com/kailas-cloud/srdex/internal/domain/filter"
	"github.com/kailas-cloud/srdex/internal/domain/record"
)

// view describes how raw records are shaped before being cached.
type view struct {
	projection []string
	rootOnly   bool
}

func listView(col collection.Collection) view {
	return view{projection: col.ListProjection()}
}

// tag distinguishes non-default views in the cache key. The plain list view
// of a collection has an empty tag.
func (v view) tag(col collection.Collection) string {
	var parts []string
	if !slices.Equal(v.projection, col.ListProjection()) {
		if len(v.projection) == 0 {
			parts = append(parts, "full")
		} else {
			parts = append(parts, "fields="+strings.Join(v.projection, ","))
		}
	}
	if v.rootOnly {
		parts = append(parts, "root")
	}
	return strings.Join(parts, ",")
}

func (v view) apply(records []record.Record) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if v.rootOnly && r.Ref("subclass") != "" {
			continue
		}
		out = append(out, r.Project(v.projection))
	}
	return out
}

// resolveList is the cache-aside read: a hit never touches the store, a miss
// queries the store and writes the envelope back exactly once.
func (s *Service) resolveList(
	ctx context.Context, col collection.Collection, expr filter.Expression, v view,
) (envelope.List, error) {
	key := cacheKey(col.Name(), expr, v.tag(col))

	if list, ok := s.getFromCache(ctx, key); ok {
		s.incCache("hit")
		return list, nil
	}

	records, err := s.store.Find(ctx, col.Name(), expr)
	if err != nil {
		return envelope.List{}, unavailable(err)
	}

	list := envelope.NewList(v.apply(records))
	s.putToCache(ctx, key, list)
	return list, nil
}

func (s *Service) incCache(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey is "list:<collection>:<sha256(canonical filters[#view])>".
func cacheKey(collectionName string, expr filter.Expression, viewTag string) string {
	material := expr.Canonical()
	if viewTag != "" {
		material += "#" + viewTag
	}
	h := sha256.Sum256([]byte(material))
	return "list:" + collectionName + ":" + hex.EncodeToString(h[:])
}

func (s *Service) getFromCache(ctx context.Context, key string) (envelope.List, bool) {
	if s.cache == nil {
		return envelope.List{}, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			s.incCache("miss")
		} else {
			s.incCache("error")
			s.logger.Warn("Failed to get cached list", zap.String("key", key), zap.Error(err))
		}
		return envelope.List{}, false
	}

	list, err := s.codec.Decode(data)
	if err != nil || !list.Valid() {
		s.incCache("error")
		s.logger.Warn("Failed to decode cached list", zap.String("key", key), zap.Error(err))
		return envelope.List{}, false
	}
	return envelope.NewList(list.Results), true
}

func (s *Service) putToCache(ctx context.Context, key string, list envelope.List) {
	if s.cache == nil {
		return
	}
	data, err := s.codec.Encode(list)
	if err != nil {
		s.logger.Warn("Failed to encode list for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Failed to cache list", zap.String("key", key), zap.Error(err))
	}
}
