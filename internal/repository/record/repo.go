package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/db"
	"github.com/kailas-cloud/srdex/internal/domain"
	"github.com/kailas-cloud/srdex/internal/domain/filter"
	domrec "github.com/kailas-cloud/srdex/internal/domain/record"
	"github.com/kailas-cloud/srdex/internal/logger"
)

const sortField = "index"

// store is the consumer interface for records (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	SearchJSON(ctx context.Context, q *db.Query) (*db.SearchResult, error)
}

// Repo implements usecase/resource.DocumentStore over Redis JSON documents.
type Repo struct {
	store         store
	prefix        string
	queryDuration *prometheus.HistogramVec
}

// New creates a record repository. prefix namespaces document keys and
// indexes; empty falls back to domain.KeyPrefix. queryDuration is a
// histogram vec with labels "op" and "status", passed explicitly (may be nil).
func New(s store, prefix string, queryDuration *prometheus.HistogramVec) *Repo {
	return &Repo{store: s, prefix: resolvePrefix(prefix), queryDuration: queryDuration}
}

// Find returns every record of the collection matching expr, ordered by index.
// At most db.DefaultSearchLimit records are returned; a larger match set is
// truncated with a warning. Malformed stored documents are skipped.
func (r *Repo) Find(ctx context.Context, collectionName string, expr filter.Expression) ([]domrec.Record, error) {
	start := time.Now()
	result, err := r.store.SearchJSON(ctx, &db.Query{
		IndexName: indexName(r.prefix, collectionName),
		Filters:   expr,
		SortBy:    sortField,
		Limit:     db.DefaultSearchLimit,
	})
	r.observe("find", start, err)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w: %w", collectionName, domain.ErrServiceUnavailable, err)
	}
	if result.Total > len(result.Entries) {
		logger.FromContext(ctx).Warn("Search result truncated",
			zap.String("collection", collectionName),
			zap.String("filters", expr.Canonical()),
			zap.Int("total", result.Total),
			zap.Int("returned", len(result.Entries)),
		)
	}

	records := make([]domrec.Record, 0, len(result.Entries))
	for _, entry := range result.Entries {
		rec, err := domrec.Parse(entry.Doc)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// FindOne returns the record with the exact index, or domain.ErrNotFound.
func (r *Repo) FindOne(ctx context.Context, collectionName, index string) (domrec.Record, error) {
	if index == "" {
		return nil, domain.ErrNotFound
	}
	key := recordKey(r.prefix, collectionName, index)

	start := time.Now()
	raw, err := r.store.JSONGet(ctx, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		r.observe("find_one", start, nil)
		return nil, domain.ErrNotFound
	}
	r.observe("find_one", start, err)
	if err != nil {
		return nil, fmt.Errorf("json.get %s: %w: %w", key, domain.ErrServiceUnavailable, err)
	}

	rec, err := domrec.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", key, domain.ErrServiceUnavailable, err)
	}
	return rec, nil
}

func (r *Repo) observe(op string, start time.Time, err error) {
	if r.queryDuration == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.queryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
}

func resolvePrefix(prefix string) string {
	if prefix == "" {
		return domain.KeyPrefix
	}
	return prefix
}

func recordKey(prefix, collectionName, index string) string {
	return fmt.Sprintf("%s%s:%s", prefix, collectionName, index)
}

func indexName(prefix, collectionName string) string {
	return fmt.Sprintf("%s%s:idx", prefix, collectionName)
}

func collectionPrefix(prefix, collectionName string) string {
	return fmt.Sprintf("%s%s:", prefix, collectionName)
}
