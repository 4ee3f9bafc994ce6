package resource

import (
	"context"
	"time"

	"github.com/kailas-cloud/srdex/internal/domain/filter"
	"github.com/kailas-cloud/srdex/internal/domain/record"
)

// DocumentStore reads records from the document database. Implementations
// return domain.ErrNotFound for absent records and wrap every other failure
// in domain.ErrServiceUnavailable.
type DocumentStore interface {
	Find(ctx context.Context, collection string, expr filter.Expression) ([]record.Record, error)
	FindOne(ctx context.Context, collection, index string) (record.Record, error)
}

// Cache holds encoded list envelopes. Get returns cache.ErrMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
