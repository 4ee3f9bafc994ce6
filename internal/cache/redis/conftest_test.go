package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/srdex/internal/db"
)

type setCall struct {
	key   string
	value []byte
	ttl   time.Duration
}

// fakeStore is an in-memory stand-in for the Redis KV commands.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    []setCall
	dels    [][]string
	getErr  error
	setErr  error
	scanErr error
	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.sets = append(f.sets, setCall{key: key, value: value, ttl: ttl})
	f.data[key] = value
	return nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dels = append(f.dels, keys)
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }
