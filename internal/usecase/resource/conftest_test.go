package resource

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/srdex/internal/cache"
	"github.com/kailas-cloud/srdex/internal/domain"
	"github.com/kailas-cloud/srdex/internal/domain/collection"
	"github.com/kailas-cloud/srdex/internal/domain/filter"
	"github.com/kailas-cloud/srdex/internal/domain/record"
)

// fixtures is a small SRD sample keyed by collection.
var fixtures = map[string][]string{
	"spells": {
		`{"index":"fireball","name":"Fireball","level":3,"school":{"index":"evocation","name":"Evocation"},"classes":[{"index":"wizard"},{"index":"sorcerer"}],"url":"/api/spells/fireball"}`,
		`{"index":"magic-missile","name":"Magic Missile","level":1,"school":{"index":"evocation","name":"Evocation"},"classes":[{"index":"wizard"}],"url":"/api/spells/magic-missile"}`,
		`{"index":"shield","name":"Shield","level":1,"school":{"index":"abjuration","name":"Abjuration"},"classes":[{"index":"wizard"},{"index":"sorcerer"}],"url":"/api/spells/shield"}`,
		`{"index":"cure-wounds","name":"Cure Wounds","level":1,"school":{"index":"evocation","name":"Evocation"},"classes":[{"index":"cleric"}],"url":"/api/spells/cure-wounds"}`,
		`{"index":"maze","name":"Maze","level":8,"school":{"index":"conjuration","name":"Conjuration"},"classes":[{"index":"wizard"}],"url":"/api/spells/maze"}`,
		`{"index":"sunburst","name":"Sunburst","level":8,"school":{"index":"evocation","name":"Evocation"},"classes":[{"index":"cleric"},{"index":"wizard"}],"url":"/api/spells/sunburst"}`,
		`{"index":"wish","name":"Wish","level":9,"school":{"index":"conjuration","name":"Conjuration"},"classes":[{"index":"wizard"}],"url":"/api/spells/wish"}`,
	},
	"classes": {
		`{"index":"wizard","name":"Wizard","hit_die":6,"url":"/api/classes/wizard"}`,
		`{"index":"cleric","name":"Cleric","hit_die":8,"url":"/api/classes/cleric"}`,
	},
	"subclasses": {
		`{"index":"evocation","name":"Evocation","class":{"index":"wizard"},"url":"/api/subclasses/evocation"}`,
	},
	"levels": {
		`{"index":"wizard-1","level":1,"class":{"index":"wizard"},"url":"/api/classes/wizard/levels/1"}`,
		`{"index":"wizard-2","level":2,"class":{"index":"wizard"},"url":"/api/classes/wizard/levels/2"}`,
		`{"index":"evocation-2","level":2,"class":{"index":"wizard"},"subclass":{"index":"evocation"},"url":"/api/subclasses/evocation/levels/2"}`,
	},
	"features": {
		`{"index":"arcane-recovery","name":"Arcane Recovery","level":1,"class":{"index":"wizard"},"url":"/api/features/arcane-recovery"}`,
		`{"index":"evocation-savant","name":"Evocation Savant","level":2,"class":{"index":"wizard"},"subclass":{"index":"evocation"},"url":"/api/features/evocation-savant"}`,
	},
	"spellcasting": {
		`{"index":"wizard","class":{"index":"wizard"},"level":1,"spellcasting_ability":{"index":"int"}}`,
	},
	"monsters": {
		`{"index":"goblin","name":"Goblin","challenge_rating":0.25,"url":"/api/monsters/goblin"}`,
		`{"index":"ogre","name":"Ogre","challenge_rating":2,"url":"/api/monsters/ogre"}`,
		`{"index":"bugbear","name":"Bugbear","challenge_rating":1,"url":"/api/monsters/bugbear"}`,
	},
	"rule-sections": {
		`{"index":"hit-points","name":"Hit Points","desc":"Your hit points represent durability.","url":"/api/rule-sections/hit-points"}`,
		`{"index":"resting","name":"Resting","desc":"Adventurers need rest.","url":"/api/rule-sections/resting"}`,
	},
}

// fakeStore evaluates filter expressions over fixture records the way the FT
// index does: tags fold case, scopes match exactly, numbers match by value.
type fakeStore struct {
	mu        sync.Mutex
	catalog   *collection.Catalog
	data      map[string][]record.Record
	findCalls int
	oneCalls  int
	findErr   error
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	fs := &fakeStore{catalog: collection.SRD(), data: make(map[string][]record.Record)}
	for col, docs := range fixtures {
		for _, d := range docs {
			rec, err := record.Parse([]byte(d))
			if err != nil {
				t.Fatalf("fixture %s: %v", col, err)
			}
			fs.data[col] = append(fs.data[col], rec)
		}
	}
	return fs
}

func (f *fakeStore) Find(_ context.Context, col string, expr filter.Expression) ([]record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	c, _ := f.catalog.Lookup(col)
	var out []record.Record
	for _, r := range f.data[col] {
		if matches(c, r, expr) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b record.Record) int { return strings.Compare(a.Index(), b.Index()) })
	return out, nil
}

func (f *fakeStore) FindOne(_ context.Context, col, index string) (record.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oneCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, r := range f.data[col] {
		if r.Index() == index {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func matches(col collection.Collection, r record.Record, expr filter.Expression) bool {
	for _, cond := range expr.Conditions() {
		f, ok := col.Scope(cond.Field())
		if !ok {
			return false
		}
		if !conditionMatches(valuesAt(map[string]any(r), f.Path()), cond) {
			return false
		}
	}
	return true
}

func conditionMatches(stored []any, cond filter.Condition) bool {
	for _, v := range stored {
		switch cond.Operator() {
		case filter.OpNumeric:
			n, ok := v.(float64)
			if ok && slices.Contains(cond.Numbers(), n) {
				return true
			}
		case filter.OpScope:
			s, _ := v.(string)
			if slices.Contains(cond.Values(), s) {
				return true
			}
		case filter.OpTag:
			s, _ := v.(string)
			if slices.Contains(cond.Values(), strings.ToLower(s)) {
				return true
			}
		case filter.OpText:
			s, _ := v.(string)
			for _, want := range cond.Values() {
				if strings.Contains(strings.ToLower(s), want) {
					return true
				}
			}
		}
	}
	return false
}

// valuesAt resolves "$.a.b" and "$.a[*].b" paths.
func valuesAt(doc map[string]any, path string) []any {
	cur := []any{doc}
	for _, seg := range strings.Split(strings.TrimPrefix(path, "$."), ".") {
		name, each := strings.CutSuffix(seg, "[*]")
		var next []any
		for _, c := range cur {
			m, ok := c.(map[string]any)
			if !ok {
				continue
			}
			v, ok := m[name]
			if !ok {
				continue
			}
			if arr, isArr := v.([]any); isArr && each {
				next = append(next, arr...)
			} else {
				next = append(next, v)
			}
		}
		cur = next
	}
	return cur
}

// fakeCache is a counting in-memory cache.
type fakeCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	sets   int
	ttls   []time.Duration
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.ttls = append(c.ttls, ttl)
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeCache) {
	t.Helper()
	fs := newFakeStore(t)
	fc := newFakeCache()
	return New(collection.SRD(), fs, fc, zap.NewNop()), fs, fc
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
