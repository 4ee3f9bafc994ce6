package collection

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/kailas-cloud/srdex/internal/domain/collection/field"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// DefaultListProjection is the per-record shape of list responses.
var DefaultListProjection = []string{"index", "name", "url"}

// Collection is a named partition of records with its declared filterable
// and scope fields (immutable value object).
type Collection struct {
	name       string
	filters    []field.Field
	scopes     []field.Field
	projection []string
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name %q must be lowercase kebab-case", name)
	}
	return nil
}

func validateFields(filters, scopes []field.Field) error {
	seen := make(map[string]field.Type, len(filters)+len(scopes))
	for _, f := range filters {
		if f.FieldType() == field.Scope {
			return fmt.Errorf("scope field %q cannot be a query filter", f.Name())
		}
		if _, dup := seen[f.Name()]; dup {
			return fmt.Errorf("duplicate filter field: %s", f.Name())
		}
		seen[f.Name()] = f.FieldType()
	}
	for _, f := range scopes {
		if ft, dup := seen[f.Name()]; dup && ft != f.FieldType() {
			return fmt.Errorf("field %q declared with conflicting types", f.Name())
		}
	}
	return nil
}

// New validates and creates a Collection.
// filters are exposed as query parameters; scopes are only used by nested
// resolution. A field may appear in both lists when the types agree.
func New(name string, filters, scopes []field.Field) (Collection, error) {
	if err := validateName(name); err != nil {
		return Collection{}, err
	}
	if err := validateFields(filters, scopes); err != nil {
		return Collection{}, err
	}
	return Collection{
		name:       name,
		filters:    slices.Clone(filters),
		scopes:     slices.Clone(scopes),
		projection: DefaultListProjection,
	}, nil
}

// Name returns the collection name.
func (c Collection) Name() string { return c.name }

// Filters returns the query-parameter filter fields.
func (c Collection) Filters() []field.Field { return c.filters }

// Scopes returns the fields used to scope nested lookups.
func (c Collection) Scopes() []field.Field { return c.scopes }

// Filter looks up a query-parameter filter by name.
func (c Collection) Filter(name string) (field.Field, bool) {
	return find(c.filters, name)
}

// Scope looks up a scope field by name, falling back to filter fields.
func (c Collection) Scope(name string) (field.Field, bool) {
	if f, ok := find(c.scopes, name); ok {
		return f, true
	}
	return find(c.filters, name)
}

// IndexedFields returns every field that must be present in the search
// index, de-duplicated by name, filters first.
func (c Collection) IndexedFields() []field.Field {
	out := make([]field.Field, 0, len(c.filters)+len(c.scopes))
	seen := make(map[string]bool, cap(out))
	for _, f := range append(slices.Clone(c.filters), c.scopes...) {
		if seen[f.Name()] {
			continue
		}
		seen[f.Name()] = true
		out = append(out, f)
	}
	return out
}

// ListProjection returns the fields kept per record in list responses.
func (c Collection) ListProjection() []string { return c.projection }

func find(fields []field.Field, name string) (field.Field, bool) {
	for _, f := range fields {
		if f.Name() == name {
			return f, true
		}
	}
	return field.Field{}, false
}
