package field

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is the indexing type of a field.
type Type string

// Field type constants.
const (
	// Tag is a case-insensitive exact-match field.
	Tag Type = "tag"
	// Numeric is a numeric field queried by value set.
	Numeric Type = "numeric"
	// Text is a substring-matched text field.
	Text Type = "text"
	// Scope is a case-sensitive slug reference to a parent record.
	Scope Type = "scope"
)

var nameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// reserved names are indexed for every collection.
var reservedFieldNames = map[string]bool{
	"index": true,
}

// Field is an immutable value object describing an indexed record field.
type Field struct {
	name      string
	path      string
	fieldType Type
}

// New validates and creates a Field.
// name is the index alias and the query parameter; path is the JSON path of
// the stored value ("$.school.name", "$.classes[*].index").
func New(name, path string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if !nameRegex.MatchString(name) {
		return Field{}, fmt.Errorf("field name %q must be lowercase alphanumeric with underscores", name)
	}
	if reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	if !strings.HasPrefix(path, "$.") {
		return Field{}, fmt.Errorf("field %q: path %q must start with $.", name, path)
	}
	switch ft {
	case Tag, Numeric, Text, Scope:
	default:
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, path: path, fieldType: ft}, nil
}

// MustNew is New for package-level tables; it panics on invalid input.
func MustNew(name, path string, ft Type) Field {
	f, err := New(name, path, ft)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the field name (index alias and query parameter).
func (f Field) Name() string { return f.name }

// Path returns the JSON path of the stored value.
func (f Field) Path() string { return f.path }

// FieldType returns the field's indexing type.
func (f Field) FieldType() Type { return f.fieldType }
