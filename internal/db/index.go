package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldText is a text field.
	IndexFieldText
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name     string // JSONPath for JSON indexes
	Alias    string // AS alias in FT.CREATE SCHEMA
	Type     IndexFieldType
	Sortable bool

	// TAG options
	TagSeparator     string
	TagCaseSensitive bool

	// TEXT options
	SuffixTrie bool // WITHSUFFIXTRIE, speeds up infix (*term*) queries
}

// IndexDefinition is a complete FT index definition used by FT.CREATE.
// Indexes are always created ON JSON.
type IndexDefinition struct {
	Name        string
	Prefixes    []string
	Fields      []IndexField
	NoStopWords bool // STOPWORDS 0
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if f.Alias == "" {
			return errors.New("JSON field requires an alias: " + f.Name)
		}
		key := f.Name
		if f.Alias != "" {
			key = f.Alias
		}
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
