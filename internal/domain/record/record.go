// Package record holds the read-only resource document served by the API.
package record

import (
	"encoding/json"
	"fmt"
)

// Record is a stored reference document. Keys mirror the stored JSON.
type Record map[string]any

// Parse decodes a single JSON object into a Record.
func Parse(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("decode record: not an object")
	}
	return r, nil
}

// Index returns the record slug, or "" when absent.
func (r Record) Index() string { return r.str("index") }

// Name returns the display name, or "" when absent.
func (r Record) Name() string { return r.str("name") }

// Number returns a top-level numeric field.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r[field].(float64)
	return v, ok
}

// Ref returns the index of a nested reference object such as "class" or "subclass".
func (r Record) Ref(field string) string {
	m, ok := r[field].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["index"].(string)
	return s
}

// Project returns a copy holding only the given top-level fields.
// An empty field list returns r unchanged.
func (r Record) Project(fields []string) Record {
	if len(fields) == 0 {
		return r
	}
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

func (r Record) str(field string) string {
	s, _ := r[field].(string)
	return s
}
