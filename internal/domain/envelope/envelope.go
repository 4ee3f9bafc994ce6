// Package envelope shapes list results for the HTTP surface.
package envelope

import "github.com/kailas-cloud/srdex/internal/domain/record"

// List is the {count, results} wrapper returned by list-style queries.
// Count always equals len(Results); build it with NewList.
type List struct {
	Count   int             `json:"count" msgpack:"count" cbor:"count"`
	Results []record.Record `json:"results" msgpack:"results" cbor:"results"`
}

// NewList wraps records in a list envelope. A nil slice becomes an empty one
// so the JSON body is always `"results": []`.
func NewList(records []record.Record) List {
	if records == nil {
		records = []record.Record{}
	}
	return List{Count: len(records), Results: records}
}

// Valid reports whether the count invariant holds (used on cache reads).
func (l List) Valid() bool {
	return l.Count == len(l.Results)
}

// Bare returns the results without the envelope, for sub-resource listings
// (class and subclass levels) that are served as a plain JSON array.
func (l List) Bare() []record.Record {
	if l.Results == nil {
		return []record.Record{}
	}
	return l.Results
}
