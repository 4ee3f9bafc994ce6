package db

import "github.com/kailas-cloud/srdex/internal/domain/filter"

// DefaultSearchLimit bounds a single FT.SEARCH page. It matches the server's
// default MAXSEARCHRESULTS.
const DefaultSearchLimit = 10000

// Query is the input for a filtered JSON document search.
type Query struct {
	IndexName string
	Filters   filter.Expression
	// SortBy names a SORTABLE field; results are ascending.
	SortBy string
	Limit  int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit: its key and the raw JSON root.
// Attrs holds any extra attributes requested alongside the root.
type SearchEntry struct {
	Key   string
	Doc   []byte
	Attrs map[string]string
}
