package db

import (
	"context"
	"time"
)

// Store is the read-only full-text search facade the catalogs run against.
type Store interface {
	Pinger
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TextQuery describes one FT.SEARCH call against a catalog index.
type TextQuery struct {
	IndexName    string
	Query        string
	Limit        int
	ReturnFields []string
}

// SearchEntry is one matched document, fields flattened to strings.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// SearchResult holds matched entries in the index's native relevance order.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Searcher provides full-text search over FT indexes.
type Searcher interface {
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
