package books

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchTextFn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	calls        []*db.TextQuery
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	m.calls = append(m.calls, q)
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "idx:books"), ms
}

func bookEntry(t *testing.T, payload map[string]any) db.SearchEntry {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return db.SearchEntry{
		Key:    "book:" + payload["book_id"].(string),
		Fields: map[string]string{"data": string(data)},
	}
}
