package resolution

import (
	"context"
	"sync"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

type mockBookSearcher struct {
	fn     func(ctx context.Context, title, author string, limit int) ([]domain.Book, error)
	probes []domain.SearchQuery
}

func (m *mockBookSearcher) Search(ctx context.Context, title, author string, limit int) ([]domain.Book, error) {
	m.probes = append(m.probes, domain.SearchQuery{Title: title, Author: author})
	if m.fn != nil {
		return m.fn(ctx, title, author, limit)
	}
	return nil, nil
}

type mockAuthorSearcher struct {
	fn     func(ctx context.Context, query string, limit int) ([]domain.Author, error)
	probes []string
}

func (m *mockAuthorSearcher) Search(ctx context.Context, query string, limit int) ([]domain.Author, error) {
	m.probes = append(m.probes, query)
	if m.fn != nil {
		return m.fn(ctx, query, limit)
	}
	return nil, nil
}

type mockPersonSearcher struct {
	fn     func(ctx context.Context, name string, limit int) ([]domain.Person, error)
	probes []string
}

func (m *mockPersonSearcher) Search(ctx context.Context, name string, limit int) ([]domain.Person, error) {
	m.probes = append(m.probes, name)
	if m.fn != nil {
		return m.fn(ctx, name, limit)
	}
	return nil, nil
}

// mockArbiter records every pool it sees. Both source branches call it
// concurrently, so bookkeeping is guarded.
type mockArbiter struct {
	mu    sync.Mutex
	fn    func(ctx context.Context, citation domain.Citation, pool []domain.Candidate) (int, string, error)
	pools [][]domain.Candidate
}

func (m *mockArbiter) Choose(ctx context.Context, citation domain.Citation, pool []domain.Candidate) (int, string, error) {
	m.mu.Lock()
	m.pools = append(m.pools, pool)
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx, citation, pool)
	}
	return -1, "no match", nil
}

func (m *mockArbiter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pools)
}

type fixture struct {
	books   *mockBookSearcher
	authors *mockAuthorSearcher
	people  *mockPersonSearcher
	arbiter *mockArbiter
	svc     *Service
}

func newFixture() *fixture {
	f := &fixture{
		books:   &mockBookSearcher{},
		authors: &mockAuthorSearcher{},
		people:  &mockPersonSearcher{},
		arbiter: &mockArbiter{},
	}
	f.svc = New(f.books, f.authors, f.people, f.arbiter)
	return f
}

// pickFirst selects index 0 for every non-empty pool.
func pickFirst(_ context.Context, _ domain.Citation, _ []domain.Candidate) (int, string, error) {
	return 0, "best match", nil
}
