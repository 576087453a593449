package resolution

import (
	"context"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

// BookSearcher finds book editions by title/author phrase conjunction.
type BookSearcher interface {
	Search(ctx context.Context, title, author string, limit int) ([]domain.Book, error)
}

// AuthorSearcher finds author records by name containment.
type AuthorSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Author, error)
}

// PersonSearcher finds biographical records by name.
type PersonSearcher interface {
	Search(ctx context.Context, name string, limit int) ([]domain.Person, error)
}

// Arbiter picks the best candidate from a short list, or -1 for none. The
// reason string explains the decision either way. Implementations may be
// rule-based, ML-based, or remote; the orchestrator only trusts indices in
// [0, len(candidates)).
type Arbiter interface {
	Choose(ctx context.Context, citation domain.Citation, candidates []domain.Candidate) (int, string, error)
}
