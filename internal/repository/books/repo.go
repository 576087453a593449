// Package books adapts the book catalog's full-text index to the resolution
// core. Queries are AND-conjunctions of field-scoped phrase terms.
package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db"
	dbRedis "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db/redis"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

// store is the consumer interface for book search (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements resolution.BookSearcher over a full-text index.
type Repo struct {
	store store
	index string
}

// New creates a book catalog repository bound to one index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, index: indexName}
}

// Search finds book editions matching the given title and/or author phrases,
// in the index's native relevance order. At least one field must be
// non-empty. When the full-name author phrase yields nothing, the conjunction
// is broadened once to one phrase per author token; catalogs often store
// middle names differently.
func (r *Repo) Search(ctx context.Context, title, author string, limit int) ([]domain.Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" && author == "" {
		return nil, domain.ErrInvalidQuery
	}

	var clauses []string
	if title != "" {
		clauses = append(clauses, dbRedis.PhraseTerm("title", title))
	}
	if author != "" {
		clauses = append(clauses, dbRedis.PhraseTerm("authors", author))
	}

	rows, err := r.query(ctx, strings.Join(clauses, " "), limit)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 && author != "" {
		if fallback := tokenFallbackQuery(title, author); fallback != "" {
			rows, err = r.query(ctx, fallback, limit)
			if err != nil {
				return nil, err
			}
		}
	}

	return decodeBooks(rows), nil
}

// query runs one FT.SEARCH, mapping syntax errors to zero rows and storage
// failures to domain.ErrIndexUnavailable.
func (r *Repo) query(ctx context.Context, query string, limit int) ([]db.SearchEntry, error) {
	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.index,
		Query:        query,
		Limit:        limit,
		ReturnFields: []string{"data"},
	})
	if err != nil {
		if errors.Is(err, db.ErrBadQuerySyntax) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: book search: %w", domain.ErrIndexUnavailable, err)
	}
	return res.Entries, nil
}

// tokenFallbackQuery broadens the author constraint to one phrase term per
// whitespace-separated token of length > 1. Returns "" when the fallback
// would add nothing beyond the original conjunction.
func tokenFallbackQuery(title, author string) string {
	tokens := strings.Fields(author)
	if len(tokens) < 2 {
		return ""
	}

	var clauses []string
	if title != "" {
		clauses = append(clauses, dbRedis.PhraseTerm("title", title))
	}
	base := len(clauses)
	for _, token := range tokens {
		if len(token) > 1 {
			clauses = append(clauses, dbRedis.PhraseTerm("authors", token))
		}
	}
	if len(clauses) == base {
		return ""
	}
	return strings.Join(clauses, " ")
}

func decodeBooks(rows []db.SearchEntry) []domain.Book {
	books := make([]domain.Book, 0, len(rows))
	for _, row := range rows {
		payload, ok := row.Fields["data"]
		if !ok {
			continue
		}
		var doc bookDoc
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			continue
		}
		book := doc.toDomain()
		if book.BookID == "" {
			continue
		}
		books = append(books, book)
	}
	return books
}
