package resolution

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain/fuzzy"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/metrics"
)

// searchBooks accumulates one deduplicated-by-id pool across all expanded
// queries. Index failures count as zero candidates for the failing call.
func (s *Service) searchBooks(ctx context.Context, log *zap.Logger, queries []domain.SearchQuery) []domain.Candidate {
	var pool []domain.Candidate
	seen := make(map[string]bool)

	for _, q := range queries {
		if q.IsEmpty() {
			continue
		}
		start := time.Now()
		books, err := s.books.Search(ctx, q.Title, q.Author, perQueryLimit)
		metrics.CatalogSearchDuration.WithLabelValues("books").Observe(time.Since(start).Seconds())
		if err != nil {
			log.Warn("book search failed",
				zap.String("title", q.Title),
				zap.String("author", q.Author),
				zap.Error(err),
			)
			continue
		}
		for _, b := range books {
			if id := b.ID(); id != "" && !seen[id] {
				seen[id] = true
				pool = append(pool, b)
			}
		}
	}
	return pool
}

// searchAuthors scans the roster once per query, keyed on the author field
// (title as a fallback, mirroring author-only expansion output).
func (s *Service) searchAuthors(ctx context.Context, log *zap.Logger, queries []domain.SearchQuery) []domain.Candidate {
	var pool []domain.Candidate
	seen := make(map[string]bool)

	for _, q := range queries {
		name := nameField(q)
		if name == "" {
			continue
		}
		start := time.Now()
		authors, err := s.authors.Search(ctx, name, perQueryLimit)
		metrics.CatalogSearchDuration.WithLabelValues("authors").Observe(time.Since(start).Seconds())
		if err != nil {
			log.Warn("author search failed", zap.String("name", name), zap.Error(err))
			continue
		}
		for _, a := range authors {
			if id := a.ID(); id != "" && !seen[id] {
				seen[id] = true
				pool = append(pool, a)
			}
		}
	}
	return pool
}

// searchPersons queries the biographical index keyed on each query's author
// field, used for disambiguation even when the target is a book.
func (s *Service) searchPersons(ctx context.Context, log *zap.Logger, queries []domain.SearchQuery) []domain.Candidate {
	var pool []domain.Candidate
	seen := make(map[string]bool)

	for _, q := range queries {
		name := nameField(q)
		if name == "" {
			continue
		}
		start := time.Now()
		people, err := s.people.Search(ctx, name, perQueryLimit)
		metrics.CatalogSearchDuration.WithLabelValues("people").Observe(time.Since(start).Seconds())
		if err != nil {
			log.Warn("person search failed", zap.String("name", name), zap.Error(err))
			continue
		}
		for _, p := range people {
			if id := p.ID(); id != "" && !seen[id] {
				seen[id] = true
				pool = append(pool, p)
			}
		}
	}
	return pool
}

// nameField picks the author field of a query, falling back to the title.
func nameField(q domain.SearchQuery) string {
	if a := strings.TrimSpace(q.Author); a != "" {
		return a
	}
	return strings.TrimSpace(q.Title)
}

// capPool keeps the top maxCandidates by fuzzy score against the reference
// string, ties broken by original pool order.
func capPool(pool []domain.Candidate, reference string) []domain.Candidate {
	if len(pool) <= maxCandidates {
		return pool
	}

	scores := make([]int, len(pool))
	for i, c := range pool {
		scores[i] = fuzzy.TokenSortRatio(reference, c.Display())
	}

	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	capped := make([]domain.Candidate, maxCandidates)
	for i := range capped {
		capped[i] = pool[order[i]]
	}
	return capped
}

// bookReference is the string book candidates are ranked against: the
// citation's own title, else the first query's title.
func bookReference(citation domain.Citation, queries []domain.SearchQuery) string {
	if t := strings.TrimSpace(citation.Title); t != "" {
		return t
	}
	if len(queries) > 0 {
		return queries[0].Title
	}
	return ""
}

// personReference is the string author/person candidates are ranked against:
// the citation's author field, else the first query's author.
func personReference(citation domain.Citation, queries []domain.SearchQuery) string {
	if a := strings.TrimSpace(citation.Author); a != "" {
		return a
	}
	if len(queries) > 0 {
		return queries[0].Author
	}
	return ""
}
