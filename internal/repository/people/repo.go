// Package people adapts the biographical person index. Matches are phrase
// searches on the page title, overfetched and re-ranked so an exact title
// match always surfaces first.
package people

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db"
	dbRedis "github.com/ThiagoLira/bookgraph-revisited-sub000/internal/db/redis"
	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

// maxCategories bounds the category tags carried per candidate.
const maxCategories = 30

// store is the consumer interface for person search (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// YearsOverride is one curated birth/death-year correction. Nil fields mean
// "unknown", not "keep the indexed value": an override replaces both year
// fields of the matched candidate.
type YearsOverride struct {
	BirthYear *int `json:"birth_year"`
	DeathYear *int `json:"death_year"`
}

// Repo implements resolution.PersonSearcher over a full-text index with a
// read-only override overlay keyed by lowercase page title.
type Repo struct {
	store     store
	index     string
	overrides map[string]YearsOverride
}

// New creates a person catalog repository bound to one index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, index: indexName}
}

// WithOverrides attaches curated year corrections. Keys are matched
// case-insensitively against candidate titles after each fetch.
func (r *Repo) WithOverrides(overrides map[string]YearsOverride) *Repo {
	if len(overrides) == 0 {
		return r
	}
	r.overrides = make(map[string]YearsOverride, len(overrides))
	for name, o := range overrides {
		r.overrides[strings.ToLower(strings.TrimSpace(name))] = o
	}
	return r
}

// Search finds biographical records whose title matches the name phrase.
// Fetches max(limit*10, 50) raw candidates, applies overrides, then re-ranks
// by (exact title match first, ascending page id) before truncating.
func (r *Repo) Search(ctx context.Context, name string, limit int) ([]domain.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" || limit <= 0 {
		return nil, nil
	}

	fetchLimit := limit * 10
	if fetchLimit < 50 {
		fetchLimit = 50
	}

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.index,
		Query:        dbRedis.PhraseTerm("title", name),
		Limit:        fetchLimit,
		ReturnFields: []string{"data"},
	})
	if err != nil {
		if errors.Is(err, db.ErrBadQuerySyntax) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: person search: %w", domain.ErrIndexUnavailable, err)
	}

	candidates := r.decode(res.Entries)
	rerank(candidates, name)

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (r *Repo) decode(rows []db.SearchEntry) []domain.Person {
	people := make([]domain.Person, 0, len(rows))
	for _, row := range rows {
		payload, ok := row.Fields["data"]
		if !ok {
			continue
		}
		var doc personDoc
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			continue
		}
		p := doc.toDomain()
		if p.Title == "" {
			continue
		}
		if o, ok := r.overrides[strings.ToLower(p.Title)]; ok {
			// Overrides replace only the year fields, never title or id.
			p.BirthYear = o.BirthYear
			p.DeathYear = o.DeathYear
		}
		people = append(people, p)
	}
	return people
}

// rerank orders candidates by exact (case-insensitive) title match first,
// then ascending page id; zero page ids sort last.
func rerank(people []domain.Person, name string) {
	sort.SliceStable(people, func(i, j int) bool {
		ei := strings.EqualFold(people[i].Title, name)
		ej := strings.EqualFold(people[j].Title, name)
		if ei != ej {
			return ei
		}
		return pageRank(people[i].PageID) < pageRank(people[j].PageID)
	})
}

func pageRank(id int64) int64 {
	if id == 0 {
		return int64(^uint64(0) >> 1)
	}
	return id
}

// personDoc is the JSON payload stored in the index's data field.
type personDoc struct {
	Title      string   `json:"title"`
	PageID     int64    `json:"page_id"`
	BirthYear  *int     `json:"birth_year"`
	DeathYear  *int     `json:"death_year"`
	Categories []string `json:"categories"`
	Infoboxes  []string `json:"infoboxes"`
}

func (d *personDoc) toDomain() domain.Person {
	categories := d.Categories
	if len(categories) > maxCategories {
		categories = categories[:maxCategories]
	}
	return domain.Person{
		Title:      d.Title,
		PageID:     d.PageID,
		BirthYear:  d.BirthYear,
		DeathYear:  d.DeathYear,
		Categories: categories,
		Infoboxes:  d.Infoboxes,
	}
}
