// Package authors holds the book catalog's author roster in memory. The
// roster has no full-text index: matching is substring containment in load
// order, stopping as soon as limit matches are collected. Result identity
// therefore depends on storage order, not on any quality signal, matching
// the source dataset's behavior.
package authors

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

// Roster is an explicit read-only repository over the author dataset. It is
// constructed once and shared by reference across all resolutions.
type Roster struct {
	authors []domain.Author
}

// rosterRow mirrors one JSONL record of the roster file.
type rosterRow struct {
	AuthorID      json.Number `json:"author_id"`
	Name          string      `json:"name"`
	AverageRating json.Number `json:"average_rating"`
	WorksCount    json.Number `json:"works_count"`
	FansCount     json.Number `json:"fans_count"`
	Link          string      `json:"link"`
	URL           string      `json:"url"`
}

// Load reads the JSONL roster file, skipping malformed lines.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open author roster: %w", err)
	}
	defer f.Close()

	r := &Roster{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row rosterRow
		if err := json.Unmarshal(line, &row); err != nil {
			continue
		}
		if row.AuthorID.String() == "" || row.Name == "" {
			continue
		}
		link := row.Link
		if link == "" {
			link = row.URL
		}
		rating, _ := row.AverageRating.Float64()
		works, _ := row.WorksCount.Int64()
		fans, _ := row.FansCount.Int64()
		r.authors = append(r.authors, domain.Author{
			AuthorID:      row.AuthorID.String(),
			Name:          row.Name,
			AverageRating: rating,
			WorksCount:    int(works),
			FansCount:     int(fans),
			Link:          link,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read author roster: %w", err)
	}
	return r, nil
}

// NewFromAuthors builds a roster from pre-materialized records (test seam and
// programmatic construction).
func NewFromAuthors(authors []domain.Author) *Roster {
	return &Roster{authors: authors}
}

// Len returns the roster size.
func (r *Roster) Len() int { return len(r.authors) }

// Search scans the roster in load order for names containing the normalized
// query, collecting at most limit matches.
func (r *Roster) Search(_ context.Context, query string, limit int) ([]domain.Author, error) {
	query = normalize(query)
	if query == "" || limit <= 0 {
		return nil, nil
	}
	var matches []domain.Author
	for _, a := range r.authors {
		if strings.Contains(normalize(a.Name), query) {
			matches = append(matches, a)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

// normalize collapses whitespace and casefolds for containment matching.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
