package bookgraph

import (
	"context"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

// Match types reported in Result.MatchType.
const (
	MatchBook     = string(domain.MatchBook)
	MatchAuthor   = string(domain.MatchAuthor)
	MatchPerson   = string(domain.MatchPerson)
	MatchNotFound = string(domain.MatchNotFound)
)

// Citation is a bibliographic reference to resolve. Title and Author are
// free-form strings as extracted from the source text; either may be empty,
// but not both.
type Citation struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`

	// CanonicalAuthor overrides alias normalization when the caller already
	// knows the canonical form.
	CanonicalAuthor string `json:"canonical_author,omitempty"`

	// Note is free-form context carried through to the arbiter prompt payload.
	Note string `json:"note,omitempty"`
}

// Result is the outcome of resolving one citation.
type Result struct {
	MatchType string         `json:"match_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Reasoning string         `json:"reasoning,omitempty"`
}

// Candidate is a catalog record presented to an Arbiter.
type Candidate struct {
	// Kind is "book", "author" or "person".
	Kind    string
	ID      string
	Display string
	Record  map[string]any
}

// Arbiter selects the best candidate for a citation. Choose returns the
// zero-based index of the selected candidate, or a negative index when none
// match, plus a short reasoning string.
type Arbiter interface {
	Choose(ctx context.Context, citation Citation, candidates []Candidate) (int, string, error)
}

// Resolve resolves a single citation against the configured catalogs.
func (c *Client) Resolve(ctx context.Context, citation Citation) (Result, error) {
	res, err := c.svc.Resolve(ctx, toDomainCitation(citation))
	if err != nil {
		return Result{}, err
	}
	return Result{
		MatchType: string(res.MatchType),
		Metadata:  res.Metadata,
		Reasoning: res.Reasoning,
	}, nil
}

func toDomainCitation(c Citation) domain.Citation {
	return domain.Citation{
		Title:           c.Title,
		Author:          c.Author,
		CanonicalAuthor: c.CanonicalAuthor,
		Note:            c.Note,
	}
}

func toPublicCitation(c domain.Citation) Citation {
	return Citation{
		Title:           c.Title,
		Author:          c.Author,
		CanonicalAuthor: c.CanonicalAuthor,
		Note:            c.Note,
	}
}

// arbiterAdapter wraps a public Arbiter to satisfy resolution.Arbiter.
type arbiterAdapter struct {
	inner Arbiter
}

func (a *arbiterAdapter) Choose(ctx context.Context, citation domain.Citation, candidates []domain.Candidate) (int, string, error) {
	public := make([]Candidate, len(candidates))
	for i, c := range candidates {
		public[i] = Candidate{
			Kind:    string(c.Kind()),
			ID:      c.ID(),
			Display: c.Display(),
			Record:  c.Record(),
		}
	}
	return a.inner.Choose(ctx, toPublicCitation(citation), public)
}
