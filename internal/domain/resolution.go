package domain

// Source identifies a catalog family within one resolution.
type Source string

const (
	// SourceBookCatalog covers the Book and Author indices.
	SourceBookCatalog Source = "book-catalog"
	// SourcePersonCatalog covers the biographical person index.
	SourcePersonCatalog Source = "person-catalog"
)

// MatchType is the terminal classification of a resolution.
type MatchType string

const (
	MatchBook     MatchType = "book"
	MatchAuthor   MatchType = "author"
	MatchPerson   MatchType = "person"
	MatchNotFound MatchType = "not_found"
)

// WikipediaMatchKey is the metadata key under which a person annotation is
// attached to a book or author match.
const WikipediaMatchKey = "wikipedia_match"

// ArbitrationOutcome is the arbiter's decision for one source's candidate
// pool. Selected is nil when no candidate was chosen.
type ArbitrationOutcome struct {
	Source   Source
	Selected Candidate
	Reason   string
}

// Result is the terminal output of one citation resolution.
type Result struct {
	MatchType MatchType      `json:"match_type"`
	Metadata  map[string]any `json:"metadata"`
	Reasoning string         `json:"reasoning"`
}

// NotFound builds the well-formed terminal result for an unresolved citation.
func NotFound(reason string) Result {
	return Result{
		MatchType: MatchNotFound,
		Metadata:  map[string]any{},
		Reasoning: reason,
	}
}
