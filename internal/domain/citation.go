package domain

import "strings"

// Mode selects which catalog family a resolution targets.
type Mode string

const (
	// ModeBook resolves a specific book edition (citation has a title).
	ModeBook Mode = "book"
	// ModeAuthorOnly resolves an author identity (citation has no title).
	ModeAuthorOnly Mode = "author_only"
)

// Citation is a raw, possibly incomplete mention of a book or author
// extracted from source text. It is caller-owned and read-only.
type Citation struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	CanonicalAuthor string `json:"canonical_author,omitempty"`
	Note            string `json:"note,omitempty"`
}

// Mode returns the resolution mode for this citation.
func (c Citation) Mode() Mode {
	if strings.TrimSpace(c.Title) != "" {
		return ModeBook
	}
	return ModeAuthorOnly
}

// IsEmpty reports whether the citation carries neither title nor author.
func (c Citation) IsEmpty() bool {
	return strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Author) == ""
}

// SearchQuery is one (title, author) probe against a catalog. At most one of
// the two fields may be empty.
type SearchQuery struct {
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// Key returns the case-insensitive dedup key for the query.
func (q SearchQuery) Key() string {
	return strings.ToLower(strings.TrimSpace(q.Title)) + "\x00" +
		strings.ToLower(strings.TrimSpace(q.Author))
}

// IsEmpty reports whether both fields are empty.
func (q SearchQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Title) == "" && strings.TrimSpace(q.Author) == ""
}
