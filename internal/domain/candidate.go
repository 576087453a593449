package domain

import "strconv"

// Kind identifies the catalog record type a Candidate carries.
type Kind string

const (
	KindBook   Kind = "book"
	KindAuthor Kind = "author"
	KindPerson Kind = "person"
)

// Candidate is one typed reference-catalog record considered as a possible
// resolution of a citation. Implementations are read-only views; ids are
// opaque and never interchangeable across kinds.
type Candidate interface {
	Kind() Kind
	// ID is the stable catalog id within the candidate's kind.
	ID() string
	// Display is the primary display field (title for books, name otherwise),
	// used for fuzzy ranking.
	Display() string
	// Record is the candidate as a plain key-value record, as handed to the
	// arbiter and merged into resolution metadata.
	Record() map[string]any
}

// MaxDescriptionChars bounds the book description carried in candidates.
const MaxDescriptionChars = 512

// Book is a book edition from the book catalog.
type Book struct {
	BookID           string   `json:"book_id"`
	WorkID           string   `json:"work_id,omitempty"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors,omitempty"`
	PublicationYear  int      `json:"publication_year,omitempty"`
	PublicationMonth int      `json:"publication_month,omitempty"`
	PublicationDay   int      `json:"publication_day,omitempty"`
	Publisher        string   `json:"publisher,omitempty"`
	AverageRating    float64  `json:"average_rating,omitempty"`
	RatingsCount     int      `json:"ratings_count,omitempty"`
	TextReviewsCount int      `json:"text_reviews_count,omitempty"`
	Description      string   `json:"description,omitempty"`
	Link             string   `json:"link,omitempty"`
}

func (b Book) Kind() Kind      { return KindBook }
func (b Book) ID() string      { return b.BookID }
func (b Book) Display() string { return b.Title }

func (b Book) Record() map[string]any {
	r := map[string]any{
		"book_id": b.BookID,
		"title":   b.Title,
	}
	putString(r, "work_id", b.WorkID)
	if len(b.Authors) > 0 {
		r["authors"] = b.Authors
	}
	putInt(r, "publication_year", b.PublicationYear)
	putInt(r, "publication_month", b.PublicationMonth)
	putInt(r, "publication_day", b.PublicationDay)
	putString(r, "publisher", b.Publisher)
	if b.AverageRating > 0 {
		r["average_rating"] = b.AverageRating
	}
	putInt(r, "ratings_count", b.RatingsCount)
	putInt(r, "text_reviews_count", b.TextReviewsCount)
	putString(r, "description", b.Description)
	putString(r, "link", b.Link)
	return r
}

// Author is an author record from the book catalog's roster.
type Author struct {
	AuthorID      string  `json:"author_id"`
	Name          string  `json:"name"`
	AverageRating float64 `json:"average_rating,omitempty"`
	WorksCount    int     `json:"works_count,omitempty"`
	FansCount     int     `json:"fans_count,omitempty"`
	Link          string  `json:"link,omitempty"`
}

func (a Author) Kind() Kind      { return KindAuthor }
func (a Author) ID() string      { return a.AuthorID }
func (a Author) Display() string { return a.Name }

func (a Author) Record() map[string]any {
	r := map[string]any{
		"author_id": a.AuthorID,
		"name":      a.Name,
	}
	if a.AverageRating > 0 {
		r["average_rating"] = a.AverageRating
	}
	putInt(r, "works_count", a.WorksCount)
	putInt(r, "fans_count", a.FansCount)
	putString(r, "link", a.Link)
	return r
}

// Person is a biographical record from the person catalog. Years may be
// negative, meaning BCE. A zero PageID means the page id is unknown.
type Person struct {
	Title      string   `json:"title"`
	PageID     int64    `json:"page_id"`
	BirthYear  *int     `json:"birth_year,omitempty"`
	DeathYear  *int     `json:"death_year,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Infoboxes  []string `json:"infoboxes,omitempty"`
}

func (p Person) Kind() Kind      { return KindPerson }
func (p Person) Display() string { return p.Title }

// ID returns the page id as the stable identifier.
func (p Person) ID() string {
	if p.PageID == 0 {
		return ""
	}
	return strconv.FormatInt(p.PageID, 10)
}

func (p Person) Record() map[string]any {
	r := map[string]any{
		"title":   p.Title,
		"page_id": p.PageID,
	}
	if p.BirthYear != nil {
		r["birth_year"] = *p.BirthYear
	}
	if p.DeathYear != nil {
		r["death_year"] = *p.DeathYear
	}
	if len(p.Categories) > 0 {
		r["categories"] = p.Categories
	}
	if len(p.Infoboxes) > 0 {
		r["infoboxes"] = p.Infoboxes
	}
	return r
}

func putString(r map[string]any, key, v string) {
	if v != "" {
		r[key] = v
	}
}

func putInt(r map[string]any, key string, v int) {
	if v != 0 {
		r[key] = v
	}
}

