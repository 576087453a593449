package books

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

// bookDoc is the JSON payload stored in the catalog's data field. The source
// dump is loosely typed: numeric fields may arrive as strings.
type bookDoc struct {
	BookID           flexString  `json:"book_id"`
	WorkID           flexString  `json:"work_id"`
	Title            string      `json:"title"`
	Authors          []string    `json:"author_names_resolved"`
	AuthorRefs       []authorRef `json:"authors"`
	PublicationYear  flexInt     `json:"publication_year"`
	PublicationMonth flexInt     `json:"publication_month"`
	PublicationDay   flexInt     `json:"publication_day"`
	Publisher        string      `json:"publisher"`
	AverageRating    flexFloat   `json:"average_rating"`
	RatingsCount     flexInt     `json:"ratings_count"`
	TextReviewsCount flexInt     `json:"text_reviews_count"`
	Description      string      `json:"description"`
	Link             string      `json:"link"`
	URL              string      `json:"url"`
}

// authorRef is the embedded author object inside a book payload.
type authorRef struct {
	Name string `json:"name"`
}

func (d *bookDoc) toDomain() domain.Book {
	authors := d.Authors
	if len(authors) == 0 {
		for _, ref := range d.AuthorRefs {
			if name := strings.TrimSpace(ref.Name); name != "" {
				authors = append(authors, name)
			}
		}
	}

	link := d.Link
	if link == "" {
		link = d.URL
	}

	return domain.Book{
		BookID:           string(d.BookID),
		WorkID:           string(d.WorkID),
		Title:            d.Title,
		Authors:          authors,
		PublicationYear:  int(d.PublicationYear),
		PublicationMonth: int(d.PublicationMonth),
		PublicationDay:   int(d.PublicationDay),
		Publisher:        d.Publisher,
		AverageRating:    float64(d.AverageRating),
		RatingsCount:     int(d.RatingsCount),
		TextReviewsCount: int(d.TextReviewsCount),
		Description:      truncateDescription(d.Description),
		Link:             link,
	}
}

// truncateDescription caps the description at MaxDescriptionChars characters,
// never splitting a multibyte rune.
func truncateDescription(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= domain.MaxDescriptionChars {
		return s
	}
	runes := []rune(s)
	if len(runes) <= domain.MaxDescriptionChars {
		return s
	}
	return strings.TrimRight(string(runes[:domain.MaxDescriptionChars]), " ") + "..."
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	*f = ""
	return nil
}

// flexInt decodes a JSON number or numeric string; anything else is zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			*f = flexInt(v)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = flexInt(v)
			return nil
		}
	}
	*f = 0
	return nil
}

// flexFloat decodes a JSON number or numeric string; anything else is zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Float64(); err == nil {
			*f = flexFloat(v)
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*f = flexFloat(v)
			return nil
		}
	}
	*f = 0
	return nil
}
