package query

import (
	"reflect"
	"testing"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

func queryKeys(qs []domain.SearchQuery) []string {
	keys := make([]string, len(qs))
	for i, q := range qs {
		keys[i] = q.Key()
	}
	return keys
}

func containsQuery(qs []domain.SearchQuery, title, author string) bool {
	want := domain.SearchQuery{Title: title, Author: author}.Key()
	for _, q := range qs {
		if q.Key() == want {
			return true
		}
	}
	return false
}

func TestExpand_BookMode(t *testing.T) {
	c := domain.Citation{
		Title:  "The Name of the Rose: A Novel",
		Author: "Umberto Eco",
	}

	queries := Expand(c, AliasTable{}, false)
	if len(queries) == 0 {
		t.Fatal("expected queries")
	}

	// Identity always first.
	if queries[0].Title != c.Title || queries[0].Author != c.Author {
		t.Errorf("expected identity first, got %+v", queries[0])
	}

	for _, want := range [][2]string{
		{"The Name of the Rose", "Umberto Eco"},      // subtitle stripped
		{"Name of the Rose: A Novel", "Umberto Eco"}, // article stripped
		{"Name of the Rose", "Umberto Eco"},          // both
		{"The Name of the Rose: A Novel", "Eco"},     // surname
		{"The Name of the Rose", "Eco"},              // subtitle stripped + surname
	} {
		if !containsQuery(queries, want[0], want[1]) {
			t.Errorf("missing variant (%q, %q) in %v", want[0], want[1], queries)
		}
	}

	// No title-only variants without broadening.
	if containsQuery(queries, c.Title, "") {
		t.Error("unexpected author-dropped variant without broaden")
	}
}

func TestExpand_Broaden(t *testing.T) {
	c := domain.Citation{
		Title:  "The Name of the Rose: A Novel",
		Author: "Umberto Eco",
	}

	narrow := Expand(c, AliasTable{}, false)
	broad := Expand(c, AliasTable{}, true)

	if len(broad) <= len(narrow) {
		t.Fatalf("expected broaden to add queries: %d vs %d", len(broad), len(narrow))
	}

	// Broadened set is a superset: same prefix, extras appended.
	if !reflect.DeepEqual(queryKeys(broad)[:len(narrow)], queryKeys(narrow)) {
		t.Error("expected narrow queries to prefix the broadened list")
	}

	for _, want := range [][2]string{
		{"The Name of the Rose: A Novel", ""},
		{"The Name of the Rose", ""},
		{"Name of the Rose", "Eco"},
	} {
		if !containsQuery(broad, want[0], want[1]) {
			t.Errorf("missing broadened variant (%q, %q)", want[0], want[1])
		}
	}
}

func TestExpand_AuthorOnlyMode(t *testing.T) {
	queries := Expand(domain.Citation{Author: "Gabriel García Márquez"}, AliasTable{}, false)

	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d: %v", len(queries), queries)
	}
	for _, q := range queries {
		if q.Title != "" {
			t.Errorf("author-only query carries a title: %+v", q)
		}
	}
	if queries[0].Author != "Gabriel García Márquez" {
		t.Errorf("expected identity first, got %+v", queries[0])
	}
	if queries[1].Author != "Márquez" {
		t.Errorf("expected surname second, got %+v", queries[1])
	}
}

func TestExpand_CommaSwap(t *testing.T) {
	queries := Expand(domain.Citation{Author: "Austen, Jane"}, AliasTable{}, false)
	if !containsQuery(queries, "", "Jane Austen") {
		t.Errorf("missing comma-swapped variant in %v", queries)
	}
}

func TestExpand_Particles(t *testing.T) {
	queries := Expand(domain.Citation{Author: "Johann Wolfgang von Goethe"}, AliasTable{}, false)
	if !containsQuery(queries, "", "Johann Wolfgang Goethe") {
		t.Errorf("missing particle-stripped variant in %v", queries)
	}
}

func TestExpand_CanonicalAuthor(t *testing.T) {
	queries := Expand(domain.Citation{
		Title:           "Adventures of Huckleberry Finn",
		Author:          "Mark Twain",
		CanonicalAuthor: "Samuel Clemens",
	}, AliasTable{}, false)
	if !containsQuery(queries, "Adventures of Huckleberry Finn", "Samuel Clemens") {
		t.Errorf("missing canonical-author variant in %v", queries)
	}
}

func TestExpand_Aliases(t *testing.T) {
	aliases := NewAliasTable(map[string]string{
		"mark twain": "Samuel Clemens",
		"s. clemens": "Samuel Clemens",
	})

	queries := Expand(domain.Citation{
		Title:  "Adventures of Huckleberry Finn",
		Author: "Mark Twain",
	}, aliases, false)

	if !containsQuery(queries, "Adventures of Huckleberry Finn", "Samuel Clemens") {
		t.Errorf("missing canonical alias variant in %v", queries)
	}
	if !containsQuery(queries, "Adventures of Huckleberry Finn", "S. Clemens") {
		t.Errorf("missing sibling alias variant in %v", queries)
	}
}

func TestExpand_Deduplicates(t *testing.T) {
	// Title without subtitle or article, single-token author: most rules
	// collapse into the identity query.
	queries := Expand(domain.Citation{Title: "Dubliners", Author: "Joyce"}, AliasTable{}, true)

	seen := make(map[string]bool)
	for _, q := range queries {
		if seen[q.Key()] {
			t.Fatalf("duplicate query %+v", q)
		}
		seen[q.Key()] = true
	}
}

func TestExpand_Deterministic(t *testing.T) {
	c := domain.Citation{Title: "A Tale of Two Cities: A Story", Author: "Dickens, Charles"}
	aliases := NewAliasTable(map[string]string{
		"boz":             "Charles Dickens",
		"charles dickens": "Charles Dickens",
	})

	first := Expand(c, aliases, true)
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(Expand(c, aliases, true), first) {
			t.Fatal("expansion is not deterministic")
		}
	}
}

func TestExpand_Empty(t *testing.T) {
	if got := Expand(domain.Citation{}, AliasTable{}, false); got != nil {
		t.Errorf("expected nil for empty citation, got %v", got)
	}
	if got := Expand(domain.Citation{Title: "   ", Author: " "}, AliasTable{}, true); got != nil {
		t.Errorf("expected nil for blank citation, got %v", got)
	}
}

func TestStripSubtitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Title: Subtitle", "Title"},
		{"Title - Subtitle", "Title"},
		{"Title — Subtitle", "Title"},
		{"No separator", ""},
		{": Leading separator", ""},
	}
	for _, tc := range tests {
		if got := stripSubtitle(tc.in); got != tc.want {
			t.Errorf("stripSubtitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripLeadingArticle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Trial", "Trial"},
		{"the trial", "trial"},
		{"La Peste", "Peste"},
		{"Der Prozess", "Prozess"},
		{"Trial", ""},
		{"The ", ""},
	}
	for _, tc := range tests {
		if got := stripLeadingArticle(tc.in); got != tc.want {
			t.Errorf("stripLeadingArticle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLastName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jane Austen", "Austen"},
		{"Gabriel García Márquez", "Márquez"},
		{"Plato", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := lastName(tc.in); got != tc.want {
			t.Errorf("lastName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSwapCommaFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Austen, Jane", "Jane Austen"},
		{"No comma", ""},
		{", Jane", ""},
		{"Austen, ", ""},
	}
	for _, tc := range tests {
		if got := swapCommaFormat(tc.in); got != tc.want {
			t.Errorf("swapCommaFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripParticles(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Johann Wolfgang von Goethe", "Johann Wolfgang Goethe"},
		{"Honoré de Balzac", "Honoré Balzac"},
		{"von Neumann", "Neumann"},
		{"Jane Austen", ""},
	}
	for _, tc := range tests {
		if got := stripParticles(tc.in); got != tc.want {
			t.Errorf("stripParticles(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
