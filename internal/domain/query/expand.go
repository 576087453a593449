// Package query generates deterministic search-query variants for a citation.
// Expansion is pure: no I/O, no randomness, and a fixed rule order, so the
// same citation always yields the same query list.
package query

import (
	"strings"

	"github.com/ThiagoLira/bookgraph-revisited-sub000/internal/domain"
)

// Leading articles stripped from titles, case-insensitively. Language-tagged
// in the source data; order matters only for which article fires first.
var leadingArticles = []string{
	// English
	"the ", "a ", "an ",
	// French
	"le ", "la ", "les ", "l'", "un ", "une ",
	// German
	"der ", "die ", "das ", "ein ", "eine ",
	// Spanish
	"el ", "los ", "las ",
	// Italian
	"il ", "lo ", "i ", "gli ",
	// Portuguese
	"o ", "os ", "as ",
}

// Subtitle separators; the title is split on the first occurrence.
var subtitleSeparators = []string{": ", " — ", " – ", " - "}

// Name particles removable at a word boundary.
var nameParticles = []string{
	"von ", "de ", "la ", "van ", "du ", "di ", "del ", "della ", "al-", "ibn ",
}

// Expand generates the ordered, deduplicated query list for a citation.
// broaden additionally relaxes the author constraint (title-only variants in
// book mode, fully stripped title + bare surname) for retry attempts.
func Expand(c domain.Citation, aliases AliasTable, broaden bool) []domain.SearchQuery {
	title := strings.TrimSpace(c.Title)
	author := strings.TrimSpace(c.Author)
	canonical := strings.TrimSpace(c.CanonicalAuthor)

	if title == "" && author == "" {
		return nil
	}

	var pairs [][2]string
	if title != "" {
		pairs = bookPairs(title, author, canonical, aliases, broaden)
	} else {
		pairs = authorOnlyPairs(author, canonical, aliases)
	}

	seen := make(map[string]bool, len(pairs))
	out := make([]domain.SearchQuery, 0, len(pairs))
	for _, p := range pairs {
		q := domain.SearchQuery{
			Title:  strings.TrimSpace(p[0]),
			Author: strings.TrimSpace(p[1]),
		}
		if q.IsEmpty() {
			continue
		}
		if key := q.Key(); !seen[key] {
			seen[key] = true
			out = append(out, q)
		}
	}
	return out
}

func bookPairs(title, author, canonical string, aliases AliasTable, broaden bool) [][2]string {
	var pairs [][2]string
	add := func(t, a string) { pairs = append(pairs, [2]string{t, a}) }

	// 1. Identity.
	add(title, author)

	noSubtitle := stripSubtitle(title)
	noArticle := stripLeadingArticle(title)

	// 2. Subtitle stripped.
	if noSubtitle != "" {
		add(noSubtitle, author)
	}
	// 3. Leading article stripped.
	if noArticle != "" {
		add(noArticle, author)
	}
	// 4. Both, when both independently fired.
	combined := ""
	if noSubtitle != "" && noArticle != "" {
		combined = stripLeadingArticle(noSubtitle)
		if combined != "" && !strings.EqualFold(combined, noSubtitle) {
			add(combined, author)
		}
	}

	// 5. Surname only, paired with original and subtitle-stripped titles.
	surname := lastName(author)
	if surname != "" {
		add(title, surname)
		if noSubtitle != "" {
			add(noSubtitle, surname)
		}
	}

	// 6. Alias variants, paired with the original title.
	for _, variant := range aliases.Variants(author) {
		add(title, variant)
	}

	// 7. "Last, First" swap.
	if swapped := swapCommaFormat(author); swapped != "" {
		add(title, swapped)
	}

	// 8. Particle stripping.
	if stripped := stripParticles(author); stripped != "" {
		add(title, stripped)
	}

	// 9. Canonical author substitution.
	if canonical != "" && !strings.EqualFold(canonical, author) {
		add(title, canonical)
	}

	if broaden {
		// Drop the author filter entirely; full-name phrase search is the
		// usual reason nothing matched.
		add(title, "")
		if noSubtitle != "" {
			add(noSubtitle, "")
		}
		if combined != "" && surname != "" {
			add(combined, surname)
		}
	}

	return pairs
}

func authorOnlyPairs(author, canonical string, aliases AliasTable) [][2]string {
	var pairs [][2]string
	add := func(a string) { pairs = append(pairs, [2]string{"", a}) }

	if author != "" {
		add(author)
	}
	if surname := lastName(author); surname != "" {
		add(surname)
	}
	for _, variant := range aliases.Variants(author) {
		add(variant)
	}
	if stripped := stripParticles(author); stripped != "" {
		add(stripped)
	}
	if swapped := swapCommaFormat(author); swapped != "" {
		add(swapped)
	}
	if canonical != "" && !strings.EqualFold(canonical, author) {
		add(canonical)
	}

	return pairs
}

// stripSubtitle removes the subtitle from a title. Returns "" when no
// separator is found or the prefix would be empty.
func stripSubtitle(title string) string {
	for _, sep := range subtitleSeparators {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return ""
}

// stripLeadingArticle removes a known leading article. Returns "" when no
// article matches or the remainder would be empty.
func stripLeadingArticle(title string) string {
	lower := strings.ToLower(title)
	for _, article := range leadingArticles {
		if strings.HasPrefix(lower, article) {
			if rest := strings.TrimSpace(title[len(article):]); rest != "" {
				return rest
			}
		}
	}
	return ""
}

// lastName returns the final space-separated token of a multi-token name.
func lastName(author string) string {
	parts := strings.Fields(author)
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return ""
}

// swapCommaFormat converts "Last, First" to "First Last". Returns "" when the
// name has no ", " or either half is empty.
func swapCommaFormat(author string) string {
	last, first, ok := strings.Cut(author, ", ")
	if !ok {
		return ""
	}
	last, first = strings.TrimSpace(last), strings.TrimSpace(first)
	if last == "" || first == "" {
		return ""
	}
	return first + " " + last
}

// stripParticles removes a leading or embedded name particle at a word
// boundary. Returns "" when nothing was removed or removal is trivial.
func stripParticles(author string) string {
	lower := strings.ToLower(author)
	for _, particle := range nameParticles {
		if idx := strings.Index(lower, " "+particle); idx >= 0 {
			before := strings.TrimSpace(author[:idx])
			after := strings.TrimSpace(author[idx+1+len(particle):])
			result := strings.TrimSpace(before + " " + after)
			if result != "" && !strings.EqualFold(result, author) {
				return result
			}
		}
	}
	for _, particle := range nameParticles {
		if strings.HasPrefix(lower, particle) {
			if rest := strings.TrimSpace(author[len(particle):]); rest != "" {
				return rest
			}
		}
	}
	return ""
}
