package query

import (
	"sort"
	"strings"
)

// AliasTable maps lowercase author-name variants to their canonical form.
// It is read-only after construction.
type AliasTable struct {
	canonical map[string]string
	order     []string
}

// NewAliasTable builds an alias table from a variant -> canonical mapping.
// Keys are lowercased and trimmed; variant emission order is sorted so it
// stays deterministic regardless of map iteration order.
func NewAliasTable(variants map[string]string) AliasTable {
	t := AliasTable{canonical: make(map[string]string, len(variants))}
	for k, v := range variants {
		lk := strings.ToLower(strings.TrimSpace(k))
		if lk == "" || strings.TrimSpace(v) == "" {
			continue
		}
		if _, dup := t.canonical[lk]; !dup {
			t.order = append(t.order, lk)
		}
		t.canonical[lk] = strings.TrimSpace(v)
	}
	// Deterministic variant emission regardless of map iteration order.
	sort.Strings(t.order)
	return t
}

// Len returns the number of variant entries.
func (t AliasTable) Len() int { return len(t.canonical) }

// Canonical returns the canonical form for an author name, if any.
func (t AliasTable) Canonical(author string) (string, bool) {
	c, ok := t.canonical[strings.ToLower(strings.TrimSpace(author))]
	return c, ok
}

// Variants returns every known alias for the author (canonical form first,
// then sibling variants in table order), excluding the input itself. Variant
// keys are re-cased to title case the way the source table stores plain
// lowercase keys.
func (t AliasTable) Variants(author string) []string {
	if author == "" || len(t.canonical) == 0 {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(author))

	var out []string
	canonical, ok := t.canonical[lower]
	if ok && !strings.EqualFold(canonical, author) {
		out = append(out, canonical)
	}

	target := canonical
	if target == "" {
		target = author
	}
	for _, key := range t.order {
		if key == lower {
			continue
		}
		if strings.EqualFold(t.canonical[key], target) {
			out = append(out, titleCase(key))
		}
	}

	seen := map[string]bool{lower: true}
	unique := out[:0]
	for _, v := range out {
		lv := strings.ToLower(v)
		if !seen[lv] {
			seen[lv] = true
			unique = append(unique, v)
		}
	}
	return unique
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		r := []rune(f)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}

