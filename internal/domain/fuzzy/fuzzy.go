// Package fuzzy scores surface-string similarity for candidate ranking.
package fuzzy

import (
	"regexp"
	"sort"
	"strings"
)

// Word tokens include any Unicode letter or digit, so accented and non-Latin
// names keep their full spelling.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// TokenSortRatio returns a similarity score in [0, 100] that is insensitive
// to token order: both strings are tokenized, lowercased, sorted, and
// rejoined before a character-level longest-common-subsequence ratio is
// computed (2*lcs / (len(a)+len(b)), scaled and truncated). Empty input on
// either side scores 0.
func TokenSortRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	na := normalize(a)
	nb := normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	total := len(na) + len(nb)
	return 2 * lcsLength(na, nb) * 100 / total
}

// normalize lowercases, tokenizes on word boundaries, sorts, and rejoins.
func normalize(s string) string {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// lcsLength computes the longest-common-subsequence length with a rolling
// single-row table.
func lcsLength(a, b string) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
