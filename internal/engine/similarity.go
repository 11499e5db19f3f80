package engine

import (
	"sort"
	"strings"
)

// Similarity scores two normalized team names in [0,1] using a token-sort
// edit-distance ratio: tokens are sorted before comparison so word order
// ("AC Milan" vs "Milan AC") does not count against the score. It is the
// fallback identity test for aliases missing from the table and is kept
// independent from the alias table so each strategy is testable alone.
func Similarity(a, b string) float64 {
	a = tokenSort(a)
	b = tokenSort(b)
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longer)
}

func tokenSort(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// levenshtein computes edit distance with a single rolling row.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur := prev[0]
		prev[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min3(prev[j]+1, prev[j-1]+1, cur+cost)
			cur = prev[j]
			prev[j] = next
		}
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
