// Package suggest finds "did you mean" candidates for unknown names.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Closest returns the candidate that best matches target, ignoring case,
// or "" when nothing matches.
func Closest(target string, candidates []string) string {
	if target == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

// Hint formats a " (did you mean ...?)" suffix, or "" when there is no
// candidate.
func Hint(target string, candidates []string) string {
	if c := Closest(target, candidates); c != "" {
		return " (did you mean '" + c + "'?)"
	}
	return ""
}
