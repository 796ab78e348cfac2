// Package fuzzy finds the closest known string to a possibly misspelled input.
package fuzzy

import "github.com/pmezard/go-difflib/difflib"

// DefaultThreshold is the minimum similarity a candidate needs to be suggested.
const DefaultThreshold = 0.8

// Ratio returns the sequence-matching similarity of a and b in [0,1]:
// 2*M/T where M counts characters in matching blocks and T is the combined length.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// Closest returns the candidate most similar to input whose ratio is at least
// minSimilarity. Ties keep the candidate that appears first.
func Closest(input string, candidates []string, minSimilarity float64) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	in := runes(input)
	m := difflib.NewMatcher(nil, in)

	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		m.SetSeq1(runes(c))
		score := m.Ratio()
		if score >= minSimilarity && score > bestScore {
			best = c
			bestScore = score
		}
	}
	if bestScore < 0 {
		return "", false
	}
	return best, true
}

// runes splits s into one element per character so multi-byte letters
// such as "ü" count once.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
