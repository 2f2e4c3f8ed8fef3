package textdist

import (
	"sort"

	"github.com/agext/levenshtein"
)

// Candidate is a string paired with its distance from a target.
type Candidate struct {
	Value    string
	Distance int
}

// Distance returns the Levenshtein distance between a and b, counted in runes
// with unit costs for insertion, deletion and substitution.
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// Within returns every candidate whose distance from target is greater than
// zero and at most maxDistance, closest first. Equal distances are ordered by
// value so results are stable. Duplicate candidates are reported once.
func Within(target string, candidates []string, maxDistance int) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	var out []Candidate
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		d := Distance(target, c)
		if d > 0 && d <= maxDistance {
			out = append(out, Candidate{Value: c, Distance: d})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Closest returns the nearest candidate within maxDistance of target.
// The exact target itself never qualifies.
func Closest(target string, candidates []string, maxDistance int) (Candidate, bool) {
	matches := Within(target, candidates, maxDistance)
	if len(matches) == 0 {
		return Candidate{}, false
	}
	return matches[0], true
}
