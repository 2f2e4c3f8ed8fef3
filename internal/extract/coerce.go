package extract

import (
	"math"
	"strconv"
	"strings"
)

var (
	affirmative = map[string]struct{}{"yes": {}, "sí": {}, "si": {}, "true": {}, "1": {}}
	negative    = map[string]struct{}{"no": {}, "false": {}, "0": {}}
)

// ParseBool maps a yes/no token in English or Spanish to a boolean. ok is
// false when s is not one of yes, sí, si, true, 1, no, false or 0, compared
// case-insensitively after trimming.
func ParseBool(s string) (value bool, ok bool) {
	token := strings.ToLower(strings.TrimSpace(s))
	if _, yes := affirmative[token]; yes {
		return true, true
	}
	if _, no := negative[token]; no {
		return false, true
	}
	return false, false
}

// ParseConfidence parses a confidence score. ok is false unless s is a
// finite number in [0, 1].
func ParseConfidence(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

// ParseScore parses an integer score bounded by [min, max].
func ParseScore(s string, min, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}
