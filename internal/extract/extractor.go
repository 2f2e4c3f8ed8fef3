package extract

import (
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/phrazzld/tutorgen/internal/textdist"
)

// Correction names the recovery strategy that located a tag.
type Correction string

// Recovery strategies, in the order they are attempted after an exact match.
const (
	CorrectionNone    Correction = ""
	CorrectionTypo    Correction = "typo"
	CorrectionFuzzy   Correction = "fuzzy"
	CorrectionVariant Correction = "variant"
)

// DefaultMaxDistance is the largest edit distance accepted by fuzzy matching.
const DefaultMaxDistance = 2

// Match is the outcome of locating one tag in a text.
type Match struct {
	// Content is the trimmed text between the opening and closing tags.
	Content string
	// Found reports whether non-empty content was recovered.
	Found bool
	// Tag is the tag name actually matched, which differs from the requested
	// tag when a correction was applied.
	Tag string
	// Correction is the strategy that located Tag.
	Correction Correction
}

// Extractor pulls tagged fields out of model output.
// It is safe for concurrent use.
type Extractor struct {
	typos       *TypoTable
	maxDistance int
	logger      *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTypoTable replaces the built-in typo table.
func WithTypoTable(t *TypoTable) Option {
	return func(e *Extractor) {
		e.typos = t
	}
}

// WithMaxDistance sets the fuzzy matching threshold.
func WithMaxDistance(d int) Option {
	return func(e *Extractor) {
		if d >= 0 {
			e.maxDistance = d
		}
	}
}

// New creates an Extractor. A nil logger discards correction logs.
func New(logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Extractor{
		typos:       DefaultTypos(),
		maxDistance: DefaultMaxDistance,
		logger:      logger.With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the trimmed content of tag in text and whether it was found.
// siblings lists other tag names that legitimately appear in the same block;
// they are never accepted as misspellings of tag.
func (e *Extractor) Extract(text, tag string, siblings ...string) (string, bool) {
	m := e.Find(text, tag, siblings...)
	return m.Content, m.Found
}

// Find locates tag in text, applying recovery strategies in priority order:
// exact match, typo table, fuzzy match, then mismatched pair recovery.
func (e *Extractor) Find(text, tag string, siblings ...string) Match {
	if tag == "" || text == "" {
		return Match{}
	}

	if content, present := exactPair(text, tag); present {
		return Match{Content: content, Found: content != "", Tag: tag}
	}

	actual, correction := e.resolve(text, tag, siblings)
	if actual == "" {
		e.logger.Debug("tag not found", "tag", tag)
		return Match{}
	}

	if correction != CorrectionNone {
		e.logger.Info("applied tag correction",
			"tag", tag,
			"matched", actual,
			"correction", string(correction))
	}

	content, ok := e.extractMismatched(text, actual, tag)
	if !ok {
		e.logger.Debug("no closing tag for matched tag", "tag", tag, "matched", actual)
		return Match{Tag: actual, Correction: correction}
	}
	return Match{Content: content, Found: true, Tag: actual, Correction: correction}
}

// exactPair looks for the literal <tag> followed by </tag>. present is false
// when either delimiter is missing.
func exactPair(text, tag string) (content string, present bool) {
	open := "<" + tag + ">"
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	body := start + len(open)
	end := strings.Index(text[body:], "</"+tag+">")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(text[body : body+end]), true
}

var tagNamePattern = regexp.MustCompile(`</?([a-z0-9_]+)>`)

// resolve picks the tag name to extract with. All comparisons are
// case-insensitive.
func (e *Extractor) resolve(text, tag string, siblings []string) (string, Correction) {
	lower := asciiLower(text)
	target := asciiLower(tag)

	if strings.Contains(lower, "<"+target+">") {
		return target, CorrectionNone
	}

	for _, variant := range e.typos.Variants(target) {
		if strings.Contains(lower, "<"+variant+">") {
			return variant, CorrectionTypo
		}
	}

	excluded := make(map[string]struct{}, len(siblings)+1)
	excluded[target] = struct{}{}
	for _, s := range siblings {
		excluded[asciiLower(s)] = struct{}{}
	}

	var names []string
	for _, m := range tagNamePattern.FindAllStringSubmatch(lower, -1) {
		if _, skip := excluded[m[1]]; !skip {
			names = append(names, m[1])
		}
	}
	if c, ok := textdist.Closest(target, names, e.maxDistance); ok {
		return c.Value, CorrectionFuzzy
	}

	if v := dominantVariant(lower, target, excluded); v != "" {
		return v, CorrectionVariant
	}

	return "", CorrectionNone
}

// dominantVariant returns the most frequent tag name that extends target,
// such as <findings_section>, preferring the first seen on ties.
func dominantVariant(lower, target string, excluded map[string]struct{}) string {
	quoted := regexp.QuoteMeta(target)
	opening := regexp.MustCompile(`<(` + quoted + `[a-z0-9_]*)>`)
	closing := regexp.MustCompile(`</([a-z0-9_]*` + quoted + `[a-z0-9_]*)>`)

	counts := make(map[string]int)
	var order []string
	add := func(matches [][]string) {
		for _, m := range matches {
			name := m[1]
			if _, skip := excluded[name]; skip {
				continue
			}
			if counts[name] == 0 {
				order = append(order, name)
			}
			counts[name]++
		}
	}
	add(opening.FindAllStringSubmatch(lower, -1))
	add(closing.FindAllStringSubmatch(lower, -1))

	best := ""
	for _, name := range order {
		if counts[name] > counts[best] {
			best = name
		}
	}
	return best
}

// extractMismatched extracts content opened by actual. It first tries the
// matching </actual>; failing that it takes the earliest of </actual>,
// </target> and every known misspelling of target as the boundary.
func (e *Extractor) extractMismatched(text, actual, target string) (string, bool) {
	lower := asciiLower(text)
	a := asciiLower(actual)
	t := asciiLower(target)

	body := -1
	if start := strings.Index(lower, "<"+a+">"); start >= 0 {
		body = start + len(a) + 2
		if end := strings.Index(lower[body:], "</"+a+">"); end >= 0 {
			content := strings.TrimSpace(text[body : body+end])
			return content, content != ""
		}
	} else {
		opening := regexp.MustCompile(`<` + regexp.QuoteMeta(a) + `[^>]*>`)
		loc := opening.FindStringIndex(lower)
		if loc == nil {
			return "", false
		}
		body = loc[1]
	}

	closers := []string{"</" + a + ">", "</" + t + ">"}
	for _, v := range e.typos.Variants(t) {
		closers = append(closers, "</"+v+">")
	}

	best := -1
	for _, c := range closers {
		if i := strings.Index(lower[body:], c); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}

	content := strings.TrimSpace(text[body : body+best])
	return content, content != ""
}

// asciiLower lowercases ASCII letters only, so byte offsets in the result
// line up with the input.
func asciiLower(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
