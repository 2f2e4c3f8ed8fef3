package extract

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed typos.yaml
var defaultTyposYAML []byte

// TypoTable maps canonical tag names to known misspellings.
type TypoTable struct {
	variants  map[string][]string
	canonical map[string]string
}

// ParseTypoTable reads a YAML document of the form
// `canonical: [variant, ...]`. Names are lowercased.
func ParseTypoTable(data []byte) (*TypoTable, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse typo table: %w", err)
	}

	t := &TypoTable{
		variants:  make(map[string][]string, len(raw)),
		canonical: make(map[string]string),
	}
	for canonical, variants := range raw {
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		if canonical == "" {
			return nil, fmt.Errorf("typo table has an empty canonical name")
		}
		for _, v := range variants {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" || v == canonical {
				continue
			}
			if prev, dup := t.canonical[v]; dup && prev != canonical {
				return nil, fmt.Errorf("typo %q maps to both %q and %q", v, prev, canonical)
			}
			if _, dup := t.canonical[v]; dup {
				continue
			}
			t.canonical[v] = canonical
			t.variants[canonical] = append(t.variants[canonical], v)
		}
	}
	return t, nil
}

var (
	defaultTypos     *TypoTable
	defaultTyposOnce sync.Once
)

// DefaultTypos returns the built-in typo table.
func DefaultTypos() *TypoTable {
	defaultTyposOnce.Do(func() {
		t, err := ParseTypoTable(defaultTyposYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded typo table is invalid: %v", err))
		}
		defaultTypos = t
	})
	return defaultTypos
}

// Variants returns the known misspellings of canonical, in declared order.
func (t *TypoTable) Variants(canonical string) []string {
	if t == nil {
		return nil
	}
	return t.variants[strings.ToLower(canonical)]
}

// Canonical returns the tag a misspelling stands for.
func (t *TypoTable) Canonical(variant string) (string, bool) {
	if t == nil {
		return "", false
	}
	c, ok := t.canonical[strings.ToLower(variant)]
	return c, ok
}

// Len returns the number of misspellings in the table.
func (t *TypoTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.canonical)
}
