package extract

import (
	"regexp"
	"strings"
)

// Blocks returns the trimmed content of every <tag>...</tag> pair in text, in
// order. Matching ignores case and pairs do not overlap. Empty blocks are
// skipped.
func Blocks(text, tag string) []string {
	if tag == "" || text == "" {
		return nil
	}
	pattern := regexp.MustCompile(`(?is)<` + regexp.QuoteMeta(tag) + `>(.*?)</` + regexp.QuoteMeta(tag) + `>`)

	var out []string
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if content := strings.TrimSpace(m[1]); content != "" {
			out = append(out, content)
		}
	}
	return out
}
