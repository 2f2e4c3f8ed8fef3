package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Section is one numbered part of a multi-part document.
type Section struct {
	// Number is the 1-based position after empty sections are dropped.
	Number int `json:"section_number"`
	// Label is the number the model wrote in the tag.
	Label   int    `json:"-"`
	Content string `json:"content"`
}

var (
	sectionOpenPattern   = regexp.MustCompile(`<section_(\d+)>`)
	sectionMarkerPattern = regexp.MustCompile(`</?section_\d+>`)
)

// Sections splits block on <section_N> tags. A section ends at its matching
// </section_N> when that closer appears before the next opening tag;
// otherwise it runs to the next opening tag or the end of the block. Empty
// sections are dropped and the rest are renumbered 1..K in order of
// appearance, whatever labels the model used.
func Sections(block string) []Section {
	opens := sectionOpenPattern.FindAllStringSubmatchIndex(block, -1)
	if len(opens) == 0 {
		return nil
	}

	var sections []Section
	for i, loc := range opens {
		label, _ := strconv.Atoi(block[loc[2]:loc[3]])
		start := loc[1]

		limit := len(block)
		if i+1 < len(opens) {
			limit = opens[i+1][0]
		}

		end := limit
		closer := "</section_" + block[loc[2]:loc[3]] + ">"
		if j := strings.Index(block[start:limit], closer); j >= 0 {
			end = start + j
		}

		content := sectionMarkerPattern.ReplaceAllString(block[start:end], "")
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}

		sections = append(sections, Section{
			Number:  len(sections) + 1,
			Label:   label,
			Content: content,
		})
	}
	return sections
}
