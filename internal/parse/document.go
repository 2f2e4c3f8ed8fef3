package parse

import "github.com/phrazzld/tutorgen/internal/extract"

// Document kinds.
const (
	DocumentTextbook = "textbook"
	DocumentStory    = "story"
)

// Document is generated study material split into numbered sections.
type Document struct {
	Type     string            `json:"type"`
	Sections []extract.Section `json:"sections"`
}

// Document parses a <textbook> or <story> wrapper holding <section_N>
// blocks. It fails when neither wrapper is present or no section has
// content.
func (p *Parser) Document(text string) (Document, bool) {
	for _, kind := range []string{DocumentTextbook, DocumentStory} {
		body, ok := p.ex.Extract(text, kind, DocumentTextbook, DocumentStory)
		if !ok {
			continue
		}
		sections := extract.Sections(body)
		if len(sections) == 0 {
			p.logger.Debug("document without sections", "type", kind)
			return Document{}, false
		}
		return Document{Type: kind, Sections: sections}, true
	}
	return Document{}, false
}
