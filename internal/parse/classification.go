package parse

import (
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/extract"
)

var classificationFields = []string{"category", "subcategory", "confidence", "reasoning"}

// Classification parses a <classification> block. Only category is
// required, but a confidence that is present and not a number in [0,1]
// rejects the whole record.
func (p *Parser) Classification(text string) (domain.Classification, bool) {
	block, ok := p.ex.Extract(text, "classification", classificationFields...)
	if !ok {
		return domain.Classification{}, false
	}

	category, ok := p.field(block, "category", classificationFields)
	if !ok {
		p.logger.Debug("classification without category")
		return domain.Classification{}, false
	}

	c := domain.Classification{Category: category}
	c.Subcategory, _ = p.field(block, "subcategory", classificationFields)
	c.Reasoning, _ = p.field(block, "reasoning", classificationFields)

	if raw, ok := p.field(block, "confidence", classificationFields); ok {
		conf, ok := extract.ParseConfidence(raw)
		if !ok {
			p.logger.Warn("malformed confidence", "value", raw)
			return domain.Classification{}, false
		}
		c.Confidence = &conf
	}
	return c, true
}
