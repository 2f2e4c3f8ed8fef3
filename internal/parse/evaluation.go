package parse

import (
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/extract"
)

var evaluationFields = []string{"score", "strengths", "weaknesses", "recommendations"}

// Evaluation parses an <evaluation> block. score (0-100) and strengths are
// required.
func (p *Parser) Evaluation(text string) (domain.Evaluation, bool) {
	block, ok := p.ex.Extract(text, "evaluation", evaluationFields...)
	if !ok {
		return domain.Evaluation{}, false
	}

	raw, ok := p.field(block, "score", evaluationFields)
	if !ok {
		return domain.Evaluation{}, false
	}
	score, ok := extract.ParseScore(raw, 0, 100)
	if !ok {
		p.logger.Warn("invalid score", "value", raw)
		return domain.Evaluation{}, false
	}
	strengths, ok := p.field(block, "strengths", evaluationFields)
	if !ok {
		return domain.Evaluation{}, false
	}

	e := domain.Evaluation{Score: score, Strengths: strengths}
	e.Weaknesses, _ = p.field(block, "weaknesses", evaluationFields)
	e.Recommendations, _ = p.field(block, "recommendations", evaluationFields)
	return e, true
}
