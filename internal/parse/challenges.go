package parse

import (
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/extract"
)

var challengeFields = []string{"title", "description", "learning_goals", "deliverables"}

// Challenges parses <challenges><challenge>...</challenge></challenges>.
// When the wrapper is missing, challenge blocks anywhere in text are used.
func (p *Parser) Challenges(text string) []*domain.Challenge {
	body, ok := p.ex.Extract(text, "challenges", "challenge")
	if !ok {
		body = text
	}

	var out []*domain.Challenge
	for i, block := range extract.Blocks(body, "challenge") {
		c, ok := p.challenge(block)
		if !ok {
			p.logger.Debug("challenge missing required fields",
				"index", i+1,
				"snippet", snippet(block, 80))
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *Parser) challenge(block string) (*domain.Challenge, bool) {
	values := make([]string, len(challengeFields))
	for i, tag := range challengeFields {
		v, ok := p.field(block, tag, challengeFields)
		if !ok {
			return nil, false
		}
		values[i] = v
	}
	return &domain.Challenge{
		Title:         values[0],
		Description:   values[1],
		LearningGoals: values[2],
		Deliverables:  values[3],
	}, true
}
