package parse

import (
	"strings"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/extract"
)

var (
	optionFields   = []string{"option_a", "option_b", "option_c", "option_d"}
	questionFields = append([]string{"text", "answer", "options"}, optionFields...)
	groupTags      = []string{
		string(domain.QuestionMultipleChoice),
		string(domain.QuestionTrueFalse),
		string(domain.QuestionFillBlank),
		string(domain.QuestionShortAnswer),
		string(domain.QuestionFreeRecall),
	}
)

// Questions parses a question set. Each question type is a group tag holding
// one <question> block per item:
//
//	<multiple_choice>
//	  <question>
//	    <text>...</text>
//	    <options><option_a>...</option_a>...</options>
//	    <answer>a</answer>
//	  </question>
//	</multiple_choice>
//
// Questions come back in group order, then block order.
func (p *Parser) Questions(text string) []*domain.Question {
	var out []*domain.Question
	for _, qt := range domain.QuestionTypes {
		group, ok := p.field(text, string(qt), groupTags)
		if !ok {
			continue
		}
		for i, block := range extract.Blocks(group, "question") {
			q, ok := p.question(qt, block)
			if !ok {
				p.logger.Debug("question missing required fields",
					"type", string(qt),
					"index", i+1,
					"snippet", snippet(block, 80))
				continue
			}
			out = append(out, q)
		}
	}
	return out
}

func (p *Parser) question(qt domain.QuestionType, block string) (*domain.Question, bool) {
	text, ok := p.field(block, "text", questionFields)
	if !ok {
		return nil, false
	}
	answer, ok := p.field(block, "answer", questionFields)
	if !ok {
		return nil, false
	}

	q := &domain.Question{Type: qt, Text: text}
	switch qt {
	case domain.QuestionMultipleChoice:
		options := p.options(block)
		if len(options) == 0 {
			return nil, false
		}
		q.Options = options
		q.CorrectAnswer = optionKey(answer)
	case domain.QuestionTrueFalse:
		if v, ok := extract.ParseBool(answer); ok {
			if v {
				answer = "true"
			} else {
				answer = "false"
			}
		}
		q.CorrectAnswer = answer
	case domain.QuestionFillBlank:
		q.CorrectAnswer = answer
	default:
		q.SampleAnswer = answer
	}
	return q, true
}

// options returns the non-empty options keyed "a".."d".
func (p *Parser) options(block string) map[string]string {
	group, ok := p.field(block, "options", questionFields)
	if !ok {
		return nil
	}
	options := make(map[string]string, len(optionFields))
	for _, tag := range optionFields {
		if v, ok := p.field(group, tag, optionFields); ok {
			options[strings.TrimPrefix(tag, "option_")] = v
		}
	}
	return options
}

// optionKey normalizes an answer key such as "B", "option_b" or "b)" to "b".
func optionKey(answer string) string {
	key := strings.ToLower(strings.TrimSpace(answer))
	key = strings.TrimPrefix(key, "option_")
	key = strings.TrimPrefix(key, "option ")
	if len(key) > 1 && key[0] >= 'a' && key[0] <= 'z' && strings.ContainsRune(").:", rune(key[1])) {
		key = key[:1]
	}
	return key
}
