package parse

import (
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/extract"
)

// minEvaluationLength is the shortest response considered for answer
// evaluation.
const minEvaluationLength = 10

// AnswerEvaluation parses <is_correct> and <feedback>. is_correct must use
// the boolean vocabulary accepted by extract.ParseBool.
func (p *Parser) AnswerEvaluation(text string) (domain.AnswerEvaluation, bool) {
	fields := []string{"is_correct", "feedback"}
	if len([]rune(text)) < minEvaluationLength {
		return domain.AnswerEvaluation{}, false
	}

	raw, ok := p.field(text, "is_correct", fields)
	if !ok {
		p.logger.Debug("is_correct not found")
		return domain.AnswerEvaluation{}, false
	}
	feedback, ok := p.field(text, "feedback", fields)
	if !ok {
		p.logger.Debug("feedback not found")
		return domain.AnswerEvaluation{}, false
	}
	correct, ok := extract.ParseBool(raw)
	if !ok {
		p.logger.Warn("invalid is_correct value", "value", raw)
		return domain.AnswerEvaluation{}, false
	}
	return domain.AnswerEvaluation{IsCorrect: correct, Feedback: feedback}, true
}

var challengeFeedbackFields = []string{
	"delivered",
	"strengths",
	"areas_for_improvement",
	"suggestions",
	"overall_assessment",
	"ready_to_submit",
}

// ChallengeFeedback parses a <challenge_feedback> block. Every field is
// required and ready_to_submit must be a recognised boolean.
func (p *Parser) ChallengeFeedback(text string) (domain.ChallengeFeedback, bool) {
	block, ok := p.ex.Extract(text, "challenge_feedback", challengeFeedbackFields...)
	if !ok {
		p.logger.Debug("challenge_feedback not found")
		return domain.ChallengeFeedback{}, false
	}

	values := make(map[string]string, len(challengeFeedbackFields))
	for _, tag := range challengeFeedbackFields {
		v, ok := p.field(block, tag, challengeFeedbackFields)
		if !ok {
			p.logger.Debug("challenge feedback field missing", "field", tag)
			return domain.ChallengeFeedback{}, false
		}
		values[tag] = v
	}

	ready, ok := extract.ParseBool(values["ready_to_submit"])
	if !ok {
		p.logger.Warn("invalid ready_to_submit value", "value", values["ready_to_submit"])
		return domain.ChallengeFeedback{}, false
	}

	return domain.ChallengeFeedback{
		Delivered:           values["delivered"],
		Strengths:           values["strengths"],
		AreasForImprovement: values["areas_for_improvement"],
		Suggestions:         values["suggestions"],
		OverallAssessment:   values["overall_assessment"],
		ReadyToSubmit:       ready,
	}, true
}
