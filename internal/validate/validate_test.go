package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/tutorgen/internal/domain"
)

func TestQuestion(t *testing.T) {
	t.Parallel()
	v := New()

	mc := func(answer string, options map[string]string) *domain.Question {
		return &domain.Question{
			Type:          domain.QuestionMultipleChoice,
			Text:          "Pick one",
			Options:       options,
			CorrectAnswer: answer,
		}
	}

	tests := []struct {
		name       string
		q          *domain.Question
		wantValid  bool
		wantReason []string
	}{
		{
			name:      "valid multiple choice",
			q:         mc("b", map[string]string{"a": "x", "b": "y"}),
			wantValid: true,
		},
		{
			name:       "answer key not among options",
			q:          mc("e", map[string]string{"b": "y", "a": "x"}),
			wantReason: []string{`"e"`, "[a, b]"},
		},
		{
			name:       "answer option is blank",
			q:          mc("a", map[string]string{"a": "  ", "b": "y"}),
			wantReason: []string{`option "a"`, "empty"},
		},
		{
			name:       "no options",
			q:          mc("a", nil),
			wantReason: []string{"options is required"},
		},
		{
			name:      "true false",
			q:         &domain.Question{Type: domain.QuestionTrueFalse, Text: "Sky is blue", CorrectAnswer: "true"},
			wantValid: true,
		},
		{
			name:       "fill blank without answer",
			q:          &domain.Question{Type: domain.QuestionFillBlank, Text: "___ is a gopher"},
			wantReason: []string{"correct_answer is required"},
		},
		{
			name:       "short answer without sample",
			q:          &domain.Question{Type: domain.QuestionShortAnswer, Text: "Why?", CorrectAnswer: "ignored"},
			wantReason: []string{"sample_answer is required"},
		},
		{
			name:      "free recall",
			q:         &domain.Question{Type: domain.QuestionFreeRecall, Text: "Recall", SampleAnswer: "All of it"},
			wantValid: true,
		},
		{
			name:       "missing text",
			q:          &domain.Question{Type: domain.QuestionFreeRecall, SampleAnswer: "x"},
			wantReason: []string{"text is required"},
		},
		{
			name:       "unknown type",
			q:          &domain.Question{Type: "essay", Text: "Write", SampleAnswer: "x"},
			wantReason: []string{"type must be one of"},
		},
		{
			name:       "nil",
			q:          nil,
			wantReason: []string{"nil"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Question(tt.q)
			assert.Equal(t, tt.wantValid, got.Valid, got.Reason)
			for _, want := range tt.wantReason {
				assert.Contains(t, got.Reason, want)
			}
			if tt.wantValid {
				assert.Empty(t, got.Reason)
			}
		})
	}
}

func TestChallengeAndReportSection(t *testing.T) {
	t.Parallel()
	v := New()

	full := &domain.Challenge{Title: "T", Description: "D", LearningGoals: "L", Deliverables: "X"}
	assert.True(t, v.Challenge(full).Valid)

	partial := &domain.Challenge{Title: "T", Description: "D"}
	res := v.Challenge(partial)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Reason, "learning_goals is required")
	assert.Contains(t, res.Reason, "deliverables is required")

	assert.True(t, v.ReportSection(&domain.ReportSection{Name: "findings", Content: "ok"}).Valid)
	res = v.ReportSection(&domain.ReportSection{Name: "findings"})
	assert.False(t, res.Valid)
	assert.Contains(t, res.Reason, "content is required")
}
