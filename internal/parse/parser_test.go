package parse

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/domain"
)

func newTestParser() *Parser {
	return New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const questionResponse = `<questions>
<multiple_choice>
<question><text>What is 2+2?</text><options><option_a>3</option_a><option_b>4</option_b><option_c></option_c></options><answer>B</answer></question>
<question><text>Missing options</text><answer>a</answer></question>
</multiple_choice>
<true_false><question><text>Go has generics.</text><answer>Yes</answer></question></true_false>
<fill_blank><question><text>Go was created at ____.</text><answer>Google</answer></question></fill_blank>
<short_answer><question><text>Explain goroutines.</text><answer>Lightweight threads.</answer></question></short_answer>
<free_recall><question><text>Summarize channels.</text><answer>Typed conduits.</answer></question></free_recall>
</questions>`

func TestQuestions(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	qs := p.Questions(questionResponse)
	require.Len(t, qs, 5)

	mc := qs[0]
	assert.Equal(t, domain.QuestionMultipleChoice, mc.Type)
	assert.Equal(t, "What is 2+2?", mc.Text)
	assert.Equal(t, map[string]string{"a": "3", "b": "4"}, mc.Options)
	assert.Equal(t, "b", mc.CorrectAnswer)

	assert.Equal(t, domain.QuestionTrueFalse, qs[1].Type)
	assert.Equal(t, "true", qs[1].CorrectAnswer)

	assert.Equal(t, domain.QuestionFillBlank, qs[2].Type)
	assert.Equal(t, "Google", qs[2].CorrectAnswer)

	assert.Equal(t, domain.QuestionShortAnswer, qs[3].Type)
	assert.Equal(t, "Lightweight threads.", qs[3].SampleAnswer)
	assert.Empty(t, qs[3].CorrectAnswer)

	assert.Equal(t, domain.QuestionFreeRecall, qs[4].Type)
	assert.Equal(t, "Typed conduits.", qs[4].SampleAnswer)
}

func TestQuestionsMisspelledGroup(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	text := "<fill_blnk><question><text>The capital of France is ____.</text><answer>Paris</answer></question></fill_blnk>"
	qs := p.Questions(text)
	require.Len(t, qs, 1)
	assert.Equal(t, domain.QuestionFillBlank, qs[0].Type)
	assert.Equal(t, "Paris", qs[0].CorrectAnswer)
}

func TestQuestionsNone(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	assert.Empty(t, p.Questions("I cannot help with that."))
	assert.Empty(t, p.Questions(""))
}

func TestOptionKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"b":        "b",
		" C ":      "c",
		"option_d": "d",
		"a)":       "a",
		"b. four":  "b",
		"e":        "e",
	}
	for in, want := range tests {
		assert.Equal(t, want, optionKey(in), "input %q", in)
	}
}

func TestChallenges(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	text := `<challenges>
<challenge><title>Build a bridge</title><description>Use straws.</description><learning_goals>Forces</learning_goals><deliverables>Photo</deliverables></challenge>
<challenge><title>Incomplete</title><description>No goals</description></challenge>
</challenges>`

	cs := p.Challenges(text)
	require.Len(t, cs, 1)
	assert.Equal(t, &domain.Challenge{
		Title:         "Build a bridge",
		Description:   "Use straws.",
		LearningGoals: "Forces",
		Deliverables:  "Photo",
	}, cs[0])
}

func TestChallengesWithoutWrapper(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	text := "<challenge><title>T</title><description>D</description><learning_goals>L</learning_goals><deliverables>X</deliverables></challenge>"
	cs := p.Challenges(text)
	require.Len(t, cs, 1)
	assert.Equal(t, "T", cs[0].Title)
}

func TestReportSections(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	text := `<report>
<executive_summary>Doing well.</executive_summary>
<findigns>Strong algebra.</findigns>
<progression>Steady.</progression>
<recommendaions>Practice more.</recommendations>
<priority_focus>Fractions.</priority_focus>
</report>`

	sections := p.ReportSections(text)
	require.Len(t, sections, 5)

	got := make(map[string]string)
	for _, s := range sections {
		got[s.Name] = s.Content
	}
	assert.Equal(t, map[string]string{
		domain.SectionExecutiveSummary: "Doing well.",
		domain.SectionFindings:         "Strong algebra.",
		domain.SectionProgression:      "Steady.",
		domain.SectionRecommendations:  "Practice more.",
		domain.SectionPriorityFocus:    "Fractions.",
	}, got)
	assert.Equal(t, domain.SectionExecutiveSummary, sections[0].Name)
}

func TestReportSectionsRejects(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	t.Run("too few required sections", func(t *testing.T) {
		assert.Nil(t, p.ReportSections("<report><findings>x</findings><notes>n</notes></report>"))
	})
	t.Run("no report tag", func(t *testing.T) {
		assert.Nil(t, p.ReportSections("<findings>a</findings><progression>b</progression>"))
	})
	t.Run("misspelled wrapper accepted", func(t *testing.T) {
		sections := p.ReportSections("<repoort><findings>a</findings><progression>b</progression></repoort>")
		assert.Len(t, sections, 2)
	})
}

func TestAnswerEvaluation(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	ev, ok := p.AnswerEvaluation("<is_correct>Sí</is_correct>\n<feedback>Bien hecho.</feedback>")
	require.True(t, ok)
	assert.True(t, ev.IsCorrect)
	assert.Equal(t, "Bien hecho.", ev.Feedback)

	ev, ok = p.AnswerEvaluation("<is_correct> no </is_correct><feedback>Review chapter 2.</feedback>")
	require.True(t, ok)
	assert.False(t, ev.IsCorrect)

	_, ok = p.AnswerEvaluation("<is_correct>maybe</is_correct><feedback>Hmm, unclear.</feedback>")
	assert.False(t, ok)

	_, ok = p.AnswerEvaluation("<is_correct>yes</is_correct>")
	assert.False(t, ok)

	_, ok = p.AnswerEvaluation("short")
	assert.False(t, ok)
}

func TestChallengeFeedback(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	text := `<challenge_feedback>
<delivered>A working model.</delivered>
<strengths>Clear write-up.</strengths>
<areas_for_improvement>Units.</areas_for_improvement>
<suggestions>Add a diagram.</suggestions>
<overall_assessment>Good.</overall_assessment>
<ready_to_submit>No</ready_to_submit>
</challenge_feedback>`

	fb, ok := p.ChallengeFeedback(text)
	require.True(t, ok)
	assert.Equal(t, domain.ChallengeFeedback{
		Delivered:           "A working model.",
		Strengths:           "Clear write-up.",
		AreasForImprovement: "Units.",
		Suggestions:         "Add a diagram.",
		OverallAssessment:   "Good.",
		ReadyToSubmit:       false,
	}, fb)

	_, ok = p.ChallengeFeedback("<challenge_feedback><delivered>x</delivered></challenge_feedback>")
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	c, ok := p.Classification(`<classification><category>Mathematics</category><subcategory>Algebra</subcategory><confidence>0.9</confidence><reasoning>Equations.</reasoning></classification>`)
	require.True(t, ok)
	assert.Equal(t, "Mathematics", c.Category)
	assert.Equal(t, "Algebra", c.Subcategory)
	assert.Equal(t, "Equations.", c.Reasoning)
	require.NotNil(t, c.Confidence)
	assert.InDelta(t, 0.9, *c.Confidence, 1e-9)

	c, ok = p.Classification(`<classification><category>History</category></classification>`)
	require.True(t, ok)
	assert.Nil(t, c.Confidence)
	assert.Empty(t, c.Subcategory)

	_, ok = p.Classification(`<classification><category>History</category><confidence>high</confidence></classification>`)
	assert.False(t, ok, "malformed confidence rejects the record")

	_, ok = p.Classification(`<classification><subcategory>Algebra</subcategory></classification>`)
	assert.False(t, ok)
}

func TestDocument(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	doc, ok := p.Document("<textbook><section_1>Intro</section_1><section_2>Body</textbook>")
	require.True(t, ok)
	assert.Equal(t, DocumentTextbook, doc.Type)
	require.Len(t, doc.Sections, 2)
	assert.Equal(t, "Body", doc.Sections[1].Content)

	doc, ok = p.Document("<story><section_1>Once</section_1></story>")
	require.True(t, ok)
	assert.Equal(t, DocumentStory, doc.Type)

	_, ok = p.Document("<textbook>no sections</textbook>")
	assert.False(t, ok)
}

func TestSummaryAndEvaluation(t *testing.T) {
	t.Parallel()
	p := newTestParser()

	s, ok := p.Summary("Here you go:\n<summary>Photosynthesis turns light into sugar.</summary>")
	require.True(t, ok)
	assert.Equal(t, "Photosynthesis turns light into sugar.", s)

	ev, ok := p.Evaluation("<evaluation><score>85</score><strengths>Thorough.</strengths></evaluation>")
	require.True(t, ok)
	assert.Equal(t, 85, ev.Score)
	assert.Empty(t, ev.Weaknesses)

	_, ok = p.Evaluation("<evaluation><score>140</score><strengths>Thorough.</strengths></evaluation>")
	assert.False(t, ok)
}
