package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/registry"
)

func newQuestionService(t *testing.T, gen *fakeGenerator) (*QuestionService, *registry.Set) {
	t.Helper()
	set := registry.NewSet(t.TempDir(), discardLogger())
	svc, err := NewQuestionService(newToolkit(t, gen), set, discardLogger())
	require.NoError(t, err)
	return svc, set
}

var algebra = domain.Content{ID: "algebra", Name: "Algebra", Text: "Linear equations and their solutions."}

func TestQuestionServiceGenerate(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{respond: func(n int, _ generation.Request) (string, error) {
		if n == 0 {
			return fullQuestionSet("first"), nil
		}
		return fullQuestionSet("second"), nil
	}}
	svc, set := newQuestionService(t, gen)
	ctx := context.Background()

	got, err := svc.Generate(ctx, QuestionRequest{Content: algebra, Difficulty: domain.DifficultyMedium})
	require.NoError(t, err)
	assert.Equal(t, generation.StateSuccess, got.State)
	assert.Equal(t, 1, got.Attempts)
	assert.Len(t, got.Questions, 8)
	assert.Len(t, got.IDs, 8)
	assert.Empty(t, got.Missing)
	for _, q := range got.Questions {
		assert.Equal(t, domain.DifficultyMedium, q.Difficulty)
	}

	reg, err := set.Open(QuestionsCollection, []string{"algebra"})
	require.NoError(t, err)
	entries, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 8)
	assert.Equal(t, "medium", entries[0].Difficulty)
	assert.Equal(t, []string{"algebra"}, entries[0].SourceContents)

	_, err = svc.Generate(ctx, QuestionRequest{Content: algebra, Difficulty: domain.DifficultyMedium})
	require.NoError(t, err)

	calls := gen.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "None (first generation attempt)", calls[0].Variables["previous_items"])
	assert.Contains(t, calls[1].Variables["previous_items"], "- [MEDIUM] first choice 1")
	assert.Equal(t, "medium", calls[1].Variables["difficulty"])
}

func TestQuestionServicePartialSet(t *testing.T) {
	t.Parallel()
	partial := `<fill_blank>
<question><text>Only blank ____</text><answer>x</answer></question>
<question><text>Second blank ____</text><answer>y</answer></question>
</fill_blank>`
	gen := &fakeGenerator{respond: respondWith(partial)}
	svc, _ := newQuestionService(t, gen)

	got, err := svc.Generate(context.Background(), QuestionRequest{Content: algebra, Difficulty: domain.DifficultyEasy})
	require.NoError(t, err)
	assert.Equal(t, generation.StateExhausted, got.State)
	assert.Equal(t, generation.DefaultMaxAttempts, got.Attempts)
	assert.Len(t, got.Questions, 2)
	assert.Len(t, got.IDs, 2)
	assert.NotEmpty(t, got.Missing)
}

func TestQuestionServiceNothingGenerated(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{respond: respondWith("I cannot help with that.")}
	svc, set := newQuestionService(t, gen)

	got, err := svc.Generate(context.Background(), QuestionRequest{Content: algebra, Difficulty: domain.DifficultyHard})
	require.NoError(t, err)
	assert.Equal(t, generation.StateExhausted, got.State)
	assert.Empty(t, got.Questions)
	assert.Empty(t, got.IDs)

	reg, err := set.Open(QuestionsCollection, []string{"algebra"})
	require.NoError(t, err)
	entries, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQuestionServiceRejectsBadRequests(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{respond: respondWith(fullQuestionSet("x"))}
	svc, _ := newQuestionService(t, gen)

	_, err := svc.Generate(context.Background(), QuestionRequest{Content: algebra, Difficulty: "extreme"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Generate(context.Background(), QuestionRequest{Content: domain.Content{ID: "empty"}, Difficulty: domain.DifficultyEasy})
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	assert.Empty(t, gen.calls())
}

func TestNewQuestionServiceRequiresDependencies(t *testing.T) {
	t.Parallel()
	_, err := NewQuestionService(Toolkit{}, registry.NewSet(t.TempDir(), nil), nil)
	assert.ErrorIs(t, err, ErrNilDependency)

	gen := &fakeGenerator{respond: respondWith("")}
	_, err = NewQuestionService(newToolkit(t, gen), nil, nil)
	assert.ErrorIs(t, err, ErrNilDependency)
}
