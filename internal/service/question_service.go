package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/prompts"
	"github.com/phrazzld/tutorgen/internal/quota"
	"github.com/phrazzld/tutorgen/internal/registry"
)

// QuestionsCollection names the per-content question registry.
const QuestionsCollection = "questions"

const questionsMaxTokens = 4096

// QuestionRequest asks for one question set.
type QuestionRequest struct {
	Content    domain.Content    `json:"content" validate:"required"`
	Difficulty domain.Difficulty `json:"difficulty" validate:"required"`
}

// QuestionSet is the outcome of a question session.
type QuestionSet struct {
	ContentID  string             `json:"content_id"`
	Difficulty domain.Difficulty  `json:"difficulty"`
	State      generation.State   `json:"state"`
	Attempts   int                `json:"attempts"`
	Missing    string             `json:"missing,omitempty"`
	Questions  []*domain.Question `json:"questions"`
	IDs        []uuid.UUID        `json:"registry_ids,omitempty"`
}

// QuestionService generates question sets and stores them in the content's
// registry.
type QuestionService struct {
	tk         Toolkit
	registries *registry.Set
	logger     *slog.Logger
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(tk Toolkit, registries *registry.Set, logger *slog.Logger) (*QuestionService, error) {
	if err := tk.check(); err != nil {
		return nil, err
	}
	if registries == nil {
		return nil, fmt.Errorf("%w: registries", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionService{
		tk:         tk,
		registries: registries,
		logger:     logger.With(slog.String("component", "question_service")),
	}, nil
}

// Generate runs a question session for the content and difficulty. A
// session that ends with a deficit is not an error: the partial set is
// stored and returned with State exhausted.
func (s *QuestionService) Generate(ctx context.Context, req QuestionRequest) (*QuestionSet, error) {
	if err := req.Content.Validate(); err != nil {
		return nil, err
	}
	difficulty, err := domain.ParseDifficulty(string(req.Difficulty))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	log := logger.FromContextOrDefault(ctx, s.logger).With(
		"content_id", req.Content.ID,
		"difficulty", difficulty)

	prompt, err := s.tk.prompt(prompts.Questions)
	if err != nil {
		return nil, err
	}
	reg, err := s.registries.Open(QuestionsCollection, []string{registry.ComboKey([]string{req.Content.ID})})
	if err != nil {
		return nil, fmt.Errorf("failed to open question registry: %w", err)
	}
	prior, err := reg.LoadPriorTitles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous questions: %w", err)
	}

	outcome, err := generation.Run(ctx, s.tk.Controller, generation.Plan[*domain.Question]{
		Name:   "questions:" + req.Content.ID,
		Quota:  quota.Questions,
		Prompt: prompt,
		Variables: map[string]any{
			"content":    req.Content.Text,
			"difficulty": string(difficulty),
		},
		PriorItems: prior,
		MaxTokens:  questionsMaxTokens,
		Parse:      s.tk.Parser.Questions,
		Validate:   s.tk.Validator.Question,
	})
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	set := &QuestionSet{
		ContentID:  req.Content.ID,
		Difficulty: difficulty,
		State:      outcome.State,
		Attempts:   outcome.Attempts,
		Questions:  outcome.Items,
	}
	if !outcome.Deficit.Empty() {
		set.Missing = outcome.Deficit.String()
	}
	if len(outcome.Items) == 0 {
		log.Warn("question session produced nothing", "attempts", outcome.Attempts)
		return set, nil
	}

	items := make([]registry.Item, len(outcome.Items))
	for i, q := range outcome.Items {
		q.Difficulty = difficulty
		items[i] = q
	}
	set.IDs, err = reg.Persist(ctx, items, []string{req.Content.ID}, registry.Meta{Difficulty: string(difficulty)})
	if err != nil {
		return nil, fmt.Errorf("failed to store questions: %w", err)
	}

	log.Info("question set generated",
		"state", outcome.State,
		"count", len(outcome.Items),
		"attempts", outcome.Attempts)
	return set, nil
}
