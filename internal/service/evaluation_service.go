package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/prompts"
)

const (
	evaluationMaxTokens     = 512
	classificationMaxTokens = 512
	workMaxTokens           = 1024
)

// AnswerRequest is a student's answer to one question.
type AnswerRequest struct {
	QuestionType  domain.QuestionType `json:"question_type" validate:"required"`
	Question      string              `json:"question" validate:"required"`
	CorrectAnswer string              `json:"correct_answer"`
	StudentAnswer string              `json:"student_answer" validate:"required"`
}

// WorkRequest is a piece of open-ended student work to grade.
type WorkRequest struct {
	Assignment string `json:"assignment" validate:"required"`
	Work       string `json:"work" validate:"required"`
}

// EvaluationService judges single answers and classifies contents. Both are
// one-record calls that fail when the model never returns a parsable reply.
type EvaluationService struct {
	tk     Toolkit
	logger *slog.Logger
}

// NewEvaluationService creates an EvaluationService.
func NewEvaluationService(tk Toolkit, logger *slog.Logger) (*EvaluationService, error) {
	if err := tk.check(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationService{tk: tk, logger: logger.With(slog.String("component", "evaluation_service"))}, nil
}

// EvaluateAnswer asks the model whether the answer is correct.
func (s *EvaluationService) EvaluateAnswer(ctx context.Context, req AnswerRequest) (domain.AnswerEvaluation, error) {
	if err := s.tk.Validator.Struct(req); err != nil {
		return domain.AnswerEvaluation{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	prompt, err := s.tk.prompt(prompts.AnswerEvaluation)
	if err != nil {
		return domain.AnswerEvaluation{}, err
	}
	return generation.Once(ctx, s.tk.Controller, generation.OncePlan[domain.AnswerEvaluation]{
		Name:   "answer_evaluation",
		Prompt: prompt,
		Variables: map[string]any{
			"question_type":  string(req.QuestionType),
			"question":       req.Question,
			"correct_answer": req.CorrectAnswer,
			"student_answer": req.StudentAnswer,
		},
		MaxTokens: evaluationMaxTokens,
		Parse:     s.tk.Parser.AnswerEvaluation,
	})
}

// Classify assigns the content to a subject category.
func (s *EvaluationService) Classify(ctx context.Context, content domain.Content) (domain.Classification, error) {
	if err := content.Validate(); err != nil {
		return domain.Classification{}, err
	}
	prompt, err := s.tk.prompt(prompts.Classification)
	if err != nil {
		return domain.Classification{}, err
	}
	return generation.Once(ctx, s.tk.Controller, generation.OncePlan[domain.Classification]{
		Name:      "classification:" + content.ID,
		Prompt:    prompt,
		Variables: map[string]any{"content": content.Text},
		MaxTokens: classificationMaxTokens,
		Parse:     s.tk.Parser.Classification,
	})
}

// EvaluateWork scores open-ended work from 0 to 100.
func (s *EvaluationService) EvaluateWork(ctx context.Context, req WorkRequest) (domain.Evaluation, error) {
	if err := s.tk.Validator.Struct(req); err != nil {
		return domain.Evaluation{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	prompt, err := s.tk.prompt(prompts.Evaluation)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return generation.Once(ctx, s.tk.Controller, generation.OncePlan[domain.Evaluation]{
		Name:      "work_evaluation",
		Prompt:    prompt,
		Variables: map[string]any{"assignment": req.Assignment, "work": req.Work},
		MaxTokens: workMaxTokens,
		Parse:     s.tk.Parser.Evaluation,
	})
}
