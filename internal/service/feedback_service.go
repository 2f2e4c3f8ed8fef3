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
	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/task"
)

// TaskTypeChallengeFeedback identifies queued challenge reviews.
const TaskTypeChallengeFeedback = "challenge_feedback"

const (
	feedbackMaxTokens  = 1024
	feedbackMaxRetries = 3
)

// FeedbackService reviews challenge submissions on the task queue so a slow
// model never blocks the submitting request.
type FeedbackService struct {
	tk     Toolkit
	queue  task.Enqueuer
	logger *slog.Logger
}

// NewFeedbackService creates a FeedbackService that submits to queue.
func NewFeedbackService(tk Toolkit, queue task.Enqueuer, logger *slog.Logger) (*FeedbackService, error) {
	if err := tk.check(); err != nil {
		return nil, err
	}
	if queue == nil {
		return nil, fmt.Errorf("%w: queue", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackService{
		tk:     tk,
		queue:  queue,
		logger: logger.With(slog.String("component", "feedback_service")),
	}, nil
}

// Submit validates the submission and queues it for review.
func (s *FeedbackService) Submit(sub domain.ChallengeSubmission) (uuid.UUID, error) {
	if err := s.tk.Validator.Struct(sub); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	meta := map[string]any{
		"challenge_id":    sub.Challenge.ID,
		"challenge_title": registry.Truncate(sub.Challenge.Title, registry.MaxTitleRunes),
		"has_images":      len(sub.Images) > 0,
	}
	id, err := s.queue.Enqueue(TaskTypeChallengeFeedback, sub, meta)
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.Info("challenge feedback queued", "task_id", id, "images", len(sub.Images))
	return id, nil
}

// Handle implements task.Handler.
func (s *FeedbackService) Handle(ctx context.Context, t task.Task) (any, error) {
	var sub domain.ChallengeSubmission
	switch p := t.Payload.(type) {
	case domain.ChallengeSubmission:
		sub = p
	case *domain.ChallengeSubmission:
		if p == nil {
			return nil, fmt.Errorf("%w: nil submission", ErrUnexpectedPayload)
		}
		sub = *p
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedPayload, t.Payload)
	}
	return s.Review(ctx, sub)
}

// Review generates feedback for one submission.
func (s *FeedbackService) Review(ctx context.Context, sub domain.ChallengeSubmission) (domain.ChallengeFeedback, error) {
	prompt, err := s.tk.prompt(prompts.ChallengeFeedback)
	if err != nil {
		return domain.ChallengeFeedback{}, err
	}
	fb, err := generation.Once(ctx, s.tk.Controller, generation.OncePlan[domain.ChallengeFeedback]{
		Name:   "challenge_feedback",
		Prompt: prompt,
		Variables: map[string]any{
			"challenge_title":       sub.Challenge.Title,
			"challenge_description": sub.Challenge.Description,
			"learning_goals":        sub.Challenge.LearningGoals,
			"deliverables":          sub.Challenge.Deliverables,
			"student_response":      sub.Response,
			"has_images":            len(sub.Images) > 0,
		},
		MaxTokens:  feedbackMaxTokens,
		MaxRetries: feedbackMaxRetries,
		Images:     sub.Images,
		Parse:      s.tk.Parser.ChallengeFeedback,
	})
	if err != nil {
		return domain.ChallengeFeedback{}, err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("challenge feedback generated",
		"ready_to_submit", fb.ReadyToSubmit)
	return fb, nil
}

var _ task.Handler = (*FeedbackService)(nil)
