package api

import (
	"github.com/google/uuid"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/task"
)

// CreateFeedbackTaskRequest is the body of POST /api/feedback-tasks.
type CreateFeedbackTaskRequest struct {
	Challenge domain.Challenge `json:"challenge" validate:"required"`
	Response  string           `json:"response" validate:"required"`
	// Images are base64 encoded image bytes.
	Images [][]byte `json:"images,omitempty" validate:"max=8"`
}

// CreateFeedbackTaskResponse acknowledges a queued feedback task.
type CreateFeedbackTaskResponse struct {
	TaskID               uuid.UUID   `json:"task_id"`
	Status               task.Status `json:"status"`
	QueuePosition        int         `json:"queue_position"`
	EstimatedWaitMinutes float64     `json:"estimated_wait_minutes"`
}

// QuestionsRequest is the body of POST /api/questions. Either Content or
// ContentID must be set; ContentID is resolved through the content source.
type QuestionsRequest struct {
	ContentID  string            `json:"content_id,omitempty"`
	Content    *domain.Content   `json:"content,omitempty"`
	Difficulty domain.Difficulty `json:"difficulty" validate:"required"`
}

// ChallengesRequest is the body of POST /api/challenges. Inline contents
// and content ids may be mixed.
type ChallengesRequest struct {
	ContentIDs []string         `json:"content_ids,omitempty"`
	Contents   []domain.Content `json:"contents,omitempty" validate:"dive"`
}

// ReportRequest is the body of POST /api/reports.
type ReportRequest struct {
	StudentData any `json:"student_data" validate:"required"`
}

// EvaluateAnswerRequest is the body of POST /api/answers/evaluate.
type EvaluateAnswerRequest struct {
	QuestionType  domain.QuestionType `json:"question_type" validate:"required"`
	Question      string              `json:"question" validate:"required"`
	CorrectAnswer string              `json:"correct_answer"`
	StudentAnswer string              `json:"student_answer" validate:"required"`
}

// EvaluateWorkRequest is the body of POST /api/evaluations.
type EvaluateWorkRequest struct {
	Assignment string `json:"assignment" validate:"required"`
	Work       string `json:"work" validate:"required"`
}

// ClassifyRequest is the body of POST /api/contents/classify.
type ClassifyRequest struct {
	Content domain.Content `json:"content" validate:"required"`
}

// CompleteContentRequest is the optional body of
// POST /api/contents/{id}/complete.
type CompleteContentRequest struct {
	Difficulty string         `json:"difficulty" validate:"required"`
	Student    map[string]any `json:"student,omitempty"`
}

// CompleteContentResponse acknowledges an accepted completion.
type CompleteContentResponse struct {
	ContentID  string    `json:"content_id"`
	Difficulty string    `json:"difficulty"`
	EventID    uuid.UUID `json:"event_id"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
