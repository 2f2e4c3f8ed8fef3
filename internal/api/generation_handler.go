package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/tutorgen/internal/api/shared"
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/service"
)

// QuestionGenerator runs question sessions.
type QuestionGenerator interface {
	Generate(ctx context.Context, req service.QuestionRequest) (*service.QuestionSet, error)
}

// ChallengeGenerator runs challenge sessions.
type ChallengeGenerator interface {
	Generate(ctx context.Context, req service.ChallengeRequest) (*service.ChallengeSet, error)
}

// ReportGenerator runs report sessions.
type ReportGenerator interface {
	Generate(ctx context.Context, req service.ReportRequest) (*service.ReportResult, error)
}

// AnswerEvaluator judges answers and work, and classifies contents.
type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, req service.AnswerRequest) (domain.AnswerEvaluation, error)
	EvaluateWork(ctx context.Context, req service.WorkRequest) (domain.Evaluation, error)
	Classify(ctx context.Context, content domain.Content) (domain.Classification, error)
}

// GenerationServices groups the collaborators of a GenerationHandler.
type GenerationServices struct {
	Questions  QuestionGenerator
	Challenges ChallengeGenerator
	Reports    ReportGenerator
	Evaluator  AnswerEvaluator
	Contents   service.ContentSource
}

// GenerationHandler serves the synchronous generation endpoints.
type GenerationHandler struct {
	svc GenerationServices
}

// NewGenerationHandler creates a GenerationHandler.
func NewGenerationHandler(svc GenerationServices) *GenerationHandler {
	return &GenerationHandler{svc: svc}
}

// CreateQuestions handles POST /api/questions.
func (h *GenerationHandler) CreateQuestions(w http.ResponseWriter, r *http.Request) {
	var req QuestionsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	content, err := h.resolve(r.Context(), req.Content, req.ContentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	set, err := h.svc.Questions.Generate(r.Context(), service.QuestionRequest{
		Content:    content,
		Difficulty: domain.Difficulty(strings.ToLower(string(req.Difficulty))),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate questions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, set)
}

// CreateChallenges handles POST /api/challenges.
func (h *GenerationHandler) CreateChallenges(w http.ResponseWriter, r *http.Request) {
	var req ChallengesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	contents := append([]domain.Content(nil), req.Contents...)
	for _, id := range req.ContentIDs {
		c, err := h.resolve(r.Context(), nil, id)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		contents = append(contents, c)
	}
	if len(contents) == 0 {
		HandleAPIError(w, r, service.ErrNoContents, "")
		return
	}

	set, err := h.svc.Challenges.Generate(r.Context(), service.ChallengeRequest{Contents: contents})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate challenges")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, set)
}

// CreateReport handles POST /api/reports.
func (h *GenerationHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.svc.Reports.Generate(r.Context(), service.ReportRequest{StudentData: req.StudentData})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate report")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// EvaluateAnswer handles POST /api/answers/evaluate.
func (h *GenerationHandler) EvaluateAnswer(w http.ResponseWriter, r *http.Request) {
	var req EvaluateAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	verdict, err := h.svc.Evaluator.EvaluateAnswer(r.Context(), service.AnswerRequest{
		QuestionType:  req.QuestionType,
		Question:      req.Question,
		CorrectAnswer: req.CorrectAnswer,
		StudentAnswer: req.StudentAnswer,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to evaluate answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, verdict)
}

// EvaluateWork handles POST /api/evaluations.
func (h *GenerationHandler) EvaluateWork(w http.ResponseWriter, r *http.Request) {
	var req EvaluateWorkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.svc.Evaluator.EvaluateWork(r.Context(), service.WorkRequest(req))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to evaluate work")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ClassifyContent handles POST /api/contents/classify.
func (h *GenerationHandler) ClassifyContent(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.svc.Evaluator.Classify(r.Context(), req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to classify content")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// resolve returns the inline content or loads it by id.
func (h *GenerationHandler) resolve(ctx context.Context, inline *domain.Content, id string) (domain.Content, error) {
	if inline != nil {
		return *inline, nil
	}
	if strings.TrimSpace(id) == "" {
		return domain.Content{}, fmt.Errorf("%w: content or content_id is required", domain.ErrValidation)
	}
	if h.svc.Contents == nil {
		return domain.Content{}, fmt.Errorf("%w: %s", service.ErrContentNotFound, id)
	}
	return h.svc.Contents.Content(ctx, id)
}
