package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/tutorgen/internal/api/shared"
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/store"
	"github.com/phrazzld/tutorgen/internal/task"
)

// FeedbackSubmitter queues challenge submissions for review.
type FeedbackSubmitter interface {
	Submit(sub domain.ChallengeSubmission) (uuid.UUID, error)
}

// TaskMonitor reports on queued tasks.
type TaskMonitor interface {
	Status(id uuid.UUID) (task.Record, bool)
	Stats() task.Stats
}

// ArchiveReader looks up tasks the queue has already forgotten.
type ArchiveReader interface {
	Get(ctx context.Context, id uuid.UUID) (task.Record, error)
}

// TaskHandler serves the feedback task endpoints.
type TaskHandler struct {
	feedback FeedbackSubmitter
	monitor  TaskMonitor
	archive  ArchiveReader
}

// NewTaskHandler creates a TaskHandler. archive may be nil.
func NewTaskHandler(feedback FeedbackSubmitter, monitor TaskMonitor, archive ArchiveReader) *TaskHandler {
	return &TaskHandler{feedback: feedback, monitor: monitor, archive: archive}
}

// CreateFeedbackTask handles POST /api/feedback-tasks.
func (h *TaskHandler) CreateFeedbackTask(w http.ResponseWriter, r *http.Request) {
	var req CreateFeedbackTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id, err := h.feedback.Submit(domain.ChallengeSubmission{
		Challenge: req.Challenge,
		Response:  req.Response,
		Images:    req.Images,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to queue feedback task")
		return
	}

	resp := CreateFeedbackTaskResponse{TaskID: id, Status: task.StatusPending}
	// The worker may already have picked the task up.
	if rec, ok := h.monitor.Status(id); ok {
		resp.Status = rec.Status
		resp.QueuePosition = rec.QueuePosition
		if rec.EstimatedWaitMinutes != nil {
			resp.EstimatedWaitMinutes = *rec.EstimatedWaitMinutes
		}
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, resp)
}

// GetTask handles GET /api/feedback-tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if rec, ok := h.monitor.Status(id); ok {
		shared.RespondWithJSON(w, r, http.StatusOK, rec)
		return
	}
	if h.archive == nil {
		HandleAPIError(w, r, task.ErrTaskNotFound, "")
		return
	}

	rec, err := h.archive.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = task.ErrTaskNotFound
		}
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, rec)
}

// GetStats handles GET /api/feedback-tasks/stats.
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.monitor.Stats())
}
