package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/tutorgen/internal/api/shared"
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/events"
	"github.com/phrazzld/tutorgen/internal/service"
)

// ProgressReader returns stored difficulty progress.
type ProgressReader interface {
	Progress(contentID string) (*service.Progress, error)
}

// ContentHandler serves content completion and progress.
type ContentHandler struct {
	emitter  events.Emitter
	progress ProgressReader
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(emitter events.Emitter, progress ProgressReader) *ContentHandler {
	return &ContentHandler{emitter: emitter, progress: progress}
}

// CompleteContent handles POST /api/contents/{id}/complete. The follow-up
// question set is generated asynchronously.
func (h *ContentHandler) CompleteContent(w http.ResponseWriter, r *http.Request) {
	contentID := strings.TrimSpace(chi.URLParam(r, "id"))
	if contentID == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: content id is required", domain.ErrValidation), "")
		return
	}

	var req CompleteContentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	event, err := events.New(events.TypeContentCompleted, events.ContentCompleted{
		ContentID:  contentID,
		Difficulty: string(difficulty),
		Student:    req.Student,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		HandleAPIError(w, r, err, "Failed to record completion")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, CompleteContentResponse{
		ContentID:  contentID,
		Difficulty: string(difficulty),
		EventID:    event.ID,
	})
}

// GetProgress handles GET /api/contents/{id}/progress.
func (h *ContentHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	contentID := strings.TrimSpace(chi.URLParam(r, "id"))
	if contentID == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: content id is required", domain.ErrValidation), "")
		return
	}

	p, err := h.progress.Progress(contentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, p)
}
