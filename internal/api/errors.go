package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/tutorgen/internal/api/shared"
	"github.com/phrazzld/tutorgen/internal/auth"
	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/events"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/registry"
	"github.com/phrazzld/tutorgen/internal/service"
	"github.com/phrazzld/tutorgen/internal/store"
	"github.com/phrazzld/tutorgen/internal/task"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return http.StatusUnauthorized

	case errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, registry.ErrItemNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrContentNotFound),
		errors.Is(err, service.ErrProgressNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, service.ErrNoContents),
		errors.Is(err, events.ErrInvalidPayload),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity

	// Retry later
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure):
		return http.StatusBadGateway

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that carries
// no internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, task.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, registry.ErrItemNotFound), errors.Is(err, store.ErrNotFound):
		return "Item not found"
	case errors.Is(err, service.ErrContentNotFound):
		return "Content not found"
	case errors.Is(err, service.ErrProgressNotFound):
		return "No progress recorded for this content"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, service.ErrNoContents):
		return "At least one content is required"
	case errors.Is(err, domain.ErrInvalidDifficulty):
		return "Invalid difficulty"
	case errors.Is(err, domain.ErrEmptyContent):
		return "Content text cannot be empty"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, events.ErrInvalidPayload),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, task.ErrQueueFull):
		return "Feedback queue is full, please retry later"
	case errors.Is(err, task.ErrQueueClosed):
		return "Service is shutting down, please retry later"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The request was blocked by the model's safety filters"
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure):
		return "The language model could not complete the request"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status and safe message and writes the
// response. defaultMsg replaces the generic message for unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
