package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/tutorgen/internal/events"
)

// Enqueuer accepts tasks.
type Enqueuer interface {
	Enqueue(taskType string, payload any, meta map[string]any) (uuid.UUID, error)
}

// Decoder turns an event into a task payload and its status metadata.
type Decoder func(event *events.Event) (payload any, meta map[string]any, err error)

// EventHandler turns events into queued tasks of one type.
type EventHandler struct {
	queue    Enqueuer
	taskType string
	decode   Decoder
	logger   *slog.Logger
}

// NewEventHandler returns a handler that enqueues a taskType task for every
// event it receives.
func NewEventHandler(queue Enqueuer, taskType string, decode Decoder, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &EventHandler{
		queue:    queue,
		taskType: taskType,
		decode:   decode,
		logger:   logger.With("component", "task_event_handler", "task_type", taskType),
	}
}

// HandleEvent decodes the event and enqueues the task.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	payload, meta, err := h.decode(event)
	if err != nil {
		h.logger.Error("failed to decode event", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to decode event %s: %w", event.ID, err)
	}

	id, err := h.queue.Enqueue(h.taskType, payload, meta)
	if err != nil {
		h.logger.Error("failed to enqueue task", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	h.logger.Info("task created from event", "task_id", id, "event_id", event.ID)
	return nil
}

var _ events.Handler = (*EventHandler)(nil)
