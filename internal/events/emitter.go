package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// InMemoryEmitter delivers events synchronously to handlers registered for
// their type.
type InMemoryEmitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewInMemoryEmitter creates an emitter with no handlers.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &InMemoryEmitter{
		handlers: make(map[string][]Handler),
		logger:   logger.With("component", "event_emitter"),
	}
}

// Subscribe registers h for events of eventType.
func (e *InMemoryEmitter) Subscribe(eventType string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[eventType] = append(e.handlers[eventType], h)
	e.logger.Debug("registered event handler",
		"event_type", eventType,
		"handler_count", len(e.handlers[eventType]))
}

// EmitEvent delivers event to every handler subscribed to its type. All
// handlers run even when one fails; the first error is returned.
func (e *InMemoryEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := append([]Handler(nil), e.handlers[event.Type]...)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var firstErr error
	for i, h := range handlers {
		if err := h.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
