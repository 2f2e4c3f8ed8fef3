package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	// TypeContentCompleted is emitted when a student finishes every question
	// generated for a content at one difficulty.
	TypeContentCompleted = "content_completed"
)

// ErrInvalidPayload is returned when an event payload cannot be decoded.
var ErrInvalidPayload = errors.New("invalid event payload")

// Event is a typed message with a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// New creates an Event with the given type and payload.
func New(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now(),
	}, nil
}

// ContentCompleted is the payload of TypeContentCompleted.
type ContentCompleted struct {
	ContentID  string `json:"content_id"`
	Difficulty string `json:"difficulty"`
	// Student optionally scopes the generated follow-up to one learner.
	Student map[string]any `json:"student,omitempty"`
}

// Handler consumes events.
type Handler interface {
	// HandleEvent processes the event. An error is reported to the emitter
	// but does not stop delivery to other handlers.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events.
type Emitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
