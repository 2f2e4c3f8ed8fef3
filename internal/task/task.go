package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed  = errors.New("task queue is closed")
	ErrQueueFull    = errors.New("task queue is full")
	ErrTaskNotFound = errors.New("task not found")
	ErrNilHandler   = errors.New("task handler is nil")
	ErrTaskPanicked = errors.New("task handler panicked")
	ErrUnknownType  = errors.New("no handler for task type")
)

// Status represents the current state of a task
type Status string

// Possible task status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Task is the unit of work handed to a Handler.
type Task struct {
	ID      uuid.UUID
	Type    string
	Payload any
	// Meta is caller-visible information about the payload, returned with
	// every status record.
	Meta map[string]any
}

// Handler executes a task and returns its result.
type Handler interface {
	Handle(ctx context.Context, t Task) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, t Task) (any, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, t Task) (any, error) {
	return f(ctx, t)
}

// Mux dispatches tasks to handlers by task type.
type Mux struct {
	handlers map[string]Handler
}

// NewMux returns an empty Mux.
func NewMux() *Mux {
	return &Mux{handlers: map[string]Handler{}}
}

// Register routes taskType to h. It is not safe to call once the queue is
// running.
func (m *Mux) Register(taskType string, h Handler) {
	m.handlers[taskType] = h
}

// Handle implements Handler.
func (m *Mux) Handle(ctx context.Context, t Task) (any, error) {
	h, ok := m.handlers[t.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t.Type)
	}
	return h.Handle(ctx, t)
}

// Record is a point-in-time view of a task.
type Record struct {
	ID                    uuid.UUID      `json:"task_id"`
	Type                  string         `json:"type"`
	Status                Status         `json:"status"`
	Meta                  map[string]any `json:"meta,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	StartedAt             *time.Time     `json:"started_at,omitempty"`
	CompletedAt           *time.Time     `json:"completed_at,omitempty"`
	Result                any            `json:"result,omitempty"`
	Error                 string         `json:"error,omitempty"`
	ProcessingTimeSeconds float64        `json:"processing_time_seconds,omitempty"`
	// QueuePosition and EstimatedWaitMinutes are set only while pending.
	QueuePosition        int      `json:"queue_position,omitempty"`
	EstimatedWaitMinutes *float64 `json:"estimated_wait_minutes,omitempty"`
}

// Stats summarises the tasks the queue knows about.
type Stats struct {
	QueueSize  int `json:"queue_size"`
	Capacity   int `json:"capacity"`
	Pending    int `json:"pending_tasks"`
	Processing int `json:"processing_tasks"`
	Completed  int `json:"completed_tasks"`
	Error      int `json:"error_tasks"`
	Total      int `json:"total_tasks"`
}

// Archive stores snapshots of finished tasks.
type Archive interface {
	// Archive persists a terminal task record.
	Archive(ctx context.Context, r Record) error
}
