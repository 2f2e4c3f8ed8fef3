package task

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue defaults.
const (
	DefaultCapacity        = 100
	DefaultTaskDuration    = 120 * time.Second
	DefaultCleanupInterval = time.Hour
	DefaultMaxAge          = 24 * time.Hour
)

// entry is the queue's mutable state for one task. Fields other than task
// are guarded by Queue.mu.
type entry struct {
	task        Task
	seq         uint64
	status      Status
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time
	result      any
	err         string
}

// Queue is a bounded FIFO of tasks drained by one worker. Enqueue, Status,
// Stats and Cleanup are safe for concurrent use.
type Queue struct {
	tasks    chan *entry
	handler  Handler
	archive  Archive
	fallback time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.RWMutex
	records map[uuid.UUID]*entry
	seq     uint64
	closed  bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithArchive stores every finished task in a.
func WithArchive(a Archive) Option {
	return func(q *Queue) {
		q.archive = a
	}
}

// WithDefaultDuration sets the per-task time used for wait estimates before
// any task has completed.
func WithDefaultDuration(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.fallback = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// NewQueue creates a queue holding at most capacity pending tasks.
func NewQueue(capacity int, handler Handler, logger *slog.Logger, opts ...Option) (*Queue, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	q := &Queue{
		tasks:    make(chan *entry, capacity),
		handler:  handler,
		fallback: DefaultTaskDuration,
		now:      time.Now,
		logger:   logger.With("component", "task_queue"),
		records:  make(map[uuid.UUID]*entry),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Enqueue adds a task and returns its id. It never blocks: when the queue
// is at capacity it returns ErrQueueFull and records nothing.
func (q *Queue) Enqueue(taskType string, payload any, meta map[string]any) (uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return uuid.Nil, ErrQueueClosed
	}

	e := &entry{
		task: Task{
			ID:      uuid.New(),
			Type:    taskType,
			Payload: payload,
			Meta:    meta,
		},
		seq:       q.seq + 1,
		status:    StatusPending,
		createdAt: q.now(),
	}

	select {
	case q.tasks <- e:
	default:
		q.logger.Warn("task rejected, queue full",
			"task_type", taskType,
			"queue_cap", cap(q.tasks))
		return uuid.Nil, fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}

	q.seq = e.seq
	q.records[e.task.ID] = e
	q.logger.Debug("task enqueued",
		"task_id", e.task.ID,
		"task_type", taskType,
		"queue_len", len(q.tasks),
		"queue_cap", cap(q.tasks))
	return e.task.ID, nil
}

// Status returns a snapshot of the task. Pending tasks carry their position
// in line and an estimated wait.
func (q *Queue) Status(id uuid.UUID) (Record, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	e, ok := q.records[id]
	if !ok {
		return Record{}, false
	}

	r := e.record()
	if e.status == StatusPending {
		position := 1
		for _, other := range q.records {
			if other != e && other.status == StatusPending && other.seq < e.seq {
				position++
			}
		}
		wait := q.estimateWait(position)
		r.QueuePosition = position
		r.EstimatedWaitMinutes = &wait
	}
	return r, true
}

// estimateWait returns minutes until a task at position starts. Callers
// hold q.mu.
func (q *Queue) estimateWait(position int) float64 {
	var total float64
	var n int
	for _, e := range q.records {
		if e.status == StatusCompleted {
			total += e.completedAt.Sub(e.startedAt).Seconds()
			n++
		}
	}

	avg := q.fallback.Seconds()
	if n > 0 {
		avg = total / float64(n)
	}
	minutes := float64(position-1) * avg / 60
	return math.Round(minutes*10) / 10
}

// Stats counts tasks by status.
func (q *Queue) Stats() Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	s := Stats{
		QueueSize: len(q.tasks),
		Capacity:  cap(q.tasks),
		Total:     len(q.records),
	}
	for _, e := range q.records {
		switch e.status {
		case StatusPending:
			s.Pending++
		case StatusProcessing:
			s.Processing++
		case StatusCompleted:
			s.Completed++
		case StatusError:
			s.Error++
		}
	}
	return s
}

// Cleanup forgets finished tasks created more than maxAge ago and returns
// how many were removed. Pending and processing tasks are kept.
func (q *Queue) Cleanup(maxAge time.Duration) int {
	cutoff := q.now().Add(-maxAge)

	q.mu.Lock()
	defer q.mu.Unlock()

	removed := 0
	for id, e := range q.records {
		if e.status.Terminal() && e.createdAt.Before(cutoff) {
			delete(q.records, id)
			removed++
		}
	}
	if removed > 0 {
		q.logger.Info("cleaned up old tasks", "removed", removed, "remaining", len(q.records))
	}
	return removed
}

// Close stops accepting tasks. Run returns once the buffered tasks have been
// drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

func (e *entry) record() Record {
	r := Record{
		ID:        e.task.ID,
		Type:      e.task.Type,
		Status:    e.status,
		Meta:      maps.Clone(e.task.Meta),
		CreatedAt: e.createdAt,
		Result:    e.result,
		Error:     e.err,
	}
	if !e.startedAt.IsZero() {
		started := e.startedAt
		r.StartedAt = &started
	}
	if !e.completedAt.IsZero() {
		completed := e.completedAt
		r.CompletedAt = &completed
		r.ProcessingTimeSeconds = math.Round(completed.Sub(e.startedAt).Seconds()*100) / 100
	}
	return r
}
