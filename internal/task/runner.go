package task

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/redact"
)

const archiveTimeout = 5 * time.Second

// Run is the single worker loop. It processes tasks in enqueue order until
// ctx is cancelled or the queue is closed and drained. Cancellation abandons
// pending tasks; a task already processing runs to completion.
func (q *Queue) Run(ctx context.Context) error {
	q.logger.Info("task worker started", "queue_cap", cap(q.tasks))
	defer q.logger.Info("task worker stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-q.tasks:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			q.process(ctx, e)
		}
	}
}

// process executes one task. Handler errors and panics are recorded on the
// task and never stop the worker.
func (q *Queue) process(ctx context.Context, e *entry) {
	log := q.logger.With("task_id", e.task.ID, "task_type", e.task.Type)

	q.mu.Lock()
	e.status = StatusProcessing
	e.startedAt = q.now()
	q.mu.Unlock()

	log.Info("processing task")

	taskCtx := logger.WithLogger(context.WithoutCancel(ctx), log)
	result, err := q.execute(taskCtx, e.task)

	q.mu.Lock()
	e.completedAt = q.now()
	if err != nil {
		e.status = StatusError
		e.err = redact.Error(err)
	} else {
		e.status = StatusCompleted
		e.result = result
	}
	rec := e.record()
	q.mu.Unlock()

	if err != nil {
		log.Error("task failed",
			"error", redact.Error(err),
			"processing_time_seconds", rec.ProcessingTimeSeconds)
	} else {
		log.Info("task completed", "processing_time_seconds", rec.ProcessingTimeSeconds)
	}

	if q.archive != nil {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		if aerr := q.archive.Archive(actx, rec); aerr != nil {
			log.Warn("failed to archive task", "error", redact.Error(aerr))
		}
		cancel()
	}
}

func (q *Queue) execute(ctx context.Context, t Task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return q.handler.Handle(ctx, t)
}

// Sweep calls Cleanup every interval until ctx is cancelled.
func (q *Queue) Sweep(ctx context.Context, interval, maxAge time.Duration) error {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			q.Cleanup(maxAge)
		}
	}
}
