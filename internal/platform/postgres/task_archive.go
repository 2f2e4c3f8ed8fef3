package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/store"
	"github.com/phrazzld/tutorgen/internal/task"
)

// TaskArchive implements store.TaskArchive on the task_archive table.
type TaskArchive struct {
	db store.Querier
}

// NewTaskArchive creates a TaskArchive.
func NewTaskArchive(db store.Querier) *TaskArchive {
	return &TaskArchive{db: db}
}

const upsertTaskQuery = `
	INSERT INTO task_archive (
		id, type, status, meta, result, error_message,
		created_at, started_at, completed_at, processing_time_seconds
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		result = EXCLUDED.result,
		error_message = EXCLUDED.error_message,
		completed_at = EXCLUDED.completed_at,
		processing_time_seconds = EXCLUDED.processing_time_seconds,
		archived_at = NOW()
`

// Archive stores a terminal task record.
func (a *TaskArchive) Archive(ctx context.Context, r task.Record) error {
	if !r.Status.Terminal() {
		return fmt.Errorf("%w: task %s is %s", store.ErrInvalidEntity, r.ID, r.Status)
	}

	meta, err := nullableJSON(r.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode task meta: %w", err)
	}
	result, err := nullableJSON(r.Result)
	if err != nil {
		return fmt.Errorf("failed to encode task result: %w", err)
	}

	_, err = a.db.ExecContext(ctx, upsertTaskQuery,
		r.ID,
		r.Type,
		string(r.Status),
		meta,
		result,
		nullString(r.Error),
		r.CreatedAt.UTC(),
		nullTime(r.StartedAt),
		nullTime(r.CompletedAt),
		r.ProcessingTimeSeconds,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to archive task",
			"task_id", r.ID,
			"task_type", r.Type,
			"error", err)
		return fmt.Errorf("failed to archive task: %w", MapError(err))
	}
	return nil
}

const selectTaskColumns = `
	SELECT id, type, status, meta, result, error_message,
		created_at, started_at, completed_at, processing_time_seconds
	FROM task_archive
`

// Get returns one archived record.
func (a *TaskArchive) Get(ctx context.Context, id uuid.UUID) (task.Record, error) {
	row := a.db.QueryRowContext(ctx, selectTaskColumns+` WHERE id = $1`, id)
	r, err := scanRecord(row)
	if err != nil {
		return task.Record{}, MapError(err)
	}
	return r, nil
}

// Recent returns up to limit records, most recently completed first.
func (a *TaskArchive) Recent(ctx context.Context, limit int) ([]task.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx,
		selectTaskColumns+` ORDER BY completed_at DESC NULLS LAST LIMIT $1`, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []task.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (task.Record, error) {
	var (
		r           task.Record
		status      string
		meta        []byte
		result      []byte
		errMsg      sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
		seconds     sql.NullFloat64
	)
	if err := s.Scan(&r.ID, &r.Type, &status, &meta, &result, &errMsg,
		&r.CreatedAt, &startedAt, &completedAt, &seconds); err != nil {
		return task.Record{}, err
	}

	r.Status = task.Status(status)
	r.Error = errMsg.String
	r.ProcessingTimeSeconds = seconds.Float64
	if startedAt.Valid {
		t := startedAt.Time
		r.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &r.Meta); err != nil {
			return task.Record{}, fmt.Errorf("failed to decode task meta: %w", err)
		}
	}
	if len(result) > 0 {
		// Results come back as generic JSON values.
		var v any
		if err := json.Unmarshal(result, &v); err != nil {
			return task.Record{}, fmt.Errorf("failed to decode task result: %w", err)
		}
		r.Result = v
	}
	return r, nil
}

func nullableJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}
	return string(data), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

var _ store.TaskArchive = (*TaskArchive)(nil)
