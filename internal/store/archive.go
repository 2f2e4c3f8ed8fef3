package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/tutorgen/internal/task"
)

// Querier is the subset of *sql.DB and *sql.Tx the archive needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TaskArchive keeps finished task records after the queue forgets them.
type TaskArchive interface {
	task.Archive

	// Get returns an archived record, or an error wrapping ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (task.Record, error)

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]task.Record, error)
}
