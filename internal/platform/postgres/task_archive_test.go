package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/store"
	"github.com/phrazzld/tutorgen/internal/task"
)

// recordingDB captures ExecContext calls. The query methods are unused by
// Archive.
type recordingDB struct {
	store.Querier
	query string
	args  []any
	err   error
}

func (d *recordingDB) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	d.query = query
	d.args = args
	return nil, d.err
}

func finishedRecord() task.Record {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	started := created.Add(time.Second)
	completed := started.Add(3 * time.Second)
	return task.Record{
		ID:                    uuid.New(),
		Type:                  "challenge_feedback",
		Status:                task.StatusCompleted,
		Meta:                  map[string]any{"challenge_title": "Bridge"},
		CreatedAt:             created,
		StartedAt:             &started,
		CompletedAt:           &completed,
		Result:                map[string]any{"ready_to_submit": true},
		ProcessingTimeSeconds: 3,
	}
}

func TestTaskArchiveArchive(t *testing.T) {
	t.Parallel()
	db := &recordingDB{}
	archive := NewTaskArchive(db)
	r := finishedRecord()

	require.NoError(t, archive.Archive(context.Background(), r))

	assert.Contains(t, db.query, "ON CONFLICT (id) DO UPDATE")
	require.Len(t, db.args, 10)
	assert.Equal(t, r.ID, db.args[0])
	assert.Equal(t, "completed", db.args[2])
	assert.JSONEq(t, `{"challenge_title":"Bridge"}`, db.args[3].(string))
	assert.JSONEq(t, `{"ready_to_submit":true}`, db.args[4].(string))
	assert.Equal(t, sql.NullString{}, db.args[5])
	assert.Equal(t, sql.NullTime{Time: *r.CompletedAt, Valid: true}, db.args[8])
}

func TestTaskArchiveArchiveErrorRecord(t *testing.T) {
	t.Parallel()
	db := &recordingDB{}
	r := finishedRecord()
	r.Status = task.StatusError
	r.Result = nil
	r.Meta = nil
	r.Error = "generation failed"

	require.NoError(t, NewTaskArchive(db).Archive(context.Background(), r))
	assert.Nil(t, db.args[3])
	assert.Nil(t, db.args[4])
	assert.Equal(t, sql.NullString{String: "generation failed", Valid: true}, db.args[5])
}

func TestTaskArchiveRejectsPending(t *testing.T) {
	t.Parallel()
	db := &recordingDB{}
	r := finishedRecord()
	r.Status = task.StatusPending

	err := NewTaskArchive(db).Archive(context.Background(), r)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Empty(t, db.query)
}

func TestTaskArchiveExecFailure(t *testing.T) {
	t.Parallel()
	db := &recordingDB{err: errors.New("connection refused")}

	err := NewTaskArchive(db).Archive(context.Background(), finishedRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
