//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/ciutil"
	"github.com/phrazzld/tutorgen/internal/store"
	"github.com/phrazzld/tutorgen/internal/task"
)

// getTestDatabaseURL returns the database URL for integration tests. A
// missing URL skips the test locally and fails it in CI.
func getTestDatabaseURL(t *testing.T) string {
	dbURL := ciutil.TestDatabaseURL(nil)
	if dbURL == "" {
		if ciutil.IsCI() {
			t.Fatalf("%s must be set in CI", ciutil.EnvTestDBURL)
		}
		t.Skipf("Skipping integration test - %s environment variable required", ciutil.EnvTestDBURL)
	}
	return dbURL
}

func TestTaskArchive_Integration(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, getTestDatabaseURL(t))
	require.NoError(t, err, "Failed to open database connection")
	defer func() {
		if err := db.Close(); err != nil {
			t.Logf("Error closing database connection: %v", err)
		}
	}()

	require.NoError(t, Migrate(ctx, db, "up", slog.New(slog.NewTextHandler(io.Discard, nil))))

	// Run test with transaction-based isolation
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err, "Failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Error rolling back transaction: %v", err)
		}
	}()

	archive := NewTaskArchive(tx)

	t.Run("ArchiveAndGet", func(t *testing.T) {
		r := finishedRecord()
		require.NoError(t, archive.Archive(ctx, r))

		got, err := archive.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, r.Type, got.Type)
		assert.Equal(t, task.StatusCompleted, got.Status)
		assert.Equal(t, "Bridge", got.Meta["challenge_title"])
		assert.Equal(t, map[string]any{"ready_to_submit": true}, got.Result)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, r.CompletedAt.Equal(*got.CompletedAt))
	})

	t.Run("ArchiveTwiceUpdates", func(t *testing.T) {
		r := finishedRecord()
		require.NoError(t, archive.Archive(ctx, r))
		r.Status = task.StatusError
		r.Error = "late failure"
		require.NoError(t, archive.Archive(ctx, r))

		got, err := archive.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, task.StatusError, got.Status)
		assert.Equal(t, "late failure", got.Error)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		_, err := archive.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Recent", func(t *testing.T) {
		records, err := archive.Recent(ctx, 2)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(records), 2)
		assert.NotEmpty(t, records)
	})
}
