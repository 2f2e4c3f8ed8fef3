package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := migrationsFS.ReadFile("migrations/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "-- +goose Down")
	assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS task_archive")
}

func TestMigrateUnknownCommand(t *testing.T) {
	t.Parallel()
	err := Migrate(context.Background(), nil, "sideways", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}
