package logger_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/platform/logger"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := logger.ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

// TestSetupWritesRotatedFile is not parallel: Setup replaces the default logger.
func TestSetupWritesRotatedFile(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	path := filepath.Join(t.TempDir(), "tutorgen.log")
	l, closer, err := logger.Setup(logger.LoggerConfig{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	l.Debug("written to file", "key", "value")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.Contains(t, string(data), `"key":"value"`)
	assert.Same(t, l, slog.Default())
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	l, buf := logger.NewBufferLogger(slog.LevelInfo)
	ctx := logger.WithLogger(context.Background(), l.With("task_id", "t-1"))

	logger.FromContext(ctx).Info("from context")
	logger.FromContextOrDefault(context.Background(), l).Info("fallback")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "t-1", entries[0]["task_id"])
	assert.Equal(t, []string{"from context", "fallback"}, buf.Messages())

	assert.Same(t, slog.Default(), logger.FromContext(context.Background()))
}
