package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*Event
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.events = append(h.events, event)
	return h.err
}

func TestNew(t *testing.T) {
	t.Parallel()
	event, err := New(TypeContentCompleted, ContentCompleted{ContentID: "photosynthesis", Difficulty: "easy"})
	require.NoError(t, err)
	assert.Equal(t, TypeContentCompleted, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var payload ContentCompleted
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "photosynthesis", payload.ContentID)
	assert.Equal(t, "easy", payload.Difficulty)

	_, err = New("bad", make(chan int))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	event.Payload = []byte("{")
	assert.ErrorIs(t, event.UnmarshalPayload(&payload), ErrInvalidPayload)
}

func TestInMemoryEmitter(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		event, err := New(TypeContentCompleted, ContentCompleted{ContentID: "x"})
		require.NoError(t, err)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("routes by type", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		completed := &recordingHandler{}
		other := &recordingHandler{}
		emitter.Subscribe(TypeContentCompleted, completed)
		emitter.Subscribe("other", other)

		event, err := New(TypeContentCompleted, ContentCompleted{ContentID: "x"})
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Len(t, completed.events, 1)
		assert.Empty(t, other.events)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		ok := &recordingHandler{}
		emitter.Subscribe(TypeContentCompleted, failing)
		emitter.Subscribe(TypeContentCompleted, ok)

		event, err := New(TypeContentCompleted, ContentCompleted{ContentID: "x"})
		require.NoError(t, err)
		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Len(t, failing.events, 1)
		assert.Len(t, ok.events, 1)
	})

	t.Run("handler func", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		called := false
		emitter.Subscribe("ping", HandlerFunc(func(ctx context.Context, e *Event) error {
			called = true
			return nil
		}))
		event, err := New("ping", struct{}{})
		require.NoError(t, err)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.True(t, called)
	})
}
