package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/events"
)

func TestEventHandlerEnqueues(t *testing.T) {
	t.Parallel()
	q, err := NewQueue(1, noop(), testLogger())
	require.NoError(t, err)

	decode := func(e *events.Event) (any, map[string]any, error) {
		var p events.ContentCompleted
		if err := e.UnmarshalPayload(&p); err != nil {
			return nil, nil, err
		}
		return p, map[string]any{"content_id": p.ContentID}, nil
	}
	h := NewEventHandler(q, "progression", decode, testLogger())

	event, err := events.New(events.TypeContentCompleted, events.ContentCompleted{ContentID: "cells", Difficulty: "easy"})
	require.NoError(t, err)
	require.NoError(t, h.HandleEvent(context.Background(), event))

	stats := q.Stats()
	assert.Equal(t, 1, stats.Pending)

	err = h.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, ErrQueueFull)

	event.Payload = []byte("not json")
	err = h.HandleEvent(context.Background(), event)
	assert.ErrorIs(t, err, events.ErrInvalidPayload)
}

func TestEventHandlerDecodeError(t *testing.T) {
	t.Parallel()
	q, err := NewQueue(1, noop(), testLogger())
	require.NoError(t, err)
	h := NewEventHandler(q, "x", func(*events.Event) (any, map[string]any, error) {
		return nil, nil, errors.New("nope")
	}, nil)

	event, err := events.New("x", nil)
	require.NoError(t, err)
	assert.Error(t, h.HandleEvent(context.Background(), event))
	assert.Zero(t, q.Stats().Total)
}
