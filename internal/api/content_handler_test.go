package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/events"
	"github.com/phrazzld/tutorgen/internal/service"
	"github.com/phrazzld/tutorgen/internal/task"
)

type stubProgress struct {
	p *service.Progress
}

func (s stubProgress) Progress(contentID string) (*service.Progress, error) {
	if s.p == nil {
		return nil, fmt.Errorf("%w: %s", service.ErrProgressNotFound, contentID)
	}
	p := *s.p
	p.ContentID = contentID
	return &p, nil
}

func TestCompleteContent(t *testing.T) {
	t.Parallel()

	t.Run("emits a completion event", func(t *testing.T) {
		t.Parallel()
		emitter := events.NewInMemoryEmitter(nil)
		var got []events.ContentCompleted
		emitter.Subscribe(events.TypeContentCompleted, events.HandlerFunc(func(_ context.Context, e *events.Event) error {
			var c events.ContentCompleted
			require.NoError(t, e.UnmarshalPayload(&c))
			got = append(got, c)
			return nil
		}))
		h := NewContentHandler(emitter, nil)

		rr := httptest.NewRecorder()
		h.CompleteContent(rr, newJSONRequest(t, http.MethodPost, "/api/contents/fractions/complete",
			CompleteContentRequest{Difficulty: "EASY"}, map[string]string{"id": "fractions"}))

		require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
		resp := decodeBody[CompleteContentResponse](t, rr)
		assert.Equal(t, "fractions", resp.ContentID)
		assert.Equal(t, "easy", resp.Difficulty)
		require.Len(t, got, 1)
		assert.Equal(t, events.ContentCompleted{ContentID: "fractions", Difficulty: "easy"}, got[0])
	})

	t.Run("unknown difficulty is a 400", func(t *testing.T) {
		t.Parallel()
		h := NewContentHandler(events.NewInMemoryEmitter(nil), nil)

		rr := httptest.NewRecorder()
		h.CompleteContent(rr, newJSONRequest(t, http.MethodPost, "/api/contents/fractions/complete",
			CompleteContentRequest{Difficulty: "impossible"}, map[string]string{"id": "fractions"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("full queue is a 503", func(t *testing.T) {
		t.Parallel()
		emitter := events.NewInMemoryEmitter(nil)
		emitter.Subscribe(events.TypeContentCompleted, events.HandlerFunc(func(context.Context, *events.Event) error {
			return task.ErrQueueFull
		}))
		h := NewContentHandler(emitter, nil)

		rr := httptest.NewRecorder()
		h.CompleteContent(rr, newJSONRequest(t, http.MethodPost, "/api/contents/fractions/complete",
			CompleteContentRequest{Difficulty: "medium"}, map[string]string{"id": "fractions"}))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}

func TestGetProgress(t *testing.T) {
	t.Parallel()

	h := NewContentHandler(nil, stubProgress{p: &service.Progress{
		Generated:       map[domain.Difficulty]int{domain.DifficultyMedium: 1},
		HardGenerations: 0,
	}})

	rr := httptest.NewRecorder()
	h.GetProgress(rr, newJSONRequest(t, http.MethodGet, "/api/contents/fractions/progress", nil, map[string]string{"id": "fractions"}))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	p := decodeBody[service.Progress](t, rr)
	assert.Equal(t, "fractions", p.ContentID)
	assert.Equal(t, 1, p.Generated[domain.DifficultyMedium])
}

func TestGetProgressUnknownContent(t *testing.T) {
	t.Parallel()

	h := NewContentHandler(nil, stubProgress{})

	rr := httptest.NewRecorder()
	h.GetProgress(rr, newJSONRequest(t, http.MethodGet, "/api/contents/never-seen/progress", nil, map[string]string{"id": "never-seen"}))

	assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "No progress recorded")
}
