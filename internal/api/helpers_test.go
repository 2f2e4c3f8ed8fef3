package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tutorgen/internal/api/shared"
)

// newJSONRequest builds a request with body marshalled from v and the given
// chi URL parameters.
func newJSONRequest(t *testing.T, method, target string, v any, params map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if v != nil {
		if s, ok := v.(string); ok {
			body.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&body).Encode(v))
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for k, val := range params {
		rctx.URLParams.Add(k, val)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(shared.SetTraceID(ctx))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
