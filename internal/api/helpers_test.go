package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridstonehq/gridstone-api/internal/api/shared"
)

// errUnexpectedCall is returned by mock service methods with no behavior
// configured, so an unplanned call fails the test as a visible 500.
var errUnexpectedCall = errors.New("unexpected service call")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// doRequest routes a request through the handler and returns the recorder.
// A string body is sent raw; any other non-nil body is marshaled to JSON.
func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeProblem parses an RFC 7807 body, requiring the problem media type.
func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) shared.Problem {
	t.Helper()

	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var p shared.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

// decodeBody parses a JSON response body into T.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
