package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pigate/pkg/domain-errors"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("dial tcp"), dErrors.CodeInternal, "db failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeBody(t, w)["error"])
	})

	t.Run("system lock is forbidden with its message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeSystemLocked, "System Lock: Integrity Breach Detected"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "system_locked", body["error"])
		assert.Equal(t, "System Lock: Integrity Breach Detected", body["error_description"])
	})

	t.Run("validation details are returned", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid transfer request").WithDetails("amount must be positive"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []any{"amount must be positive"}, decodeBody(t, w)["details"])
	})
}

type sample struct {
	Name string `json:"name"`
}

func (s *sample) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	decode := func(body string) (*sample, *httptest.ResponseRecorder, bool) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		got, ok := DecodeAndPrepare[sample](w, r, logger, context.Background(), "req-1")
		return got, w, ok
	}

	t.Run("valid body is normalized", func(t *testing.T) {
		got, _, ok := decode(`{"name": "  pi  "}`)
		require.True(t, ok)
		assert.Equal(t, "pi", got.Name)
	})

	t.Run("empty body", func(t *testing.T) {
		_, w, ok := decode(``)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body is required", decodeBody(t, w)["error_description"])
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, w, ok := decode(`{"name": "pi", "admin": true}`)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		_, w, ok := decode(`{"name": " "}`)
		assert.False(t, ok)
		assert.Equal(t, "validation_error", decodeBody(t, w)["error"])
	})
}
