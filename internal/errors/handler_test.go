package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/internal/shared/testutil"
)

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantCode   string
		wantLevel  slog.Level
	}{
		{
			name:       "deadline exceeded",
			err:        fmt.Errorf("load: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "api error",
			err:        ErrNoDataLoaded,
			wantStatus: http.StatusNotFound,
			wantType:   TypeNoDataLoaded,
			wantCode:   CodeNoDataLoaded,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "payload too large",
			err:        ErrPayloadTooLarge,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantCode:   CodePayloadTooLarge,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "parsing app error",
			err:        NewParsingError("no row produced a record", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeNoUsableData,
			wantCode:   CodeNoUsableData,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "storage app error",
			err:        fmt.Errorf("read: %w", NewStorageError("failed to read file", errors.New("denied"))),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeFileUnreadable,
			wantCode:   CodeFileUnreadable,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "missing source",
			err:        NewNotFoundError("data file", fs.ErrNotExist).WithContext("path", "cases.csv"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantCode:   CodeNotFound,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "oversized source",
			err:        ErrFileTooLarge.Wrap(NewStorageError("file is 20 bytes, limit is 10", errors.New("too large"))),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
			wantCode:   CodePayloadTooLarge,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "undecodable source",
			err:        ErrFileUnreadable.Wrap(NewStorageError("failed to decode file", errors.New("no encoding"))),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeFileUnreadable,
			wantCode:   CodeFileUnreadable,
			wantLevel:  slog.LevelWarn,
		},
		{
			name:       "export app error",
			err:        NewExportError("failed to write workbook", nil),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExportFailed,
			wantCode:   CodeInternalServer,
			wantLevel:  slog.LevelError,
		},
		{
			name:       "plain error",
			err:        errors.New("unexpected"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantLevel:  slog.LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/dataset", nil)
			r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "req-1"))

			h.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeProblem(t, w)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, "/api/dataset", body["instance"])
			assert.Equal(t, "req-1", body["trace_id"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			assert.NotContains(t, body, "stack")
			testutil.AssertLogged(t, logs, tt.wantLevel, "request failed")
		})
	}
}

func TestErrorHandler_HandleNilError(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	w := httptest.NewRecorder()

	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Zero(t, w.Body.Len())
	assert.Zero(t, logs.Count())
}

func TestErrorHandler_AppErrorContext(t *testing.T) {
	h := NewErrorHandler(nil, false)
	r := httptest.NewRequest(http.MethodPost, "/api/dataset/load", nil)

	problem := h.ErrorToProblem(NewStorageError("failed to read file", nil).WithContext("path", "cases.csv"), r)
	assert.Equal(t, "failed to read file", problem.Detail)
	assert.Equal(t, map[string]interface{}{"path": "cases.csv"}, problem.Extensions["context"])

	internal := h.ErrorToProblem(NewExportError("disk full", nil).WithContext("path", "/tmp/x"), r)
	assert.NotEqual(t, "disk full", internal.Detail)
	assert.NotContains(t, internal.Extensions, "context")
}

func TestErrorHandler_APIErrorDetails(t *testing.T) {
	h := NewErrorHandler(nil, false)
	r := httptest.NewRequest(http.MethodPost, "/api/dataset/load", nil)

	problem := h.ErrorToProblem(ErrValidation("content", "required"), r)

	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Equal(t, TypeValidation, problem.Type)
	assert.Equal(t, "Bad Request", problem.Title)
	assert.Equal(t, ValidationError{Field: "content", Message: "required"}, problem.Extensions["details"])
}

func TestErrorHandler_IncludeStack(t *testing.T) {
	h := NewErrorHandler(nil, true)
	w := httptest.NewRecorder()

	h.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))

	body := decodeProblem(t, w)
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, true)
	w := httptest.NewRecorder()

	h.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/api/statistics", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, "nil map", body["panic"])
	testutil.AssertLogged(t, logs, slog.LevelError, "panic recovered")
}

func TestErrorHandler_NotFoundAndMethod(t *testing.T) {
	h := NewErrorHandler(nil, false)

	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, w)["type"])

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/dataset", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decodeProblem(t, w)
	assert.Equal(t, TypeMethod, body["type"])
	assert.Contains(t, body["detail"], "DELETE")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNoDataLoaded, "Not Found", "", "/api/records").
		WithExtension("error_code", CodeNoDataLoaded).
		WithExtension("status", "ignored")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
	assert.Equal(t, CodeNoDataLoaded, body["error_code"])
	assert.NotContains(t, body, "detail")
}
