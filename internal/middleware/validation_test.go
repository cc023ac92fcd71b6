package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "epicli/internal/errors"
)

type loadRequest struct {
	Content string `json:"content" validate:"required_without=Path,excluded_with=Path,max=64"`
	Path    string `json:"path" validate:"omitempty,datafile"`
	Format  string `json:"format" validate:"omitempty,oneof=csv xlsx"`
}

func TestRequestValidator(t *testing.T) {
	tests := []struct {
		name       string
		req        loadRequest
		wantFields []string
	}{
		{name: "content only", req: loadRequest{Content: "a,b\n1,2"}},
		{name: "path only", req: loadRequest{Path: "2024/cases.csv"}},
		{name: "neither", req: loadRequest{}, wantFields: []string{"content"}},
		{name: "both", req: loadRequest{Content: "x", Path: "cases.csv"}, wantFields: []string{"content"}},
		{name: "parent path", req: loadRequest{Path: "../secrets.csv"}, wantFields: []string{"path"}},
		{name: "absolute path", req: loadRequest{Path: "/etc/cases.csv"}, wantFields: []string{"path"}},
		{name: "wrong extension", req: loadRequest{Path: "cases.pdf"}, wantFields: []string{"path"}},
		{name: "bad format", req: loadRequest{Content: "x", Format: "json"}, wantFields: []string{"format"}},
		{name: "too long", req: loadRequest{Content: strings.Repeat("x", 65)}, wantFields: []string{"content"}},
	}

	rv := NewRequestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rv.ValidateStruct(tt.req)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, 0, len(details.Errors))
			for _, e := range details.Errors {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator(apierrors.NewErrorHandler(nil, false), "application/json", "text/csv")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json with charset", http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		{"csv", http.MethodPost, "text/csv", http.StatusNoContent},
		{"missing", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"other", http.MethodPost, "application/xml", http.StatusUnsupportedMediaType},
		{"get skips", http.MethodGet, "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, "/api/dataset", strings.NewReader("x"))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	v := NewQueryParamValidator(discard(), apierrors.NewErrorHandler(nil, false))
	allowed := []string{"csv", "xlsx"}

	tests := []struct {
		query     string
		want      string
		wantOK    bool
		wantError bool
	}{
		{query: "", want: "csv", wantOK: true},
		{query: "?format=XLSX", want: "xlsx", wantOK: true},
		{query: "?format=pdf", wantOK: false, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			got, ok := v.ValidateEnum(w, httptest.NewRequest(http.MethodGet, "/api/export"+tt.query, nil), "format", allowed, "csv")

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			if tt.wantError {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, apierrors.TypeValidation, body["type"])
			}
		})
	}
}
