package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeParsing, Message: "input has no data rows"},
			wantMessage: "[PARSING] input has no data rows",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "failed to read file",
				Cause:   fmt.Errorf("permission denied"),
			},
			wantMessage: "[STORAGE] failed to read file: permission denied",
		},
		{
			name:        "error with empty message",
			appError:    &AppError{Type: ErrTypeValidation},
			wantMessage: "[VALIDATION] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	sentinel := errors.New("no encoding produced readable text")
	err := NewStorageError("failed to decode file", sentinel)

	assert.Same(t, sentinel, err.Unwrap())
	assert.True(t, errors.Is(err, sentinel))
	assert.Nil(t, NewAppValidationError("bad").Unwrap())

	wrapped := fmt.Errorf("load: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("no row produced a record", nil).
		WithContext("source", "cases.csv").
		WithContext("rows", 12)

	assert.Equal(t, "cases.csv", err.Context["source"])
	assert.Equal(t, 12, err.Context["rows"])

	bare := &AppError{Type: ErrTypeExport}
	bare.WithContext("format", "xlsx")
	assert.Equal(t, map[string]interface{}{"format": "xlsx"}, bare.Context)
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantMsg  string
		wantErr  error
	}{
		{"parsing", NewParsingError("bad table", cause), ErrTypeParsing, "bad table", cause},
		{"storage", NewStorageError("bad file", cause), ErrTypeStorage, "bad file", cause},
		{"validation", NewAppValidationError("bad field"), ErrTypeValidation, "bad field", nil},
		{"not found", NewNotFoundError("data file", cause), ErrTypeNotFound, "data file not found", cause},
		{"config", NewConfigError("bad config", cause), ErrTypeConfig, "bad config", cause},
		{"export", NewExportError("bad writer", cause), ErrTypeExport, "bad writer", cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.Equal(t, tt.wantErr, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("load: %w", NewParsingError("empty", nil))

	assert.True(t, IsType(err, ErrTypeParsing))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(errors.New("plain"), ErrTypeParsing))
	assert.False(t, IsType(nil, ErrTypeParsing))
}
