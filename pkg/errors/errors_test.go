package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("appointment", nil), http.StatusNotFound},
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Validation(nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("clinic setup required", nil), http.StatusForbidden},
		{Internal("", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("failed to create appointment", cause)

	assert.Equal(t, "failed to create appointment", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", Internal("", nil).Message)
}

func TestAsFindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("upsert: %w", NotFound("doctor", nil))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "doctor not found", appErr.Message)
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.False(t, Is(wrapped, ErrValidation))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
