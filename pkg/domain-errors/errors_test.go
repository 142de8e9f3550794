package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outer code", func(t *testing.T) {
		err := New(CodeInvalidInput, "mode is required")
		assert.True(t, HasCode(err, CodeInvalidInput))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("matches code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("context: %w", New(CodeEmptyAssignmentSet, "no assignments"))
		assert.True(t, HasCode(err, CodeEmptyAssignmentSet))
	})

	t.Run("matches nested coded cause", func(t *testing.T) {
		inner := New(CodeTimeout, "deadline")
		err := Wrap(inner, CodePublishFailed, "publish failed")
		assert.True(t, HasCode(err, CodePublishFailed))
		assert.True(t, HasCode(err, CodeTimeout))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodePublishFailed, "publish failed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "publish failed: connection reset", err.Error())
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeEmptyAssignmentSet, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodePublishFailed, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, ToHTTPStatus(tt.code))
		})
	}
}
