package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ChainHelpers(t *testing.T) {
	base := NewValidationError("title is required")
	wrapped := fmt.Errorf("save all: %w", base)

	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(wrapped))
	assert.Same(t, base, GetAppError(wrapped))
}

func TestHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestAppError_Builders(t *testing.T) {
	cause := errors.New("too big")
	err := NewValidationError("a.png exceeds the 10 MB limit").
		WithCode("FILE_TOO_LARGE").
		WithDetails(map[string]interface{}{"maxBytes": int64(10)}).
		WithCause(cause)

	assert.Equal(t, "FILE_TOO_LARGE", err.Code)
	assert.Equal(t, int64(10), err.Details["maxBytes"])
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestStorageError_Message(t *testing.T) {
	err := NewStorageError("save", errors.New("locked"))
	assert.Equal(t, "STORAGE: storage operation 'save' failed (caused by: locked)", err.Error())
}
