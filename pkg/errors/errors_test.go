package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Creation(t *testing.T) {
	cause := errors.New("underlying error")

	err := NewInvalidArgumentError("redeployScanPeriod must be > 0", cause)

	assert.Equal(t, ErrorTypeInvalidArgument, err.Type)
	assert.Equal(t, "redeployScanPeriod must be > 0", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.NotNil(t, err.Context)
}

func TestDomainError_WithContext(t *testing.T) {
	err := NewDeserializationError("bad value", nil)

	err = err.WithContext("field", "instances")
	err = err.WithContext("value", "abc")

	assert.Equal(t, "instances", err.Context["field"])
	assert.Equal(t, "abc", err.Context["value"])
}

func TestDomainError_ErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		error    *DomainError
		expected string
	}{
		{
			name:     "error without cause",
			error:    NewValidationError("test message", nil),
			expected: "validation: test message",
		},
		{
			name:     "error with cause",
			error:    NewDeserializationError("test message", errors.New("cause")),
			expected: "deserialization: test message: cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.error.Error())
		})
	}
}

func TestDomainError_TypeChecking(t *testing.T) {
	invalidErr := NewInvalidArgumentError("invalid", nil)
	decodeErr := NewDeserializationError("decode", invalidErr)

	assert.True(t, IsInvalidArgumentError(invalidErr))
	assert.False(t, IsInvalidArgumentError(decodeErr))

	assert.True(t, IsDeserializationError(decodeErr))
	assert.False(t, IsDeserializationError(invalidErr))

	wrapped := fmt.Errorf("loading: %w", NewNotFoundError("missing", nil))
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsConflictError(wrapped))

	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestDomainError_Is(t *testing.T) {
	err := NewConflictError("duplicate", nil)

	assert.True(t, errors.Is(err, &DomainError{Type: ErrorTypeConflict}))
	assert.False(t, errors.Is(err, &DomainError{Type: ErrorTypeIO}))
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewIOError("test error", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorCollection(t *testing.T) {
	collection := NewErrorCollection()
	require.NoError(t, collection.ToError())
	assert.Equal(t, "no errors", collection.Error())

	collection.Add(nil)
	assert.False(t, collection.HasErrors())

	collection.Add(NewValidationError("first", nil))
	assert.Equal(t, "validation: first", collection.Error())

	collection.Add(NewValidationError("second", nil))
	assert.True(t, collection.HasErrors())
	assert.Equal(t, "2 errors occurred: validation: first", collection.ToError().Error())
}
