package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	ErrorTypeDeserialization ErrorType = "deserialization"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypeIO              ErrorType = "io"
	ErrorTypeInternal        ErrorType = "internal"
)

// DomainError represents a structured error with type and context
type DomainError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	if other, ok := target.(*DomainError); ok {
		return e.Type == other.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errorType ErrorType, message string, cause error) *DomainError {
	return &DomainError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Validation errors
func NewValidationError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, cause)
}

func NewInvalidArgumentError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeInvalidArgument, message, cause)
}

func NewDeserializationError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeDeserialization, message, cause)
}

// Lookup errors
func NewNotFoundError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeNotFound, message, cause)
}

func NewConflictError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeConflict, message, cause)
}

// System errors
func NewIOError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeIO, message, cause)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewDomainError(ErrorTypeInternal, message, cause)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

func IsInvalidArgumentError(err error) bool {
	return hasType(err, ErrorTypeInvalidArgument)
}

func IsDeserializationError(err error) bool {
	return hasType(err, ErrorTypeDeserialization)
}

func IsNotFoundError(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

func IsConflictError(err error) bool {
	return hasType(err, ErrorTypeConflict)
}

func IsIOError(err error) bool {
	return hasType(err, ErrorTypeIO)
}

func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// hasType reports whether the outermost DomainError in err's chain has the given type.
func hasType(err error, errorType ErrorType) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Type == errorType
}

// Error aggregation for bulk operations
type ErrorCollection struct {
	Errors []error
}

func (e *ErrorCollection) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred: %v", len(e.Errors), e.Errors[0])
}

func (e *ErrorCollection) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *ErrorCollection) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ErrorCollection) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// NewErrorCollection creates a new error collection
func NewErrorCollection() *ErrorCollection {
	return &ErrorCollection{
		Errors: make([]error, 0),
	}
}
