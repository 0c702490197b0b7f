package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/steemit/postsmanager/internal/dummyjson"
	"github.com/steemit/postsmanager/internal/manager"
)

// Application error codes, in the JSON-RPC server error range
const (
	ErrServerError = -32000
	ErrNetwork     = -32003
	ErrNotFound    = -32004
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// InvalidParams returns an invalid-params error
func InvalidParams(format string, args ...interface{}) *Error {
	return NewError(ErrInvalidParams, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// errorCode maps a handler error to its JSON-RPC code and message
func errorCode(err error) (int, string) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code, apiErr.Message
	case errors.Is(err, manager.ErrInvalidInput):
		return ErrInvalidParams, "Invalid params"
	case errors.Is(err, dummyjson.ErrNotFound):
		return ErrNotFound, "Not found"
	case errors.Is(err, dummyjson.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return ErrNetwork, "Backend unavailable"
	default:
		return ErrServerError, "Server error"
	}
}
