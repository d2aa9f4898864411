package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no credential channel resolves an identity.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when the resolved identity does not own the target resource.
	ErrForbidden = errors.New("access denied")
	// ErrTaskNotFound is returned when a task id does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Store failures fall
// through to a generic 500 so no internal detail leaks to clients.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrUnauthenticated:
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case ErrForbidden:
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case ErrTaskNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "TASK_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "STORE_FAILURE")
	}
}
