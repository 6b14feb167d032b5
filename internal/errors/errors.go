package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a journal error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"      // 409
	ErrContentTooLarge    ErrorCode = "CONTENT_TOO_LARGE"   // 413
	ErrMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"  // 502
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE" // 503
	ErrCancelled          ErrorCode = "CANCELLED"           // 499
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// JournalError represents a structured error with code, status, and details.
type JournalError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. Not rendered to clients.
	Err error
}

// Error implements the error interface.
func (e *JournalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *JournalError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *JournalError {
	return &JournalError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when an entry cannot be found.
func NewNotFound(identifier string) *JournalError {
	return &JournalError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("entry not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *JournalError {
	return &JournalError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates an error for an operation stopped by context cancellation.
func NewCancelled(operation string) *JournalError {
	return &JournalError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewAlreadyExists creates a 409 error for ID collisions (import).
func NewAlreadyExists(id string) *JournalError {
	return &JournalError{
		Code:    ErrAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("entry already exists: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewContentTooLarge creates a 413 error when entry content exceeds the size limit.
func NewContentTooLarge(max, actual int) *JournalError {
	return &JournalError{
		Code:    ErrContentTooLarge,
		Status:  413,
		Message: fmt.Sprintf("content exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewMalformedResponse creates an error for inference output that does not
// parse into the {tone, recommendations} shape.
func NewMalformedResponse(reason string, cause error) *JournalError {
	return &JournalError{
		Code:    ErrMalformedResponse,
		Status:  502,
		Message: fmt.Sprintf("malformed inference response: %s", reason),
		Err:     cause,
	}
}

// NewServiceUnavailable creates an error for an unreachable or failing inference service.
func NewServiceUnavailable(cause error) *JournalError {
	msg := "inference service unavailable"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &JournalError{
		Code:    ErrServiceUnavailable,
		Status:  503,
		Message: msg,
		Err:     cause,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *JournalError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &JournalError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if err (or anything it wraps) is a JournalError with the given code.
func Is(err error, code ErrorCode) bool {
	var jErr *JournalError
	if stderrors.As(err, &jErr) {
		return jErr.Code == code
	}
	return false
}
