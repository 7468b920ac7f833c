package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Lectio error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"            // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"       // 404
	ErrParseFailed        ErrorCode = "PARSE_FAILED"         // 422
	ErrInternal           ErrorCode = "INTERNAL"             // 500
	ErrNetworkFetchFailed ErrorCode = "NETWORK_FETCH_FAILED" // 502
	ErrDataUnavailable    ErrorCode = "DATA_UNAVAILABLE"     // 503
	ErrPersistFailed      ErrorCode = "PERSIST_FAILED"       // 507
)

// LectioError represents a structured error with code, status, and details.
type LectioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *LectioError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *LectioError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *LectioError {
	return &LectioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing book, chapter or verse.
func NewNotFound(what string) *LectioError {
	return &LectioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: what,
		Details: map[string]any{"identifier": what},
	}
}

// NewFileNotFound creates a 404 error for a missing file on disk.
func NewFileNotFound(path string) *LectioError {
	return &LectioError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewNetworkFetchFailed creates a 502 error for a failed fetch of one dataset.
// step names the dataset ("titles", "headings", "body").
func NewNetworkFetchFailed(step string, err error) *LectioError {
	msg := fmt.Sprintf("failed to fetch %s", step)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &LectioError{
		Code:    ErrNetworkFetchFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"step": step},
		Err:     err,
	}
}

// NewPersistFailed creates a 507 error for a failed durable-store write.
// The data it accompanies is still valid in memory.
func NewPersistFailed(key string, err error) *LectioError {
	return &LectioError{
		Code:    ErrPersistFailed,
		Status:  507,
		Message: fmt.Sprintf("could not save %s for offline use; storage might be full", key),
		Details: map[string]any{"key": key},
		Err:     err,
	}
}

// NewParseFailed creates a 422 error for a payload that is not valid structured data.
func NewParseFailed(key string, err error) *LectioError {
	msg := fmt.Sprintf("invalid %s payload", key)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &LectioError{
		Code:    ErrParseFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"key": key},
		Err:     err,
	}
}

// NewDataUnavailable creates a 503 error when neither the network nor the cache
// produced usable data.
func NewDataUnavailable(what string, err error) *LectioError {
	msg := fmt.Sprintf("%s unavailable: no network data and no offline copy", what)
	if err != nil {
		msg = fmt.Sprintf("%s (%v)", msg, err)
	}
	return &LectioError{
		Code:    ErrDataUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"dataset": what},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *LectioError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &LectioError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if err (or anything it wraps) is a LectioError with the given code.
func Is(err error, code ErrorCode) bool {
	var lErr *LectioError
	if stderrors.As(err, &lErr) {
		return lErr.Code == code
	}
	return false
}

// As is a convenience wrapper around errors.As for *LectioError.
func As(err error) (*LectioError, bool) {
	var lErr *LectioError
	if stderrors.As(err, &lErr) {
		return lErr, true
	}
	return nil, false
}
