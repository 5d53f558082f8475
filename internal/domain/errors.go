package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRemoteUnavailable means the remote copy could not be fetched and no
	// local fallback exists.
	ErrRemoteUnavailable = errors.New("remote storage unavailable")

	// ErrDocumentLocked means the remote copy is open for editing elsewhere.
	ErrDocumentLocked = errors.New("document locked")

	// ErrFileNotFound means an expected local artifact is missing.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnknownOperation means a tool name is not in the catalog.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMalformedToolArguments means tool arguments failed to decode or validate.
	ErrMalformedToolArguments = errors.New("malformed tool arguments")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// DocumentLockedError is returned once lock retries are exhausted.
// Its message always carries the remediation the user has to perform.
type DocumentLockedError struct {
	Filename string
	Attempts int
	Cause    error
}

func (e *DocumentLockedError) Error() string {
	return fmt.Sprintf("document %q is open for editing elsewhere (%d upload attempts): %s",
		e.Filename, e.Attempts, e.Remediation())
}

// Remediation is the user-facing instruction for a locked document.
func (e *DocumentLockedError) Remediation() string {
	return fmt.Sprintf("close %s in the other editor and retry", e.Filename)
}

func (e *DocumentLockedError) StatusCode() int {
	return http.StatusConflict
}

func (e *DocumentLockedError) Is(target error) bool {
	return target == ErrDocumentLocked
}

func (e *DocumentLockedError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for a domain error, defaulting to 500.
func StatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrMalformedToolArguments):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDocumentLocked):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
