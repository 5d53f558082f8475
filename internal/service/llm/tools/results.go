package tools

import (
	"context"
	"errors"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
)

// Error codes carried by failed tool results.
const (
	CodeMalformedArguments = "MALFORMED_TOOL_ARGUMENTS"
	CodeUnknownOperation   = "UNKNOWN_OPERATION"
	CodeDocumentLocked     = "DOCUMENT_LOCKED"
	CodeNotFound           = "NOT_FOUND"
	CodeFileNotFound       = "FILE_NOT_FOUND"
	CodeRemoteUnavailable  = "REMOTE_UNAVAILABLE"
	CodeValidation         = "VALIDATION_FAILED"
	CodeCancelled          = "CANCELLED"
	CodeToolFailed         = "TOOL_FAILED"
)

// errorCode classifies err by the domain error it wraps.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedToolArguments):
		return CodeMalformedArguments
	case errors.Is(err, domain.ErrUnknownOperation):
		return CodeUnknownOperation
	case errors.Is(err, domain.ErrDocumentLocked):
		return CodeDocumentLocked
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrFileNotFound):
		return CodeFileNotFound
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return CodeRemoteUnavailable
	case errors.Is(err, domain.ErrValidation):
		return CodeValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancelled
	default:
		return CodeToolFailed
	}
}

// errorPayload is the result body of a failed tool call.
func errorPayload(err error) map[string]interface{} {
	body := map[string]interface{}{
		"code":    errorCode(err),
		"message": err.Error(),
	}

	var locked *domain.DocumentLockedError
	if errors.As(err, &locked) {
		body["remediation"] = locked.Remediation()
	} else if errors.Is(err, domain.ErrDocumentLocked) {
		body["remediation"] = "close the document in the other editor and retry"
	}

	return map[string]interface{}{
		"success": false,
		"error":   body,
	}
}

// successPayload wraps fields in the result body of a successful tool call.
func successPayload(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["success"] = true
	return out
}
