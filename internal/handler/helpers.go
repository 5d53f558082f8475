package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses.
// Server-side failures are logged and never leak their message.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := domain.StatusCode(err)

	var locked *domain.DocumentLockedError
	if errors.As(err, &locked) {
		httputil.RespondErrorWithExtras(w, status, err.Error(), map[string]interface{}{
			"code":        "DOCUMENT_LOCKED",
			"remediation": locked.Remediation(),
		})
		return
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, status, "internal server error")
		return
	}

	httputil.RespondError(w, status, err.Error())
}
