package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/httputil"
)

// RemoteCopyLister lists the documents known in remote storage.
type RemoteCopyLister interface {
	List(ctx context.Context) ([]models.RemoteCopy, error)
}

// DocumentHandler handles published document HTTP requests
type DocumentHandler struct {
	copies RemoteCopyLister
	logger *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(copies RemoteCopyLister, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		copies: copies,
		logger: logger,
	}
}

// ListDocuments lists remote copies, newest first
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	copies, err := h.copies.List(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if copies == nil {
		copies = []models.RemoteCopy{}
	}

	httputil.RespondJSON(w, http.StatusOK, copies)
}
