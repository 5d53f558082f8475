package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	"github.com/ldsilvadev/mcp-word-caller/internal/httputil"
)

// DraftHandler handles draft HTTP requests
type DraftHandler struct {
	draftService services.DraftService
	logger       *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftService services.DraftService, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		draftService: draftService,
		logger:       logger,
	}
}

// DraftStatusResponse is the lightweight view polled by the client.
type DraftStatusResponse struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Status         models.DraftStatus   `json:"status"`
	FilePath       string               `json:"file_path"`
	FileExists     bool                 `json:"file_exists"`
	FileModifiedAt *time.Time           `json:"file_modified_at,omitempty"`
	LastModifiedAt time.Time            `json:"last_modified_at"`
	LastModifiedBy string               `json:"last_modified_by,omitempty"`
	Metadata       models.DraftMetadata `json:"metadata"`
}

// ListDrafts lists the most recently modified drafts
// GET /api/drafts?limit=N
func (h *DraftHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	drafts, err := h.draftService.List(r.Context(), limit)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}

	httputil.RespondJSON(w, http.StatusOK, drafts)
}

// CreateDraft creates a draft and renders its document
// POST /api/drafts
func (h *DraftHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.draftService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, view)
}

// GetDraft retrieves a draft by ID
// GET /api/drafts/{id}
func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.draftService.Get(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// GetDraftStatus reports status and file state
// GET /api/drafts/{id}/status
func (h *DraftHandler) GetDraftStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.draftService.Get(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	resp := DraftStatusResponse{
		ID:             view.ID.String(),
		Title:          view.Title,
		Status:         view.Status,
		FilePath:       view.AbsolutePath,
		LastModifiedAt: view.LastModifiedAt,
		LastModifiedBy: view.LastModifiedBy,
		Metadata:       view.Metadata,
	}
	if info, statErr := os.Stat(view.AbsolutePath); statErr == nil {
		modTime := info.ModTime().UTC()
		resp.FileExists = true
		resp.FileModifiedAt = &modTime
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// UpdateDraft replaces content and/or merges metadata
// PUT /api/drafts/{id}
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req services.UpdateDraftRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.draftService.Update(r.Context(), id, &req, models.ActorUser)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// GenerateDraft re-renders the draft document
// POST /api/drafts/{id}/generate
func (h *DraftHandler) GenerateDraft(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.draftService.Generate(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, view)
}

// PublishDraft uploads the draft document to remote storage
// POST /api/drafts/{id}/publish
func (h *DraftHandler) PublishDraft(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	result, err := h.draftService.Publish(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// DownloadDraft streams a published draft, refreshed from its remote copy
// GET /api/drafts/{id}/download
func (h *DraftHandler) DownloadDraft(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.draftService.Refresh(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if view.Status != models.DraftStatusPublished {
		handleError(w, h.logger, fmt.Errorf("%w: draft is not published yet", domain.ErrValidation))
		return
	}

	serveDocx(w, r, h.logger, view.AbsolutePath)
}

// serveDocx writes the file at absPath as a docx attachment.
func serveDocx(w http.ResponseWriter, r *http.Request, logger *slog.Logger, absPath string) {
	f, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			handleError(w, logger, fmt.Errorf("%w: %s", domain.ErrFileNotFound, filepath.Base(absPath)))
			return
		}
		handleError(w, logger, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		handleError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", models.DocxMimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(absPath)))
	http.ServeContent(w, r, "", info.ModTime(), f)
}
