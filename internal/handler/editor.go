package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	"github.com/ldsilvadev/mcp-word-caller/internal/httputil"
)

const maxCallbackBody = 1 << 20

// EditorHandler handles the collaborative editor routes
type EditorHandler struct {
	editor       services.EditorService
	draftService services.DraftService
	logger       *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editor services.EditorService, draftService services.DraftService, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{
		editor:       editor,
		draftService: draftService,
		logger:       logger,
	}
}

// EditorConfigResponse carries the editor configuration and where to load the editor from.
type EditorConfigResponse struct {
	Config    *services.EditorConfig `json:"config"`
	ServerURL string                 `json:"server_url"`
}

// EditorStatusResponse reports document server availability.
type EditorStatusResponse struct {
	Available bool   `json:"available"`
	ServerURL string `json:"server_url"`
}

// GetConfig builds the editor configuration for a draft
// GET /api/editor/config/{id}
func (h *EditorHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	cfg, err := h.editor.Config(r.Context(), id, editorUser(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, EditorConfigResponse{
		Config:    cfg,
		ServerURL: h.editor.ServerURL(),
	})
}

// GetDocument serves the draft file to the document server
// GET /api/editor/document/{id}
func (h *EditorHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
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

	serveDocx(w, r, h.logger, view.AbsolutePath)
}

// Callback receives save notifications from the document server. The
// document server only understands {"error": n}, so failures never map to
// problem responses here.
// POST /api/editor/callback/{id}
func (h *EditorHandler) Callback(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathUUID(r, "id")
	if err != nil {
		h.logger.Warn("editor callback with invalid draft id", "id", r.PathValue("id"))
		httputil.RespondJSON(w, http.StatusOK, services.EditorCallbackResult{Error: 1})
		return
	}

	var req services.EditorCallback
	r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("editor callback with invalid body", "draft_id", id, "error", err)
		httputil.RespondJSON(w, http.StatusOK, services.EditorCallbackResult{Error: 1})
		return
	}
	if req.Token == "" {
		req.Token = bearerToken(r)
	}

	httputil.RespondJSON(w, http.StatusOK, h.editor.HandleCallback(r.Context(), id, &req))
}

// GetStatus reports whether the document server is reachable
// GET /api/editor/status
func (h *EditorHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, EditorStatusResponse{
		Available: h.editor.Available(r.Context()),
		ServerURL: h.editor.ServerURL(),
	})
}

// editorUser identifies the caller from its auth claims, falling back to
// query parameters when auth is disabled.
func editorUser(r *http.Request) services.EditorUser {
	if claims := httputil.GetClaims(r); claims != nil {
		name := claims.Email
		if name == "" {
			name = claims.GetUserID()
		}
		return services.EditorUser{ID: claims.GetUserID(), Name: name}
	}

	user := services.EditorUser{
		ID:   r.URL.Query().Get("user_id"),
		Name: r.URL.Query().Get("user_name"),
	}
	if user.ID == "" {
		user.ID = "anonymous"
	}
	if user.Name == "" {
		user.Name = "Anonymous"
	}
	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
