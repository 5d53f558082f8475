package handler

import "net/http"

// Handlers groups the HTTP handlers mounted on the API mux.
type Handlers struct {
	Chat      *ChatHandler
	Drafts    *DraftHandler
	Documents *DocumentHandler
	Editor    *EditorHandler
}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", HealthCheck)

	mux.HandleFunc("POST /api/chat", h.Chat.SendMessage)

	mux.HandleFunc("GET /api/drafts", h.Drafts.ListDrafts)
	mux.HandleFunc("POST /api/drafts", h.Drafts.CreateDraft)
	mux.HandleFunc("GET /api/drafts/{id}", h.Drafts.GetDraft)
	mux.HandleFunc("GET /api/drafts/{id}/status", h.Drafts.GetDraftStatus)
	mux.HandleFunc("PUT /api/drafts/{id}", h.Drafts.UpdateDraft)
	mux.HandleFunc("POST /api/drafts/{id}/generate", h.Drafts.GenerateDraft)
	mux.HandleFunc("POST /api/drafts/{id}/publish", h.Drafts.PublishDraft)
	mux.HandleFunc("GET /api/drafts/{id}/download", h.Drafts.DownloadDraft)

	mux.HandleFunc("GET /api/documents", h.Documents.ListDocuments)

	// The document route and callback are called by the document server itself.
	mux.HandleFunc("GET /api/editor/config/{id}", h.Editor.GetConfig)
	mux.HandleFunc("GET /api/editor/document/{id}", h.Editor.GetDocument)
	mux.HandleFunc("POST /api/editor/callback/{id}", h.Editor.Callback)
	mux.HandleFunc("GET /api/editor/status", h.Editor.GetStatus)
}
