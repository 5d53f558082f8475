package handler

import (
	"log/slog"
	"net/http"

	llmSvc "github.com/ldsilvadev/mcp-word-caller/internal/domain/services/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/httputil"
)

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	chatService llmSvc.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler. A nil chatService keeps the
// route mounted but answers 503.
func NewChatHandler(chatService llmSvc.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// SendMessage runs one conversation turn
// POST /api/chat
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if h.chatService == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var req llmSvc.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	resp, err := h.chatService.HandleMessage(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
