package llm

import (
	"context"

	"github.com/google/uuid"
)

// ChatService runs one user message through the model and its tools.
type ChatService interface {
	// HandleMessage drives the conversation until the model produces a final
	// answer. Tool failures are reported to the model, not returned.
	HandleMessage(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a single user message, optionally bound to the draft open in the editor.
type ChatRequest struct {
	Message       string     `json:"message"`
	ActiveDraftID *uuid.UUID `json:"active_draft_id,omitempty"`

	// EditorContent is the editor's current text for the active draft; it
	// takes precedence over the stored sections.
	EditorContent string `json:"editor_content,omitempty"`
}

// ToolCallSummary reports one tool call made while answering.
type ToolCallSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsError bool   `json:"is_error"`
}

// ChatResponse is the final answer plus what changed on the way.
type ChatResponse struct {
	Response     string            `json:"response"`
	DraftUpdated bool              `json:"draft_updated"`
	DraftID      *uuid.UUID        `json:"draft_id,omitempty"`
	ToolCalls    []ToolCallSummary `json:"tool_calls,omitempty"`
}
