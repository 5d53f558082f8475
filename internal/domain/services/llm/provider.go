package llm

import (
	"context"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models/llm"
)

// LLMProvider defines the interface that all LLM providers must implement.
type LLMProvider interface {
	// GenerateResponse sends the conversation and returns the model's next turn.
	GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// Name returns the provider name (e.g., "anthropic")
	Name() string
}

// GenerateRequest contains the parameters for an LLM generation request.
type GenerateRequest struct {
	// System is the system context sent ahead of the conversation.
	System string

	// Messages contains the conversation history for this request.
	Messages []llm.ConversationTurn

	// Tools is the catalog of tools the model may call.
	Tools []llm.ToolDefinition

	// Model is the model identifier; empty selects the provider default.
	Model string

	MaxTokens int
}

// GenerateResponse contains the LLM provider's response.
type GenerateResponse struct {
	// Text is the concatenated text content of the response.
	Text string

	// ToolCalls are the tool invocations requested, in the order the model emitted them.
	ToolCalls []llm.ToolCall

	// StopReason indicates why generation stopped (e.g., "end_turn", "tool_use")
	StopReason string

	Model        string
	InputTokens  int
	OutputTokens int
}
