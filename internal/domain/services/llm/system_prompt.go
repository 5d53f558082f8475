package llm

import (
	"context"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// SystemPromptResolver builds the system context for one chat request.
// It combines the base instructions, the renderer operations, a snapshot of
// known documents and the active draft's latest content.
type SystemPromptResolver interface {
	Resolve(ctx context.Context, req *ChatRequest, ops []services.OperationInfo) (string, error)
}
