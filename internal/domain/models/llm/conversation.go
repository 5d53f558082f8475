package llm

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string                 `json:"id"`    // tool_use_id from LLM
	Name  string                 `json:"name"`  // tool name
	Input map[string]interface{} `json:"input"` // tool parameters
}

// ToolResultContent is a tool result fed back to the model.
type ToolResultContent struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"` // JSON-encoded result payload
	IsError    bool   `json:"is_error"`
}

// ConversationTurn is one entry of the per-request transcript.
// Assistant turns may carry ToolCalls; tool turns carry ToolResults.
type ConversationTurn struct {
	Role        Role                `json:"role"`
	Content     string              `json:"content,omitempty"`
	ToolCalls   []ToolCall          `json:"tool_calls,omitempty"`
	ToolResults []ToolResultContent `json:"tool_results,omitempty"`
}

// UserTurn builds a user text turn.
func UserTurn(text string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Content: text}
}
