package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models/llm"
	domainllm "github.com/ldsilvadev/mcp-word-caller/internal/domain/services/llm"
)

// convertToAnthropicMessages converts the transcript to Anthropic SDK format.
// Tool turns become one user message carrying every tool_result block.
func convertToAnthropicMessages(turns []llm.ConversationTurn) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(turns))

	for i, turn := range turns {
		switch turn.Role {
		case llm.RoleUser:
			if turn.Content == "" {
				return nil, fmt.Errorf("message %d: empty user turn", i)
			}
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))

		case llm.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(turn.ToolCalls)+1)
			if turn.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(turn.Content))
			}
			for _, call := range turn.ToolCalls {
				input := call.Input
				if input == nil {
					input = map[string]interface{}{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Name))
			}
			if len(blocks) == 0 {
				return nil, fmt.Errorf("message %d: empty assistant turn", i)
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))

		case llm.RoleTool:
			if len(turn.ToolResults) == 0 {
				return nil, fmt.Errorf("message %d: tool turn without results", i)
			}
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(turn.ToolResults))
			for _, r := range turn.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(r.ToolCallID, r.Content, r.IsError))
			}
			result = append(result, anthropic.NewUserMessage(blocks...))

		default:
			return nil, fmt.Errorf("message %d: unsupported role '%s'", i, turn.Role)
		}
	}

	return result, nil
}

// convertToAnthropicTools maps function definitions to Anthropic tool params.
func convertToAnthropicTools(defs []llm.ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	tools := make([]anthropic.ToolUnionParam, 0, len(defs))

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}

		tool := anthropic.ToolParam{
			Name: def.Function.Name,
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: def.Properties(),
				Required:   def.Required(),
			},
		}
		if def.Function.Description != "" {
			tool.Description = anthropic.String(def.Function.Description)
		}

		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}

	return tools, nil
}

// convertFromAnthropicResponse converts an Anthropic response to domain format.
func convertFromAnthropicResponse(msg *anthropic.Message) (*domainllm.GenerateResponse, error) {
	var text []string
	var calls []llm.ToolCall

	for i, content := range msg.Content {
		switch content.Type {
		case "text":
			if content.Text != "" {
				text = append(text, content.Text)
			}

		case "tool_use":
			input := map[string]interface{}{}
			if len(content.Input) > 0 {
				if err := json.Unmarshal(content.Input, &input); err != nil {
					return nil, fmt.Errorf("content block %d: decode tool input: %w", i, err)
				}
			}
			calls = append(calls, llm.ToolCall{
				ID:    content.ID,
				Name:  content.Name,
				Input: input,
			})

		// Thinking and other block types carry nothing the loop uses.
		default:
			continue
		}
	}

	return &domainllm.GenerateResponse{
		Text:         strings.Join(text, "\n"),
		ToolCalls:    calls,
		StopReason:   string(msg.StopReason),
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}
