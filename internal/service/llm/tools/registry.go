package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models/llm"
)

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	ID      string      `json:"id"`       // tool_use_id (matches ToolCall.ID)
	Name    string      `json:"name"`     // tool name (matches ToolCall.Name)
	Result  interface{} `json:"result"`   // payload sent back to the model
	Error   error       `json:"-"`        // execution error (nil if success)
	IsError bool        `json:"is_error"` // whether execution failed
}

// Content encodes the result as the tool turn fed back to the model.
func (r ToolResult) Content() llm.ToolResultContent {
	payload, err := json.Marshal(r.Result)
	if err != nil {
		payload, _ = json.Marshal(errorPayload(fmt.Errorf("encode tool result: %w", err)))
	}
	return llm.ToolResultContent{
		ToolCallID: r.ID,
		Name:       r.Name,
		Content:    string(payload),
		IsError:    r.IsError,
	}
}

// ToolRegistry manages tool executors and handles tool execution.
// It is thread-safe and can be used concurrently.
type ToolRegistry struct {
	mu        sync.RWMutex
	executors map[string]ToolExecutor
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		executors: make(map[string]ToolExecutor),
	}
}

// Register adds a tool executor to the registry.
// If a tool with the same name already exists, it will be replaced.
func (r *ToolRegistry) Register(name string, executor ToolExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = executor
}

// RegisterIfAbsent adds executor unless name is taken. It reports whether it registered.
func (r *ToolRegistry) RegisterIfAbsent(name string, executor ToolExecutor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.executors[name]; ok {
		return false
	}
	r.executors[name] = executor
	return true
}

// Get retrieves a tool executor by name.
// Returns nil if the tool is not registered.
func (r *ToolRegistry) Get(name string) ToolExecutor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.executors[name]
}

// Names returns the registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a single tool. Failures, including unknown tools, come back
// as error results carrying a code; they are never returned as Go errors.
func (r *ToolRegistry) Execute(ctx context.Context, call llm.ToolCall) ToolResult {
	executor := r.Get(call.Name)
	if executor == nil {
		err := fmt.Errorf("%w: %s", domain.ErrUnknownOperation, call.Name)
		return ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Result:  errorPayload(err),
			Error:   err,
			IsError: true,
		}
	}

	input := call.Input
	if input == nil {
		input = map[string]interface{}{}
	}

	result, err := executor.Execute(ctx, input)
	if err != nil {
		return ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Result:  errorPayload(err),
			Error:   err,
			IsError: true,
		}
	}

	return ToolResult{
		ID:      call.ID,
		Name:    call.Name,
		Result:  result,
		Error:   nil,
		IsError: false,
	}
}

// ExecuteAll runs calls one at a time in the order given. Calls after a
// cancelled context are reported as failed without running.
func (r *ToolRegistry) ExecuteAll(ctx context.Context, calls []llm.ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))

	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			results = append(results, ToolResult{
				ID:      call.ID,
				Name:    call.Name,
				Result:  errorPayload(err),
				Error:   err,
				IsError: true,
			})
			continue
		}
		results = append(results, r.Execute(ctx, call))
	}

	return results
}
