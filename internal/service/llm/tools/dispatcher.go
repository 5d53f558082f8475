package tools

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// Dispatcher routes model tool calls to draft tools or renderer operations
// and publishes the catalog the model may call.
type Dispatcher struct {
	registry  *ToolRegistry
	policy    *catalog.Registry
	invoker   services.Invoker
	sync      services.Synchronizer
	extractor PathExtractor
	config    *ToolConfig
	logger    *slog.Logger

	mu         sync.Mutex
	operations []services.OperationInfo
	loaded     bool
}

// Operations returns the renderer operations, listing them on first use.
// A listing failure is logged and retried on the next call.
func (d *Dispatcher) Operations(ctx context.Context) []services.OperationInfo {
	if d.invoker == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return d.operations
	}

	ops, err := d.invoker.ListOperations(ctx)
	if err != nil {
		d.logger.Warn("failed to list renderer operations", "error", err)
		return nil
	}

	registered := make([]services.OperationInfo, 0, len(ops))
	for _, op := range ops {
		tool := NewPassThroughTool(op.Name, d.invoker, d.sync, d.policy, d.extractor, d.config, d.logger)
		if !d.registry.RegisterIfAbsent(op.Name, tool) {
			d.logger.Debug("renderer operation shadowed by built-in tool", "operation", op.Name)
			continue
		}
		registered = append(registered, op)
	}

	d.operations = registered
	d.loaded = true
	d.logger.Info("renderer operations loaded", "count", len(registered))
	return d.operations
}

// Definitions returns the draft tools followed by the renderer operations.
func (d *Dispatcher) Definitions(ctx context.Context) []llm.ToolDefinition {
	var defs []llm.ToolDefinition

	for _, spec := range d.policy.Catalog().Tools {
		if d.registry.Get(spec.Name) == nil {
			continue
		}
		defs = append(defs, llm.NewFunctionTool(spec.Name, spec.Description, spec.Parameters))
	}

	for _, op := range d.Operations(ctx) {
		properties := op.InputSchema
		if properties == nil {
			properties = map[string]interface{}{}
		}
		params := map[string]interface{}{
			"type":       "object",
			"properties": properties,
		}
		if len(op.Required) > 0 {
			params["required"] = op.Required
		}
		defs = append(defs, llm.NewFunctionTool(op.Name, op.Description, params))
	}

	return defs
}

// ExecuteAll runs calls sequentially in the order received. Every call
// yields exactly one result; failures are error results, never Go errors.
func (d *Dispatcher) ExecuteAll(ctx context.Context, calls []llm.ToolCall) []ToolResult {
	d.Operations(ctx)

	results := d.registry.ExecuteAll(ctx, calls)
	for _, r := range results {
		if r.IsError {
			d.logger.Warn("tool call failed", "tool", r.Name, "id", r.ID, "error", r.Error)
		} else {
			d.logger.Debug("tool call succeeded", "tool", r.Name, "id", r.ID)
		}
	}
	return results
}
