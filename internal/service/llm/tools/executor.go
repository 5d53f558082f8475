package tools

import "context"

// ToolExecutor defines the interface for executing a tool.
// Implementations must be thread-safe and respect context cancellation.
type ToolExecutor interface {
	// Execute runs the tool with the given input parameters.
	// The returned interface{} must be JSON-serializable (maps, slices, primitives).
	// A returned error becomes an error result whose code is derived from the
	// domain error it wraps.
	Execute(ctx context.Context, input map[string]interface{}) (interface{}, error)
}
