package services

import (
	"context"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

// InvokeResult is the outcome of one renderer operation.
type InvokeResult struct {
	// Text is the raw textual result returned by the renderer.
	Text string `json:"text"`
	// OutputPath is the file the operation wrote, when the renderer reports one.
	OutputPath string `json:"output_path,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`
}

// OperationInfo describes one operation the renderer exposes.
type OperationInfo struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
	Required    []string
}

// Invoker calls named operations on the external document renderer.
type Invoker interface {
	Invoke(ctx context.Context, op string, args map[string]interface{}) (*InvokeResult, error)
	ListOperations(ctx context.Context) ([]OperationInfo, error)
}

// Renderer produces a binary document from structured content.
type Renderer interface {
	// Render fills templateRef (optional) with content and writes outputPath.
	// The file may appear after Render returns; callers await materialization.
	Render(ctx context.Context, templateRef, outputPath string, content models.ParsedContent) (*InvokeResult, error)
}
