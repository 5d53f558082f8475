package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

var lockedMessagePattern = regexp.MustCompile(`(?i)\blocked\b|being edited|being used by another process|permission denied`)

// MCPConfig describes how to start the renderer process.
type MCPConfig struct {
	Command string
	Args    []string
	Env     []string

	ClientName    string
	ClientVersion string
}

// MCPInvoker calls renderer operations over an MCP stdio session.
// The process is started on first use and restarted after a transport failure.
//
// Thread-safe for concurrent use.
type MCPInvoker struct {
	cfg    MCPConfig
	logger *slog.Logger

	mu     sync.Mutex
	client *client.Client
}

// NewMCPInvoker creates an invoker for the renderer started by cfg.
func NewMCPInvoker(cfg MCPConfig, logger *slog.Logger) *MCPInvoker {
	if cfg.ClientName == "" {
		cfg.ClientName = "mcp-word-caller"
	}
	if cfg.ClientVersion == "" {
		cfg.ClientVersion = "1.0.0"
	}
	return &MCPInvoker{cfg: cfg, logger: logger}
}

// connect returns the live session, starting the renderer if needed.
func (m *MCPInvoker) connect(ctx context.Context) (*client.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		return m.client, nil
	}

	c, err := client.NewStdioMCPClient(m.cfg.Command, m.cfg.Env, m.cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("start renderer %q: %w", m.cfg.Command, err)
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    m.cfg.ClientName,
		Version: m.cfg.ClientVersion,
	}

	info, err := c.Initialize(ctx, req)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize renderer: %w", err)
	}

	m.logger.Info("renderer connected",
		"server", info.ServerInfo.Name,
		"version", info.ServerInfo.Version,
	)
	m.client = c
	return c, nil
}

// reset drops a failed session so the next call reconnects.
func (m *MCPInvoker) reset(c *client.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == c {
		m.client.Close()
		m.client = nil
	}
}

// ListOperations returns the operations the renderer exposes.
func (m *MCPInvoker) ListOperations(ctx context.Context) ([]services.OperationInfo, error) {
	c, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}

	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		m.reset(c)
		return nil, fmt.Errorf("list renderer operations: %w", err)
	}

	ops := make([]services.OperationInfo, 0, len(result.Tools))
	for _, tool := range result.Tools {
		ops = append(ops, services.OperationInfo{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema.Properties,
			Required:    tool.InputSchema.Required,
		})
	}
	return ops, nil
}

// Invoke calls op with args. A tool-level error comes back both as
// result.IsError and as a returned error; lock-shaped failures wrap
// domain.ErrDocumentLocked.
func (m *MCPInvoker) Invoke(ctx context.Context, op string, args map[string]interface{}) (*services.InvokeResult, error) {
	c, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = op
	req.Params.Arguments = args

	resp, err := c.CallTool(ctx, req)
	if err != nil {
		if ctx.Err() == nil {
			m.reset(c)
		}
		return nil, fmt.Errorf("call %s: %w", op, err)
	}

	text := contentText(resp.Content)
	result := &services.InvokeResult{
		Text:       text,
		OutputPath: outputPathFromText(text),
		IsError:    resp.IsError,
	}

	if resp.IsError {
		if lockedMessagePattern.MatchString(text) {
			return result, fmt.Errorf("%s: %w: %s", op, domain.ErrDocumentLocked, text)
		}
		return result, fmt.Errorf("%s failed: %s", op, text)
	}
	return result, nil
}

// Close stops the renderer process.
func (m *MCPInvoker) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client == nil {
		return nil
	}
	err := m.client.Close()
	m.client = nil
	return err
}

func contentText(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		switch tc := c.(type) {
		case mcp.TextContent:
			parts = append(parts, tc.Text)
		case *mcp.TextContent:
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// outputPathFromText reads the structured path field of a JSON result.
func outputPathFromText(text string) string {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return ""
	}
	for _, key := range []string{"output_path", "path", "file_path"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
