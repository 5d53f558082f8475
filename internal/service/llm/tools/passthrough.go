package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// PassThroughTool forwards one renderer operation, pulling the target file
// before the call and pushing it after a mutation.
type PassThroughTool struct {
	op        string
	invoker   services.Invoker
	sync      services.Synchronizer
	policy    *catalog.Registry
	extractor PathExtractor
	config    *ToolConfig
	logger    *slog.Logger
}

// NewPassThroughTool creates an executor for renderer operation op.
func NewPassThroughTool(
	op string,
	invoker services.Invoker,
	sync services.Synchronizer,
	policy *catalog.Registry,
	extractor PathExtractor,
	config *ToolConfig,
	logger *slog.Logger,
) *PassThroughTool {
	return &PassThroughTool{
		op:        op,
		invoker:   invoker,
		sync:      sync,
		policy:    policy,
		extractor: extractor,
		config:    config,
		logger:    logger,
	}
}

func (t *PassThroughTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	rules := t.policy.Catalog().Renderer
	args := make(PassThroughArgs, len(input))
	for k, v := range input {
		args[k] = v
	}

	if err := args.ValidateKeys(rules.PullKeys); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedToolArguments, err)
	}

	// Refresh the target from remote storage and hand the renderer an absolute path.
	if key, name := args.firstString(rules.PullKeys); key != "" {
		absPath := t.sync.ResolvePath(name)
		args[key] = absPath
		if err := t.sync.PullIfStale(ctx, absPath); err != nil {
			return nil, err
		}
	}

	result, err := t.invoker.Invoke(ctx, t.op, args)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{
		"operation": t.op,
		"result":    t.decodeText(result.Text),
	}

	if t.policy.IsMutating(t.op) {
		if err := t.syncMutation(ctx, args, result, out); err != nil {
			return nil, err
		}
	}

	return successPayload(out), nil
}

// syncMutation pushes the file a mutating operation wrote and records the
// outcome on out. Only a locked remote fails the call.
func (t *PassThroughTool) syncMutation(ctx context.Context, args PassThroughArgs, result *services.InvokeResult, out map[string]interface{}) error {
	path := t.extractor.ExtractPath(args, result)
	if path == "" {
		t.logger.Warn("mutating operation reported no output path", "operation", t.op)
		return nil
	}

	absPath := t.sync.ResolvePath(path)
	out["output_path"] = absPath

	if !t.sync.AwaitMaterialization(ctx, absPath, t.config.AwaitTimeout, t.config.AwaitInterval) {
		out["sync_warning"] = "output file did not appear; it was not uploaded"
		return nil
	}

	rc, err := t.sync.Push(ctx, absPath)
	switch {
	case err == nil:
		out["shareable_link"] = rc.ShareableLink
	case errors.Is(err, domain.ErrDocumentLocked):
		return err
	default:
		t.logger.Warn("push after mutation failed", "operation", t.op, "path", absPath, "error", err)
		out["sync_warning"] = err.Error()
	}
	return nil
}

// decodeText returns JSON results as structured values and truncates plain text.
func (t *PassThroughTool) decodeText(text string) interface{} {
	var structured interface{}
	if err := json.Unmarshal([]byte(text), &structured); err == nil {
		return structured
	}
	if max := t.config.MaxResultTextSize; max > 0 && len(text) > max {
		return text[:max] + "\n[truncated]"
	}
	return text
}
