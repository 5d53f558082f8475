package tools

import (
	"io"
	"log/slog"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// ToolRegistryBuilder provides a fluent API for building tool registries
// and the dispatcher around them.
type ToolRegistryBuilder struct {
	registry *ToolRegistry
	config   *ToolConfig
	policy   *catalog.Registry
	invoker  services.Invoker
	sync     services.Synchronizer
	logger   *slog.Logger
}

// NewToolRegistryBuilder creates a new builder with a fresh registry.
func NewToolRegistryBuilder(policy *catalog.Registry) *ToolRegistryBuilder {
	return &ToolRegistryBuilder{
		registry: NewToolRegistry(),
		config:   DefaultToolConfig(),
		policy:   policy,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithConfig sets custom tool configuration.
// If not called, defaults will be used.
func (b *ToolRegistryBuilder) WithConfig(config *ToolConfig) *ToolRegistryBuilder {
	if config != nil {
		b.config = config
	}
	return b
}

// WithLogger sets the logger used by pass-through tools and the dispatcher.
func (b *ToolRegistryBuilder) WithLogger(logger *slog.Logger) *ToolRegistryBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithDraftTools registers create_draft, get_draft, update_draft and
// generate_from_draft, plus any aliases the catalog declares for them.
func (b *ToolRegistryBuilder) WithDraftTools(drafts services.DraftService) *ToolRegistryBuilder {
	executors := map[string]ToolExecutor{
		ToolCreateDraft:       NewCreateDraftTool(drafts),
		ToolGetDraft:          NewGetDraftTool(drafts),
		ToolUpdateDraft:       NewUpdateDraftTool(drafts),
		ToolGenerateFromDraft: NewGenerateFromDraftTool(drafts),
	}

	for name, executor := range executors {
		b.registry.Register(name, executor)
		if spec, err := b.policy.Tool(name); err == nil {
			for _, alias := range spec.Aliases {
				b.registry.Register(alias, executor)
			}
		}
	}
	return b
}

// WithRenderer enables pass-through of renderer operations.
// Only registers if a valid invoker is provided.
func (b *ToolRegistryBuilder) WithRenderer(invoker services.Invoker, sync services.Synchronizer) *ToolRegistryBuilder {
	if invoker != nil {
		b.invoker = invoker
		b.sync = sync
	}
	return b
}

// Build returns the constructed tool registry.
func (b *ToolRegistryBuilder) Build() *ToolRegistry {
	return b.registry
}

// BuildDispatcher returns a dispatcher over the constructed registry.
func (b *ToolRegistryBuilder) BuildDispatcher() *Dispatcher {
	var extractor PathExtractor
	if b.policy != nil {
		rules := b.policy.Catalog().Renderer
		extractor = PathExtractorChain{
			ArgsPathExtractor{Keys: rules.PushKeys},
			ResultPathExtractor{},
			PatternPathExtractor{Pattern: b.policy.PathPattern()},
		}
	}

	return &Dispatcher{
		registry:  b.registry,
		policy:    b.policy,
		invoker:   b.invoker,
		sync:      b.sync,
		extractor: extractor,
		config:    b.config,
		logger:    b.logger,
	}
}
