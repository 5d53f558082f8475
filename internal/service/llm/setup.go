package llm

import (
	"log/slog"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/config"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/repositories"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	domainllm "github.com/ldsilvadev/mcp-word-caller/internal/domain/services/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/llm/providers/anthropic"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/llm/tools"
)

// Dependencies are the collaborators the chat stack is built on.
type Dependencies struct {
	Catalog *catalog.Registry
	Drafts  services.DraftService
	Copies  repositories.RemoteCopyRepository
	Sync    services.Synchronizer
	Invoker services.Invoker // nil disables renderer operations
}

// Services holds all LLM-related services
type Services struct {
	// Chat is nil when no provider is configured.
	Chat       domainllm.ChatService
	Dispatcher *tools.Dispatcher
}

// SetupServices builds the tool dispatcher and, when an API key is set, the
// Anthropic-backed chat orchestrator.
func SetupServices(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Services, error) {
	dispatcher := tools.NewToolRegistryBuilder(deps.Catalog).
		WithConfig(&tools.ToolConfig{
			AwaitTimeout:      cfg.AwaitTimeout,
			AwaitInterval:     cfg.AwaitInterval,
			MaxResultTextSize: tools.DefaultToolConfig().MaxResultTextSize,
		}).
		WithLogger(logger).
		WithDraftTools(deps.Drafts).
		WithRenderer(deps.Invoker, deps.Sync).
		BuildDispatcher()

	out := &Services{Dispatcher: dispatcher}

	if cfg.AnthropicAPIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY not set - chat is disabled")
		return out, nil
	}

	provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey, cfg.DefaultModel)
	if err != nil {
		return nil, err
	}
	logger.Info("provider available", "name", provider.Name(), "model", cfg.DefaultModel)

	resolver := NewSystemPromptResolver(deps.Catalog, deps.Drafts, deps.Copies, deps.Sync, logger)
	out.Chat = NewOrchestrator(provider, dispatcher, resolver, deps.Catalog, OrchestratorConfig{
		Model:         cfg.DefaultModel,
		MaxTokens:     cfg.MaxTokens,
		MaxToolRounds: cfg.MaxToolRounds,
	}, logger)

	return out, nil
}
