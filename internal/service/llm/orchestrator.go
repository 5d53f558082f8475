package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/config"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	domainllm "github.com/ldsilvadev/mcp-word-caller/internal/domain/services/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/llm/tools"
)

// ToolDispatcher is the part of tools.Dispatcher the orchestrator drives.
type ToolDispatcher interface {
	Operations(ctx context.Context) []services.OperationInfo
	Definitions(ctx context.Context) []llm.ToolDefinition
	ExecuteAll(ctx context.Context, calls []llm.ToolCall) []tools.ToolResult
}

// OrchestratorConfig bounds a single chat request.
type OrchestratorConfig struct {
	Model     string
	MaxTokens int

	// MaxToolRounds caps model turns that request tools.
	MaxToolRounds int
}

type orchestrator struct {
	provider   domainllm.LLMProvider
	dispatcher ToolDispatcher
	prompts    domainllm.SystemPromptResolver
	intent     *IntentMatcher
	policy     *catalog.Registry
	config     OrchestratorConfig
	logger     *slog.Logger
}

// NewOrchestrator creates the chat service.
func NewOrchestrator(
	provider domainllm.LLMProvider,
	dispatcher ToolDispatcher,
	prompts domainllm.SystemPromptResolver,
	policy *catalog.Registry,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) domainllm.ChatService {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 10
	}
	return &orchestrator{
		provider:   provider,
		dispatcher: dispatcher,
		prompts:    prompts,
		intent:     NewIntentMatcher(policy.Catalog().IntentKeywords),
		policy:     policy,
		config:     cfg,
		logger:     logger,
	}
}

// conversation is the state of one HandleMessage call.
type conversation struct {
	turns        []llm.ConversationTurn
	calls        []domainllm.ToolCallSummary
	draftUpdated bool
	draftID      *uuid.UUID
	forced       bool
}

func (o *orchestrator) HandleMessage(ctx context.Context, req *domainllm.ChatRequest) (*domainllm.ChatResponse, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	ops := o.dispatcher.Operations(ctx)
	system, err := o.prompts.Resolve(ctx, req, ops)
	if err != nil {
		return nil, err
	}
	defs := o.dispatcher.Definitions(ctx)

	prompts := o.policy.Catalog().Prompts
	wantsChange := o.intent.LooksLikeModificationRequest(req.Message)

	message := req.Message
	if wantsChange && req.ActiveDraftID != nil {
		message += "\n\n" + fmt.Sprintf(prompts.ModificationDirective, req.ActiveDraftID.String())
	}

	conv := &conversation{
		turns:   []llm.ConversationTurn{llm.UserTurn(message)},
		draftID: req.ActiveDraftID,
	}

	var final string
	toolRounds := 0
	for {
		resp, err := o.provider.GenerateResponse(ctx, &domainllm.GenerateRequest{
			System:    system,
			Messages:  conv.turns,
			Tools:     defs,
			Model:     o.config.Model,
			MaxTokens: o.config.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("generate response: %w", err)
		}

		o.logger.Debug("model turn",
			"stop_reason", resp.StopReason,
			"tool_calls", len(resp.ToolCalls),
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)

		if len(resp.ToolCalls) > 0 {
			if toolRounds >= o.config.MaxToolRounds {
				o.logger.Warn("tool round limit reached", "limit", o.config.MaxToolRounds)
				final = resp.Text
				break
			}
			toolRounds++
			o.runTools(ctx, conv, resp)
			continue
		}

		final = strings.TrimSpace(resp.Text)

		if wantsChange && !conv.draftUpdated && !conv.forced && conv.draftID != nil {
			conv.forced = true
			o.logger.Info("change described but not applied, forcing update", "draft_id", conv.draftID.String())
			if final != "" {
				conv.turns = append(conv.turns, llm.ConversationTurn{Role: llm.RoleAssistant, Content: final})
			}
			conv.turns = append(conv.turns, llm.UserTurn(fmt.Sprintf(prompts.ForcingMessage, conv.draftID.String())))
			continue
		}
		break
	}

	final = strings.TrimSpace(final)
	if final == "" {
		fallbacks := o.policy.Catalog().Fallbacks
		if conv.draftUpdated {
			final = fallbacks.DraftUpdated
		} else {
			final = fallbacks.Generic
		}
	}

	resp := &domainllm.ChatResponse{
		Response:     final,
		DraftUpdated: conv.draftUpdated,
		ToolCalls:    conv.calls,
	}
	if conv.draftUpdated {
		resp.DraftID = conv.draftID
	}
	return resp, nil
}

// runTools executes one round of tool calls and appends the assistant turn
// and the single tool turn carrying every result.
func (o *orchestrator) runTools(ctx context.Context, conv *conversation, resp *domainllm.GenerateResponse) {
	conv.turns = append(conv.turns, llm.ConversationTurn{
		Role:      llm.RoleAssistant,
		Content:   resp.Text,
		ToolCalls: resp.ToolCalls,
	})

	results := o.dispatcher.ExecuteAll(ctx, resp.ToolCalls)

	contents := make([]llm.ToolResultContent, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content())
		conv.calls = append(conv.calls, domainllm.ToolCallSummary{ID: r.ID, Name: r.Name, IsError: r.IsError})

		if id, ok := updatedDraftID(r); ok {
			conv.draftUpdated = true
			conv.draftID = &id
		}
	}

	conv.turns = append(conv.turns, llm.ConversationTurn{Role: llm.RoleTool, ToolResults: contents})
}

// updatedDraftID reports the draft a successful create or update touched.
func updatedDraftID(r tools.ToolResult) (uuid.UUID, bool) {
	if r.IsError || (r.Name != tools.ToolUpdateDraft && r.Name != tools.ToolCreateDraft) {
		return uuid.Nil, false
	}
	payload, ok := r.Result.(map[string]interface{})
	if !ok {
		return uuid.Nil, false
	}
	raw, _ := payload["draft_id"].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func validateChatRequest(req *domainllm.ChatRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", domain.ErrValidation)
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.Message, validation.Required, validation.Length(1, config.MaxChatMessageLength)),
		validation.Field(&req.EditorContent, validation.Length(0, config.MaxDraftContentLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
