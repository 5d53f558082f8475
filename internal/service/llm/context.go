package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ldsilvadev/mcp-word-caller/internal/catalog"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/repositories"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	domainllm "github.com/ldsilvadev/mcp-word-caller/internal/domain/services/llm"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/content"
)

// snapshotDraftLimit caps the drafts listed in the system context.
const snapshotDraftLimit = 50

type systemPromptResolver struct {
	policy *catalog.Registry
	drafts services.DraftService
	copies repositories.RemoteCopyRepository
	sync   services.Synchronizer
	logger *slog.Logger
}

// NewSystemPromptResolver creates the resolver for chat system context.
// The document snapshot is best effort: listing failures are logged and skipped.
func NewSystemPromptResolver(
	policy *catalog.Registry,
	drafts services.DraftService,
	copies repositories.RemoteCopyRepository,
	sync services.Synchronizer,
	logger *slog.Logger,
) domainllm.SystemPromptResolver {
	return &systemPromptResolver{
		policy: policy,
		drafts: drafts,
		copies: copies,
		sync:   sync,
		logger: logger,
	}
}

func (r *systemPromptResolver) Resolve(ctx context.Context, req *domainllm.ChatRequest, ops []services.OperationInfo) (string, error) {
	cat := r.policy.Catalog()
	parts := []string{strings.TrimSpace(cat.SystemInstructions)}

	if len(ops) > 0 {
		lines := []string{cat.Prompts.OperationsHeader}
		for _, op := range ops {
			line := "- " + op.Name
			if op.Description != "" {
				line += ": " + firstLine(op.Description)
			}
			lines = append(lines, line)
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if docs := r.documentSnapshot(ctx); len(docs) > 0 {
		parts = append(parts, cat.Prompts.DocumentsHeader+"\n"+strings.Join(docs, "\n"))
	}

	if req.ActiveDraftID != nil {
		active, err := r.activeDraft(ctx, req)
		if err != nil {
			return "", err
		}
		if active != "" {
			parts = append(parts, active)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// documentSnapshot lists drafts first, then remote copies not backing a draft.
func (r *systemPromptResolver) documentSnapshot(ctx context.Context) []string {
	var lines []string
	seen := make(map[string]struct{})

	drafts, err := r.drafts.List(ctx, snapshotDraftLimit)
	if err != nil {
		r.logger.Warn("failed to list drafts for context", "error", err)
	}
	for _, d := range drafts {
		seen[d.LocalFileRef] = struct{}{}
		lines = append(lines, documentLine(d.ID.String(), d.LocalFileRef, r.sync.ResolvePath(d.LocalFileRef)))
	}

	if r.copies == nil {
		return lines
	}
	copies, err := r.copies.List(ctx)
	if err != nil {
		r.logger.Warn("failed to list remote copies for context", "error", err)
		return lines
	}
	for _, rc := range copies {
		if _, ok := seen[rc.Filename]; ok {
			continue
		}
		lines = append(lines, documentLine(rc.RemoteID, rc.Filename, r.sync.ResolvePath(rc.Filename)))
	}

	return lines
}

// activeDraft renders the active draft block. A draft that no longer exists
// is logged and left out; other lookup failures fail the request.
func (r *systemPromptResolver) activeDraft(ctx context.Context, req *domainllm.ChatRequest) (string, error) {
	prompts := r.policy.Catalog().Prompts
	id := req.ActiveDraftID.String()

	latest := strings.TrimSpace(req.EditorContent)
	if latest == "" {
		view, err := r.drafts.Get(ctx, *req.ActiveDraftID)
		if err != nil {
			if isNotFound(err) {
				r.logger.Warn("active draft not found", "draft_id", id)
				return "", nil
			}
			return "", fmt.Errorf("load active draft: %w", err)
		}
		latest = strings.TrimSpace(content.Render(view.Content.Sections))
	}

	return fmt.Sprintf(prompts.ActiveDraftHeader, id) + "\n\n" + latest + "\n\n" + prompts.ActiveDraftDirective, nil
}

func documentLine(id, filename, path string) string {
	return fmt.Sprintf("- ID: %s | Filename: %s | Path: %s", id, filename, path)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
