package tools

import (
	"context"

	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/content"
)

// Draft tool names.
const (
	ToolCreateDraft       = "create_draft"
	ToolGetDraft          = "get_draft"
	ToolUpdateDraft       = "update_draft"
	ToolGenerateFromDraft = "generate_from_draft"
)

// CreateDraftTool creates a draft and renders its first file.
type CreateDraftTool struct {
	drafts services.DraftService
}

// NewCreateDraftTool creates a new create_draft executor.
func NewCreateDraftTool(drafts services.DraftService) *CreateDraftTool {
	return &CreateDraftTool{drafts: drafts}
}

func (t *CreateDraftTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	var args CreateDraftArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}

	view, err := t.drafts.Create(ctx, &services.CreateDraftRequest{
		Title:    args.Title,
		Content:  args.Content,
		Format:   "markdown",
		Metadata: args.Metadata,
	})
	if err != nil {
		return nil, err
	}

	return draftSummary(view, "Draft created. Use update_draft with this draft_id for further changes."), nil
}

// GetDraftTool returns a draft's current state, content rendered as markdown.
type GetDraftTool struct {
	drafts services.DraftService
}

// NewGetDraftTool creates a new get_draft executor.
func NewGetDraftTool(drafts services.DraftService) *GetDraftTool {
	return &GetDraftTool{drafts: drafts}
}

func (t *GetDraftTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	var args GetDraftArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}

	view, err := t.drafts.Get(ctx, uuid.MustParse(args.DraftID))
	if err != nil {
		return nil, err
	}

	result := draftSummary(view, "")
	result["metadata"] = view.Metadata
	result["content"] = content.Render(view.Content.Sections)
	return result, nil
}

// UpdateDraftTool replaces a draft's content and/or metadata.
type UpdateDraftTool struct {
	drafts services.DraftService
}

// NewUpdateDraftTool creates a new update_draft executor.
func NewUpdateDraftTool(drafts services.DraftService) *UpdateDraftTool {
	return &UpdateDraftTool{drafts: drafts}
}

func (t *UpdateDraftTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	var args UpdateDraftArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}

	view, err := t.drafts.Update(ctx, uuid.MustParse(args.DraftID), &services.UpdateDraftRequest{
		Content:  args.Content,
		Format:   "markdown",
		Metadata: args.Metadata,
	}, models.ActorAgent)
	if err != nil {
		return nil, err
	}

	return draftSummary(view, "Draft updated."), nil
}

// GenerateFromDraftTool makes sure a draft's file exists.
type GenerateFromDraftTool struct {
	drafts services.DraftService
}

// NewGenerateFromDraftTool creates a new generate_from_draft executor.
func NewGenerateFromDraftTool(drafts services.DraftService) *GenerateFromDraftTool {
	return &GenerateFromDraftTool{drafts: drafts}
}

func (t *GenerateFromDraftTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	var args GenerateDraftArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}

	view, err := t.drafts.Generate(ctx, uuid.MustParse(args.DraftID))
	if err != nil {
		return nil, err
	}

	return draftSummary(view, "Document generated."), nil
}

func draftSummary(view *services.DraftView, message string) map[string]interface{} {
	tables := 0
	for _, s := range view.Content.Sections {
		if s.Table != nil {
			tables++
		}
	}

	fields := map[string]interface{}{
		"draft_id":    view.ID.String(),
		"title":       view.Title,
		"status":      string(view.Status),
		"file_path":   view.AbsolutePath,
		"file_exists": view.FileExists,
		"sections":    len(view.Content.Sections),
		"tables":      tables,
	}
	if view.Content.Warnings > 0 {
		fields["parse_warnings"] = view.Content.Warnings
	}
	if message != "" {
		fields["message"] = message
	}
	return successPayload(fields)
}
