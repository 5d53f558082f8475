package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

// DraftService owns the draft lifecycle: create, update, generate and publish.
type DraftService interface {
	Create(ctx context.Context, req *CreateDraftRequest) (*DraftView, error)
	Get(ctx context.Context, id uuid.UUID) (*DraftView, error)
	List(ctx context.Context, limit int) ([]models.Draft, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateDraftRequest, actor string) (*DraftView, error)
	Generate(ctx context.Context, id uuid.UUID) (*DraftView, error)
	Publish(ctx context.Context, id uuid.UUID) (*PublishResult, error)

	// AcceptExternalSave replaces the draft's file with data saved by an editor.
	AcceptExternalSave(ctx context.Context, id uuid.UUID, data []byte, actor string) error

	// Refresh updates a published draft's file from its remote copy under the
	// draft's lock. Unpublished drafts are returned untouched.
	Refresh(ctx context.Context, id uuid.UUID) (*DraftView, error)
}

// CreateDraftRequest creates a draft from loose text or explicit sections.
type CreateDraftRequest struct {
	Title    string                     `json:"title"`
	Content  string                     `json:"content,omitempty"`
	Format   string                     `json:"format,omitempty"` // markdown, text or html; detected when empty
	Sections []models.Section           `json:"sections,omitempty"`
	Metadata *models.DraftMetadataPatch `json:"metadata,omitempty"`
}

// UpdateDraftRequest updates content and/or metadata. A nil Content with no
// Sections means a metadata-only update, which does not re-render.
type UpdateDraftRequest struct {
	Content  *string                    `json:"content,omitempty"`
	Format   string                     `json:"format,omitempty"`
	Sections []models.Section           `json:"sections,omitempty"`
	Metadata *models.DraftMetadataPatch `json:"metadata,omitempty"`
}

// HasContent reports whether the update replaces the draft body.
func (r *UpdateDraftRequest) HasContent() bool {
	return r != nil && (r.Content != nil || len(r.Sections) > 0)
}

// DraftView is a draft together with the state of its local file.
type DraftView struct {
	models.Draft
	AbsolutePath string `json:"absolute_path"`
	FileExists   bool   `json:"file_exists"`
}

// PublishResult is the outcome of publishing a draft.
type PublishResult struct {
	Draft      *DraftView         `json:"draft"`
	RemoteCopy *models.RemoteCopy `json:"remote_copy"`
}
