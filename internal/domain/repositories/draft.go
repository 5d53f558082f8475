package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

// DraftRepository is the durable record of drafts.
// Writes are last-write-wins; serialization per draft belongs to the lifecycle layer.
type DraftRepository interface {
	// Create persists a new draft. ID and timestamps are assigned when zero.
	Create(ctx context.Context, draft *models.Draft) error

	// GetByID returns the draft or an error wrapping domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Draft, error)

	// List returns the most recently modified drafts.
	List(ctx context.Context, limit int) ([]models.Draft, error)

	// SetMetadata merges the non-nil patch fields into the stored metadata.
	SetMetadata(ctx context.Context, id uuid.UUID, patch *models.DraftMetadataPatch) (*models.Draft, error)

	// SetContent replaces the stored structured content.
	SetContent(ctx context.Context, id uuid.UUID, content models.ParsedContent) error

	// Touch updates last_modified_at (and last_modified_by when actor is set).
	Touch(ctx context.Context, id uuid.UUID, actor string) error

	// SetStatus stores the lifecycle status.
	SetStatus(ctx context.Context, id uuid.UUID, status models.DraftStatus) error
}
