package repositories

import (
	"context"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

// RemoteCopyRepository stores the filename → remote copy mapping.
type RemoteCopyRepository interface {
	// GetByFilename returns nil, nil when no remote copy is known.
	GetByFilename(ctx context.Context, filename string) (*models.RemoteCopy, error)

	// Upsert creates or replaces the entry for copy.Filename.
	Upsert(ctx context.Context, copy *models.RemoteCopy) error

	// List returns all known remote copies, newest first.
	List(ctx context.Context) ([]models.RemoteCopy, error)
}
