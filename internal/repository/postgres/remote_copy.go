package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/repositories"
)

// PostgresRemoteCopyRepository implements repositories.RemoteCopyRepository
type PostgresRemoteCopyRepository struct {
	pool   repositories.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewRemoteCopyRepository creates a new PostgresRemoteCopyRepository
func NewRemoteCopyRepository(config *RepositoryConfig) repositories.RemoteCopyRepository {
	return &PostgresRemoteCopyRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByFilename retrieves the remote copy for a filename
func (r *PostgresRemoteCopyRepository) GetByFilename(ctx context.Context, filename string) (*models.RemoteCopy, error) {
	query := fmt.Sprintf(`
		SELECT filename, remote_id, shareable_link, mime_type, created_at, updated_at
		FROM %s
		WHERE filename = $1
	`, r.tables.RemoteCopies)

	var rc models.RemoteCopy
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, filename).Scan(
		&rc.Filename,
		&rc.RemoteID,
		&rc.ShareableLink,
		&rc.MimeType,
		&rc.CreatedAt,
		&rc.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			// Nothing uploaded yet - not an error
			return nil, nil
		}
		return nil, fmt.Errorf("get remote copy: %w", err)
	}

	return &rc, nil
}

// Upsert creates or updates the remote copy for a filename
func (r *PostgresRemoteCopyRepository) Upsert(ctx context.Context, rc *models.RemoteCopy) error {
	now := time.Now().UTC()
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = now
	}
	rc.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (filename, remote_id, shareable_link, mime_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (filename) DO UPDATE SET
			remote_id = EXCLUDED.remote_id,
			shareable_link = EXCLUDED.shareable_link,
			mime_type = EXCLUDED.mime_type,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, updated_at
	`, r.tables.RemoteCopies)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		rc.Filename,
		rc.RemoteID,
		rc.ShareableLink,
		rc.MimeType,
		rc.CreatedAt,
		rc.UpdatedAt,
	).Scan(&rc.CreatedAt, &rc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert remote copy: %w", err)
	}

	r.logger.Debug("remote copy recorded", "filename", rc.Filename, "remote_id", rc.RemoteID)
	return nil
}

// List returns all remote copies, newest first
func (r *PostgresRemoteCopyRepository) List(ctx context.Context) ([]models.RemoteCopy, error) {
	query, args, err := psql.
		Select("filename", "remote_id", "shareable_link", "mime_type", "created_at", "updated_at").
		From(r.tables.RemoteCopies).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list remote copies query: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list remote copies: %w", err)
	}
	defer rows.Close()

	copies := []models.RemoteCopy{}
	for rows.Next() {
		var rc models.RemoteCopy
		if err := rows.Scan(&rc.Filename, &rc.RemoteID, &rc.ShareableLink, &rc.MimeType, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan remote copy: %w", err)
		}
		copies = append(copies, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remote copies: %w", err)
	}

	return copies, nil
}
