package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/repositories"
)

var draftColumns = []string{
	"id", "title", "status", "metadata", "content",
	"local_file_ref", "last_modified_by", "created_at", "last_modified_at",
}

// PostgresDraftRepository implements repositories.DraftRepository
type PostgresDraftRepository struct {
	pool   repositories.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDraftRepository creates a new PostgresDraftRepository
func NewDraftRepository(config *RepositoryConfig) repositories.DraftRepository {
	return &PostgresDraftRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new draft
func (r *PostgresDraftRepository) Create(ctx context.Context, draft *models.Draft) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}
	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.LastModifiedAt = now

	metadata, err := json.Marshal(draft.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	content, err := json.Marshal(draft.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, status, metadata, content, local_file_ref, last_modified_by, created_at, last_modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Drafts)

	executor := GetExecutor(ctx, r.pool)
	_, err = executor.Exec(ctx, query,
		draft.ID,
		draft.Title,
		string(draft.Status),
		metadata,
		content,
		draft.LocalFileRef,
		draft.LastModifiedBy,
		draft.CreatedAt,
		draft.LastModifiedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("create draft %s: duplicate id", draft.ID)
		}
		return fmt.Errorf("create draft: %w", err)
	}

	r.logger.Debug("draft created", "draft_id", draft.ID, "title", draft.Title)
	return nil
}

// GetByID retrieves a draft by id
func (r *PostgresDraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, strings.Join(draftColumns, ", "), r.tables.Drafts)

	executor := GetExecutor(ctx, r.pool)
	draft, err := scanDraft(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, notFound("draft", id.String())
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	return draft, nil
}

// List returns drafts ordered by most recent modification
func (r *PostgresDraftRepository) List(ctx context.Context, limit int) ([]models.Draft, error) {
	builder := psql.Select(draftColumns...).
		From(r.tables.Drafts).
		OrderBy("last_modified_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list drafts query: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []models.Draft{}
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, *draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}

	return drafts, nil
}

// SetMetadata merges the patch into the stored metadata using a shallow jsonb merge.
func (r *PostgresDraftRepository) SetMetadata(ctx context.Context, id uuid.UUID, patch *models.DraftMetadataPatch) (*models.Draft, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode metadata patch: %w", err)
	}

	query, args, err := psql.Update(r.tables.Drafts).
		Set("metadata", sq.Expr("metadata || ?::jsonb", patchJSON)).
		Set("last_modified_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(draftColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build set metadata query: %w", err)
	}

	executor := GetExecutor(ctx, r.pool)
	draft, err := scanDraft(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, notFound("draft", id.String())
		}
		return nil, fmt.Errorf("set draft metadata: %w", err)
	}

	return draft, nil
}

// SetContent replaces the structured content and the metadata it carries
func (r *PostgresDraftRepository) SetContent(ctx context.Context, id uuid.UUID, content models.ParsedContent) error {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	metadataJSON, err := json.Marshal(content.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $2, metadata = $3, last_modified_at = $4
		WHERE id = $1
	`, r.tables.Drafts)

	return r.execOne(ctx, id, "set draft content", query, id, contentJSON, metadataJSON, time.Now().UTC())
}

// Touch bumps last_modified_at
func (r *PostgresDraftRepository) Touch(ctx context.Context, id uuid.UUID, actor string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET last_modified_at = $2,
			last_modified_by = COALESCE(NULLIF($3, ''), last_modified_by)
		WHERE id = $1
	`, r.tables.Drafts)

	return r.execOne(ctx, id, "touch draft", query, id, time.Now().UTC(), actor)
}

// SetStatus stores the draft status
func (r *PostgresDraftRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.DraftStatus) error {
	if !status.Valid() {
		return fmt.Errorf("set draft status: invalid status %q", status)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, last_modified_at = $3
		WHERE id = $1
	`, r.tables.Drafts)

	return r.execOne(ctx, id, "set draft status", query, id, string(status), time.Now().UTC())
}

// execOne runs an UPDATE that must affect exactly one draft.
func (r *PostgresDraftRepository) execOne(ctx context.Context, id uuid.UUID, op, query string, args ...interface{}) error {
	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("draft", id.String())
	}
	return nil
}

// scanDraft reads one row in draftColumns order.
func scanDraft(row pgx.Row) (*models.Draft, error) {
	var (
		draft    models.Draft
		status   string
		metadata []byte
		content  []byte
	)

	err := row.Scan(
		&draft.ID,
		&draft.Title,
		&status,
		&metadata,
		&content,
		&draft.LocalFileRef,
		&draft.LastModifiedBy,
		&draft.CreatedAt,
		&draft.LastModifiedAt,
	)
	if err != nil {
		return nil, err
	}

	draft.Status = models.DraftStatus(status)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &draft.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &draft.Content); err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
	}
	if draft.Content.Sections == nil {
		draft.Content.Sections = []models.Section{}
	}

	return &draft, nil
}
