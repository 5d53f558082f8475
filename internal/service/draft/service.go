// Package draft implements the draft lifecycle: create, update, generate
// and publish, keeping each draft's rendered file in step with its content.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/ldsilvadev/mcp-word-caller/internal/config"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/repositories"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/content"
	"github.com/ldsilvadev/mcp-word-caller/internal/service/filesync"
)

// Config controls rendering during the lifecycle.
type Config struct {
	// TemplatePath is passed to the renderer for every draft render.
	TemplatePath string

	AwaitTimeout  time.Duration
	AwaitInterval time.Duration
}

// draftService implements the DraftService interface
type draftService struct {
	drafts     repositories.DraftRepository
	txManager  repositories.TransactionManager
	renderer   services.Renderer
	sync       services.Synchronizer
	normalizer *content.Normalizer
	locks      *keyedMutex
	cfg        Config

	// unsynced holds published drafts whose local file is newer than the
	// remote copy because a push failed.
	unsyncedMu sync.Mutex
	unsynced   map[uuid.UUID]bool

	logger *slog.Logger
}

// NewService creates a new draft service
func NewService(
	drafts repositories.DraftRepository,
	txManager repositories.TransactionManager,
	renderer services.Renderer,
	sync services.Synchronizer,
	normalizer *content.Normalizer,
	cfg Config,
	logger *slog.Logger,
) services.DraftService {
	return &draftService{
		drafts:     drafts,
		txManager:  txManager,
		renderer:   renderer,
		sync:       sync,
		normalizer: normalizer,
		locks:      newKeyedMutex(),
		unsynced:   make(map[uuid.UUID]bool),
		cfg:        cfg,
		logger:     logger,
	}
}

// Create renders a new draft and persists it once the file exists.
// Nothing is stored when rendering fails.
func (s *draftService) Create(ctx context.Context, req *services.CreateDraftRequest) (*services.DraftView, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	meta := req.Metadata.Apply(models.DraftMetadata{Subject: req.Title})
	parsed, err := s.parse(ctx, req.Content, req.Format, req.Sections, meta)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	draft := &models.Draft{
		ID:             id,
		Title:          req.Title,
		Status:         models.DraftStatusDraft,
		Metadata:       meta,
		Content:        parsed,
		LocalFileRef:   Filename(req.Title, id),
		LastModifiedBy: models.ActorAgent,
	}

	absPath := s.sync.ResolvePath(draft.LocalFileRef)
	if err := s.render(ctx, absPath, parsed); err != nil {
		return nil, err
	}

	if err := s.drafts.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}

	s.logger.Info("draft created",
		"draft_id", draft.ID,
		"filename", draft.LocalFileRef,
		"sections", len(parsed.Sections),
		"parse_warnings", parsed.Warnings,
	)

	return s.view(draft), nil
}

// Get returns the draft and the state of its file without touching it.
func (s *draftService) Get(ctx context.Context, id uuid.UUID) (*services.DraftView, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(draft), nil
}

// List returns the most recently modified drafts.
func (s *draftService) List(ctx context.Context, limit int) ([]models.Draft, error) {
	if limit <= 0 || limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}
	return s.drafts.List(ctx, limit)
}

// Update replaces content (re-rendering into the same file) and/or merges
// metadata. Status is left unchanged.
func (s *draftService) Update(ctx context.Context, id uuid.UUID, req *services.UpdateDraftRequest, actor string) (*services.DraftView, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	meta := req.Metadata.Apply(draft.Metadata)

	if req.HasContent() {
		text := ""
		if req.Content != nil {
			text = *req.Content
		}
		parsed, err := s.parse(ctx, text, req.Format, req.Sections, meta)
		if err != nil {
			return nil, err
		}

		if err := s.render(ctx, s.sync.ResolvePath(draft.LocalFileRef), parsed); err != nil {
			return nil, err
		}

		err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if err := s.drafts.SetContent(txCtx, id, parsed); err != nil {
				return err
			}
			return s.drafts.Touch(txCtx, id, actor)
		})
		if err != nil {
			return nil, fmt.Errorf("store draft content: %w", err)
		}

		if err := s.pushIfPublished(ctx, draft); err != nil {
			return nil, err
		}

		s.logger.Info("draft content updated",
			"draft_id", id,
			"actor", actor,
			"sections", len(parsed.Sections),
			"parse_warnings", parsed.Warnings,
		)
	} else {
		err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			if !req.Metadata.IsEmpty() {
				if _, err := s.drafts.SetMetadata(txCtx, id, req.Metadata); err != nil {
					return err
				}
			}
			return s.drafts.Touch(txCtx, id, actor)
		})
		if err != nil {
			return nil, fmt.Errorf("store draft metadata: %w", err)
		}

		s.logger.Debug("draft metadata updated", "draft_id", id, "actor", actor)
	}

	updated, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(updated), nil
}

// Generate makes sure the draft's file exists and marks the draft
// generated. An existing file is never re-rendered.
func (s *draftService) Generate(ctx context.Context, id uuid.UUID) (*services.DraftView, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	absPath := s.sync.ResolvePath(draft.LocalFileRef)
	if !fileExists(absPath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, draft.LocalFileRef)
	}

	if next := draft.Status.Advance(models.DraftStatusGenerated); next != draft.Status {
		if err := s.drafts.SetStatus(ctx, id, next); err != nil {
			return nil, fmt.Errorf("set draft status: %w", err)
		}
		draft.Status = next
	}

	return s.view(draft), nil
}

// Publish pushes the draft's file to remote storage and marks it published.
func (s *draftService) Publish(ctx context.Context, id uuid.UUID) (*services.PublishResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	absPath := s.sync.ResolvePath(draft.LocalFileRef)
	if !fileExists(absPath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, draft.LocalFileRef)
	}

	rc, err := s.sync.Push(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("publish draft %s: %w", id, err)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.drafts.SetStatus(txCtx, id, models.DraftStatusPublished); err != nil {
			return err
		}
		return s.drafts.Touch(txCtx, id, "")
	})
	if err != nil {
		return nil, fmt.Errorf("set draft status: %w", err)
	}
	draft.Status = models.DraftStatusPublished
	s.markUnsynced(id, false)

	s.logger.Info("draft published",
		"draft_id", id,
		"remote_id", rc.RemoteID,
		"link", rc.ShareableLink,
	)

	return &services.PublishResult{Draft: s.view(draft), RemoteCopy: rc}, nil
}

// AcceptExternalSave replaces the draft's file with bytes saved by an editor.
func (s *draftService) AcceptExternalSave(ctx context.Context, id uuid.UUID, data []byte, actor string) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty document", domain.ErrValidation)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	absPath := s.sync.ResolvePath(draft.LocalFileRef)
	if err := filesync.WriteFile(absPath, data); err != nil {
		return err
	}

	if err := s.drafts.Touch(ctx, id, actor); err != nil {
		return err
	}

	s.logger.Info("external save accepted", "draft_id", id, "actor", actor, "bytes", len(data))
	return s.pushIfPublished(ctx, draft)
}

// Refresh brings a published draft's file up to date with its remote copy.
// A file left newer than the remote by a failed push is pushed instead of
// being overwritten.
func (s *draftService) Refresh(ctx context.Context, id uuid.UUID) (*services.DraftView, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusPublished {
		return s.view(draft), nil
	}

	if s.isUnsynced(id) {
		if err := s.pushIfPublished(ctx, draft); err != nil {
			return nil, err
		}
		return s.view(draft), nil
	}

	if err := s.sync.PullIfStale(ctx, s.sync.ResolvePath(draft.LocalFileRef)); err != nil {
		return nil, fmt.Errorf("refresh draft %s: %w", id, err)
	}
	return s.view(draft), nil
}

// pushIfPublished keeps the remote copy of a published draft in step with
// a local write. Callers hold the draft's lock.
func (s *draftService) pushIfPublished(ctx context.Context, draft *models.Draft) error {
	if draft.Status != models.DraftStatusPublished {
		return nil
	}

	if _, err := s.sync.Push(ctx, s.sync.ResolvePath(draft.LocalFileRef)); err != nil {
		s.markUnsynced(draft.ID, true)
		s.logger.Warn("published draft changed locally but push failed",
			"draft_id", draft.ID,
			"filename", draft.LocalFileRef,
			"error", err,
		)
		return fmt.Errorf("sync published draft %s: %w", draft.ID, err)
	}
	s.markUnsynced(draft.ID, false)
	return nil
}

func (s *draftService) markUnsynced(id uuid.UUID, pending bool) {
	s.unsyncedMu.Lock()
	defer s.unsyncedMu.Unlock()
	if pending {
		s.unsynced[id] = true
	} else {
		delete(s.unsynced, id)
	}
}

func (s *draftService) isUnsynced(id uuid.UUID) bool {
	s.unsyncedMu.Lock()
	defer s.unsyncedMu.Unlock()
	return s.unsynced[id]
}

// parse turns loose text (or explicit sections) into structured content.
func (s *draftService) parse(ctx context.Context, text, format string, sections []models.Section, meta models.DraftMetadata) (models.ParsedContent, error) {
	if len(sections) > 0 {
		return models.ParsedContent{Metadata: meta, Sections: sections}, nil
	}

	parsed, err := s.normalizer.Normalize(ctx, format, text, meta)
	if err != nil {
		return models.ParsedContent{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return parsed, nil
}

// render writes absPath and waits for the file to appear. When absPath
// already exists it also waits for the renderer to replace it.
func (s *draftService) render(ctx context.Context, absPath string, parsed models.ParsedContent) error {
	before, existed := statFile(absPath)

	if _, err := s.renderer.Render(ctx, s.cfg.TemplatePath, absPath, parsed); err != nil {
		return fmt.Errorf("render draft: %w", err)
	}

	if existed {
		timeout, interval := s.cfg.AwaitTimeout, s.cfg.AwaitInterval
		if timeout <= 0 {
			timeout = filesync.DefaultAwaitTimeout
		}
		replaced := filesync.Await(ctx, timeout, interval, func() bool {
			after, ok := statFile(absPath)
			return ok && after.size > 0 && (after.size != before.size || !after.modTime.Equal(before.modTime))
		})
		if !replaced {
			s.logger.Warn("re-render left file unchanged", "path", absPath, "timeout", timeout)
		}
	}

	if !s.sync.AwaitMaterialization(ctx, absPath, s.cfg.AwaitTimeout, s.cfg.AwaitInterval) {
		return fmt.Errorf("%w: renderer did not produce %s", domain.ErrFileNotFound, absPath)
	}
	return nil
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

func statFile(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return fileStamp{}, false
	}
	return fileStamp{size: info.Size(), modTime: info.ModTime()}, true
}

func (s *draftService) view(draft *models.Draft) *services.DraftView {
	draft.Content.Metadata = draft.Metadata
	absPath := s.sync.ResolvePath(draft.LocalFileRef)
	return &services.DraftView{
		Draft:        *draft,
		AbsolutePath: absPath,
		FileExists:   fileExists(absPath),
	}
}

func (s *draftService) validateCreateRequest(req *services.CreateDraftRequest) error {
	if req == nil {
		return errors.New("request is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxDraftTitleLength),
		),
		validation.Field(&req.Content, validation.Length(0, config.MaxDraftContentLength)),
		validation.Field(&req.Format, validation.In("markdown", "text", "html")),
	)
}

func (s *draftService) validateUpdateRequest(req *services.UpdateDraftRequest) error {
	if req == nil {
		return errors.New("request is required")
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.NilOrNotEmpty, validation.Length(0, config.MaxDraftContentLength)),
		validation.Field(&req.Format, validation.In("markdown", "text", "html")),
	)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
