// Package filesync keeps local working files consistent with their remote
// copies: pull before use, push after mutation.
package filesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/repositories"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

// Config controls the synchronizer.
type Config struct {
	// OutputDir is where bare filenames resolve and downloads land.
	OutputDir string

	// LockRetryAttempts is the number of uploads tried while the remote is locked.
	LockRetryAttempts int

	// LockRetryDelay is the fixed wait between locked uploads.
	LockRetryDelay time.Duration
}

// DefaultConfig returns the standard retry policy for outputDir.
func DefaultConfig(outputDir string) Config {
	return Config{
		OutputDir:         outputDir,
		LockRetryAttempts: 3,
		LockRetryDelay:    2 * time.Second,
	}
}

// Synchronizer implements services.Synchronizer.
type Synchronizer struct {
	cfg    Config
	store  services.RemoteStore
	copies repositories.RemoteCopyRepository
	logger *slog.Logger
}

// NewSynchronizer creates a synchronizer. A nil store disables remote sync:
// pulls are no-ops and pushes fail with domain.ErrRemoteUnavailable.
func NewSynchronizer(cfg Config, store services.RemoteStore, copies repositories.RemoteCopyRepository, logger *slog.Logger) *Synchronizer {
	if cfg.LockRetryAttempts < 1 {
		cfg.LockRetryAttempts = 1
	}
	return &Synchronizer{
		cfg:    cfg,
		store:  store,
		copies: copies,
		logger: logger,
	}
}

// PullIfStale refreshes absPath from remote storage when a remote copy is
// known, or discovers one by name when no local file exists.
func (s *Synchronizer) PullIfStale(ctx context.Context, absPath string) error {
	if s.store == nil {
		return nil
	}

	name := baseName(absPath)
	rc, err := s.copies.GetByFilename(ctx, name)
	if err != nil {
		return fmt.Errorf("lookup remote copy for %s: %w", name, err)
	}
	localExists := fileExists(absPath)

	if rc != nil {
		data, err := s.store.Download(ctx, rc.RemoteID)
		if err != nil {
			if localExists {
				s.logger.Warn("remote download failed, using local copy",
					"filename", name,
					"remote_id", rc.RemoteID,
					"error", err,
				)
				return nil
			}
			return fmt.Errorf("%w: download %s: %v", domain.ErrRemoteUnavailable, name, err)
		}
		if err := writeFile(absPath, data); err != nil {
			return err
		}
		s.logger.Debug("pulled remote copy", "filename", name, "bytes", len(data))
		return nil
	}

	if localExists {
		return nil
	}

	remoteID, found, err := s.store.FindByName(ctx, name)
	if err != nil {
		s.logger.Warn("remote search failed", "filename", name, "error", err)
		return nil
	}
	if !found {
		return nil
	}

	data, err := s.store.Download(ctx, remoteID)
	if err != nil {
		return fmt.Errorf("%w: download %s: %v", domain.ErrRemoteUnavailable, name, err)
	}
	if err := writeFile(absPath, data); err != nil {
		return err
	}

	if err := s.copies.Upsert(ctx, &models.RemoteCopy{
		Filename: name,
		RemoteID: remoteID,
		MimeType: models.DocxMimeType,
	}); err != nil {
		return fmt.Errorf("record remote copy for %s: %w", name, err)
	}

	s.logger.Info("materialized remote file", "filename", name, "remote_id", remoteID)
	return nil
}

// Push uploads absPath and records the resulting remote copy. A locked
// remote is retried with a fixed delay; exhaustion yields a
// *domain.DocumentLockedError.
func (s *Synchronizer) Push(ctx context.Context, absPath string) (*models.RemoteCopy, error) {
	name := baseName(absPath)
	if s.store == nil {
		return nil, fmt.Errorf("%w: remote storage is not configured", domain.ErrRemoteUnavailable)
	}
	if !fileExists(absPath) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, absPath)
	}

	existing, err := s.copies.GetByFilename(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup remote copy for %s: %w", name, err)
	}
	existingID := ""
	if existing != nil {
		existingID = existing.RemoteID
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.LockRetryAttempts; attempt++ {
		result, err := s.store.Upload(ctx, absPath, existingID)
		if err == nil {
			return s.record(ctx, name, result)
		}
		if !errors.Is(err, domain.ErrDocumentLocked) {
			return nil, fmt.Errorf("upload %s: %w", name, err)
		}

		lastErr = err
		s.logger.Warn("remote document locked",
			"filename", name,
			"attempt", attempt,
			"max_attempts", s.cfg.LockRetryAttempts,
		)

		if attempt < s.cfg.LockRetryAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.LockRetryDelay):
			}
		}
	}

	return nil, &domain.DocumentLockedError{
		Filename: name,
		Attempts: s.cfg.LockRetryAttempts,
		Cause:    lastErr,
	}
}

func (s *Synchronizer) record(ctx context.Context, name string, result *services.UploadResult) (*models.RemoteCopy, error) {
	mimeType := result.MimeType
	if mimeType == "" {
		mimeType = models.DocxMimeType
	}

	rc := &models.RemoteCopy{
		Filename:      name,
		RemoteID:      result.RemoteID,
		ShareableLink: result.ShareableLink,
		MimeType:      mimeType,
	}
	if err := s.copies.Upsert(ctx, rc); err != nil {
		return nil, fmt.Errorf("record remote copy for %s: %w", name, err)
	}

	s.logger.Info("pushed file", "filename", name, "remote_id", rc.RemoteID)
	return rc, nil
}

// writeFile replaces path with data through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".sync-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteFile exposes the atomic replace used for pulls to callers that
// receive whole files from elsewhere (editor saves).
func WriteFile(path string, data []byte) error {
	return writeFile(path, data)
}
