// Package gdrive stores rendered documents in a Google Drive folder.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
	"github.com/ldsilvadev/mcp-word-caller/internal/domain/services"
)

const fileFields = "id, name, mimeType, webViewLink"

// Config selects the Drive folder and sharing policy.
type Config struct {
	// CredentialsFile is a service-account JSON key.
	CredentialsFile string
	FolderID        string

	// ShareDomain grants read access to a domain; "anyone" shares publicly;
	// empty leaves permissions untouched.
	ShareDomain string
}

// Store implements services.RemoteStore on Google Drive.
type Store struct {
	files  *drive.Service
	cfg    Config
	logger *slog.Logger
}

// NewStore authenticates with the configured service account.
func NewStore(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	raw, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read drive credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}

	return NewStoreWithService(svc, cfg, logger), nil
}

// NewStoreWithService wraps an existing Drive client.
func NewStoreWithService(svc *drive.Service, cfg Config, logger *slog.Logger) *Store {
	return &Store{files: svc, cfg: cfg, logger: logger}
}

// Upload creates the file in the folder, or replaces the media of existingRemoteID.
func (s *Store) Upload(ctx context.Context, localPath, existingRemoteID string) (*services.UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	name := filepath.Base(localPath)
	var file *drive.File

	if existingRemoteID != "" {
		file, err = s.files.Files.Update(existingRemoteID, &drive.File{}).
			Media(f).
			Fields(fileFields).
			Context(ctx).
			Do()
	} else {
		meta := &drive.File{Name: name, MimeType: models.DocxMimeType}
		if s.cfg.FolderID != "" {
			meta.Parents = []string{s.cfg.FolderID}
		}
		file, err = s.files.Files.Create(meta).
			Media(f).
			Fields(fileFields).
			Context(ctx).
			Do()
	}
	if err != nil {
		if IsLocked(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrDocumentLocked, err)
		}
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	if existingRemoteID == "" {
		s.share(ctx, file.Id)
	}

	s.logger.Debug("uploaded to drive", "filename", name, "remote_id", file.Id)
	return &services.UploadResult{
		RemoteID:      file.Id,
		ShareableLink: file.WebViewLink,
		MimeType:      file.MimeType,
	}, nil
}

// share applies the configured permission. Failures only cost the link
// its reach, so they are logged.
func (s *Store) share(ctx context.Context, fileID string) {
	if s.cfg.ShareDomain == "" {
		return
	}

	perm := &drive.Permission{Role: "reader", Type: "anyone"}
	if s.cfg.ShareDomain != "anyone" {
		perm = &drive.Permission{Role: "reader", Type: "domain", Domain: s.cfg.ShareDomain}
	}

	if _, err := s.files.Permissions.Create(fileID, perm).Context(ctx).Do(); err != nil {
		s.logger.Warn("failed to share drive file", "remote_id", fileID, "error", err)
	}
}

// Download returns the content of remoteID.
func (s *Store) Download(ctx context.Context, remoteID string) ([]byte, error) {
	resp, err := s.files.Files.Get(remoteID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", remoteID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", remoteID, err)
	}
	return data, nil
}

// FindByName looks up a non-trashed file with the exact name in the folder.
func (s *Store) FindByName(ctx context.Context, name string) (string, bool, error) {
	query := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if s.cfg.FolderID != "" {
		query = fmt.Sprintf("'%s' in parents and %s", escapeQuery(s.cfg.FolderID), query)
	}

	list, err := s.files.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", false, fmt.Errorf("search drive for %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", false, nil
	}
	return list.Files[0].Id, true, nil
}

func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
