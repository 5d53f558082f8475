package services

import (
	"context"
)

// UploadResult describes a file stored remotely.
type UploadResult struct {
	RemoteID      string
	ShareableLink string
	MimeType      string
}

// RemoteStore is the remote file storage boundary.
type RemoteStore interface {
	// Upload creates a new remote file, or replaces existingRemoteID when set.
	// A locked remote file yields an error wrapping domain.ErrDocumentLocked.
	Upload(ctx context.Context, localPath, existingRemoteID string) (*UploadResult, error)
	Download(ctx context.Context, remoteID string) ([]byte, error)
	FindByName(ctx context.Context, name string) (remoteID string, found bool, err error)
}
