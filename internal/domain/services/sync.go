package services

import (
	"context"
	"time"

	"github.com/ldsilvadev/mcp-word-caller/internal/domain/models"
)

// Synchronizer keeps local working files consistent with their remote copies.
type Synchronizer interface {
	// ResolvePath maps a bare filename into the managed directory; rooted paths pass through.
	ResolvePath(nameOrPath string) string

	// PullIfStale refreshes absPath from its remote copy. It returns
	// domain.ErrRemoteUnavailable only when the download fails and no local copy exists.
	PullIfStale(ctx context.Context, absPath string) error

	// Push uploads absPath, retrying while the remote reports it locked.
	Push(ctx context.Context, absPath string) (*models.RemoteCopy, error)

	// AwaitMaterialization reports whether absPath exists with non-zero size before timeout.
	AwaitMaterialization(ctx context.Context, absPath string, timeout, interval time.Duration) bool

	// OutputDir is the managed directory bare filenames resolve into.
	OutputDir() string
}
