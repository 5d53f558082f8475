package filesync

import (
	"context"
	"os"
	"time"
)

// Default materialization timings.
const (
	DefaultAwaitTimeout  = 5 * time.Second
	DefaultAwaitInterval = 500 * time.Millisecond
)

// Await polls cond every interval until it holds, timeout elapses or ctx is
// done. cond is checked once immediately.
func Await(ctx context.Context, timeout, interval time.Duration, cond func() bool) bool {
	if cond() {
		return true
	}
	if interval <= 0 {
		interval = DefaultAwaitInterval
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return cond()
		case <-ticker.C:
			if cond() {
				return true
			}
		}
	}
}

// AwaitMaterialization waits for absPath to exist with non-zero size.
// Zero durations select the defaults.
func (s *Synchronizer) AwaitMaterialization(ctx context.Context, absPath string, timeout, interval time.Duration) bool {
	if timeout <= 0 {
		timeout = DefaultAwaitTimeout
	}
	if interval <= 0 {
		interval = DefaultAwaitInterval
	}

	ok := Await(ctx, timeout, interval, func() bool {
		return fileMaterialized(absPath)
	})
	if !ok {
		s.logger.Warn("file did not materialize", "path", absPath, "timeout", timeout)
	}
	return ok
}

func fileMaterialized(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
