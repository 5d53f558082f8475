package filesync

import (
	"path/filepath"
	"regexp"
	"strings"
)

var windowsDrivePattern = regexp.MustCompile(`^[a-zA-Z]:[\\/]`)

// isRooted reports whether p carries a root marker: an absolute POSIX path,
// a Windows drive letter or a UNC prefix.
func isRooted(p string) bool {
	return filepath.IsAbs(p) ||
		strings.HasPrefix(p, "/") ||
		strings.HasPrefix(p, `\\`) ||
		windowsDrivePattern.MatchString(p)
}

// baseName returns the last element of p, splitting on both separators so
// Windows paths reported by the renderer resolve on any host.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// ResolvePath maps a bare filename or relative path into the output
// directory. Rooted paths are returned unchanged.
func (s *Synchronizer) ResolvePath(nameOrPath string) string {
	nameOrPath = strings.TrimSpace(nameOrPath)
	if nameOrPath == "" || isRooted(nameOrPath) {
		return nameOrPath
	}
	return filepath.Join(s.cfg.OutputDir, nameOrPath)
}

// OutputDir is the managed directory bare filenames resolve into.
func (s *Synchronizer) OutputDir() string {
	return s.cfg.OutputDir
}
