// Package security confines file tool paths to a single directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideDirectory is returned for paths that escape the configured
// directory, directly or through a symlink.
var ErrOutsideDirectory = errors.New("path is outside configured directory")

// PathValidator resolves caller-supplied paths against a root directory.
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, errors.New("configured directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve configured directory: %w", err)
	}
	return &PathValidator{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute configured directory.
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve returns the absolute form of path. Relative paths are taken from
// the root. The result, with symlinks followed, must stay under the root.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	abs := filepath.Clean(path)

	if !v.within(abs) || !v.within(realPath(abs)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return abs, nil
}

// ResolveFile resolves path and requires it to name an existing regular file.
func (v *PathValidator) ResolveFile(path string) (string, error) {
	abs, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory: %s", abs)
	}
	return abs, nil
}

// within reports whether path equals the root or lies beneath it, comparing
// against both the literal and the symlink-resolved root.
func (v *PathValidator) within(path string) bool {
	for _, dir := range []string{v.root, realPath(v.root)} {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// realPath follows symlinks in the longest existing prefix of path. Output
// files that do not exist yet are judged by their parent directory.
func realPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	return filepath.Join(realPath(parent), filepath.Base(path))
}
