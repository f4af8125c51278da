package fs

import (
	"path/filepath"
	"strings"
)

// UnsafeReason explains why path must never be removed, or returns "".
// The raw argument is inspected so that "." and ".." are caught before
// they are cleaned away.
func UnsafeReason(path string) string {
	switch {
	case strings.TrimSpace(path) == "":
		return "empty path"
	case strings.HasPrefix(path, "//"):
		return "path names the root directory"
	}
	switch filepath.Base(path) {
	case ".", "..":
		return "\".\" and \"..\" may not be removed"
	}
	if filepath.Clean(path) == string(filepath.Separator) {
		return "path names the root directory"
	}
	return ""
}

// IsWithin reports whether path is root itself or lies below it.
// Both paths are expected to be absolute.
func IsWithin(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Canonical makes path absolute and resolves symlinks in its parent
// directories. The last element is kept as is so that a symlink names
// itself rather than its target.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir, base := filepath.Split(abs)
	if base == "" {
		return abs, nil
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolved, base), nil
}
