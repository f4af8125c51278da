package trash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/babarot/saferm/internal/utils/fs"
)

const (
	filesDirname = "files"
	infoDirname  = "info"

	// owner rwx, group rwx, others may only traverse
	dirPerm os.FileMode = 0771
)

// Layout is the on-disk shape of a trash root:
//
//	<root>/files/<identity>   payloads
//	<root>/info/<identity>    metadata records
type Layout struct {
	Root  string
	Files string
	Info  string
}

// NewLayout returns the layout rooted at root, which must be absolute
func NewLayout(root string) (Layout, error) {
	if !filepath.IsAbs(root) {
		return Layout{}, newError("init", root, ErrInitialization, errors.New("trash root must be an absolute path"))
	}
	root = filepath.Clean(root)
	return Layout{
		Root:  root,
		Files: filepath.Join(root, filesDirname),
		Info:  filepath.Join(root, infoDirname),
	}, nil
}

// EnsureInitialized creates the root and its files and info directories
// when missing. Calling it on an initialized root is a no-op.
func (l Layout) EnsureInitialized() error {
	for _, dir := range []string{l.Root, l.Files, l.Info} {
		if err := ensureDir(dir); err != nil {
			return newError("init", dir, ErrInitialization, err)
		}
	}
	return nil
}

func ensureDir(dir string) error {
	fi, err := os.Stat(dir)
	switch {
	case err == nil:
		if !fi.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	case !os.IsNotExist(err):
		return err
	}

	// missing parents of a configured root get ordinary permissions
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return err
	}
	if err := os.Mkdir(dir, dirPerm); err != nil {
		return err
	}
	// Mkdir is subject to umask
	return os.Chmod(dir, dirPerm)
}

// Resolve returns the layout of the real location of the root, with
// every symlink in its path evaluated. The root must exist.
func (l Layout) Resolve() (Layout, error) {
	resolved, err := filepath.EvalSymlinks(l.Root)
	if err != nil {
		return Layout{}, newError("init", l.Root, ErrInitialization, err)
	}
	return NewLayout(resolved)
}

// PayloadPath returns the absolute path of the payload for id
func (l Layout) PayloadPath(id string) string {
	return filepath.Join(l.Files, id)
}

// InfoPath returns the absolute path of the metadata record for id
func (l Layout) InfoPath(id string) string {
	return filepath.Join(l.Info, id)
}

// Contains reports whether path is the trash root or anything inside it.
// Symlinks are resolved on both sides, so a root reached through a link
// still covers its real location.
func (l Layout) Contains(path string) bool {
	return fs.IsWithin(l.realRoot(), canonical(path))
}

// Overlaps reports whether path is inside the trash root or the root is
// inside path. Trashing such a path would move the store into itself.
func (l Layout) Overlaps(path string) bool {
	root, p := l.realRoot(), canonical(path)
	return fs.IsWithin(root, p) || fs.IsWithin(p, root)
}

func (l Layout) realRoot() string {
	if resolved, err := filepath.EvalSymlinks(l.Root); err == nil {
		return resolved
	}
	return canonical(l.Root)
}

// canonical resolves the parent directories of path, keeping the last
// element so a symlink names itself. Paths whose parent does not exist
// are only cleaned.
func canonical(path string) string {
	if c, err := fs.Canonical(path); err == nil {
		return c
	}
	return filepath.Clean(path)
}

// validIdentity rejects anything that could escape the files or info directory
func validIdentity(id string) bool {
	return id != "" && id != "." && id != ".." &&
		!strings.HasPrefix(id, ".") &&
		!strings.ContainsAny(id, `/\`)
}
