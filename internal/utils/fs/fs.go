package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"syscall"

	cp "github.com/otiai10/copy"
)

// CreateExclusive creates a new file with O_EXCL flag to ensure atomic creation.
// Returns an error wrapping fs.ErrExist if the file already exists.
func CreateExclusive(path string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
}

// CopyOptions are the otiai10/copy settings used whenever data is
// relocated: symlinks are copied as links, times and modes are kept,
// and every file is fsynced before the copy is reported done.
func CopyOptions() cp.Options {
	return cp.Options{
		OnSymlink: func(string) cp.SymlinkAction {
			return cp.Shallow
		},
		PreserveTimes: true,
		Sync:          true,
	}
}

// Copy copies a file or a directory tree from src to dst
func Copy(src, dst string) error {
	return cp.Copy(src, dst, CopyOptions())
}

// Move moves a file or directory from src to dst. rename(2) is tried first;
// when src and dst are on different devices it falls back to copy and delete.
// A failed copy is cleaned up; if the source cannot be removed after a
// successful copy both are left in place so that nothing is lost.
func Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move file: %w", err)
	}

	if err := Copy(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("failed to copy file: %w", err)
	}

	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("copied but failed to remove source: %w", err)
	}

	return nil
}

// DirSize returns the size of path in bytes; for a directory the sum of
// all regular files below it.
func DirSize(path string) (int64, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if !fi.IsDir() {
		return fi.Size(), nil
	}

	var size int64
	err = filepath.WalkDir(path, func(_ string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	return size, err
}
