package log

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/babarot/saferm/internal/config"
	"github.com/docker/go-units"
)

// RotateWriter appends to a log file. When a write would push the file
// past maxSize it is shifted to <path>.1, older backups move up by one
// and anything beyond maxFiles backups is deleted.
type RotateWriter struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	maxFiles int

	file *os.File
	size int64
}

func NewRotateWriter(path string, cfg config.LoggingConfig) (*RotateWriter, error) {
	maxSize, err := units.FromHumanSize(cfg.Rotation.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("invalid max size format: %w", err)
	}

	w := &RotateWriter{
		path:     path,
		maxSize:  maxSize,
		maxFiles: cfg.Rotation.MaxFiles,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotateWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}
	// a record larger than maxSize still goes into a fresh file
	if w.maxSize > 0 && w.size > 0 && w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotateWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotateWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	w.file = f
	w.size = fi.Size()
	return nil
}

func (w *RotateWriter) backup(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// rotate must be called with w.mu held
func (w *RotateWriter) rotate() error {
	w.file.Close()
	w.file = nil

	if w.maxFiles <= 0 {
		// no backups kept: start over
		if err := os.Remove(w.path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return err
		}
		return w.open()
	}

	if err := os.Remove(w.backup(w.maxFiles)); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return err
	}
	for n := w.maxFiles - 1; n >= 1; n-- {
		if err := os.Rename(w.backup(n), w.backup(n+1)); err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return err
		}
	}
	if err := os.Rename(w.path, w.backup(1)); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return err
	}
	return w.open()
}
