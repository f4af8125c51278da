package trash

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/babarot/saferm/internal/utils/fs"
	"github.com/google/uuid"
)

// maxCollisions bounds the "_<n>" suffixes tried when an identity is taken
const maxCollisions = 100

// Store moves files into a trash root. A file is hashed, its metadata
// record is written, the content is copied under files/ and only then is
// the original removed.
type Store struct {
	layout  Layout
	clock   Clock
	copier  func(src, dst string) error
	remover Remover
}

type StoreOption func(*Store)

// WithClock replaces the wall clock used for identities and deletion dates
func WithClock(c Clock) StoreOption {
	return func(s *Store) {
		s.clock = c
	}
}

// WithCopier replaces the function copying the original into files/
func WithCopier(copier func(src, dst string) error) StoreOption {
	return func(s *Store) {
		s.copier = copier
	}
}

// WithRemover replaces how the original is removed after copying
func WithRemover(r Remover) StoreOption {
	return func(s *Store) {
		s.remover = r
	}
}

func NewStore(layout Layout, opts ...StoreOption) *Store {
	s := &Store{
		layout:  layout,
		clock:   RealClock{},
		copier:  fs.Copy,
		remover: OSRemover{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Layout returns the trash root layout the store writes into
func (s *Store) Layout() Layout {
	return s.layout
}

// Put trashes the file or directory at origin, which must be an absolute path.
//
// On ErrUnreadableFile, ErrProtected, ErrMetadataWrite and ErrPayloadCopy
// nothing has changed on disk. On ErrOriginRemoval the returned record is
// valid: the content is safely in the trash and also still at origin.
func (s *Store) Put(origin string) (*Info, error) {
	if !filepath.IsAbs(origin) {
		return nil, newError("trash", origin, ErrUnreadableFile, errors.New("path must be absolute"))
	}
	origin = filepath.Clean(origin)

	if s.layout.Overlaps(origin) {
		return nil, newError("trash", origin, ErrProtected, fmt.Errorf("overlaps trash root %s", s.layout.Root))
	}

	if _, err := os.Lstat(origin); err != nil {
		return nil, newError("trash", origin, ErrUnreadableFile, err)
	}

	hash, err := DigestTree(origin)
	if err != nil {
		return nil, err
	}

	info, err := s.writeInfo(hash, origin)
	if err != nil {
		return nil, err
	}
	slog.Debug("metadata written", "identity", info.Identity, "origin", origin)

	if err := s.copyPayload(origin, info.TrashName); err != nil {
		if rmErr := os.Remove(s.layout.InfoPath(info.Identity)); rmErr != nil {
			slog.Error("failed to roll back metadata record", "identity", info.Identity, "error", rmErr)
			err = errors.Join(err, fmt.Errorf("rollback: %w", rmErr))
		}
		return nil, newError("trash", origin, ErrPayloadCopy, err)
	}
	slog.Debug("payload copied", "identity", info.Identity, "payload", info.TrashName)

	if err := s.remover.RemoveAll(origin); err != nil {
		slog.Warn("payload kept in trash but origin remains", "origin", origin, "identity", info.Identity, "error", err)
		return info, newError("trash", origin, ErrOriginRemoval, err)
	}

	return info, nil
}

// writeInfo creates the metadata record under a fresh identity. The record
// is created exclusively so an existing identity is never overwritten; on a
// clash "_1", "_2", ... is appended.
func (s *Store) writeInfo(hash, origin string) (*Info, error) {
	now := s.clock.Now().Truncate(time.Second)
	base := hash + "_" + strconv.FormatInt(now.Unix(), 10)

	for n := 0; n <= maxCollisions; n++ {
		id := base
		if n > 0 {
			id = base + "_" + strconv.Itoa(n)
		}

		if _, err := os.Lstat(s.layout.PayloadPath(id)); err == nil {
			continue
		}

		info := &Info{
			Identity:  id,
			Origin:    origin,
			DeletedAt: now,
			TrashName: s.layout.PayloadPath(id),
		}
		err := info.Save(s.layout.InfoPath(id))
		if errors.Is(err, iofs.ErrExist) {
			slog.Debug("identity taken, trying next", "identity", id)
			continue
		}
		if err != nil {
			return nil, newError("trash", origin, ErrMetadataWrite, err)
		}
		return info, nil
	}

	return nil, newError("trash", origin, ErrMetadataWrite,
		fmt.Errorf("no free identity for %s after %d attempts", base, maxCollisions))
}

// copyPayload copies origin to a hidden staging name inside files/ and
// renames it into place, so a partial copy never carries an identity.
func (s *Store) copyPayload(origin, payload string) error {
	staging := filepath.Join(filepath.Dir(payload),
		"."+filepath.Base(payload)+"."+uuid.NewString()+".tmp")

	if err := s.copier(origin, staging); err != nil {
		os.RemoveAll(staging)
		return err
	}
	if err := os.Rename(staging, payload); err != nil {
		os.RemoveAll(staging)
		return err
	}
	return nil
}
