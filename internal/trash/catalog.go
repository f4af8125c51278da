package trash

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/babarot/saferm/internal/utils/fs"
)

// readBatch is how many directory entries are read from info/ at a time
const readBatch = 64

// Catalog enumerates, restores and removes the entries of a trash root
type Catalog struct {
	layout Layout
}

func NewCatalog(layout Layout) *Catalog {
	return &Catalog{layout: layout}
}

// All yields every metadata record in directory order. The info directory
// is read lazily in batches and each call starts a fresh enumeration.
//
// If info/ cannot be read a single ErrCatalogRead is yielded and the
// sequence ends. A record that fails to load yields its error and
// enumeration continues with the next one.
func (c *Catalog) All() iter.Seq2[*Info, error] {
	return func(yield func(*Info, error) bool) {
		dir, err := os.Open(c.layout.Info)
		if err != nil {
			yield(nil, newError("list", c.layout.Info, ErrCatalogRead, err))
			return
		}
		defer dir.Close()

		for {
			entries, err := dir.ReadDir(readBatch)
			for _, entry := range entries {
				if !validIdentity(entry.Name()) || entry.IsDir() {
					continue
				}
				info, err := LoadInfo(filepath.Join(c.layout.Info, entry.Name()))
				if err != nil && !errors.Is(err, ErrMalformedRecord) {
					if errors.Is(err, iofs.ErrNotExist) {
						// removed while listing
						continue
					}
					err = newError("list", filepath.Join(c.layout.Info, entry.Name()), ErrMalformedRecord, err)
				}
				if !yield(info, err) {
					return
				}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, newError("list", c.layout.Info, ErrCatalogRead, err))
				return
			}
		}
	}
}

// List collects All. Malformed records are logged and skipped; only an
// unreadable info directory fails the listing.
func (c *Catalog) List() ([]*Info, error) {
	var infos []*Info
	for info, err := range c.All() {
		if errors.Is(err, ErrCatalogRead) {
			return nil, err
		}
		if err != nil {
			slog.Warn("skipping trash entry", "error", err)
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Get loads the record with the given identity
func (c *Catalog) Get(id string) (*Info, error) {
	if !validIdentity(id) {
		return nil, newError("get", id, ErrNotFound, errors.New("invalid identity"))
	}
	info, err := LoadInfo(c.layout.InfoPath(id))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, newError("get", id, ErrNotFound, nil)
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Restore moves the payload of id back to its origin, or to dst when dst
// is not empty, and then deletes the entry.
//
// An occupied destination is a ErrRestoreConflict unless it already holds
// the same content, in which case the entry is simply dropped. A failure
// to delete the record after a successful move is only logged.
func (c *Catalog) Restore(id, dst string) (*Info, error) {
	info, err := c.Get(id)
	if err != nil {
		return nil, err
	}

	payload := c.layout.PayloadPath(id)
	if _, err := os.Lstat(payload); err != nil {
		return info, newError("restore", payload, ErrRestore, err)
	}

	if dst == "" {
		dst = info.Origin
	}
	if !filepath.IsAbs(dst) {
		return info, newError("restore", dst, ErrRestore, errors.New("destination must be absolute"))
	}
	if c.layout.Contains(dst) {
		return info, newError("restore", dst, ErrProtected, fmt.Errorf("inside trash root %s", c.layout.Root))
	}

	if _, err := os.Lstat(dst); err == nil {
		if !sameContent(payload, dst) {
			return info, newError("restore", dst, ErrRestoreConflict, nil)
		}
		slog.Info("destination already holds the trashed content", "identity", id, "path", dst)
		if err := c.Remove(id); err != nil {
			return info, err
		}
		return info, nil
	} else if !errors.Is(err, iofs.ErrNotExist) {
		return info, newError("restore", dst, ErrRestore, err)
	}

	if err := fs.Move(payload, dst); err != nil {
		return info, newError("restore", dst, ErrRestore, err)
	}
	slog.Debug("payload moved back", "identity", id, "path", dst)

	if err := os.Remove(c.layout.InfoPath(id)); err != nil {
		slog.Warn("restored but failed to delete metadata record", "identity", id, "error", err)
	}
	return info, nil
}

func sameContent(a, b string) bool {
	ha, err := DigestTree(a)
	if err != nil {
		return false
	}
	hb, err := DigestTree(b)
	if err != nil {
		return false
	}
	return ha == hb
}

// Remove permanently deletes the payload and then the record of id
func (c *Catalog) Remove(id string) error {
	if !validIdentity(id) {
		return newError("remove", id, ErrNotFound, errors.New("invalid identity"))
	}
	infoPath := c.layout.InfoPath(id)
	if _, err := os.Lstat(infoPath); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return newError("remove", id, ErrNotFound, nil)
		}
		return newError("remove", infoPath, ErrRemove, err)
	}

	payload := c.layout.PayloadPath(id)
	if err := os.RemoveAll(payload); err != nil {
		return newError("remove", payload, ErrRemove, err)
	}
	if err := os.Remove(infoPath); err != nil {
		return newError("remove", infoPath, ErrRemove, err)
	}
	slog.Debug("removed from trash", "identity", id)
	return nil
}

// OrphanKind says which half of an entry is missing
type OrphanKind int

const (
	// OrphanMetadata is a record whose payload is missing
	OrphanMetadata OrphanKind = iota
	// OrphanPayload is a payload without a record
	OrphanPayload
	// OrphanStaging is a leftover from an interrupted copy
	OrphanStaging
)

func (k OrphanKind) String() string {
	switch k {
	case OrphanMetadata:
		return "metadata"
	case OrphanPayload:
		return "payload"
	case OrphanStaging:
		return "staging"
	default:
		return "unknown"
	}
}

// Orphan is one half of a broken entry
type Orphan struct {
	Kind OrphanKind
	Path string
	// Info is set for metadata orphans whose record could be parsed
	Info *Info
}

// Orphans finds records without payload, payloads without record and
// staging leftovers from interrupted copies
func (c *Catalog) Orphans() ([]Orphan, error) {
	var orphans []Orphan

	infoEntries, err := os.ReadDir(c.layout.Info)
	if err != nil {
		return nil, newError("prune", c.layout.Info, ErrCatalogRead, err)
	}
	records := make(map[string]bool, len(infoEntries))
	for _, entry := range infoEntries {
		id := entry.Name()
		if !validIdentity(id) || entry.IsDir() {
			continue
		}
		records[id] = true
		if _, err := os.Lstat(c.layout.PayloadPath(id)); errors.Is(err, iofs.ErrNotExist) {
			info, _ := LoadInfo(c.layout.InfoPath(id))
			orphans = append(orphans, Orphan{Kind: OrphanMetadata, Path: c.layout.InfoPath(id), Info: info})
		}
	}

	fileEntries, err := os.ReadDir(c.layout.Files)
	if err != nil {
		return nil, newError("prune", c.layout.Files, ErrCatalogRead, err)
	}
	for _, entry := range fileEntries {
		name := entry.Name()
		switch {
		case strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp"):
			orphans = append(orphans, Orphan{Kind: OrphanStaging, Path: filepath.Join(c.layout.Files, name)})
		case validIdentity(name) && !records[name]:
			orphans = append(orphans, Orphan{Kind: OrphanPayload, Path: c.layout.PayloadPath(name)})
		}
	}

	return orphans, nil
}

// RemoveOrphan deletes an orphan found by Orphans
func (c *Catalog) RemoveOrphan(o Orphan) error {
	// only direct children of files/ and info/ are entries
	root := c.layout.realRoot()
	switch filepath.Dir(canonical(o.Path)) {
	case filepath.Join(root, filesDirname), filepath.Join(root, infoDirname):
	default:
		return newError("prune", o.Path, ErrProtected, errors.New("not an entry of the trash root"))
	}

	if err := os.RemoveAll(o.Path); err != nil {
		return newError("prune", o.Path, ErrRemove, err)
	}
	slog.Debug("removed orphan", "kind", o.Kind, "path", o.Path)
	return nil
}
