package trash

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
)

// chunkSize is how much of a file is fed into the digest per read
const chunkSize = 1024

var errNotRegular = errors.New("not a regular file")

// Digest returns the lowercase hex MD5 of the file's content. The name,
// location and timestamps of the file do not influence the result.
// Only regular files are read: opening a FIFO would block.
func Digest(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", newError("hash", path, ErrUnreadableFile, err)
	}
	if !fi.Mode().IsRegular() {
		return "", newError("hash", path, ErrUnreadableFile, fmt.Errorf("%s: %w", fi.Mode().Type(), errNotRegular))
	}

	h := md5.New()
	if err := hashFile(h, path); err != nil {
		return "", newError("hash", path, ErrUnreadableFile, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestTree is Digest for directories: entry names relative to path, their
// kinds, symlink targets and file contents are fed in lexical order. A
// symlink is digested by its target string, since it is trashed as a link.
// A regular file gets Digest(path). Devices, sockets and FIFOs at the top
// level are rejected with ErrUnreadableFile; inside a directory they are
// recorded by name only.
func DigestTree(path string) (string, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return "", newError("hash", path, ErrUnreadableFile, err)
	}
	switch {
	case fi.Mode()&iofs.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return "", newError("hash", path, ErrUnreadableFile, err)
		}
		sum := md5.Sum([]byte("L " + target))
		return hex.EncodeToString(sum[:]), nil
	case fi.Mode().IsRegular():
		return Digest(path)
	case !fi.IsDir():
		return "", newError("hash", path, ErrUnreadableFile, fmt.Errorf("%s: %w", fi.Mode().Type(), errNotRegular))
	}

	h := md5.New()
	err = filepath.WalkDir(path, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.Type()&iofs.ModeSymlink != 0:
			target, err := os.Readlink(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(h, "L %s\x00%s\x00", rel, target)
		case d.IsDir():
			fmt.Fprintf(h, "D %s\x00", rel)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			fmt.Fprintf(h, "F %s\x00%d\x00", rel, info.Size())
			return hashFile(h, p)
		default:
			fmt.Fprintf(h, "S %s\x00", rel)
		}
		return nil
	})
	if err != nil {
		return "", newError("hash", path, ErrUnreadableFile, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(h hash.Hash, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
