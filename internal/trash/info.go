package trash

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/babarot/saferm/internal/utils/fs"
)

const (
	infoHeader = "[TRASH INFO]"

	keyOrigin       = "ORIGIN"
	keyDeletionDate = "DELETION DATE"
	keyTrashName    = "TRASH_NAME"

	// dateLayout renders like "Sun Oct 18 14:03:09 2026"
	dateLayout = time.ANSIC
)

// Info is the metadata record stored at info/<identity>. It is written
// once, before the payload exists, and never modified afterwards.
type Info struct {
	// Identity is "<hash>_<unix seconds>", optionally followed by "_<n>"
	Identity string

	// Origin is the absolute path the file had before it was trashed
	Origin string

	// DeletedAt is when the file was trashed, second precision
	DeletedAt time.Time

	// TrashName is the absolute path of the payload under files/
	TrashName string
}

// Hash returns the content digest part of the identity
func (i *Info) Hash() string {
	hash, _, _ := strings.Cut(i.Identity, "_")
	return hash
}

// Name returns the base name of the original file
func (i *Info) Name() string {
	return filepath.Base(i.Origin)
}

// Save writes the record to path. The file is created exclusively: if
// something already exists at path the returned error wraps fs.ErrExist
// and nothing is written.
func (i *Info) Save(path string) error {
	for _, v := range []string{i.Origin, i.TrashName} {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("path %q contains a line break", v)
		}
	}

	content := new(strings.Builder)
	fmt.Fprintln(content, infoHeader)
	fmt.Fprintf(content, "%s: %s\n", keyOrigin, i.Origin)
	fmt.Fprintf(content, "%s: %s\n", keyDeletionDate, i.DeletedAt.Local().Format(dateLayout))
	fmt.Fprintf(content, "%s: %s\n", keyTrashName, i.TrashName)

	f, err := fs.CreateExclusive(path, 0600)
	if err != nil {
		return err
	}

	_, err = f.WriteString(content.String())
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write info file: %w", err)
	}
	return nil
}

// ParseInfo reads a metadata record. Lines before the header, blank lines
// and unknown keys are ignored.
func ParseInfo(r io.Reader) (*Info, error) {
	scanner := bufio.NewScanner(r)
	info := &Info{}
	var headerFound bool

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == infoHeader {
			headerFound = true
			continue
		}
		if !headerFound {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimPrefix(value, " ")

		switch strings.TrimSpace(key) {
		case keyOrigin:
			info.Origin = value
		case keyTrashName:
			info.TrashName = value
		case keyDeletionDate:
			date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.Local)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", keyDeletionDate, err)
			}
			info.DeletedAt = date
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading info file: %w", err)
	}

	switch {
	case !headerFound:
		return nil, fmt.Errorf("missing %s header", infoHeader)
	case info.Origin == "":
		return nil, fmt.Errorf("missing %s field", keyOrigin)
	case info.TrashName == "":
		return nil, fmt.Errorf("missing %s field", keyTrashName)
	case info.DeletedAt.IsZero():
		return nil, fmt.Errorf("missing %s field", keyDeletionDate)
	}

	return info, nil
}

// LoadInfo loads and parses the record at path; the identity is taken
// from the file name. Parse failures are reported as ErrMalformedRecord,
// open failures are returned as they are.
func LoadInfo(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := ParseInfo(f)
	if err != nil {
		return nil, newError("load", path, ErrMalformedRecord, err)
	}
	info.Identity = filepath.Base(path)
	return info, nil
}
