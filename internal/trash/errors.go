package trash

import "errors"

// Error kinds. Every error returned by this package is an *Error whose Kind
// is one of these, so callers can test them with errors.Is.
var (
	// ErrInitialization means the trash root cannot be created or used
	ErrInitialization = errors.New("trash root is not usable")

	// ErrUnreadableFile means the file to trash cannot be read for hashing
	ErrUnreadableFile = errors.New("cannot read file")

	// ErrProtected means the path must never be trashed (the trash root itself, for example)
	ErrProtected = errors.New("refusing to trash protected path")

	// ErrMetadataWrite means the metadata record could not be written; nothing was changed
	ErrMetadataWrite = errors.New("cannot write metadata record")

	// ErrPayloadCopy means copying into the trash failed; the metadata record was rolled back
	ErrPayloadCopy = errors.New("cannot copy file into trash")

	// ErrOriginRemoval means the file was trashed but the original could not be removed
	ErrOriginRemoval = errors.New("trashed but cannot remove original")

	// ErrCatalogRead means the info directory cannot be enumerated
	ErrCatalogRead = errors.New("cannot read trash catalog")

	// ErrMalformedRecord means a single metadata record could not be parsed
	ErrMalformedRecord = errors.New("malformed metadata record")

	// ErrNotFound means no trash entry exists for the identity
	ErrNotFound = errors.New("no such entry in trash")

	// ErrRestoreConflict means the restore destination is occupied by different content
	ErrRestoreConflict = errors.New("destination already exists")

	// ErrRestore means the payload could not be moved back
	ErrRestore = errors.New("cannot restore")

	// ErrRemove means a trash entry or orphan could not be deleted
	ErrRemove = errors.New("cannot remove from trash")

	// ErrPurge means a path could not be deleted permanently
	ErrPurge = errors.New("cannot delete permanently")

	// ErrAborted means the user declined the confirmation prompt
	ErrAborted = errors.New("canceled by user")
)

// Error wraps an error with the operation, the path it concerns and its kind
type Error struct {
	// Op is the operation that failed (e.g., "trash", "restore", "purge")
	Op string

	// Path is the path of the file that caused the error
	Path string

	// Kind is one of the Err* values above
	Kind error

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Kind: kind,
		Err:  err,
	}
}
