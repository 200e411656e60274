package core

import (
	"errors"
	"io/fs"
	"os"
)

// Errors that can be returned while trashing a path
var (
	// ErrNoFileName is returned when no final path component can be extracted (e.g. "/")
	ErrNoFileName = errors.New("failed to obtain file name")

	// ErrMountTableUnavailable is returned when the system mount table cannot be read
	ErrMountTableUnavailable = errors.New("mount table unavailable")

	// ErrMountPointNotFound is returned when no mount point owns a path
	ErrMountPointNotFound = errors.New("mount point not found")

	// ErrNotADirectory is returned when a directory size is requested for a non-directory
	ErrNotADirectory = errors.New("not a directory")

	// ErrEncoding is returned when a path cannot be converted to or from its text representation
	ErrEncoding = errors.New("encoding failure")

	// ErrStatFailed is returned when the metadata of a path cannot be read
	ErrStatFailed = errors.New("stat failed")

	// ErrNoTrashLocation is returned when no trash directory can hold a path
	ErrNoTrashLocation = errors.New("no usable trash directory")

	// ErrInvalidTrash is returned when a trash directory is missing its layout
	ErrInvalidTrash = errors.New("invalid trash directory")
)

// TrashError wraps an error with the operation and the path it failed on
type TrashError struct {
	// Op is the operation that failed (e.g., "canonicalize", "write-info", "move")
	Op string

	// Path is the path of the file that caused the error
	Path string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *TrashError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *TrashError) Unwrap() error {
	return e.Err
}

// NewTrashError creates a new TrashError
func NewTrashError(op, path string, err error) error {
	return &TrashError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Kind classifies an error returned by the trash engine
type Kind int

const (
	KindUnknown Kind = iota
	KindIoFailure
	KindNameResolutionFailure
	KindMountTableUnavailable
	KindMountPointNotFound
	KindNotADirectory
	KindEncodingFailure
	KindStatFailed
)

func (k Kind) String() string {
	switch k {
	case KindIoFailure:
		return "IoFailure"
	case KindNameResolutionFailure:
		return "NameResolutionFailure"
	case KindMountTableUnavailable:
		return "MountTableUnavailable"
	case KindMountPointNotFound:
		return "MountPointNotFound"
	case KindNotADirectory:
		return "NotADirectory"
	case KindEncodingFailure:
		return "EncodingFailure"
	case KindStatFailed:
		return "StatFailed"
	default:
		return "Unknown"
	}
}

// KindOf returns the kind of err. Sentinels take precedence over the
// generic I/O classification, so a TrashError wrapping ErrStatFailed is a
// StatFailed, not an IoFailure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNoFileName):
		return KindNameResolutionFailure
	case errors.Is(err, ErrMountTableUnavailable):
		return KindMountTableUnavailable
	case errors.Is(err, ErrMountPointNotFound):
		return KindMountPointNotFound
	case errors.Is(err, ErrNotADirectory):
		return KindNotADirectory
	case errors.Is(err, ErrEncoding):
		return KindEncodingFailure
	case errors.Is(err, ErrStatFailed):
		return KindStatFailed
	}

	var te *TrashError
	var pe *fs.PathError
	var le *os.LinkError
	if errors.As(err, &te) || errors.As(err, &pe) || errors.As(err, &le) {
		return KindIoFailure
	}
	return KindUnknown
}

// IsNoFileName returns true if the error is ErrNoFileName
func IsNoFileName(err error) bool {
	return errors.Is(err, ErrNoFileName)
}

// IsMountPointNotFound returns true if the error is ErrMountPointNotFound
func IsMountPointNotFound(err error) bool {
	return errors.Is(err, ErrMountPointNotFound)
}

// IsNotADirectory returns true if the error is ErrNotADirectory
func IsNotADirectory(err error) bool {
	return errors.Is(err, ErrNotADirectory)
}
