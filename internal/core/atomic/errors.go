package atomic

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound indicates that the source file does not exist
	ErrSourceNotFound = errors.New("source file not found")

	// ErrInvalidPath indicates an empty source or destination
	ErrInvalidPath = errors.New("invalid path specified")

	// ErrDuplicated indicates that a copy landed at the destination but the
	// source could not be deleted, so both copies are on disk
	ErrDuplicated = errors.New("source and destination both exist")
)

// MoveError represents an error that occurred during a move operation
type MoveError struct {
	Op  string // Operation being performed
	Src string // Source path
	Dst string // Destination path
	Err error  // Underlying error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move operation failed: %s from %q to %q: %v", e.Op, e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// NewMoveError creates a new MoveError
func NewMoveError(op, src, dst string, err error) error {
	return &MoveError{
		Op:  op,
		Src: src,
		Dst: dst,
		Err: err,
	}
}

// IsDuplicated checks if the error indicates that the data now exists at
// both the source and the destination
func IsDuplicated(err error) bool {
	return errors.Is(err, ErrDuplicated)
}
