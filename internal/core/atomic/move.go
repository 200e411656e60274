package atomic

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/gotrash/gotrash/internal/core/stat"
	cp "github.com/otiai10/copy"
)

// ErrDestinationExists indicates that the destination path already exists
var ErrDestinationExists = fmt.Errorf("destination already exists: %w", fs.ErrExist)

// rename and removeAll are variables so tests can force the copy fallback
// and simulate a source that cannot be deleted.
var (
	rename    = os.Rename
	removeAll = os.RemoveAll
)

// MoveOptions specifies options for move operations
type MoveOptions struct {
	// AllowCrossDev enables the copy-and-delete fallback when rename(2) fails
	AllowCrossDev bool

	// Probe reads the source metadata that is re-applied onto a copy.
	// Defaults to stat.System.
	Probe stat.Probe
}

// Move relocates src to dst. rename(2) is tried first; if it fails for any
// reason and AllowCrossDev is set, src is copied to dst with its mode bits
// and timestamps, then deleted.
func Move(src, dst string, opts MoveOptions) error {
	if opts.Probe == nil {
		opts.Probe = stat.System{}
	}

	// 1. Validate paths and capture the source metadata
	md, err := validatePaths(src, dst, opts.Probe)
	if err != nil {
		return err
	}

	// 2. Try a simple rename
	err = rename(src, dst)
	if err == nil {
		slog.Debug("file renamed", "from", src, "to", dst)
		return nil
	}
	if !opts.AllowCrossDev {
		return NewMoveError("rename", src, dst, err)
	}

	// 3. Fall back to copy and delete
	slog.Debug("rename failed, falling back to copy-and-delete", "from", src, "to", dst, "error", err)
	return copyAndDelete(src, dst, md)
}

// copyAndDelete copies a file or directory, re-applies the source's mode
// bits and timestamps on the copy, and then deletes the original
func copyAndDelete(src, dst string, md stat.Metadata) error {
	opts := cp.Options{
		OnSymlink: func(string) cp.SymlinkAction {
			return cp.Shallow // copy links as links
		},
		PreserveTimes: true,
		Sync:          true,
	}

	if err := cp.Copy(src, dst, opts); err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			slog.Warn("failed to clean up partial copy", "path", dst, "error", rmErr)
		}
		return NewMoveError("copy", src, dst, err)
	}

	if err := restoreAttributes(dst, md); err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			slog.Warn("failed to clean up copy", "path", dst, "error", rmErr)
		}
		return NewMoveError("preserve", src, dst, err)
	}

	// Both copies stay on disk if the source cannot be removed
	if err := removeAll(src); err != nil {
		return NewMoveError("remove_source", src, dst, fmt.Errorf("%w: %w", ErrDuplicated, err))
	}

	slog.Debug("file copied and source removed", "from", src, "to", dst)
	return nil
}

// restoreAttributes applies the permission bits and access/modification
// times captured before the copy. Symbolic links are left alone since
// chmod and utimes would follow them.
func restoreAttributes(path string, md stat.Metadata) error {
	if md.IsSymlink() {
		return nil
	}
	if err := os.Chmod(path, md.Perm()); err != nil {
		return err
	}
	return os.Chtimes(path, md.AccessTime, md.ModTime)
}

// validatePaths performs basic path validation and returns the source metadata
func validatePaths(src, dst string, probe stat.Probe) (stat.Metadata, error) {
	if src == "" || dst == "" {
		return stat.Metadata{}, ErrInvalidPath
	}

	md, err := probe.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stat.Metadata{}, NewMoveError("validate", src, dst, ErrSourceNotFound)
		}
		return stat.Metadata{}, NewMoveError("validate", src, dst, err)
	}

	if _, err := os.Lstat(dst); err == nil {
		return stat.Metadata{}, NewMoveError("validate", src, dst, ErrDestinationExists)
	}

	return md, nil
}
