//go:build linux || darwin

// Package stat exposes the few lstat(2) fields the trash engine relies on.
package stat

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/gotrash/gotrash/internal/trash/core"
	"golang.org/x/sys/unix"
)

// BlockSize is the unit of Metadata.Blocks
const BlockSize = 512

// Metadata is the subset of lstat(2) output used for trashing
type Metadata struct {
	// Mode is the raw st_mode (file type and permission bits)
	Mode uint32

	// Blocks is the number of 512-byte blocks allocated
	Blocks int64

	AccessTime time.Time
	ModTime    time.Time
}

// Perm returns the permission bits including setuid, setgid and sticky
func (m Metadata) Perm() fs.FileMode {
	perm := fs.FileMode(m.Mode & 0o777)
	if m.Mode&unix.S_ISUID != 0 {
		perm |= fs.ModeSetuid
	}
	if m.Mode&unix.S_ISGID != 0 {
		perm |= fs.ModeSetgid
	}
	if m.Mode&unix.S_ISVTX != 0 {
		perm |= fs.ModeSticky
	}
	return perm
}

// IsDir reports whether the entry is a directory
func (m Metadata) IsDir() bool {
	return m.Mode&unix.S_IFMT == unix.S_IFDIR
}

// IsSymlink reports whether the entry is a symbolic link
func (m Metadata) IsSymlink() bool {
	return m.Mode&unix.S_IFMT == unix.S_IFLNK
}

// Probe reads metadata without following symbolic links
type Probe interface {
	Lstat(path string) (Metadata, error)
}

// System is the Probe backed by lstat(2)
type System struct{}

// Lstat implements Probe
func (System) Lstat(path string) (Metadata, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return Metadata{}, core.NewTrashError("lstat", path,
			fmt.Errorf("%w: %w", core.ErrStatFailed, &fs.PathError{Op: "lstat", Path: path, Err: err}))
	}
	return fromStat(&st), nil
}
