package trash

import (
	"fmt"
	"log/slog"

	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/gotrash/gotrash/internal/trash/xdg"
)

// MountMatcher finds the mount point that owns a path
type MountMatcher interface {
	Match(path string) (xdg.MountPoint, error)
}

// Resolver selects the trash directory for a canonical path
type Resolver struct {
	home core.Directory

	// homeDir and homeRoot are the home directory and the home trash root
	// with symlinks resolved, comparable with canonical paths
	homeDir  string
	homeRoot string

	mounts       MountMatcher
	uid          int
	homeFallback bool
}

// Resolve returns the trash directory that owns path:
//   - the home trash when path is under the home directory or on the
//     same mount as the home trash
//   - $topdir/.Trash/$uid or $topdir/.Trash-$uid of the owning mount otherwise
//
// A mount that cannot hold a trash (read-only or a pseudo filesystem)
// resolves to the home trash when fallback is enabled.
func (r *Resolver) Resolve(path string) (core.Directory, error) {
	if r.homeDir != "" && xdg.IsUnder(path, r.homeDir) {
		slog.Debug("path is under home", "path", path, "trash", r.home.Root)
		return r.home, nil
	}

	m, err := r.mounts.Match(path)
	if err != nil {
		return core.Directory{}, err
	}

	if hm, err := r.mounts.Match(r.homeRoot); err == nil && hm.Path == m.Path {
		slog.Debug("path shares the home trash mount", "path", path, "mountpoint", m.Path)
		return r.home, nil
	}

	if !m.CanHoldTrash() {
		if r.homeFallback {
			slog.Debug("mount cannot hold a trash, using home trash",
				"path", path, "mountpoint", m.Path, "fstype", m.FSType, "readonly", m.ReadOnly)
			return r.home, nil
		}
		return core.Directory{}, core.NewTrashError("resolve", path,
			fmt.Errorf("%w: %s (%s) cannot hold a trash", core.ErrNoTrashLocation, m.Path, m.FSType))
	}

	return xdg.TopDirTrash(m.Path, r.uid), nil
}
