package xdg

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/moby/sys/mountinfo"
	"github.com/samber/lo"
)

// File systems that can't have trash directories
var skipFSTypes = map[string]bool{
	"proc":        true,
	"sysfs":       true,
	"devtmpfs":    true,
	"devpts":      true,
	"tmpfs":       true,
	"cgroup":      true,
	"cgroup2":     true,
	"pstore":      true,
	"securityfs":  true,
	"debugfs":     true,
	"configfs":    true,
	"fusectl":     true,
	"bpf":         true,
	"nsfs":        true,
	"efivarfs":    true,
	"hugetlbfs":   true,
	"mqueue":      true,
	"binfmt_misc": true,
	"autofs":      true,
	"tracefs":     true,
}

// MountPoint is a mounted filesystem and where it is attached
type MountPoint struct {
	// FSName is the mount source (e.g., /dev/sda1)
	FSName string

	// FSType is the filesystem type (e.g., ext4)
	FSType string

	// Path is the absolute mount path
	Path string

	// ReadOnly reports whether the mount has the "ro" option
	ReadOnly bool
}

// Contains reports whether path lies on this mount point's path hierarchy.
// The check is per path component: /mnt/data contains /mnt/data/x but
// not /mnt/database.
func (m MountPoint) Contains(path string) bool {
	return IsUnder(path, m.Path)
}

// CanHoldTrash reports whether a trash directory can live on this mount
func (m MountPoint) CanHoldTrash() bool {
	return !m.ReadOnly && !skipFSTypes[m.FSType]
}

// MountTable is an immutable snapshot of the mounted filesystems, ordered
// so that the most specific mount point comes first
type MountTable struct {
	points []MountPoint
}

// NewMountTable builds a table from points. A path mounted more than once
// keeps its last occurrence, the one that is visible in the hierarchy.
// Points are sorted by descending path length; equal lengths keep their
// original order.
func NewMountTable(points []MountPoint) *MountTable {
	last := make(map[string]int, len(points))
	for i, m := range points {
		last[filepath.Clean(m.Path)] = i
	}
	uniq := lo.Filter(points, func(m MountPoint, i int) bool {
		return last[filepath.Clean(m.Path)] == i
	})
	slices.SortStableFunc(uniq, func(a, b MountPoint) int {
		return len(b.Path) - len(a.Path)
	})
	return &MountTable{points: uniq}
}

// ProbeMounts reads the live mount table
func ProbeMounts() (*MountTable, error) {
	infos, err := mountinfo.GetMounts(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMountTableUnavailable, err)
	}
	return newMountTableFromInfo(infos), nil
}

func newMountTableFromInfo(infos []*mountinfo.Info) *MountTable {
	points := lo.Map(infos, func(info *mountinfo.Info, _ int) MountPoint {
		return MountPoint{
			FSName:   info.Source,
			FSType:   info.FSType,
			Path:     info.Mountpoint,
			ReadOnly: slices.Contains(strings.Split(info.Options, ","), "ro"),
		}
	})
	t := NewMountTable(points)
	slog.Debug("mount table loaded", "mounts", len(t.points))
	return t
}

// Match returns the most specific mount point containing path
func (t *MountTable) Match(path string) (MountPoint, error) {
	for _, m := range t.points {
		if m.Contains(path) {
			slog.Debug("found mount point", "path", path, "mountpoint", m.Path, "fstype", m.FSType)
			return m, nil
		}
	}
	return MountPoint{}, core.NewTrashError("match-mount", path, core.ErrMountPointNotFound)
}

// Points returns the mount points, most specific first
func (t *MountTable) Points() []MountPoint {
	return slices.Clone(t.points)
}

// IsUnder reports whether path equals dir or lies below it, per path component
func IsUnder(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if dir == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == dir || strings.HasPrefix(path, dir+"/")
}

// TopDirTrash returns the trash directory for a mount point's top directory:
// $topdir/.Trash/$uid when $topdir/.Trash is a valid shared trash, otherwise
// $topdir/.Trash-$uid
func TopDirTrash(topdir string, uid int) core.Directory {
	uidStr := strconv.Itoa(uid)

	var d core.Directory
	if shared := filepath.Join(topdir, ".Trash"); isValidSharedTrash(shared) {
		d = core.NewDirectory(filepath.Join(shared, uidStr))
	} else {
		d = core.NewDirectory(filepath.Join(topdir, ".Trash-"+uidStr))
	}
	d.TopDir = topdir
	return d
}

// isValidSharedTrash checks that $topdir/.Trash is a real directory with the sticky bit set
func isValidSharedTrash(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		slog.Debug("no shared trash directory", "path", path, "error", err)
		return false
	}

	// Must not be a symbolic link
	if info.Mode()&os.ModeSymlink != 0 {
		slog.Warn("shared trash is a symbolic link, ignoring", "path", path)
		return false
	}

	if !info.IsDir() {
		slog.Debug("not a directory", "path", path)
		return false
	}

	if info.Mode()&os.ModeSticky == 0 {
		slog.Warn("shared trash is missing the sticky bit, ignoring", "path", path)
		return false
	}

	return true
}
