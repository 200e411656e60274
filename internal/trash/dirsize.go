package trash

import (
	"bufio"
	"fmt"
	"io"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gotrash/gotrash/internal/core/stat"
	"github.com/gotrash/gotrash/internal/fs"
	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/gotrash/gotrash/internal/trash/xdg"
	"github.com/samber/lo"
)

// DirectorySizeBlocks returns the number of 512-byte blocks allocated to the
// directory at path and everything below it. Symlinks are counted, never
// followed. Entries that vanish or cannot be read during the walk are skipped.
func DirectorySizeBlocks(path string, probe stat.Probe) (uint64, error) {
	root, err := probe.Lstat(path)
	if err != nil {
		return 0, err
	}
	if !root.IsDir() {
		return 0, core.NewTrashError("dirsize", path, core.ErrNotADirectory)
	}

	var total uint64
	err = filepath.WalkDir(path, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping unreadable entry", "path", p, "error", err)
			if d != nil && d.IsDir() && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		md, err := probe.Lstat(p)
		if err != nil {
			slog.Debug("skipping entry", "path", p, "error", err)
			return nil
		}
		if md.Blocks > 0 {
			total += uint64(md.Blocks)
		}
		return nil
	})
	if err != nil {
		return 0, core.NewTrashError("dirsize", path, err)
	}
	return total, nil
}

// DirectorySize is one line of the directorysizes cache
type DirectorySize struct {
	// Name is the entry name in files/
	Name string

	// Size is the allocated size in bytes
	Size uint64

	// Mtime is the modification time of the entry's info file (Unix seconds)
	Mtime int64
}

func (s DirectorySize) String() string {
	return fmt.Sprintf("%d %d %s", s.Size, s.Mtime, xdg.EncodeName(s.Name))
}

func parseDirectorySize(line string) (DirectorySize, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return DirectorySize{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	size, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return DirectorySize{}, fmt.Errorf("invalid size: %w", err)
	}
	mtime, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return DirectorySize{}, fmt.Errorf("invalid mtime: %w", err)
	}
	name, err := xdg.DecodeName(fields[2])
	if err != nil {
		return DirectorySize{}, err
	}
	return DirectorySize{Name: name, Size: size, Mtime: mtime}, nil
}

// SizeCache maintains the directorysizes file of one trash directory.
// Updates rewrite the whole file: the entry for a name is replaced,
// entries whose files/<name> is gone are dropped, and the result is
// renamed over the old file.
type SizeCache struct {
	dir core.Directory
}

func NewSizeCache(dir core.Directory) *SizeCache {
	return &SizeCache{dir: dir}
}

// Load reads the cache. A missing file is an empty cache; malformed lines
// are ignored.
func (c *SizeCache) Load() ([]DirectorySize, error) {
	f, err := os.Open(c.dir.DirectorySizes)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, core.NewTrashError("read-sizes", c.dir.DirectorySizes, err)
	}
	defer f.Close()

	var sizes []DirectorySize
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s, err := parseDirectorySize(line)
		if err != nil {
			slog.Debug("ignoring directorysizes line", "line", line, "error", err)
			continue
		}
		sizes = append(sizes, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewTrashError("read-sizes", c.dir.DirectorySizes, err)
	}
	return sizes, nil
}

// Update records entry, replacing any previous line for the same name
func (c *SizeCache) Update(entry DirectorySize) error {
	sizes, err := c.Load()
	if err != nil {
		return err
	}

	sizes = lo.Filter(sizes, func(s DirectorySize, _ int) bool {
		return s.Name != entry.Name && exists(c.dir.FilePath(s.Name))
	})
	sizes = append(sizes, entry)

	err = fs.ReplaceFile(c.dir.DirectorySizes, 0600, func(w io.Writer) error {
		for _, s := range sizes {
			if _, err := fmt.Fprintln(w, s.String()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.NewTrashError("write-sizes", c.dir.DirectorySizes, err)
	}

	slog.Debug("directorysizes updated", "name", entry.Name, "size", entry.Size, "entries", len(sizes))
	return nil
}
