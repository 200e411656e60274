package trash

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gotrash/gotrash/internal/core/atomic"
	"github.com/gotrash/gotrash/internal/core/stat"
	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/gotrash/gotrash/internal/trash/xdg"
)

// State is a step of a trashing request
type State int

const (
	StateCanonicalizing State = iota
	StateResolving
	StateNaming
	StateWritingInfo
	StateMoving
	StateSizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCanonicalizing:
		return "canonicalize"
	case StateResolving:
		return "resolve"
	case StateNaming:
		return "name"
	case StateWritingInfo:
		return "write-info"
	case StateMoving:
		return "move"
	case StateSizing:
		return "size"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Entry describes one trashed path
type Entry struct {
	// OriginalPath is the canonical path the entry was trashed from
	OriginalPath string

	// Name is the entry name in files/, unique within that directory
	Name string

	// DeletedAt is the deletion time written to the info file
	DeletedAt time.Time

	// TrashPath is files/<Name>
	TrashPath string

	// InfoPath is info/<Name>.trashinfo
	InfoPath string

	// IsDir reports whether the entry is a directory
	IsDir bool

	// Blocks is the allocated size in 512-byte blocks, set for directories
	Blocks uint64

	// Trash is the trash directory holding the entry
	Trash core.Directory
}

// Size returns the allocated size of a directory entry in bytes
func (e *Entry) Size() uint64 {
	return e.Blocks * stat.BlockSize
}

// MoveFunc relocates src to dst
type MoveFunc func(src, dst string) error

// Engine moves paths into the trash directory that owns them
type Engine struct {
	resolver   *Resolver
	probe      stat.Probe
	clock      func() time.Time
	formatter  xdg.TimeFormatter
	ensureDirs bool
	move       MoveFunc
}

// Option configures an Engine
type Option func(*Engine)

// WithProbe sets the metadata probe. Defaults to stat.System.
func WithProbe(p stat.Probe) Option {
	return func(e *Engine) {
		e.probe = p
	}
}

// WithClock sets the source of deletion times
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.clock = now
	}
}

// WithFormatter sets how DeletionDate is rendered
func WithFormatter(f xdg.TimeFormatter) Option {
	return func(e *Engine) {
		e.formatter = f
	}
}

// WithHomeFallback enables the home trash for paths whose mount cannot
// hold a trash directory
func WithHomeFallback(enabled bool) Option {
	return func(e *Engine) {
		e.resolver.homeFallback = enabled
	}
}

// WithEnsureDirs creates missing trash directories instead of failing
func WithEnsureDirs(enabled bool) Option {
	return func(e *Engine) {
		e.ensureDirs = enabled
	}
}

// WithUID sets the user id used in $topdir trash names
func WithUID(uid int) Option {
	return func(e *Engine) {
		e.resolver.uid = uid
	}
}

// WithMover replaces the move primitive
func WithMover(m MoveFunc) Option {
	return func(e *Engine) {
		e.move = m
	}
}

// New creates an Engine. home is the home trash, homeDir the user's home
// directory and mounts the mount table used for paths outside of it.
func New(home core.Directory, homeDir string, mounts MountMatcher, opts ...Option) *Engine {
	e := &Engine{
		resolver: &Resolver{
			home:     home,
			homeDir:  resolveLinks(homeDir),
			homeRoot: resolveLinks(home.Root),
			mounts:   mounts,
			uid:      os.Getuid(),
		},
		probe:     stat.System{},
		clock:     time.Now,
		formatter: xdg.LocalTime{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.move == nil {
		e.move = func(src, dst string) error {
			return atomic.Move(src, dst, atomic.MoveOptions{AllowCrossDev: true, Probe: e.probe})
		}
	}
	return e
}

// Put moves path into its trash directory. The info file is written before
// the content is moved; a failure in any step stops the request. A sizing
// failure is reported together with the entry, which is already in the trash.
func (e *Engine) Put(path string) (*Entry, error) {
	state := StateCanonicalizing
	fail := func(err error) error {
		slog.Debug("trashing failed", "path", path, "state", state, "error", err)
		return core.NewTrashError(state.String(), path, err)
	}

	canonical, err := Canonicalize(path)
	if err != nil {
		return nil, fail(err)
	}
	md, err := e.probe.Lstat(canonical)
	if err != nil {
		return nil, fail(err)
	}

	state = StateResolving
	dir, err := e.prepare(canonical)
	if err != nil {
		return nil, fail(err)
	}

	state = StateNaming
	base := filepath.Base(canonical)
	name := base
	if exists(dir.FilePath(name)) {
		name = UniqueName(base, dir.Files)
	}

	state = StateWritingInfo
	deletedAt := e.clock()
	infoPath, err := xdg.WriteInfo(canonical, name, dir, deletedAt, e.formatter)
	for errors.Is(err, iofs.ErrExist) {
		// an orphaned or concurrently created info file holds the name
		name = uniqueName(base, func(n string) bool {
			return exists(dir.FilePath(n)) || exists(dir.InfoPath(n))
		})
		slog.Debug("info file name taken, trying next", "name", name)
		infoPath, err = xdg.WriteInfo(canonical, name, dir, deletedAt, e.formatter)
	}
	if err != nil {
		return nil, fail(err)
	}

	state = StateMoving
	dst := dir.FilePath(name)
	if err := e.move(canonical, dst); err != nil {
		if !atomic.IsDuplicated(err) {
			if rerr := os.Remove(infoPath); rerr != nil {
				slog.Warn("failed to remove info file", "path", infoPath, "error", rerr)
			}
		}
		return nil, fail(err)
	}

	entry := &Entry{
		OriginalPath: canonical,
		Name:         name,
		DeletedAt:    deletedAt,
		TrashPath:    dst,
		InfoPath:     infoPath,
		IsDir:        md.IsDir(),
		Trash:        dir,
	}

	if entry.IsDir {
		state = StateSizing
		if err := e.recordSize(entry); err != nil {
			return entry, fail(err)
		}
	}

	state = StateDone
	slog.Debug("trashed", "path", canonical, "name", name, "trash", dir.Root, "state", state)
	return entry, nil
}

// PutAll trashes paths one after another. A failing path does not stop the
// batch; the result holds one error, nil on success, per path.
func (e *Engine) PutAll(paths []string) []error {
	errs := make([]error, len(paths))
	for i, path := range paths {
		_, errs[i] = e.Put(path)
	}
	return errs
}

// Resolve returns the trash directory that would receive path
func (e *Engine) Resolve(path string) (core.Directory, error) {
	canonical, err := Canonicalize(path)
	if err != nil {
		return core.Directory{}, err
	}
	return e.resolver.Resolve(canonical)
}

// prepare resolves the trash directory for path and makes sure it is usable
func (e *Engine) prepare(path string) (core.Directory, error) {
	dir, err := e.resolver.Resolve(path)
	if err != nil {
		return core.Directory{}, err
	}

	err = e.check(dir)
	if err != nil && !dir.Home && e.resolver.homeFallback {
		slog.Debug("trash directory unusable, using home trash", "trash", dir.Root, "error", err)
		dir = e.resolver.home
		err = e.check(dir)
	}
	if err != nil {
		return core.Directory{}, err
	}
	return dir, nil
}

func (e *Engine) check(dir core.Directory) error {
	if e.ensureDirs {
		return dir.Ensure()
	}
	return dir.Validate()
}

func (e *Engine) recordSize(entry *Entry) error {
	blocks, err := DirectorySizeBlocks(entry.TrashPath, e.probe)
	if err != nil {
		return err
	}
	entry.Blocks = blocks

	info, err := e.probe.Lstat(entry.InfoPath)
	if err != nil {
		return err
	}

	return NewSizeCache(entry.Trash).Update(DirectorySize{
		Name:  entry.Name,
		Size:  entry.Size(),
		Mtime: info.ModTime.Unix(),
	})
}

// Canonicalize returns the path Put trashes: path made absolute with the
// symlinks in its parent resolved. Unlike filepath.EvalSymlinks, the last
// component is kept as is, so a symlink argument trashes the link and never
// its target.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	base := filepath.Base(abs)
	if base == string(filepath.Separator) || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %s", core.ErrNoFileName, path)
	}

	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, base), nil
}

// resolveLinks returns path with its symlinks resolved. Components that do
// not exist yet are kept as they are below the deepest existing ancestor.
func resolveLinks(path string) string {
	if path == "" {
		return ""
	}
	path = filepath.Clean(path)

	var rest []string
	for dir := path; ; dir = filepath.Dir(dir) {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...)
		}
		if dir == filepath.Dir(dir) {
			slog.Debug("cannot resolve symlinks", "path", path)
			return path
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
	}
}
