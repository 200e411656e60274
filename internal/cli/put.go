package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"al.essio.dev/pkg/shellescape"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gotrash/gotrash/internal/core/atomic"
	"github.com/gotrash/gotrash/internal/trash"
	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/gotrash/gotrash/internal/utils/fs"
)

var errorPrefix = color.New(color.FgRed, color.Bold).Sprint("gotrash:")

// Put trashes each argument in order. A failing path is reported and the
// next one is processed.
func (c *CLI) Put(args []string) error {
	slog.Debug("cli.put started", "paths", len(args))
	defer slog.Debug("cli.put finished")

	if len(args) == 0 {
		return errors.New("too few arguments")
	}

	var failed int
	for _, arg := range args {
		if err := c.putPath(arg); err != nil {
			failed++
			slog.Error("failed to trash", "path", arg, "kind", core.KindOf(err), "error", err)
			c.printError(err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSomeFailed, failed, len(args))
	}
	return nil
}

func (c *CLI) putPath(path string) error {
	// 1. Refuse ".", ".." and "/"
	if unsafe, err := fs.IsUnsafePath(path); err != nil {
		return err
	} else if unsafe {
		return fmt.Errorf("refusing to trash %s", shellescape.Quote(path))
	}

	// 2. File existence check
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if c.option.Rm.Force {
				slog.Debug("ignoring nonexistent path", "path", path)
				return nil
			}
			return fmt.Errorf("cannot trash %s: no such file or directory", shellescape.Quote(path))
		}
		return err
	}

	// 3. Protected paths, checked on the path as given and on the path
	// that is actually trashed
	if c.protector != nil {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		canonical, err := trash.Canonicalize(path)
		if err != nil {
			return err
		}
		for _, p := range []string{abs, canonical} {
			if pattern, ok := c.protector.Match(p); ok {
				return fmt.Errorf("cannot trash protected path %s (matches %q)", shellescape.Quote(path), pattern)
			}
		}
	}

	// 4. Move to trash
	entry, err := c.trasher.Put(path)
	if err != nil && entry == nil {
		return err
	}
	if err != nil {
		// the entry is in the trash; only its size could not be recorded
		slog.Warn("trashed without size record", "path", path, "error", err)
		fmt.Fprintf(c.stderr, "%s warning: %s was trashed but its size was not recorded: %v\n",
			errorPrefix, shellescape.Quote(path), err)
	}

	// 5. Report if verbose
	if c.option.Rm.Verbose || c.config.Core.Verbose {
		size := uint64(info.Size())
		if entry.IsDir {
			size = entry.Size()
		}
		fmt.Fprintf(c.stdout, "trashed %s -> %s (%s)\n",
			shellescape.Quote(path), shellescape.Quote(entry.TrashPath), humanize.Bytes(size))
	}

	return nil
}

func (c *CLI) printError(err error) {
	fmt.Fprintln(c.stderr, errorPrefix, err)

	var moveErr *atomic.MoveError
	if atomic.IsDuplicated(err) && errors.As(err, &moveErr) {
		fmt.Fprintf(c.stderr, "%s both copies were kept: %s and %s\n",
			errorPrefix, shellescape.Quote(moveErr.Src), shellescape.Quote(moveErr.Dst))
	}
}
