package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gotrash/gotrash/internal/config"
	"github.com/gotrash/gotrash/internal/env"
	"github.com/gotrash/gotrash/internal/trash"
	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/gotrash/gotrash/internal/trash/xdg"
	"github.com/gotrash/gotrash/internal/utils/debug"
	"github.com/gotrash/gotrash/internal/utils/fs"
	"github.com/gotrash/gotrash/internal/utils/log"
	"github.com/jessevdk/go-flags"
	"github.com/rs/xid"
)

type Option struct {
	Config string `long:"config" description:"Path to config file" default:""`

	Meta MetaOption `group:"Meta Options"`
	Rm   RmOption   `group:"Compatible (rm) Options"`
}

type MetaOption struct {
	Version bool   `short:"V" long:"version" description:"Show version"`
	Debug   string `long:"debug" description:"View debug logs (default: \"full\")" optional-value:"full" optional:"yes" choice:"full" choice:"live"`
}

// RmOption provides compatibility with rm command options
type RmOption struct {
	Interactive bool `short:"i" description:"(dummy) prompt before every removal"`
	Recursive   bool `short:"r" long:"recursive" description:"(dummy) remove directories and their contents recursively"`
	Recursive2  bool `short:"R" description:"(dummy) same as -r"`
	Force       bool `short:"f" long:"force" description:"ignore nonexistent files"`
	Directory   bool `short:"d" long:"dir" description:"(dummy) remove empty directories"`
	Verbose     bool `short:"v" long:"verbose" description:"explain what is being done"`
}

// Trasher moves one path to the trash
type Trasher interface {
	Put(path string) (*trash.Entry, error)
}

type CLI struct {
	option    Option
	config    config.Config
	trasher   Trasher
	protector *fs.Protector
	stdout    io.Writer
	stderr    io.Writer
}

// ErrSomeFailed is returned when at least one path could not be trashed.
// The individual failures have already been reported.
var ErrSomeFailed = errors.New("some paths could not be trashed")

var runID = sync.OnceValue(func() string {
	id := xid.New().String()
	return id
})

func Run(v Version) error {
	var opt Option
	parser := flags.NewParser(&opt, flags.Default)
	parser.Name = v.AppName
	parser.Usage = "[OPTIONS] PATH..."
	args, err := parser.Parse()
	if err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	if opt.Meta.Version {
		fmt.Fprint(os.Stdout, v.Print())
		return nil
	}

	cfg, err := config.Parse(opt.Config)
	if err != nil {
		return err
	}

	closer, err := setupLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	defer slog.Debug("main function finished")
	slog.Debug("main function started", "version", v.Version, "revision", v.Revision, "buildDate", v.BuildDate)

	if opt.Meta.Debug != "" {
		return debug.Logs(os.Stdout, env.LogPath(), cfg.Logging.Enabled, debug.Mode(opt.Meta.Debug))
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	protector, err := fs.NewProtector(cfg.Core.Protected)
	if err != nil {
		return err
	}

	cli := CLI{
		option:    opt,
		config:    cfg,
		trasher:   engine,
		protector: protector,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}

	if err := cli.Put(args); err != nil {
		slog.Error("exit", "error", fmt.Errorf("cli.put failed: %w", err))
		return err
	}
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogger installs the default logger. Records go to the rotated log
// file, or nowhere when logging is disabled.
func setupLogger(cfg config.LoggingConfig) (io.Closer, error) {
	if !cfg.Enabled {
		log.New(log.UseOutput(io.Discard), log.AsDefault())
		return nopCloser{}, nil
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w, err := log.NewRotateWriter(env.LogPath(), cfg.Rotation.MaxSize, cfg.Rotation.MaxFiles)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.New(
		log.UseOutput(w),
		log.UseLevel(level),
		log.UseReportCaller(true),
		log.UseReportTimestamp(true),
		log.UseTimeFormat(time.DateTime),
		log.UseAttrs("run_id", runID()),
		log.AsDefault(),
	)
	return w, nil
}

// newEngine builds the trash engine from the process-wide state: the home
// directory, the home trash and the mount table
func newEngine(cfg config.Config) (*trash.Engine, error) {
	home, err := env.ResolveHome()
	if err != nil {
		return nil, err
	}

	mounts, err := xdg.ProbeMounts()
	if err != nil {
		return nil, err
	}

	homeTrash := core.NewHomeDirectory(home.TrashRoot)
	if cfg.Core.CreateTrashDirs {
		if err := homeTrash.Ensure(); err != nil {
			return nil, err
		}
	}

	slog.Debug("engine ready", "home", home.Dir, "trash", homeTrash.Root, "mounts", len(mounts.Points()))

	return trash.New(homeTrash, home.Dir, mounts,
		trash.WithHomeFallback(cfg.Core.HomeFallback),
		trash.WithEnsureDirs(cfg.Core.CreateTrashDirs),
	), nil
}
