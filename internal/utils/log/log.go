package log

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	charmlog "github.com/charmbracelet/log"
)

var (
	defaultStylesOnce sync.Once
	defaultStyles     atomic.Pointer[Styles]
)

// DefaultStyles returns level styles padded to a fixed width
func DefaultStyles() *Styles {
	defaultStylesOnce.Do(func() {
		styles := charmlog.DefaultStyles()
		for _, ls := range levelStyles {
			label := strings.ToUpper(ls.level.String())
			if len(label) < levelWidth {
				label += strings.Repeat(" ", levelWidth-len(label))
			}
			styles.Levels[ls.level] = ls.style.SetString(label)
		}
		defaultStyles.Store(styles)
	})
	return defaultStyles.Load()
}

// New creates a slog logger backed by a charmbracelet/log handler
func New(opts ...Option) *slog.Logger {
	o := DefaultOptions()
	o.Apply(opts...)

	handler := charmlog.NewWithOptions(o.Writer, o.Options)
	handler.SetStyles(o.Styles)

	logger := slog.New(handler)
	if len(o.Attrs) > 0 {
		logger = logger.With(o.Attrs...)
	}

	if o.Default {
		charmlog.SetDefault(handler)
		slog.SetDefault(logger)
	}

	return logger
}

// ParseLevel converts a config level name ("debug", "info", ...) to a Level
func ParseLevel(s string) (Level, error) {
	l, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
