package debug

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nxadm/tail"
)

// Mode selects how the log file is shown
type Mode string

const (
	// ModeFull prints the whole log file
	ModeFull Mode = "full"

	// ModeLive follows new entries as they are written
	ModeLive Mode = "live"
)

var (
	ErrLoggingDisabled = errors.New("logging is not enabled in config")
	ErrNoLogFile       = errors.New("no log file exists yet: try trashing some files first")
)

// Logs writes the log file at path to w
func Logs(w io.Writer, path string, enabled bool, mode Mode) error {
	switch mode {
	case ModeLive:
		return tailLiveLogs(w, path, enabled)
	case ModeFull, "":
		return showExistingLogs(w, path, enabled)
	default:
		return fmt.Errorf("unknown debug mode %q: use %q or %q", mode, ModeFull, ModeLive)
	}
}

// tailLiveLogs follows log entries in real-time
func tailLiveLogs(w io.Writer, path string, enabled bool) error {
	if !enabled {
		return fmt.Errorf("%w: enable logging in config for live debugging", ErrLoggingDisabled)
	}

	shouldFollow := isatty.IsTerminal(os.Stdout.Fd())
	t, err := tail.TailFile(path, tail.Config{
		ReOpen: shouldFollow,
		Follow: shouldFollow,
		Poll:   true,
		Logger: tail.DiscardingLogger,
		Location: &tail.SeekInfo{
			Offset: 0,
			Whence: io.SeekEnd,
		},
	})
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNoLogFile
		}
		return err
	}
	defer t.Cleanup()

	for line := range t.Lines {
		if line.Err != nil {
			return line.Err
		}
		fmt.Fprintln(w, line.Text)
	}

	return nil
}

// showExistingLogs displays the current content of the log file
func showExistingLogs(w io.Writer, path string, enabled bool) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if !enabled {
			return fmt.Errorf("%w: enable logging to create log files", ErrLoggingDisabled)
		}
		return ErrNoLogFile
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fmt.Fprintln(w, scanner.Text())
	}

	return scanner.Err()
}
