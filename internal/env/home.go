package env

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
)

// ErrNoHome is returned when neither $HOME nor the password database
// yields a home directory
var ErrNoHome = errors.New("home directory not found")

// Home is the user's home directory and the root of the home trash
type Home struct {
	// Dir is the home directory
	Dir string

	// TrashRoot is $XDG_DATA_HOME/Trash or <Dir>/.local/share/Trash
	TrashRoot string
}

// lookupUser is a variable so tests can replace the password database
var lookupUser = user.Current

// ResolveHome finds the home directory from $HOME, falling back to the
// password database, and the home trash root from $XDG_DATA_HOME.
// A relative $XDG_DATA_HOME is ignored.
func ResolveHome() (Home, error) {
	dir := os.Getenv("HOME")
	if dir == "" {
		u, err := lookupUser()
		if err != nil {
			return Home{}, fmt.Errorf("%w: %w", ErrNoHome, err)
		}
		dir = u.HomeDir
	}
	if dir == "" {
		return Home{}, ErrNoHome
	}
	dir = filepath.Clean(dir)

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" || !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(dir, ".local", "share")
	}

	return Home{
		Dir:       dir,
		TrashRoot: filepath.Join(dataDir, "Trash"),
	}, nil
}
