package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	filesDirName       = "files"
	infoDirName        = "info"
	directorySizesName = "directorysizes"

	// InfoSuffix is appended to a trashed name to build its info file name
	InfoSuffix = ".trashinfo"
)

// Directory represents one trash root and its layout
type Directory struct {
	// Root is the trash root (e.g., ~/.local/share/Trash or /media/disk/.Trash-1000)
	Root string

	// Files holds the trashed content (root/files)
	Files string

	// DirectorySizes is the size cache for trashed directories (root/directorysizes)
	DirectorySizes string

	// Info holds one .trashinfo file per trashed entry (root/info)
	Info string

	// Home reports whether this is the home trash
	Home bool

	// TopDir is the mount point a $topdir trash belongs to; empty for the home trash
	TopDir string
}

// NewDirectory returns the layout of the trash rooted at root
func NewDirectory(root string) Directory {
	return Directory{
		Root:           root,
		Files:          filepath.Join(root, filesDirName),
		DirectorySizes: filepath.Join(root, directorySizesName),
		Info:           filepath.Join(root, infoDirName),
	}
}

// NewHomeDirectory returns the layout of the home trash rooted at root
func NewHomeDirectory(root string) Directory {
	d := NewDirectory(root)
	d.Home = true
	return d
}

// FilePath returns where the entry called name lives in files/
func (d Directory) FilePath(name string) string {
	return filepath.Join(d.Files, name)
}

// InfoPath returns the .trashinfo path for the entry called name
func (d Directory) InfoPath(name string) string {
	return filepath.Join(d.Info, name+InfoSuffix)
}

// Validate checks that files/ and info/ exist as directories
func (d Directory) Validate() error {
	for _, dir := range []string{d.Files, d.Info} {
		fi, err := os.Stat(dir)
		if err != nil {
			return NewTrashError("validate", dir, fmt.Errorf("%w: %w", ErrInvalidTrash, err))
		}
		if !fi.IsDir() {
			return NewTrashError("validate", dir, fmt.Errorf("%w: %s is not a directory", ErrInvalidTrash, dir))
		}
	}
	return nil
}

// Ensure creates the trash root with files/ and info/ (mode 0700) if missing
func (d Directory) Ensure() error {
	for _, dir := range []string{d.Root, d.Files, d.Info} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return NewTrashError("create", dir, err)
		}
	}
	slog.Debug("trash directory ready", "root", d.Root)
	return d.Validate()
}
