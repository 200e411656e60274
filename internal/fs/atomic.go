package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CreateExclusive creates a new file with O_EXCL flag to ensure atomic creation.
// Returns an error satisfying errors.Is(err, fs.ErrExist) if the file already exists.
func CreateExclusive(path string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
}

// WriteExclusive creates path with O_EXCL and writes data to it.
// On a failed write the file is removed so no truncated file is left behind.
func WriteExclusive(path string, data []byte, perm os.FileMode) error {
	f, err := CreateExclusive(path, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// TempPath returns a unique hidden temporary path next to path
func TempPath(path string) string {
	return filepath.Join(filepath.Dir(path),
		fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))
}

// ReplaceFile atomically replaces path with whatever write produces.
// The content is written to a temporary file in the same directory,
// synced, and renamed over path.
func ReplaceFile(path string, perm os.FileMode, write func(w io.Writer) error) error {
	tmp := TempPath(path)
	f, err := CreateExclusive(tmp, perm)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmp)
	}

	if err := write(f); err != nil {
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move temporary file: %w", err)
	}
	return nil
}
