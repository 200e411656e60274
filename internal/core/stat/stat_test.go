//go:build linux || darwin

package stat

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gotrash/gotrash/internal/trash/core"
)

func TestLstatModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("hello"), 0640); err != nil {
		t.Fatal(err)
	}

	mtime := time.Date(2023, 4, 5, 6, 7, 8, 0, time.Local)
	atime := time.Date(2022, 1, 2, 3, 4, 5, 0, time.Local)
	if err := os.Chtimes(path, atime, mtime); err != nil {
		t.Fatal(err)
	}

	md, err := System{}.Lstat(path)
	if err != nil {
		t.Fatalf("Lstat() error = %v", err)
	}
	if !md.ModTime.Equal(mtime) {
		t.Errorf("ModTime = %v, want %v", md.ModTime, mtime)
	}
	if !md.AccessTime.Equal(atime) {
		t.Errorf("AccessTime = %v, want %v", md.AccessTime, atime)
	}
	if md.Perm() != 0640 {
		t.Errorf("Perm() = %v, want %v", md.Perm(), os.FileMode(0640))
	}
	if md.IsDir() || md.IsSymlink() {
		t.Errorf("regular file reported as dir=%v symlink=%v", md.IsDir(), md.IsSymlink())
	}
}

func TestLstatDoesNotFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "link")
	if err := os.Symlink(dir, link); err != nil {
		t.Fatal(err)
	}

	md, err := System{}.Lstat(link)
	if err != nil {
		t.Fatalf("Lstat() error = %v", err)
	}
	if !md.IsSymlink() {
		t.Error("expected symlink")
	}

	md, err = System{}.Lstat(dir)
	if err != nil {
		t.Fatalf("Lstat() error = %v", err)
	}
	if !md.IsDir() {
		t.Error("expected directory")
	}
}

func TestLstatBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, bytes.Repeat([]byte("gotrash\n"), 8192), 0644); err != nil {
		t.Fatal(err)
	}

	md, err := System{}.Lstat(path)
	if err != nil {
		t.Fatalf("Lstat() error = %v", err)
	}
	if md.Blocks <= 0 {
		t.Errorf("Blocks = %d, want > 0", md.Blocks)
	}
}

func TestLstatMissing(t *testing.T) {
	_, err := System{}.Lstat(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, core.ErrStatFailed) {
		t.Errorf("error = %v, want ErrStatFailed", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want to wrap ErrNotExist", err)
	}
	if core.KindOf(err) != core.KindStatFailed {
		t.Errorf("KindOf() = %v, want %v", core.KindOf(err), core.KindStatFailed)
	}
}
