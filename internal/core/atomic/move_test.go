package atomic

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/gotrash/gotrash/internal/core/stat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAtime = time.Date(2021, 3, 4, 5, 6, 7, 0, time.Local)
	testMtime = time.Date(2022, 8, 9, 10, 11, 12, 0, time.Local)
)

// forceCopyFallback makes every rename fail as if src and dst were on
// different filesystems
func forceCopyFallback(t *testing.T) {
	t.Helper()
	original := rename
	rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	t.Cleanup(func() { rename = original })
}

func createFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	require.NoError(t, os.Chtimes(path, testAtime, testMtime))
}

func assertMoved(t *testing.T, src, dst, content string, perm os.FileMode) {
	t.Helper()

	_, err := os.Lstat(src)
	assert.True(t, os.IsNotExist(err), "source should not exist after move")

	// check times before reading the content, which may update atime
	md, err := stat.System{}.Lstat(dst)
	require.NoError(t, err)
	assert.Equal(t, perm, md.Perm())
	assert.True(t, md.ModTime.Equal(testMtime), "mtime = %v, want %v", md.ModTime, testMtime)
	assert.True(t, md.AccessTime.Equal(testAtime), "atime = %v, want %v", md.AccessTime, testAtime)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestMoveRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	dst := filepath.Join(dir, "destination.txt")
	createFile(t, src, "test content", 0640)

	require.NoError(t, Move(src, dst, MoveOptions{AllowCrossDev: true}))
	assertMoved(t, src, dst, "test content", 0640)
}

func TestMoveFallbackFile(t *testing.T) {
	forceCopyFallback(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	dst := filepath.Join(dir, "destination.txt")
	createFile(t, src, "test content", 0604)

	require.NoError(t, Move(src, dst, MoveOptions{AllowCrossDev: true}))
	assertMoved(t, src, dst, "test content", 0604)
}

func TestMoveFallbackDirectory(t *testing.T) {
	forceCopyFallback(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "tree")
	dst := filepath.Join(dir, "moved")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))
	createFile(t, filepath.Join(src, "nested", "a.txt"), "aaa", 0600)
	require.NoError(t, os.Symlink("nested/a.txt", filepath.Join(src, "link")))
	require.NoError(t, os.Chmod(src, 0750))
	require.NoError(t, os.Chtimes(src, testAtime, testMtime))

	require.NoError(t, Move(src, dst, MoveOptions{AllowCrossDev: true}))

	_, err := os.Lstat(src)
	assert.True(t, os.IsNotExist(err), "source tree should be removed")

	md, err := stat.System{}.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, md.IsDir())
	assert.Equal(t, os.FileMode(0750), md.Perm())
	assert.True(t, md.ModTime.Equal(testMtime), "mtime = %v, want %v", md.ModTime, testMtime)

	nested, err := stat.System{}.Lstat(filepath.Join(dst, "nested", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), nested.Perm())
	assert.True(t, nested.ModTime.Equal(testMtime))

	target, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "nested/a.txt", target, "symlink should be copied as a link")

	got, err := os.ReadFile(filepath.Join(dst, "nested", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "aaa", string(got))
}

func TestMoveRenameOnly(t *testing.T) {
	forceCopyFallback(t)

	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	dst := filepath.Join(dir, "destination.txt")
	createFile(t, src, "test content", 0644)

	err := Move(src, dst, MoveOptions{AllowCrossDev: false})
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.EXDEV)

	_, err = os.Stat(src)
	assert.NoError(t, err, "source must be untouched")
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestMoveSourceNotRemovable(t *testing.T) {
	forceCopyFallback(t)
	original := removeAll
	removeAll = func(string) error { return syscall.EACCES }
	t.Cleanup(func() { removeAll = original })

	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	dst := filepath.Join(dir, "destination.txt")
	createFile(t, src, "precious", 0644)

	err := Move(src, dst, MoveOptions{AllowCrossDev: true})
	require.Error(t, err)
	assert.True(t, IsDuplicated(err))
	assert.ErrorIs(t, err, syscall.EACCES)

	var moveErr *MoveError
	require.True(t, errors.As(err, &moveErr))
	assert.Equal(t, "remove_source", moveErr.Op)
	assert.Contains(t, err.Error(), src)
	assert.Contains(t, err.Error(), dst)

	// both copies must remain
	for _, p := range []string{src, dst} {
		got, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "precious", string(got))
	}
}

func TestMoveValidation(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing")
	createFile(t, existing, "x", 0644)
	other := filepath.Join(dir, "other")
	createFile(t, other, "y", 0644)

	tests := []struct {
		name    string
		src     string
		dst     string
		wantErr error
	}{
		{"empty source", "", other, ErrInvalidPath},
		{"empty destination", existing, "", ErrInvalidPath},
		{"missing source", filepath.Join(dir, "missing"), filepath.Join(dir, "new"), ErrSourceNotFound},
		{"destination exists", existing, other, ErrDestinationExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Move(tt.src, tt.dst, MoveOptions{AllowCrossDev: true})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "y", string(got), "existing destination must not be overwritten")
}
