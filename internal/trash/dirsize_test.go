package trash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gotrash/gotrash/internal/core/stat"
	"github.com/gotrash/gotrash/internal/trash/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProbe reports a fixed block count for every path and delegates the
// rest to the real probe
type fakeProbe struct {
	blocks int64
}

func (p fakeProbe) Lstat(path string) (stat.Metadata, error) {
	md, err := stat.System{}.Lstat(path)
	if err != nil {
		return md, err
	}
	md.Blocks = p.blocks
	return md, nil
}

func TestDirectorySizeBlocks(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "tree")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "one"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "two"), []byte("2"), 0644))
	require.NoError(t, os.Symlink("a/one", filepath.Join(root, "link")))

	// tree, a, a/b, a/one, a/b/two, link
	got, err := DirectorySizeBlocks(root, fakeProbe{blocks: 8})
	require.NoError(t, err)
	assert.Equal(t, uint64(6*8), got)

	actual, err := DirectorySizeBlocks(root, stat.System{})
	require.NoError(t, err)
	assert.Greater(t, actual, uint64(0))
}

func TestDirectorySizeBlocksNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := DirectorySizeBlocks(file, stat.System{})
	require.Error(t, err)
	assert.True(t, core.IsNotADirectory(err))
	assert.Equal(t, core.KindNotADirectory, core.KindOf(err))
}

func TestDirectorySizeBlocksMissing(t *testing.T) {
	_, err := DirectorySizeBlocks(filepath.Join(t.TempDir(), "missing"), stat.System{})
	require.Error(t, err)
	assert.Equal(t, core.KindStatFailed, core.KindOf(err))
}

func TestSizeCacheUpdate(t *testing.T) {
	d := core.NewHomeDirectory(t.TempDir())
	require.NoError(t, d.Ensure())
	for _, name := range []string{"photos", "with space"} {
		require.NoError(t, os.Mkdir(d.FilePath(name), 0755))
	}

	cache := NewSizeCache(d)

	sizes, err := cache.Load()
	require.NoError(t, err)
	assert.Empty(t, sizes, "missing file is an empty cache")

	require.NoError(t, cache.Update(DirectorySize{Name: "photos", Size: 4096, Mtime: 100}))
	require.NoError(t, cache.Update(DirectorySize{Name: "with space", Size: 512, Mtime: 200}))
	require.NoError(t, cache.Update(DirectorySize{Name: "photos", Size: 8192, Mtime: 300}))

	content, err := os.ReadFile(d.DirectorySizes)
	require.NoError(t, err)
	assert.Equal(t, "512 200 with%20space\n8192 300 photos\n", string(content))

	sizes, err = cache.Load()
	require.NoError(t, err)
	assert.Equal(t, []DirectorySize{
		{Name: "with space", Size: 512, Mtime: 200},
		{Name: "photos", Size: 8192, Mtime: 300},
	}, sizes)
}

func TestSizeCacheDropsStaleEntries(t *testing.T) {
	d := core.NewHomeDirectory(t.TempDir())
	require.NoError(t, d.Ensure())
	require.NoError(t, os.Mkdir(d.FilePath("kept"), 0755))
	require.NoError(t, os.WriteFile(d.DirectorySizes,
		[]byte("100 1 kept\n200 2 gone\nnot a valid line at all\n"), 0600))

	require.NoError(t, os.Mkdir(d.FilePath("new"), 0755))
	require.NoError(t, NewSizeCache(d).Update(DirectorySize{Name: "new", Size: 300, Mtime: 3}))

	content, err := os.ReadFile(d.DirectorySizes)
	require.NoError(t, err)
	assert.Equal(t, "100 1 kept\n300 3 new\n", string(content))

	entries, err := os.ReadDir(d.Root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temporary file left behind: %s", e.Name())
	}
}
