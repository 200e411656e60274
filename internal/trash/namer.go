package trash

import (
	"fmt"
	"os"
	"path/filepath"
)

// UniqueName returns candidate if no entry of that name exists in dir,
// otherwise the first free name among candidate-1, candidate-2, ...
// The check is not atomic; a concurrent writer may take the name before
// the caller uses it.
func UniqueName(candidate, dir string) string {
	return uniqueName(candidate, func(name string) bool {
		return exists(filepath.Join(dir, name))
	})
}

func uniqueName(candidate string, taken func(name string) bool) string {
	if !taken(candidate) {
		return candidate
	}
	for n := 1; ; n++ {
		name := suffixed(candidate, n)
		if !taken(name) {
			return name
		}
	}
}

func suffixed(name string, n int) string {
	return fmt.Sprintf("%s-%d", name, n)
}

// exists uses Lstat so a dangling symlink still occupies its name
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !os.IsNotExist(err)
}
