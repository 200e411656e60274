package fs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// IsUnsafePath checks if the given path is unsafe to trash
func IsUnsafePath(path string) (bool, error) {
	// First check the original path before any normalization
	// This preserves the original input like "." or ".."
	originalBase := filepath.Base(path)
	if originalBase == "." || originalBase == ".." {
		return true, nil
	}

	// Check root path
	if filepath.Clean(path) == "/" {
		return true, nil
	}

	// Check double slashes and similar patterns
	if strings.HasPrefix(path, "//") {
		return true, nil
	}

	return false, nil
}

// Protector refuses paths matching any of a set of glob patterns
type Protector struct {
	patterns []string
	globs    []glob.Glob
}

// NewProtector compiles patterns with "/" as the separator, so "*" stays
// within one path component and "**" crosses them
func NewProtector(patterns []string) (*Protector, error) {
	p := &Protector{}
	for _, pattern := range patterns {
		g, err := glob.Compile(filepath.Clean(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid protected pattern %q: %w", pattern, err)
		}
		p.patterns = append(p.patterns, pattern)
		p.globs = append(p.globs, g)
	}
	return p, nil
}

// Match reports whether the absolute path is protected and by which pattern
func (p *Protector) Match(path string) (string, bool) {
	path = filepath.Clean(path)
	for i, g := range p.globs {
		if g.Match(path) {
			return p.patterns[i], true
		}
	}
	return "", false
}
