package config

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
)

var sizeRe = regexp.MustCompile(`^\d+(KB|MB|GB|TB|PB)$`)

// validateSize validates the size format (e.g., "10MB", "1GB")
func validateSize(fl validator.FieldLevel) bool {
	return sizeRe.MatchString(strings.ToUpper(fl.Field().String()))
}

// validateLevel validates the log level name
func validateLevel(fl validator.FieldLevel) bool {
	value := strings.ToLower(fl.Field().String())
	return slices.Contains([]string{"debug", "info", "warn", "error"}, value)
}

// validateGlob checks that a protected pattern compiles
func validateGlob(fl validator.FieldLevel) bool {
	pattern := strings.TrimSpace(fl.Field().String())
	if pattern == "" {
		return false
	}
	_, err := glob.Compile(pattern, '/')
	return err == nil
}

// expandPath expands environment variables and "~" in paths
func expandPath(path string) (string, error) {
	// Expand "~" to home directory
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}

	// Expand environment variables
	return os.ExpandEnv(path), nil
}

func expandPaths(paths []string) ([]string, error) {
	expanded := make([]string, 0, len(paths))
	for _, p := range paths {
		e, err := expandPath(p)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, e)
	}
	return expanded, nil
}
