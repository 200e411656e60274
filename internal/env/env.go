package env

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "gotrash"

const (
	// ConfigPathEnv overrides the config file location
	ConfigPathEnv = "GOTRASH_CONFIG_PATH"

	// LogPathEnv overrides the log file location
	LogPathEnv = "GOTRASH_LOG_PATH"
)

func init() {
	// https://github.com/charmbracelet/log/issues/35
	os.Setenv("CLICOLOR_FORCE", "1")
}

// ConfigPath returns $GOTRASH_CONFIG_PATH, or config.yaml in the XDG config directory
func ConfigPath() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// LogPath returns $GOTRASH_LOG_PATH, or the log file in the XDG state directory
func LogPath() string {
	if p := os.Getenv(LogPathEnv); p != "" {
		return p
	}
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}
