// Package config owns the engine's ambient configuration: UCI option
// parsing/validation and a small embedded key-value store that persists the
// last-applied options across process restarts.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessengine"

// DataDir returns the platform-specific per-user data directory for the
// engine, creating it if necessary.
//   - macOS:   ~/Library/Application Support/chessengine/
//   - Windows: %APPDATA%/chessengine/
//   - Linux:   $XDG_DATA_HOME/chessengine/ or ~/.local/share/chessengine/
func DataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, "AppData", "Roaming")
		}

	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".local", "share")
		}
	}

	dir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// DatabaseDir returns the directory holding the persisted-settings store.
func DatabaseDir() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
