package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var appName string

// Init sets the application data directory name. Must be called before
// any storage operations.
func Init(dataDirName string) {
	appName = dataDirName
}

const (
	configFile    = "config.json"
	themesDir     = "themes"
	screenshotDir = "screenshots"
)

// ErrNotInitialized is returned when a path is requested before Init.
var ErrNotInitialized = errors.New("storage not initialized")

// GetBaseDir returns the base directory for application data.
// The directory name is set by Init(). Example paths:
// - macOS: ~/Library/Application Support/<appName>
// - Linux: ~/.local/share/<appName>
// - Windows: %APPDATA%/<appName>
func GetBaseDir() (string, error) {
	if appName == "" {
		return "", ErrNotInitialized
	}
	root, err := dataRoot(runtime.GOOS)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appName), nil
}

// dataRoot returns the per-user directory applications keep data under.
func dataRoot(goos string) (string, error) {
	switch goos {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData, nil
		}
		return "", fmt.Errorf("APPDATA environment variable not set")
	}

	// Linux and other Unix-like systems: XDG_DATA_HOME wins
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return dataHome, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// EnsureDirectories creates all necessary directories for the application
func EnsureDirectories() error {
	baseDir, err := GetBaseDir()
	if err != nil {
		return err
	}

	dirs := []string{
		baseDir,
		filepath.Join(baseDir, themesDir),
		filepath.Join(baseDir, screenshotDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func subPath(name string) (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(baseDir, name), nil
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	return subPath(configFile)
}

// GetThemesDir returns the directory searched for relative background paths
func GetThemesDir() (string, error) {
	return subPath(themesDir)
}

// GetScreenshotDir returns the full path to the screenshots directory
func GetScreenshotDir() (string, error) {
	return subPath(screenshotDir)
}

// ResolveAssetPath maps a relative background or font path into the themes
// directory. Absolute paths and the empty string are returned unchanged.
func ResolveAssetPath(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	dir, err := GetThemesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, path), nil
}

// AtomicWriteJSON writes data to a JSON file atomically.
func AtomicWriteJSON(path string, data interface{}) error {
	// Indented so the config stays hand-editable
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return AtomicWriteFile(path, append(jsonData, '\n'))
}

// AtomicWriteFile writes data to a uniquely named temporary file next to
// path, syncs it, then renames it over path. Readers see either the old
// file or the new one.
func AtomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempFile := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	// CreateTemp uses 0600
	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadJSON reads and unmarshals a JSON file
func ReadJSON(path string, data interface{}) error {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(jsonData, data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}
