package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/rulesync/config.yml
// - macOS: ~/Library/Application Support/rulesync/config.yml
// - Windows: %APPDATA%\rulesync\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "rulesync"), nil
}

// ProjectConfigDir returns the project-level config directory of a workspace.
func ProjectConfigDir(root string) string {
	return filepath.Join(root, ".rulesync")
}

// ProjectConfigPath returns the path to the project-level config file:
// <root>/.rulesync/config.yml.
func ProjectConfigPath(root string) string {
	return filepath.Join(ProjectConfigDir(root), "config.yml")
}

// LegacyUserConfigPath returns the path to the legacy user-level JSON config file.
func LegacyUserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LegacyProjectConfigPath returns the path to the legacy project-level JSON config file.
func LegacyProjectConfigPath(root string) string {
	return filepath.Join(ProjectConfigDir(root), "config.json")
}
