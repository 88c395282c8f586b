// rulesync - Instructions document sync for AI coding assistants
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/rulesync

// Package config provides hierarchical configuration management for rulesync using koanf.
// Configuration is loaded with priority: --config file > environment variables (RULESYNC_*)
// > project config (<workspace>/.rulesync/config.yml) > user config (~/.config/rulesync/config.yml)
// > defaults. YAML is preferred; legacy JSON files are still read with a migration warning.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/rules"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "RULESYNC_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
	SourceFlag    ConfigSource = "flag"
)

// SourceFile is a config file that contributed to the loaded configuration.
type SourceFile struct {
	Source ConfigSource `yaml:"source" json:"source"`
	Path   string       `yaml:"path" json:"path"`
}

// Configuration represents the rulesync CLI tool configuration
type Configuration struct {
	// Workspace pins the workspace root. Empty means: git work tree of the
	// current directory, else the current directory.
	// Can be set via RULESYNC_WORKSPACE env var.
	Workspace string `koanf:"workspace" yaml:"workspace" json:"workspace"`

	// InstructionsName is the file name of the instructions document inside
	// .github/instructions/.
	InstructionsName string `koanf:"instructions_name" yaml:"instructions_name" json:"instructions_name" validate:"required"`

	// AutoInject makes the startup command sync the document.
	AutoInject bool `koanf:"auto_inject" yaml:"auto_inject" json:"auto_inject"`
	// UpdateGitignore makes sync and watch maintain the managed .gitignore patterns.
	UpdateGitignore bool `koanf:"update_gitignore" yaml:"update_gitignore" json:"update_gitignore"`
	// StartupDelay is how long the startup command waits before syncing.
	StartupDelay time.Duration `koanf:"startup_delay" yaml:"startup_delay" json:"startup_delay"`

	// OnReadError selects what sync does with a document that exists but
	// cannot be read. Valid values: "overwrite" (default), "preserve".
	OnReadError string `koanf:"on_read_error" yaml:"on_read_error" json:"on_read_error" validate:"oneof=overwrite preserve"`

	SkipConfirmations bool `koanf:"skip_confirmations" yaml:"skip_confirmations" json:"skip_confirmations"` // Skip confirmation prompts (can also be set via RULESYNC_YES env var)

	// ManagedPatterns are the .gitignore entries rulesync adds and removes.
	// A configured list replaces the defaults entirely.
	ManagedPatterns []ignore.ManagedPattern `koanf:"managed_patterns" yaml:"managed_patterns" json:"managed_patterns" validate:"dive"`

	LogLevel   string `koanf:"log_level" yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	LogFile    string `koanf:"log_file" yaml:"log_file" json:"log_file"`
	LogJournal bool   `koanf:"log_journal" yaml:"log_journal" json:"log_journal"`

	// Sources lists the config files that were loaded, lowest priority first.
	Sources []SourceFile `koanf:"-" yaml:"-" json:"-"`
}

// ReadErrorPolicy returns OnReadError as a rules.ReadErrorPolicy.
func (c *Configuration) ReadErrorPolicy() (rules.ReadErrorPolicy, error) {
	return rules.ParseReadErrorPolicy(c.OnReadError)
}

// Values returns the effective configuration keyed like the config file,
// with durations rendered as strings.
func (c *Configuration) Values() map[string]interface{} {
	patterns := make([]map[string]string, 0, len(c.ManagedPatterns))
	for _, p := range c.ManagedPatterns {
		patterns = append(patterns, map[string]string{"comment": p.Comment, "pattern": p.Pattern})
	}
	return map[string]interface{}{
		"workspace":          c.Workspace,
		"instructions_name":  c.InstructionsName,
		"auto_inject":        c.AutoInject,
		"update_gitignore":   c.UpdateGitignore,
		"startup_delay":      c.StartupDelay.String(),
		"on_read_error":      c.OnReadError,
		"skip_confirmations": c.SkipConfirmations,
		"managed_patterns":   patterns,
		"log_level":          c.LogLevel,
		"log_file":           c.LogFile,
		"log_journal":        c.LogJournal,
	}
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// WorkspaceRoot enables the project config layer (<root>/.rulesync/config.yml).
	// Empty skips it.
	WorkspaceRoot string
	// ConfigPath is an explicit config file (--config). It is loaded last and must exist.
	ConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(workspaceRoot string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{WorkspaceRoot: workspaceRoot})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)
	var sources []SourceFile

	loadDefaults(k)

	userSrc, err := loadUserConfig(k, warningWriter, opts.SkipWarnings)
	if err != nil {
		return nil, err
	}
	sources = appendSource(sources, userSrc)

	projectSrc, err := loadProjectConfig(k, opts.WorkspaceRoot, warningWriter, opts.SkipWarnings)
	if err != nil {
		return nil, err
	}
	sources = appendSource(sources, projectSrc)

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	if opts.ConfigPath != "" {
		if err := loadExplicitConfig(k, opts.ConfigPath); err != nil {
			return nil, err
		}
		sources = append(sources, SourceFile{Source: SourceFlag, Path: opts.ConfigPath})
	}

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	return cfg, nil
}

func appendSource(sources []SourceFile, src *SourceFile) []SourceFile {
	if src == nil {
		return sources
	}
	return append(sources, *src)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}
}

// loadUserConfig loads user-level config (YAML preferred, legacy JSON supported).
// Warns if both exist (YAML used, JSON ignored) or if only legacy JSON exists.
func loadUserConfig(k *koanf.Koanf, warningWriter io.Writer, skipWarnings bool) (*SourceFile, error) {
	userYAMLPath, _ := UserConfigPath()
	legacyUserPath, _ := LegacyUserConfigPath()

	return loadLayer(k, SourceUser, userYAMLPath, legacyUserPath, warningWriter, skipWarnings, "--user")
}

// loadProjectConfig loads project-level config from the workspace root.
// Same priority/warning logic as loadUserConfig.
func loadProjectConfig(k *koanf.Koanf, root string, warningWriter io.Writer, skipWarnings bool) (*SourceFile, error) {
	if root == "" {
		return nil, nil
	}
	return loadLayer(k, SourceProject, ProjectConfigPath(root), LegacyProjectConfigPath(root), warningWriter, skipWarnings, "--project")
}

func loadLayer(k *koanf.Koanf, source ConfigSource, yamlPath, legacyPath string, warningWriter io.Writer, skipWarnings bool, migrateFlag string) (*SourceFile, error) {
	yamlExists := fileExists(yamlPath)
	legacyExists := fileExists(legacyPath)

	switch {
	case yamlExists:
		if err := loadYAMLConfig(k, yamlPath, string(source)); err != nil {
			return nil, fmt.Errorf("loading %s YAML config: %w", source, err)
		}
		warnLegacyExists(warningWriter, legacyPath, yamlPath, legacyExists, skipWarnings, migrateFlag)
		return &SourceFile{Source: source, Path: yamlPath}, nil
	case legacyExists:
		if err := loadLegacyJSONConfig(k, legacyPath, string(source), warningWriter, skipWarnings, migrateFlag); err != nil {
			return nil, fmt.Errorf("loading legacy %s JSON config: %w", source, err)
		}
		return &SourceFile{Source: source, Path: legacyPath}, nil
	}
	return nil, nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about migration
func loadLegacyJSONConfig(k *koanf.Koanf, path, configType string, warningWriter io.Writer, skipWarnings bool, migrateFlag string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy %s config %s: %w", configType, path, err)
	}
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Run 'rulesync config migrate %s' to migrate to YAML format.\n\n", migrateFlag)
	}
	return nil
}

// warnLegacyExists warns if legacy JSON exists alongside new YAML
func warnLegacyExists(warningWriter io.Writer, legacyPath, yamlPath string, legacyExists, skipWarnings bool, migrateFlag string) {
	if legacyExists && !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		fmt.Fprintf(warningWriter, "  Run 'rulesync config migrate %s' to remove the legacy file.\n\n", migrateFlag)
	}
}

// loadExplicitConfig loads the --config file. The parser follows the extension.
func loadExplicitConfig(k *koanf.Koanf, path string) error {
	if !fileExists(path) {
		return fmt.Errorf("config file %s not found", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return fmt.Errorf("failed to load config %s: %w", path, err)
		}
		return nil
	}
	return loadYAMLConfig(k, path, string(SourceFlag))
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.OnReadError = strings.ToLower(strings.TrimSpace(cfg.OnReadError))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Workspace = ExpandHomePath(cfg.Workspace)
	cfg.LogFile = ExpandHomePath(cfg.LogFile)

	if os.Getenv("RULESYNC_YES") != "" {
		cfg.SkipConfirmations = true
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: RULESYNC_ON_READ_ERROR -> on_read_error
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// ExpandHomePath expands a leading ~/ to the user's home directory.
func ExpandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
