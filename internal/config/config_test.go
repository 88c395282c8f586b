// Package config tests layered configuration loading for rulesync.
// Related: internal/config/config.go, internal/config/defaults.go, internal/config/paths.go
// Tags: config, koanf, yaml, json, env, validation

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateUserConfig points the user config directory at a fresh temp dir
// and returns the rulesync directory inside it.
func isolateUserConfig(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	dir, err := UserConfigDir()
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolateUserConfig(t)

	cfg, err := LoadWithOptions(LoadOptions{WorkspaceRoot: t.TempDir(), SkipWarnings: true})
	require.NoError(t, err)

	assert.Equal(t, rules.DefaultName, cfg.InstructionsName)
	assert.True(t, cfg.AutoInject)
	assert.True(t, cfg.UpdateGitignore)
	assert.Equal(t, 2*time.Second, cfg.StartupDelay)
	assert.Equal(t, "overwrite", cfg.OnReadError)
	assert.False(t, cfg.SkipConfirmations)
	assert.Equal(t, ignore.DefaultPatterns(), cfg.ManagedPatterns)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.Sources)

	policy, err := cfg.ReadErrorPolicy()
	require.NoError(t, err)
	assert.Equal(t, rules.PolicyOverwrite, policy)
}

func TestLoad_LayerPriority(t *testing.T) {
	userDir := isolateUserConfig(t)
	root := t.TempDir()

	writeFile(t, filepath.Join(userDir, "config.yml"), "log_level: info\nstartup_delay: 5s\non_read_error: preserve\n")
	writeFile(t, ProjectConfigPath(root), "log_level: debug\nupdate_gitignore: false\n")
	t.Setenv("RULESYNC_STARTUP_DELAY", "750ms")

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel, "project overrides user")
	assert.False(t, cfg.UpdateGitignore)
	assert.Equal(t, "preserve", cfg.OnReadError, "user overrides defaults")
	assert.Equal(t, 750*time.Millisecond, cfg.StartupDelay, "env overrides files")

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, SourceUser, cfg.Sources[0].Source)
	assert.Equal(t, SourceProject, cfg.Sources[1].Source)
	assert.Equal(t, ProjectConfigPath(root), cfg.Sources[1].Path)
}

func TestLoad_ManagedPatternsReplaceDefaults(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()

	writeFile(t, ProjectConfigPath(root), `managed_patterns:
  - comment: Scratch
    pattern: tmp/
`)

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, []ignore.ManagedPattern{{Comment: "Scratch", Pattern: "tmp/"}}, cfg.ManagedPatterns)
}

func TestLoad_ExplicitConfig(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()
	t.Setenv("RULESYNC_LOG_LEVEL", "error")

	tests := map[string]struct {
		name    string
		content string
		want    string
	}{
		"yaml": {name: "custom.yml", content: "log_level: debug\n", want: "debug"},
		"json": {name: "custom.json", content: `{"log_level": "info"}`, want: "info"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			writeFile(t, path, tt.content)

			cfg, err := LoadWithOptions(LoadOptions{WorkspaceRoot: root, ConfigPath: path})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LogLevel, "--config wins over env")
			require.NotEmpty(t, cfg.Sources)
			assert.Equal(t, SourceFlag, cfg.Sources[len(cfg.Sources)-1].Source)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := LoadWithOptions(LoadOptions{ConfigPath: filepath.Join(root, "nope.yml")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestLoad_LegacyJSON(t *testing.T) {
	userDir := isolateUserConfig(t)
	root := t.TempDir()

	writeFile(t, filepath.Join(userDir, "config.json"), `{"auto_inject": false}`)

	var warnings bytes.Buffer
	cfg, err := LoadWithOptions(LoadOptions{WorkspaceRoot: root, WarningWriter: &warnings})
	require.NoError(t, err)
	assert.False(t, cfg.AutoInject)
	assert.Contains(t, warnings.String(), "deprecated JSON config")
	assert.Contains(t, warnings.String(), "rulesync config migrate --user")

	// YAML present alongside: YAML wins and the JSON is reported as ignored.
	writeFile(t, filepath.Join(userDir, "config.yml"), "auto_inject: true\n")
	warnings.Reset()
	cfg, err = LoadWithOptions(LoadOptions{WorkspaceRoot: root, WarningWriter: &warnings})
	require.NoError(t, err)
	assert.True(t, cfg.AutoInject)
	assert.Contains(t, warnings.String(), "ignored")

	warnings.Reset()
	_, err = LoadWithOptions(LoadOptions{WorkspaceRoot: root, WarningWriter: &warnings, SkipWarnings: true})
	require.NoError(t, err)
	assert.Empty(t, warnings.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		content string
		wantErr string
	}{
		"yaml syntax": {
			content: "auto_inject: [\n",
			wantErr: "validating YAML syntax",
		},
		"unknown policy": {
			content: "on_read_error: ignore\n",
			wantErr: "on_read_error",
		},
		"unknown log level": {
			content: "log_level: trace\n",
			wantErr: "log_level",
		},
		"name with directory": {
			content: "instructions_name: ../escape.md\n",
			wantErr: "instructions_name",
		},
		"negative delay": {
			content: "startup_delay: -1s\n",
			wantErr: "startup_delay",
		},
		"pattern missing": {
			content: "managed_patterns:\n  - comment: nothing\n",
			wantErr: "managed_patterns[0].pattern",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			isolateUserConfig(t)
			root := t.TempDir()
			writeFile(t, ProjectConfigPath(root), tt.content)

			_, err := Load(root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_NormalizesCase(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("RULESYNC_ON_READ_ERROR", " Preserve ")
	t.Setenv("RULESYNC_LOG_LEVEL", "DEBUG")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "preserve", cfg.OnReadError)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_YesEnv(t *testing.T) {
	isolateUserConfig(t)
	t.Setenv("RULESYNC_YES", "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.SkipConfirmations)
}

func TestLoad_ExpandsHome(t *testing.T) {
	isolateUserConfig(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("RULESYNC_LOG_FILE", "~/logs/rulesync.jsonl")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "rulesync.jsonl"), cfg.LogFile)
}

func TestConfiguration_Values(t *testing.T) {
	t.Parallel()

	cfg := &Configuration{
		StartupDelay:    1500 * time.Millisecond,
		ManagedPatterns: []ignore.ManagedPattern{{Comment: "# A", Pattern: "x/"}},
	}
	values := cfg.Values()
	assert.Equal(t, "1.5s", values["startup_delay"])
	assert.Equal(t, []map[string]string{{"comment": "# A", "pattern": "x/"}}, values["managed_patterns"])
	assert.Len(t, values, len(KnownKeys))
}

func TestDefaultConfigTemplate_Parses(t *testing.T) {
	t.Parallel()

	template := GetDefaultConfigTemplate()
	require.NoError(t, ValidateYAMLSyntaxFromBytes([]byte(template), "template"))
	for _, key := range SortedKeys() {
		assert.Contains(t, template, key+":")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	isolateUserConfig(t)
	root := t.TempDir()
	path := ProjectConfigPath(root)

	require.NoError(t, WriteDefaultConfig(path))

	cfg, err := Load(root)
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, SourceProject, cfg.Sources[0].Source)
	assert.Equal(t, ignore.DefaultPatterns(), cfg.ManagedPatterns)
	assert.Equal(t, 2*time.Second, cfg.StartupDelay)
}

func TestPaths(t *testing.T) {
	t.Parallel()

	root := filepath.Join("ws")
	assert.Equal(t, filepath.Join("ws", ".rulesync"), ProjectConfigDir(root))
	assert.Equal(t, filepath.Join("ws", ".rulesync", "config.yml"), ProjectConfigPath(root))
	assert.Equal(t, filepath.Join("ws", ".rulesync", "config.json"), LegacyProjectConfigPath(root))
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "on_read_error", envTransform("RULESYNC_ON_READ_ERROR"))
	assert.Equal(t, "workspace", envTransform("RULESYNC_WORKSPACE"))
}
