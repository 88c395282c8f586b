// Package cli tests the config command and its subcommands.
// Related: internal/cli/config.go, internal/config/
// Tags: cli, config, show, get, set, init, migrate

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/rulesync/internal/cli/shared"
	"github.com/ariel-frischer/rulesync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// userConfigPath returns the user config path inside the isolated config home.
func userConfigPath(t *testing.T) string {
	t.Helper()
	path, err := config.UserConfigPath()
	require.NoError(t, err)
	return path
}

func TestConfigShow(t *testing.T) {
	root := newTestWorkspace(t)
	writeTestFile(t, config.ProjectConfigPath(root), "on_read_error: preserve\n")

	res := runCLI(t, "", "config", "show", "-w", root)
	require.NoError(t, res.err, res.stderr)

	var values map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &values))
	assert.Equal(t, "preserve", values["on_read_error"])
	assert.Equal(t, "copilot.instructions.md", values["instructions_name"])
	assert.Equal(t, "2s", values["startup_delay"])
	assert.Contains(t, res.stdout, "# sources (lowest priority first):")
	assert.Contains(t, res.stdout, config.ProjectConfigPath(root))
}

func TestConfigShow_DefaultsOnly(t *testing.T) {
	root := newTestWorkspace(t)

	res := runCLI(t, "", "config", "show", "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "# sources: defaults only")
}

func TestConfigShow_JSON(t *testing.T) {
	root := newTestWorkspace(t)
	t.Setenv("RULESYNC_UPDATE_GITIGNORE", "false")

	res := runCLI(t, "", "config", "show", "-o", "json", "-w", root)
	require.NoError(t, res.err, res.stderr)

	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &values))
	assert.Equal(t, false, values["update_gitignore"])
	assert.Equal(t, true, values["auto_inject"])
	patterns, ok := values["managed_patterns"].([]any)
	require.True(t, ok)
	assert.Len(t, patterns, 2)
}

func TestConfigShow_Errors(t *testing.T) {
	tests := map[string]struct {
		args       []string
		setup      func(t *testing.T, root string)
		wantCode   int
		wantStderr string
	}{
		"unknown format": {
			args:       []string{"config", "show", "-o", "toml"},
			wantCode:   ExitInvalidArguments,
			wantStderr: `unknown output format "toml"`,
		},
		"broken project config": {
			args: []string{"config", "show"},
			setup: func(t *testing.T, root string) {
				writeTestFile(t, config.ProjectConfigPath(root), "log_level: [\n")
			},
			wantCode:   ExitValidationFailed,
			wantStderr: "failed to load configuration",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := newTestWorkspace(t)
			if tt.setup != nil {
				tt.setup(t, root)
			}

			res := runCLI(t, "", append(tt.args, "-w", root)...)
			require.Error(t, res.err)
			assert.Equal(t, tt.wantCode, shared.ExitCode(res.err))
			assert.Contains(t, res.stderr, tt.wantStderr)
		})
	}
}

func TestConfigPath(t *testing.T) {
	root := newTestWorkspace(t)
	writeTestFile(t, config.ProjectConfigPath(root), "auto_inject: false\n")

	res := runCLI(t, "", "config", "path", "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, userConfigPath(t)+" (not found)")
	assert.Contains(t, res.stdout, config.ProjectConfigPath(root)+" (exists)")
	assert.NotContains(t, res.stdout, "Explicit")

	explicit := filepath.Join(t.TempDir(), "extra.yml")
	res = runCLI(t, "", "config", "path", "--config", explicit, "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, explicit+" (not found)")
}

func TestConfigPath_BrokenConfigStillWorks(t *testing.T) {
	root := newTestWorkspace(t)
	writeTestFile(t, config.ProjectConfigPath(root), ": not yaml [\n")

	res := runCLI(t, "", "config", "path", "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, config.ProjectConfigPath(root))
}

func TestConfigKeys(t *testing.T) {
	newTestWorkspace(t)

	res := runCLI(t, "", "config", "keys")
	require.NoError(t, res.err, res.stderr)
	for _, key := range config.SortedKeys() {
		assert.Contains(t, res.stdout, key)
	}
	assert.Contains(t, res.stdout, "overwrite|preserve")
}

func TestConfigGet(t *testing.T) {
	tests := map[string]struct {
		key        string
		env        map[string]string
		want       string
		wantCode   int
		wantStderr string
	}{
		"default duration": {key: "startup_delay", want: "2s\n"},
		"default bool":     {key: "auto_inject", want: "true\n"},
		"env override":     {key: "on_read_error", env: map[string]string{"RULESYNC_ON_READ_ERROR": "preserve"}, want: "preserve\n"},
		"name":             {key: "instructions_name", want: "copilot.instructions.md\n"},
		"unknown key": {
			key:        "nope",
			wantCode:   ExitInvalidArguments,
			wantStderr: "unknown configuration key: nope",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := newTestWorkspace(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			res := runCLI(t, "", "config", "get", tt.key, "-w", root)
			if tt.wantCode != 0 {
				require.Error(t, res.err)
				assert.Equal(t, tt.wantCode, shared.ExitCode(res.err))
				assert.Contains(t, res.stderr, tt.wantStderr)
				return
			}
			require.NoError(t, res.err, res.stderr)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestConfigGet_List(t *testing.T) {
	root := newTestWorkspace(t)

	res := runCLI(t, "", "config", "get", "managed_patterns", "-w", root)
	require.NoError(t, res.err, res.stderr)

	var patterns []map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &patterns))
	assert.Equal(t, []map[string]string{
		{"comment": "# Copilot Custom Rules - Instructions files", "pattern": ".github/instructions/"},
		{"comment": "# Task Master - Local task management files", "pattern": ".taskmaster/"},
	}, patterns)
}

func TestConfigSet(t *testing.T) {
	tests := map[string]struct {
		args       []string
		project    bool
		wantStdout string
		wantFile   string
		wantCode   int
		wantStderr string
	}{
		"user scope by default": {
			args:       []string{"config", "set", "startup_delay", "5s"},
			wantStdout: "Set startup_delay = 5s in user config",
			wantFile:   "startup_delay: 5s",
		},
		"project scope": {
			args:       []string{"config", "set", "update_gitignore", "false", "--project"},
			project:    true,
			wantStdout: "Set update_gitignore = false in project config",
			wantFile:   "update_gitignore: false",
		},
		"explicit user scope": {
			args:       []string{"config", "set", "on_read_error", "preserve", "--user"},
			wantStdout: "Set on_read_error = preserve in user config",
			wantFile:   "on_read_error: preserve",
		},
		"invalid enum value": {
			args:       []string{"config", "set", "on_read_error", "ignore"},
			wantCode:   ExitInvalidArguments,
			wantStderr: `invalid value: "ignore"`,
		},
		"invalid bool": {
			args:       []string{"config", "set", "auto_inject", "maybe"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "invalid boolean",
		},
		"unknown key": {
			args:       []string{"config", "set", "bogus", "1"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "unknown configuration key: bogus",
		},
		"list keys are not settable": {
			args:       []string{"config", "set", "managed_patterns", "x"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "is a list",
		},
		"both scopes": {
			args:       []string{"config", "set", "auto_inject", "false", "--user", "--project"},
			wantCode:   ExitInvalidArguments,
			wantStderr: "invalid flag combination: --user and --project",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := newTestWorkspace(t)

			res := runCLI(t, "", append(tt.args, "-w", root)...)
			if tt.wantCode != 0 {
				require.Error(t, res.err)
				assert.Equal(t, tt.wantCode, shared.ExitCode(res.err))
				assert.Contains(t, res.stderr, tt.wantStderr)
				assert.NoFileExists(t, userConfigPath(t))
				return
			}
			require.NoError(t, res.err, res.stderr)
			assert.Contains(t, res.stdout, tt.wantStdout)

			path := userConfigPath(t)
			if tt.project {
				path = config.ProjectConfigPath(root)
			}
			assert.Contains(t, readTestFile(t, path), tt.wantFile)
		})
	}
}

func TestConfigSet_TakesEffect(t *testing.T) {
	root := newTestWorkspace(t)

	res := runCLI(t, "", "config", "set", "update_gitignore", "false", "--project", "-w", root)
	require.NoError(t, res.err, res.stderr)

	res = runCLI(t, "", "sync", "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.FileExists(t, docPath(root))
	assert.NoFileExists(t, filepath.Join(root, ".gitignore"))
}

func TestConfigInit(t *testing.T) {
	tests := map[string]struct {
		args       []string
		existing   string
		project    bool
		wantStdout string
		wantKept   bool
	}{
		"creates user config": {
			args:       []string{"config", "init"},
			wantStdout: "Created user config",
		},
		"creates project config": {
			args:       []string{"config", "init", "--project"},
			project:    true,
			wantStdout: "Created project config",
		},
		"keeps existing config": {
			args:       []string{"config", "init"},
			existing:   "auto_inject: false\n",
			wantStdout: "user config already exists at",
			wantKept:   true,
		},
		"force overwrites": {
			args:       []string{"config", "init", "--force"},
			existing:   "auto_inject: false\n",
			wantStdout: "Created user config",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := newTestWorkspace(t)
			path := userConfigPath(t)
			if tt.project {
				path = config.ProjectConfigPath(root)
			}
			if tt.existing != "" {
				writeTestFile(t, path, tt.existing)
			}

			res := runCLI(t, "", append(tt.args, "-w", root)...)
			require.NoError(t, res.err, res.stderr)
			assert.Contains(t, res.stdout, tt.wantStdout)

			if tt.wantKept {
				assert.Equal(t, tt.existing, readTestFile(t, path))
				return
			}
			assert.Equal(t, config.GetDefaultConfigTemplate(), readTestFile(t, path))
		})
	}
}

func TestConfigInit_TemplateLoads(t *testing.T) {
	root := newTestWorkspace(t)

	res := runCLI(t, "", "config", "init", "--project", "-w", root)
	require.NoError(t, res.err, res.stderr)

	res = runCLI(t, "", "config", "get", "on_read_error", "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "overwrite\n", res.stdout)
}

func TestConfigMigrate(t *testing.T) {
	tests := map[string]struct {
		args       []string
		project    bool
		legacy     string
		existing   string
		wantStdout string
		wantYAML   bool
		wantBackup bool
	}{
		"user config": {
			args:       []string{"config", "migrate"},
			legacy:     `{"on_read_error": "preserve"}`,
			wantStdout: "Migrated",
			wantYAML:   true,
			wantBackup: true,
		},
		"project config": {
			args:       []string{"config", "migrate", "--project"},
			project:    true,
			legacy:     `{"auto_inject": false}`,
			wantStdout: "Migrated",
			wantYAML:   true,
			wantBackup: true,
		},
		"dry run": {
			args:       []string{"config", "migrate", "--dry-run"},
			legacy:     `{"on_read_error": "preserve"}`,
			wantStdout: "Would migrate",
		},
		"nothing to migrate": {
			args:       []string{"config", "migrate"},
			wantStdout: "No JSON config found",
		},
		"yaml already present": {
			args:       []string{"config", "migrate"},
			legacy:     `{"on_read_error": "preserve"}`,
			existing:   "auto_inject: true\n",
			wantStdout: "already exists",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := newTestWorkspace(t)

			yamlPath := userConfigPath(t)
			jsonPath := filepath.Join(filepath.Dir(yamlPath), "config.json")
			if tt.project {
				yamlPath = config.ProjectConfigPath(root)
				jsonPath = config.LegacyProjectConfigPath(root)
			}
			if tt.legacy != "" {
				writeTestFile(t, jsonPath, tt.legacy)
			}
			if tt.existing != "" {
				writeTestFile(t, yamlPath, tt.existing)
			}

			res := runCLI(t, "", append(tt.args, "-w", root)...)
			require.NoError(t, res.err, res.stderr)
			assert.Contains(t, res.stdout, tt.wantStdout)

			if tt.wantYAML {
				assert.Contains(t, readTestFile(t, yamlPath), "# Migrated from JSON format")
			} else if tt.existing != "" {
				assert.Equal(t, tt.existing, readTestFile(t, yamlPath))
			} else {
				assert.NoFileExists(t, yamlPath)
			}

			if tt.wantBackup {
				assert.NoFileExists(t, jsonPath)
				assert.FileExists(t, jsonPath+".bak")
			} else if tt.legacy != "" {
				_, err := os.Stat(jsonPath)
				assert.NoError(t, err, "legacy config must stay in place")
			}
		})
	}
}
