// Package cli tests the startup and watch commands.
// Related: internal/cli/startup.go, internal/cli/watch.go
// Tags: cli, startup, watch, automation

package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ariel-frischer/rulesync/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupCommand(t *testing.T) {
	tests := map[string]struct {
		args       []string
		env        map[string]string
		wantDoc    bool
		wantIgnore bool
		wantStdout []string
	}{
		"syncs when auto inject is on": {
			args:       []string{"startup", "--delay", "0s"},
			wantDoc:    true,
			wantIgnore: true,
			wantStdout: []string{"Welcome to rulesync!", "Created .github/instructions/copilot.instructions.md"},
		},
		"delay from environment": {
			args:       []string{"startup"},
			env:        map[string]string{"RULESYNC_STARTUP_DELAY": "0s"},
			wantDoc:    true,
			wantIgnore: true,
		},
		"auto inject off does nothing": {
			args:       []string{"startup", "--delay", "0s"},
			env:        map[string]string{"RULESYNC_AUTO_INJECT": "false"},
			wantStdout: []string{"Welcome to rulesync!"},
		},
		"update gitignore off": {
			args:    []string{"startup", "--delay", "0s"},
			env:     map[string]string{"RULESYNC_UPDATE_GITIGNORE": "false"},
			wantDoc: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root := newTestWorkspace(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			res := runCLI(t, "", append(tt.args, "-w", root)...)
			require.NoError(t, res.err, res.stderr)
			for _, want := range tt.wantStdout {
				assert.Contains(t, res.stdout, want)
			}

			if tt.wantDoc {
				assert.Equal(t, rules.DefaultTemplate(), readTestFile(t, docPath(root)))
			} else {
				assert.NoFileExists(t, docPath(root))
			}
			if tt.wantIgnore {
				assert.FileExists(t, filepath.Join(root, ".gitignore"))
			} else {
				assert.NoFileExists(t, filepath.Join(root, ".gitignore"))
			}
		})
	}
}

func TestStartupCommand_WelcomeOnce(t *testing.T) {
	root := newTestWorkspace(t)

	first := runCLI(t, "", "startup", "--delay", "0s", "-w", root)
	require.NoError(t, first.err, first.stderr)
	assert.Contains(t, first.stdout, "Welcome to rulesync!")

	second := runCLI(t, "", "startup", "--delay", "0s", "-w", root)
	require.NoError(t, second.err, second.stderr)
	assert.NotContains(t, second.stdout, "Welcome to rulesync!")
	assert.Contains(t, second.stdout, "Refreshed default rules")
}

func TestStartupCommand_CancelledDuringDelay(t *testing.T) {
	root := newTestWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := runCLIContext(t, ctx, "", "startup", "--delay", "1h", "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.NoFileExists(t, docPath(root))
}

func TestStartupCommand_KeepsCustomRules(t *testing.T) {
	root := newTestWorkspace(t)
	writeTestFile(t, docPath(root), "# Team rules\n")

	res := runCLI(t, "", "startup", "--delay", "0s", "-w", root)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "# Team rules\n", readTestFile(t, docPath(root)))
}

func TestWatchCommand_HealsUntilCancelled(t *testing.T) {
	root := newTestWorkspace(t)
	template := rules.DefaultTemplate()
	ignorePath := filepath.Join(root, ".gitignore")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan cliResult, 1)
	go func() {
		done <- runCLIContext(t, ctx, "", "watch", "--debounce", "10ms", "-w", root)
	}()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(ignorePath)
		return err == nil && len(data) > 0
	}, 5*time.Second, 20*time.Millisecond, "initial heal should write .gitignore")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(docPath(root))
		return err == nil && string(data) == template
	}, 5*time.Second, 20*time.Millisecond, "initial heal should create the document")

	// Blank the document until the watcher restores it; writes made before the
	// watcher is ready are simply repeated.
	blanked := false
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(docPath(root))
		if err == nil && string(data) == template && blanked {
			return true
		}
		blanked = os.WriteFile(docPath(root), nil, 0o644) == nil
		return false
	}, 5*time.Second, 100*time.Millisecond, "blanked document should be restored")

	cancel()
	select {
	case res := <-done:
		require.NoError(t, res.err, res.stderr)
		assert.Contains(t, res.stdout, "Restored default rules in blank")
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
