// Package state tests the persisted welcome flag and action history.
// Related: internal/state/state.go, internal/state/recorder.go
// Tags: state, yaml, persistence, history

package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r := NewRecorder(filepath.Join(t.TempDir(), "rulesync", DefaultFileName), nil)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	r.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return r
}

func TestDefaultPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "state.yml", filepath.Base(path))
	assert.Equal(t, "rulesync", filepath.Base(filepath.Dir(path)))
}

func TestLoadFrom(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content     *string
		wantErr     string
		wantWelcome bool
	}{
		"missing file": {},
		"empty file": {
			content: strPtr(""),
		},
		"welcome shown": {
			content:     strPtr("version: \"1\"\nwelcome_shown: true\n"),
			wantWelcome: true,
		},
		"invalid yaml": {
			content: strPtr("welcome_shown: [\n"),
			wantErr: "parsing state YAML",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), DefaultFileName)
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			s, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, SchemaVersion, s.Version)
			assert.Equal(t, tt.wantWelcome, s.WelcomeShown)
			assert.NotNil(t, s.Workspaces)
		})
	}
}

func TestRecorder_ClaimWelcome(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)

	first, err := r.ClaimWelcome()
	require.NoError(t, err)
	assert.True(t, first)

	again, err := r.ClaimWelcome()
	require.NoError(t, err)
	assert.False(t, again, "welcome is shown once")

	s, err := r.Load()
	require.NoError(t, err)
	assert.True(t, s.WelcomeShown)
}

func TestRecorder_Record(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)

	require.NoError(t, r.Record("/ws/a", "sync", "created", nil))
	require.NoError(t, r.Record("/ws/b", "reset", "reset", nil))
	require.NoError(t, r.Record("/ws/a", "sync", "preserved", errors.New("gitignore not writable")))

	s, err := r.Load()
	require.NoError(t, err)
	require.Len(t, s.History, 3)
	assert.Equal(t, "gitignore not writable", s.History[2].Error)

	last, ok := s.Last("/ws/a")
	require.True(t, ok)
	assert.Equal(t, "preserved", last.Action)
	assert.Equal(t, "sync", last.Command)
	assert.Equal(t, s.History[2].Timestamp, last.UpdatedAt)

	_, ok = s.Last("/ws/missing")
	assert.False(t, ok)
}

func TestRecorder_Pruning(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		records    int
		maxEntries int
		want       int
		wantOldest string
	}{
		"no pruning needed":     {records: 3, maxEntries: 5, want: 3, wantOldest: "cmd-0"},
		"prune oldest":          {records: 7, maxEntries: 5, want: 5, wantOldest: "cmd-2"},
		"zero keeps everything": {records: 4, maxEntries: 0, want: 4, wantOldest: "cmd-0"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := newTestRecorder(t)
			r.MaxEntries = tt.maxEntries
			for i := 0; i < tt.records; i++ {
				require.NoError(t, r.Record("/ws", fmt.Sprintf("cmd-%d", i), "created", nil))
			}

			s, err := r.Load()
			require.NoError(t, err)
			assert.Len(t, s.History, tt.want)
			assert.Equal(t, tt.wantOldest, s.History[0].Command)
		})
	}
}

func TestState_Filter(t *testing.T) {
	t.Parallel()

	s := New()
	for i, ws := range []string{"/a", "/b", "/a", "/a"} {
		s.add(Entry{Workspace: ws, Command: fmt.Sprintf("cmd-%d", i)}, 0)
	}

	tests := map[string]struct {
		workspace string
		limit     int
		want      []string
	}{
		"all":              {want: []string{"cmd-0", "cmd-1", "cmd-2", "cmd-3"}},
		"one workspace":    {workspace: "/a", want: []string{"cmd-0", "cmd-2", "cmd-3"}},
		"limit keeps last": {workspace: "/a", limit: 2, want: []string{"cmd-2", "cmd-3"}},
		"unknown":          {workspace: "/c"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, e := range s.Filter(tt.workspace, tt.limit) {
				got = append(got, e.Command)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecorder_ClearHistory(t *testing.T) {
	t.Parallel()

	r := newTestRecorder(t)
	_, err := r.ClaimWelcome()
	require.NoError(t, err)
	require.NoError(t, r.Record("/ws", "sync", "created", nil))

	require.NoError(t, r.ClearHistory())

	s, err := r.Load()
	require.NoError(t, err)
	assert.Empty(t, s.History)
	assert.Empty(t, s.Workspaces)
	assert.True(t, s.WelcomeShown)
}

func TestRecorder_UnwritablePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	r := NewRecorder(filepath.Join(blocker, DefaultFileName), nil)
	err := r.Record("/ws", "sync", "created", nil)
	require.Error(t, err)

	_, err = r.ClaimWelcome()
	require.Error(t, err)
}

func strPtr(s string) *string { return &s }
