package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ariel-frischer/rulesync/internal/config"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the current version of the state.yml schema.
const SchemaVersion = "1"

// DefaultFileName is the name of the state file.
const DefaultFileName = "state.yml"

// DefaultMaxEntries bounds the history kept in the state file.
const DefaultMaxEntries = 200

// State is the contents of state.yml.
type State struct {
	Version string `yaml:"version"`

	// WelcomeShown is set once the first-run welcome message was displayed.
	WelcomeShown bool `yaml:"welcome_shown"`

	// Workspaces maps a workspace root to the last action taken there.
	Workspaces map[string]WorkspaceEntry `yaml:"workspaces,omitempty"`

	// History holds the most recent entries, oldest first.
	History []Entry `yaml:"history,omitempty"`
}

// WorkspaceEntry is the last recorded action in one workspace.
type WorkspaceEntry struct {
	Command   string    `yaml:"command"`
	Action    string    `yaml:"action"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Entry is one recorded command outcome.
type Entry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Workspace string    `yaml:"workspace"`
	Command   string    `yaml:"command"`
	Action    string    `yaml:"action"`
	Error     string    `yaml:"error,omitempty"`
}

// New returns an empty State at the current schema version.
func New() *State {
	return &State{Version: SchemaVersion, Workspaces: map[string]WorkspaceEntry{}}
}

// DefaultPath returns <user config dir>/rulesync/state.yml.
func DefaultPath() (string, error) {
	dir, err := config.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving state directory: %w", err)
	}
	return filepath.Join(dir, DefaultFileName), nil
}

// LoadFrom reads the state file at path. A missing file yields New().
func LoadFrom(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing state YAML: %w", err)
	}
	if s.Workspaces == nil {
		s.Workspaces = map[string]WorkspaceEntry{}
	}
	if s.Version == "" {
		s.Version = SchemaVersion
	}
	return s, nil
}

// SaveTo writes the state to path, creating the parent directory.
func (s *State) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// Last returns the last recorded action for a workspace.
func (s *State) Last(workspace string) (WorkspaceEntry, bool) {
	e, ok := s.Workspaces[workspace]
	return e, ok
}

// add records entry and prunes history to maxEntries (0 keeps everything).
func (s *State) add(entry Entry, maxEntries int) {
	if entry.Workspace != "" {
		s.Workspaces[entry.Workspace] = WorkspaceEntry{
			Command:   entry.Command,
			Action:    entry.Action,
			UpdatedAt: entry.Timestamp,
		}
	}
	s.History = append(s.History, entry)
	if maxEntries > 0 && len(s.History) > maxEntries {
		excess := len(s.History) - maxEntries
		s.History = s.History[excess:]
	}
}

// Filter returns the history entries for workspace (all when empty), keeping
// at most the last limit entries (0 keeps everything). Oldest first.
func (s *State) Filter(workspace string, limit int) []Entry {
	var result []Entry
	for _, entry := range s.History {
		if workspace == "" || entry.Workspace == workspace {
			result = append(result, entry)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}
