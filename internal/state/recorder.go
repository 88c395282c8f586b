package state

import (
	"fmt"
	"log/slog"
	"time"
)

// Recorder loads, updates and saves the state file for one invocation.
type Recorder struct {
	// Path is the state file location.
	Path string
	// MaxEntries bounds the history (0 keeps everything).
	MaxEntries int

	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder creates a Recorder for path.
func NewRecorder(path string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{
		Path:       path,
		MaxEntries: DefaultMaxEntries,
		logger:     logger.With("component", "state"),
		now:        time.Now,
	}
}

// Load reads the current state.
func (r *Recorder) Load() (*State, error) {
	return LoadFrom(r.Path)
}

// Record appends an entry for command in workspace.
// Errors are non-fatal: they are logged as warnings and returned for tests.
func (r *Recorder) Record(workspace, command, action string, cmdErr error) error {
	entry := Entry{
		Timestamp: r.now(),
		Workspace: workspace,
		Command:   command,
		Action:    action,
	}
	if cmdErr != nil {
		entry.Error = cmdErr.Error()
	}

	err := r.update(func(s *State) bool {
		s.add(entry, r.MaxEntries)
		return true
	})
	if err != nil {
		r.logger.Warn("failed to record state", "path", r.Path, "error", err)
	}
	return err
}

// ClaimWelcome reports whether the welcome message should be shown now and
// marks it as shown. It is true exactly once per state file.
func (r *Recorder) ClaimWelcome() (bool, error) {
	first := false
	err := r.update(func(s *State) bool {
		if s.WelcomeShown {
			return false
		}
		s.WelcomeShown = true
		first = true
		return true
	})
	if err != nil {
		r.logger.Warn("failed to record welcome state", "path", r.Path, "error", err)
		return false, err
	}
	return first, nil
}

func (r *Recorder) update(fn func(*State) bool) error {
	s, err := r.Load()
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	if !fn(s) {
		return nil
	}
	if err := s.SaveTo(r.Path); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// ClearHistory drops the history and per-workspace entries. The welcome flag
// is kept so the welcome message is not shown again.
func (r *Recorder) ClearHistory() error {
	return r.update(func(s *State) bool {
		s.History = nil
		s.Workspaces = map[string]WorkspaceEntry{}
		return true
	})
}
