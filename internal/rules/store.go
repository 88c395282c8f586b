package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ariel-frischer/rulesync/internal/workspace"
)

// DefaultName is the file name of the instructions document.
const DefaultName = "copilot.instructions.md"

// RelDir returns the instructions directory relative to the workspace root.
func RelDir() string {
	return filepath.Join(".github", "instructions")
}

var (
	// ErrFallback marks a read that failed and was answered with the default template.
	ErrFallback = errors.New("instructions unreadable, using default template")
	// ErrVerifyFailed is returned when a reset wrote the file but reading it back
	// did not yield the default template.
	ErrVerifyFailed = errors.New("instructions content does not match default template after reset")
)

// FallbackError reports a recoverable failure on the read path.
// The caller still received usable text (the default template).
type FallbackError struct {
	Op   string
	Path string
	Err  error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("%s %s: %v (using default template)", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrFallback and the underlying I/O error to errors.Is.
func (e *FallbackError) Unwrap() []error {
	return []error{ErrFallback, e.Err}
}

// ReadErrorPolicy decides what ShouldOverwriteWithDefault answers when the
// document exists but cannot be read.
type ReadErrorPolicy string

const (
	// PolicyOverwrite restores the default template when the document is unreadable.
	PolicyOverwrite ReadErrorPolicy = "overwrite"
	// PolicyPreserve leaves an unreadable document untouched.
	PolicyPreserve ReadErrorPolicy = "preserve"
)

// ParseReadErrorPolicy converts a config value to a ReadErrorPolicy.
// The empty string selects PolicyOverwrite.
func ParseReadErrorPolicy(s string) (ReadErrorPolicy, error) {
	switch ReadErrorPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyPreserve:
		return PolicyPreserve, nil
	default:
		return "", fmt.Errorf("unknown read error policy %q (valid: overwrite, preserve)", s)
	}
}

// State is the logical state of the instructions document.
type State int

const (
	// StateAbsent means the document does not exist.
	StateAbsent State = iota
	// StateEmpty means the document exists but is blank after trimming.
	StateEmpty
	// StateDefault means the trimmed content equals the trimmed default template.
	StateDefault
	// StateCustom means the user has diverged from the default template.
	StateCustom
	// StateUnreadable means the document exists but could not be read.
	StateUnreadable
)

// String returns the lowercase state name used in CLI output.
func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateEmpty:
		return "empty"
	case StateDefault:
		return "default"
	case StateCustom:
		return "custom"
	case StateUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Store owns the instructions document of one workspace.
type Store struct {
	root     string
	dir      string
	path     string
	template string
	policy   ReadErrorPolicy
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithName overrides the document file name (default DefaultName).
func WithName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.path = filepath.Join(s.dir, name)
		}
	}
}

// WithTemplate overrides the default template text.
func WithTemplate(template string) Option {
	return func(s *Store) {
		s.template = template
	}
}

// WithReadErrorPolicy sets the policy applied when the document cannot be read.
func WithReadErrorPolicy(p ReadErrorPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a Store for the workspace rooted at root.
// An empty root returns workspace.ErrNoWorkspace.
func NewStore(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, workspace.ErrNoWorkspace
	}
	dir := filepath.Join(root, RelDir())
	s := &Store{
		root:     root,
		dir:      dir,
		path:     filepath.Join(dir, DefaultName),
		template: DefaultTemplate(),
		policy:   PolicyOverwrite,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "rules")
	return s, nil
}

// Path returns the absolute path of the instructions document.
func (s *Store) Path() string { return s.path }

// Dir returns the directory holding the instructions document.
func (s *Store) Dir() string { return s.dir }

// Root returns the workspace root.
func (s *Store) Root() string { return s.root }

// Template returns the default template this store restores.
func (s *Store) Template() string { return s.template }

// Policy returns the configured read error policy.
func (s *Store) Policy() ReadErrorPolicy { return s.policy }

// Read returns the document content. A missing or blank document is
// materialized with the default template first.
//
// Read always returns usable text. When the document cannot be read or
// materialized, the default template is returned together with a
// *FallbackError; callers may show it as a warning and carry on.
func (s *Store) Read() (string, error) {
	state, content, err := s.inspect()
	switch state {
	case StateDefault, StateCustom:
		return content, nil
	case StateUnreadable:
		s.logger.Warn("reading instructions failed, using default template", "path", s.path, "error", err)
		return s.template, &FallbackError{Op: "read", Path: s.path, Err: err}
	}

	if err := s.write(s.template); err != nil {
		s.logger.Warn("materializing instructions failed, using default template", "path", s.path, "error", err)
		return s.template, &FallbackError{Op: "materialize", Path: s.path, Err: err}
	}
	s.logger.Info("materialized instructions from default template", "path", s.path, "previous_state", state.String())
	return s.template, nil
}

// Save writes text verbatim to the document, creating the directory if needed.
func (s *Store) Save(text string) error {
	if err := s.write(text); err != nil {
		return err
	}
	s.logger.Debug("saved instructions", "path", s.path, "bytes", len(text))
	return nil
}

// IsModifiedFromDefault reports whether the trimmed document differs from the
// trimmed default template. A missing document is not modified.
func (s *Store) IsModifiedFromDefault() (bool, error) {
	state, _, err := s.inspect()
	switch state {
	case StateAbsent:
		return false, nil
	case StateUnreadable:
		return false, err
	case StateDefault:
		return false, nil
	case StateEmpty:
		// blank content differs from any non-blank template
		return strings.TrimSpace(s.template) != "", nil
	default:
		return true, nil
	}
}

// ShouldOverwriteWithDefault reports whether Sync would write the default
// template: when the document is absent, blank, or already equal to the
// default. It is false whenever the user has diverged from the default.
//
// An unreadable document is decided by the store's ReadErrorPolicy.
func (s *Store) ShouldOverwriteWithDefault() bool {
	state, _, err := s.inspect()
	return s.decide(state, err)
}

func (s *Store) decide(state State, readErr error) bool {
	switch state {
	case StateAbsent, StateEmpty, StateDefault:
		return true
	case StateUnreadable:
		overwrite := s.policy != PolicyPreserve
		s.logger.Warn("instructions unreadable during overwrite check",
			"path", s.path, "policy", string(s.policy), "overwrite", overwrite, "error", readErr)
		return overwrite
	default:
		return false
	}
}

// SyncAction describes what Sync did.
type SyncAction string

const (
	// ActionCreated means the document was absent and has been written.
	ActionCreated SyncAction = "created"
	// ActionHealed means a blank document was replaced with the default template.
	ActionHealed SyncAction = "healed"
	// ActionRefreshed means a document equal to the default was rewritten.
	ActionRefreshed SyncAction = "refreshed"
	// ActionRestored means an unreadable document was overwritten per PolicyOverwrite.
	ActionRestored SyncAction = "restored"
	// ActionPreserved means the document was left untouched.
	ActionPreserved SyncAction = "preserved"
)

// SyncResult reports the outcome of Sync.
type SyncResult struct {
	Action SyncAction
	// Previous is the document state observed before Sync acted.
	Previous State
	Path     string
	// ReadError is set when the document could not be read and the policy kept it.
	ReadError error
}

// Wrote reports whether Sync wrote the document.
func (r SyncResult) Wrote() bool {
	return r.Action != ActionPreserved && r.Action != ""
}

// Sync is the idempotent inject operation. It makes sure the instructions
// directory exists and writes the default template only when
// ShouldOverwriteWithDefault holds. Custom content is never touched.
func (s *Store) Sync() (SyncResult, error) {
	result := SyncResult{Path: s.path}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return result, fmt.Errorf("creating instructions directory: %w", err)
	}

	state, _, readErr := s.inspect()
	result.Previous = state
	if !s.decide(state, readErr) {
		result.Action = ActionPreserved
		if state == StateUnreadable {
			result.ReadError = readErr
		}
		s.logger.Debug("instructions preserved", "path", s.path, "state", state.String())
		return result, nil
	}

	if err := s.write(s.template); err != nil {
		return result, err
	}

	switch state {
	case StateAbsent:
		result.Action = ActionCreated
	case StateEmpty:
		result.Action = ActionHealed
	case StateUnreadable:
		result.Action = ActionRestored
	default:
		result.Action = ActionRefreshed
	}
	s.logger.Info("instructions synced", "path", s.path, "action", string(result.Action))
	return result, nil
}

// ResetToDefault unconditionally writes the default template, discarding any
// customization, and verifies the result by reading it back.
// This is the only operation allowed to overwrite custom content.
func (s *Store) ResetToDefault() error {
	if err := s.Save(s.template); err != nil {
		return err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("verifying reset: %w", err)
	}
	if string(data) != s.template {
		return fmt.Errorf("%w: %s", ErrVerifyFailed, s.path)
	}
	s.logger.Info("instructions reset to default", "path", s.path)
	return nil
}

// Status is a read-only snapshot of the document.
type Status struct {
	Path            string
	State           State
	Modified        bool
	ShouldOverwrite bool
	Size            int
	ReadError       error
}

// Status inspects the document without modifying it.
func (s *Store) Status() Status {
	state, content, err := s.inspect()
	return Status{
		Path:            s.path,
		State:           state,
		Modified:        state == StateCustom || (state == StateEmpty && strings.TrimSpace(s.template) != ""),
		ShouldOverwrite: s.decide(state, err),
		Size:            len(content),
		ReadError:       err,
	}
}

// inspect reads the document once and classifies it.
// The error is non-nil only for StateUnreadable.
func (s *Store) inspect() (State, string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		// ENOTDIR: a path component is a regular file, so the document cannot exist.
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return StateAbsent, "", nil
		}
		return StateUnreadable, "", err
	}

	content := string(data)
	trimmed := strings.TrimSpace(content)
	switch {
	case trimmed == "":
		return StateEmpty, content, nil
	case trimmed == strings.TrimSpace(s.template):
		return StateDefault, content, nil
	default:
		return StateCustom, content, nil
	}
}

func (s *Store) write(content string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating instructions directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing instructions file: %w", err)
	}
	return nil
}
