// Package ignore keeps a workspace .gitignore in step with the paths rulesync
// manages.
//
// Adding and removing use deliberately different matching rules:
//
//   - EnsurePatterns treats a pattern as present when its text occurs anywhere
//     in the file (substring match). This is what makes repeated calls no-ops.
//   - RemovePatterns only drops lines that are exactly a managed pattern or its
//     comment (line match), so unrelated lines that merely contain the pattern
//     as part of a longer path survive.
//
// Both rules live in their own functions, containsPattern and lineMatches.
// Do not unify them; the add path relies on the looser rule for idempotence.
package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ariel-frischer/rulesync/internal/workspace"
)

// FileName is the ignore file maintained in the workspace root.
const FileName = ".gitignore"

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Updater edits the ignore file of one workspace.
type Updater struct {
	path   string
	logger *slog.Logger
}

// Option configures an Updater.
type Option func(*Updater)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(u *Updater) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewUpdater creates an Updater for <root>/.gitignore.
// An empty root returns workspace.ErrNoWorkspace.
func NewUpdater(root string, opts ...Option) (*Updater, error) {
	if root == "" {
		return nil, workspace.ErrNoWorkspace
	}
	u := &Updater{
		path:   filepath.Join(root, FileName),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.logger = u.logger.With("component", "ignore")
	return u, nil
}

// Path returns the absolute path of the ignore file.
func (u *Updater) Path() string { return u.path }

// EnsurePatterns appends a comment+pattern block for every pattern not yet
// present, in the order given. Blocks are separated from earlier content by
// exactly one blank line. The file is written only when something was added.
// It returns the patterns that were added.
func (u *Updater) EnsurePatterns(patterns []ManagedPattern) ([]ManagedPattern, error) {
	content, _, err := u.read()
	if err != nil {
		return nil, err
	}

	var added []ManagedPattern
	for _, p := range patterns {
		if strings.TrimSpace(p.Pattern) == "" {
			continue
		}
		// Substring match against everything written so far, including blocks
		// added earlier in this call.
		if containsPattern(content, p.Pattern) {
			continue
		}
		content = appendBlock(content, p)
		added = append(added, p)
	}

	if len(added) == 0 {
		u.logger.Debug("ignore patterns already present", "path", u.path)
		return nil, nil
	}
	if err := u.write(content); err != nil {
		return nil, err
	}
	u.logger.Info("updated ignore file", "path", u.path, "added", len(added))
	return added, nil
}

// RemovePatterns deletes every line that is exactly one of the managed
// patterns or their comments, then collapses runs of blank lines to a single
// blank line. A missing file is a no-op. It reports whether the file changed.
func (u *Updater) RemovePatterns(patterns []ManagedPattern) (bool, error) {
	content, exists, err := u.read()
	if err != nil || !exists {
		return false, err
	}

	targets := make([]string, 0, len(patterns)*2)
	for _, p := range patterns {
		if p.Pattern != "" {
			targets = append(targets, p.Pattern)
		}
		if c := p.CommentLine(); c != "" {
			targets = append(targets, c)
		}
	}

	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		// Exact line match only; "docs/.taskmaster/notes" must survive
		// removal of ".taskmaster/".
		if lineMatches(line, targets) {
			continue
		}
		kept = append(kept, line)
	}

	updated := blankRuns.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
	if strings.TrimSpace(updated) == "" {
		updated = ""
	}
	if updated == content {
		return false, nil
	}
	if err := u.write(updated); err != nil {
		return false, err
	}
	u.logger.Info("removed managed patterns from ignore file", "path", u.path)
	return true, nil
}

// Present reports, per pattern text, whether EnsurePatterns would consider
// the pattern already present.
func (u *Updater) Present(patterns []ManagedPattern) (map[string]bool, error) {
	content, _, err := u.read()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		present[p.Pattern] = containsPattern(content, p.Pattern)
	}
	return present, nil
}

// containsPattern is the add-side presence test: raw substring match over the
// whole file.
func containsPattern(content, pattern string) bool {
	return strings.Contains(content, pattern)
}

// lineMatches is the remove-side test: the trimmed line must equal one of
// the targets exactly.
func lineMatches(line string, targets []string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, t := range targets {
		if trimmed == t {
			return true
		}
	}
	return false
}

// appendBlock adds p's block to content, separated by one blank line when
// content is non-empty. Only trailing whitespace of content is normalized.
func appendBlock(content string, p ManagedPattern) string {
	prior := strings.TrimRight(content, " \t\r\n")
	if prior == "" {
		return p.block()
	}
	return prior + "\n\n" + p.block()
}

func (u *Updater) read() (string, bool, error) {
	data, err := os.ReadFile(u.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", FileName, err)
	}
	return string(data), true, nil
}

func (u *Updater) write(content string) error {
	if err := os.WriteFile(u.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", FileName, err)
	}
	return nil
}
