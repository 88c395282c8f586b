// Package workspace resolves the workspace root rulesync operates on.
//
// The root is taken from an explicit path when one is given. Otherwise the
// git work tree containing the starting directory is used (found with go-git,
// walking up to the nearest .git), and failing that the starting directory
// itself. A root that does not exist or is not a directory is reported as
// ErrNoWorkspace; no other location is ever substituted.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNoWorkspace is returned when no usable workspace root can be resolved.
var ErrNoWorkspace = errors.New("no workspace root")

// Error describes a workspace root that could not be used.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("workspace %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("workspace %s: not a directory", e.Path)
}

// Unwrap lets errors.Is match ErrNoWorkspace and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNoWorkspace}
	}
	return []error{ErrNoWorkspace, e.Err}
}

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for workspace resolution.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Resolve returns the workspace root, starting from the current directory
// when explicit is empty.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		return ResolveFrom("", explicit)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", &Error{Path: ".", Err: fmt.Errorf("getting current directory: %w", err)}
	}
	return ResolveFrom(cwd, "")
}

// ResolveFrom resolves the workspace root from start. An explicit root wins
// over detection and must be an existing directory.
func ResolveFrom(start, explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", &Error{Path: explicit, Err: err}
		}
		if err := checkDir(abs); err != nil {
			return "", err
		}
		logDebug("[workspace] using explicit root %s", abs)
		return abs, nil
	}

	if start == "" {
		return "", ErrNoWorkspace
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", &Error{Path: start, Err: err}
	}
	if err := checkDir(abs); err != nil {
		return "", err
	}

	if root, err := RepositoryRoot(abs); err == nil {
		logDebug("[workspace] using git work tree root %s", root)
		return root, nil
	}
	logDebug("[workspace] %s is not inside a git work tree, using it as root", abs)
	return abs, nil
}

// RepositoryRoot returns the work tree root of the git repository containing path.
// It uses go-git's PlainOpenWithOptions with DetectDotGit enabled to traverse
// up the directory tree.
func RepositoryRoot(path string) (string, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	return worktree.Filesystem.Root(), nil
}

// IsGitRepository reports whether path is inside a git work tree.
func IsGitRepository(path string) bool {
	_, err := RepositoryRoot(path)
	return err == nil
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Path: path, Err: fs.ErrNotExist}
		}
		return &Error{Path: path, Err: err}
	}
	if !info.IsDir() {
		return &Error{Path: path}
	}
	return nil
}
