package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher answers whether a workspace-relative path is excluded by the
// workspace .gitignore, using go-git's gitignore semantics.
type Matcher struct {
	matcher gitignore.Matcher
}

// LoadMatcher parses <root>/.gitignore. A missing file yields a matcher that
// never ignores anything.
func LoadMatcher(root string) (*Matcher, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Matcher{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}
	return NewMatcher(string(data)), nil
}

// NewMatcher builds a Matcher from ignore file content.
func NewMatcher(content string) *Matcher {
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return &Matcher{}
	}
	return &Matcher{matcher: gitignore.NewMatcher(patterns)}
}

// Ignored reports whether relPath is ignored. Parent directories are checked
// too, since git never descends into an ignored directory.
func (m *Matcher) Ignored(relPath string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	segments := splitPath(relPath)
	for i := 1; i <= len(segments); i++ {
		dir := i < len(segments) || isDir
		if m.matcher.Match(segments[:i], dir) {
			return true
		}
	}
	return false
}

// splitPath splits a path into segments for gitignore matching, dropping
// empty and "." segments.
func splitPath(path string) []string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
