package ignore

import "strings"

// ManagedPattern is one path rulesync keeps out of version control, with the
// comment line written above it.
type ManagedPattern struct {
	Comment string `koanf:"comment" yaml:"comment" json:"comment"`
	Pattern string `koanf:"pattern" yaml:"pattern" json:"pattern" validate:"required"`
}

// CommentLine returns the comment as written to the ignore file.
// A comment without a leading '#' is prefixed with "# "; an empty comment
// yields the empty string.
func (p ManagedPattern) CommentLine() string {
	c := strings.TrimSpace(p.Comment)
	if c == "" {
		return ""
	}
	if !strings.HasPrefix(c, "#") {
		return "# " + c
	}
	return c
}

// block returns the lines appended for this pattern, newline terminated.
func (p ManagedPattern) block() string {
	if c := p.CommentLine(); c != "" {
		return c + "\n" + p.Pattern + "\n"
	}
	return p.Pattern + "\n"
}

// DefaultPatterns returns the managed patterns used when none are configured:
// the instructions directory and the Task Master working directory.
func DefaultPatterns() []ManagedPattern {
	return []ManagedPattern{
		{Comment: "# Copilot Custom Rules - Instructions files", Pattern: ".github/instructions/"},
		{Comment: "# Task Master - Local task management files", Pattern: ".taskmaster/"},
	}
}
