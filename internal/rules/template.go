package rules

import _ "embed"

//go:embed default.md
var defaultTemplate string

// DefaultTemplate returns the built-in instructions content.
// The value is embedded at build time and never changes during a run.
func DefaultTemplate() string { return defaultTemplate }
