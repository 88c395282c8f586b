package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/rules"
)

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# Rulesync Configuration
# See 'rulesync config -h' for commands, 'rulesync config keys' for all options

# Workspace settings
workspace: ""                         # Workspace root (empty = git work tree, else current dir)
instructions_name: copilot.instructions.md  # File name under .github/instructions/

# Sync behavior
auto_inject: true                     # 'rulesync startup' syncs the instructions document
update_gitignore: true                # Keep managed patterns in .gitignore on sync/watch
startup_delay: 2s                     # Delay before 'rulesync startup' syncs
on_read_error: overwrite              # Unreadable document on sync: overwrite | preserve
skip_confirmations: false             # Skip the 'rulesync reset' confirmation prompt

# .gitignore entries maintained by rulesync (replaces the defaults when set)
managed_patterns:
  - comment: "# Copilot Custom Rules - Instructions files"
    pattern: .github/instructions/
  - comment: "# Task Master - Local task management files"
    pattern: .taskmaster/

# Logging
log_level: warn                       # debug | info | warn | error
log_file: ""                          # Append JSON logs to this file (empty = disabled)
log_journal: false                    # Also send logs to the systemd journal
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"workspace":         "",
		"instructions_name": rules.DefaultName,
		// auto_inject: mirrors the editor extension, which synced on every startup.
		"auto_inject":      true,
		"update_gitignore": true,
		// startup_delay: gives the editor time to restore the workspace before syncing.
		"startup_delay":      (2 * time.Second).String(),
		"on_read_error":      string(rules.PolicyOverwrite),
		"skip_confirmations": false, // Confirmation prompts enabled by default
		"managed_patterns":   defaultPatternMaps(),
		"log_level":          "warn",
		"log_file":           "",
		"log_journal":        false,
	}
}

// defaultPatternMaps renders ignore.DefaultPatterns the way a parsed config
// file would present them to koanf.
func defaultPatternMaps() []interface{} {
	defaults := ignore.DefaultPatterns()
	out := make([]interface{}, 0, len(defaults))
	for _, p := range defaults {
		out = append(out, map[string]interface{}{
			"comment": p.Comment,
			"pattern": p.Pattern,
		})
	}
	return out
}

// WriteDefaultConfig writes the commented default template to path,
// creating parent directories.
func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
