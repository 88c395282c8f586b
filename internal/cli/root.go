// Package cli implements the rulesync command line interface.
package cli

import (
	"github.com/ariel-frischer/rulesync/internal/cli/shared"
	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/spf13/cobra"
)

// Persistent flag values.
var (
	workspaceFlag string
	configFlag    string
	logLevelFlag  string
	logFileFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "rulesync",
	Short: "Keep AI assistant instructions and .gitignore in sync",
	Long: `rulesync keeps the instructions document your AI coding assistant reads
(.github/instructions/copilot.instructions.md) in sync with a built-in default
template, and keeps .gitignore updated with the paths it manages.

Custom edits are never overwritten by sync. A missing or blank document is
restored from the default template; only 'rulesync reset' discards
customizations.`,
	Example: `  # Create or heal the instructions document and update .gitignore
  rulesync sync

  # Replace the document with your own rules
  rulesync save my-rules.md

  # See what sync would do
  rulesync status

  # Keep the document healed while you work
  rulesync watch`,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: GroupRules, Title: "Instructions Document:"},
		&cobra.Group{ID: GroupIgnore, Title: "Ignore File:"},
		&cobra.Group{ID: GroupAutomation, Title: "Automation:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"},
	)
	rootCmd.SetHelpCommandGroupID(GroupGettingStarted)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)

	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace root (default: git work tree of the current directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Explicit config file (YAML or JSON), loaded last")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Append JSON logs to this file")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), cmd.UseLine())
	})
}

// Execute runs the root command and prints any error with remediation.
// The returned error is a *shared.ExitError carrying the process exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	clierrors.FprintSimpleError(rootCmd.ErrOrStderr(), err, clierrors.Runtime)
	return shared.NewExitError(exitCodeFor(err))
}

// exitCodeFor maps an error to an exit code by its CLIError category.
func exitCodeFor(err error) int {
	cliErr := clierrors.AsCLIError(err)
	if cliErr == nil {
		return ExitValidationFailed
	}
	switch cliErr.Category {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Prerequisite:
		return ExitMissingDependencies
	default:
		return ExitValidationFailed
	}
}
