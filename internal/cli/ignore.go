package cli

import (
	"fmt"

	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/spf13/cobra"
)

var ignoreComment string

var ignoreCmd = &cobra.Command{
	Use:   "ignore",
	Short: "Add or remove the managed .gitignore patterns",
	Long: `Add or remove the managed .gitignore patterns.

Without arguments the configured managed_patterns are used. Pass patterns as
arguments to manage other entries; --comment sets the comment line written
above each added pattern.`,
}

var ignoreAddCmd = &cobra.Command{
	Use:   "add [pattern...]",
	Short: "Append missing managed patterns to .gitignore",
	Long: `Append each missing pattern to .gitignore as a comment line plus the
pattern, separated from earlier content by one blank line. A pattern that
already occurs anywhere in the file is skipped, so running this twice changes
nothing.`,
	Example: `  # Add the configured patterns
  rulesync ignore add

  # Add a custom pattern
  rulesync ignore add .cache/ --comment "Local cache"`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRuntimeEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		added, err := env.updater.EnsurePatterns(patternsFromArgs(env, args))
		if err != nil {
			err = clierrors.IgnoreFileNotWritable(env.updater.Path(), err)
			env.record("ignore add", "", err)
			return err
		}
		printAddedPatterns(cmd.OutOrStdout(), added)
		env.record("ignore add", fmt.Sprintf("added %d", len(added)), nil)
		return nil
	},
}

var ignoreRemoveCmd = &cobra.Command{
	Use:     "remove [pattern...]",
	Aliases: []string{"rm"},
	Short:   "Remove managed patterns and their comments from .gitignore",
	Long: `Remove every line that exactly equals a pattern or its comment line,
then collapse runs of blank lines. Lines that merely contain a pattern are
kept.`,
	Example: `  # Remove the configured patterns
  rulesync ignore remove`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRuntimeEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		changed, err := env.updater.RemovePatterns(patternsFromArgs(env, args))
		if err != nil {
			err = clierrors.IgnoreFileNotWritable(env.updater.Path(), err)
			env.record("ignore remove", "", err)
			return err
		}
		if !changed {
			output.PrintSkipped(cmd.OutOrStdout(), fmt.Sprintf("No managed patterns found in %s", ignore.FileName))
			env.record("ignore remove", "unchanged", nil)
			return nil
		}
		output.PrintSuccess(cmd.OutOrStdout(), "Removed managed patterns from", ignore.FileName)
		env.record("ignore remove", "removed", nil)
		return nil
	},
}

func init() {
	ignoreCmd.GroupID = GroupIgnore
	ignoreCmd.PersistentFlags().StringVar(&ignoreComment, "comment", "", "Comment for patterns given as arguments")
	ignoreCmd.AddCommand(ignoreAddCmd, ignoreRemoveCmd)
	rootCmd.AddCommand(ignoreCmd)
}

// patternsFromArgs returns the configured patterns, or args as patterns
// sharing the --comment text.
func patternsFromArgs(env *runtimeEnv, args []string) []ignore.ManagedPattern {
	if len(args) == 0 {
		return env.cfg.ManagedPatterns
	}
	patterns := make([]ignore.ManagedPattern, 0, len(args))
	for _, arg := range args {
		patterns = append(patterns, ignore.ManagedPattern{Comment: ignoreComment, Pattern: arg})
	}
	return patterns
}
