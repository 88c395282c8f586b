package cli

import (
	"fmt"
	"io"
	"strings"

	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/ariel-frischer/rulesync/internal/rules"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"inject"},
	Short:   "Create or heal the instructions document (inject)",
	Long: `Create or heal the instructions document, then add the managed patterns
to .gitignore.

The default template is written only when the document is missing, blank, or
already equal to the default. Custom content is never overwritten. A document
that exists but cannot be read is overwritten or preserved according to
on_read_error.`,
	Example: `  # Sync the document and .gitignore
  rulesync sync

  # Sync the document only
  rulesync sync --no-gitignore`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE:         runSync,
}

func init() {
	syncCmd.GroupID = GroupGettingStarted
	syncCmd.Flags().Bool("gitignore", false, "Update .gitignore even if update_gitignore is off")
	syncCmd.Flags().Bool("no-gitignore", false, "Leave .gitignore untouched")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := checkMutuallyExclusiveFlags(cmd, []BoolFlagPair{{Positive: "gitignore", Negative: "no-gitignore"}}); err != nil {
		return err
	}

	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	updateIgnore := env.cfg.UpdateGitignore
	if override := resolveBoolFlag(cmd, "gitignore", "no-gitignore"); override != nil {
		updateIgnore = *override
	}

	result, err := syncWorkspace(cmd, env, updateIgnore)
	env.record("sync", string(result.Action), err)
	return err
}

// syncWorkspace runs Sync and, when updateIgnore is set, EnsurePatterns,
// printing what changed.
func syncWorkspace(cmd *cobra.Command, env *runtimeEnv, updateIgnore bool) (rules.SyncResult, error) {
	out := cmd.OutOrStdout()

	result, err := env.store.Sync()
	if err != nil {
		return result, clierrors.InstructionsNotWritable(env.store.Path(), err)
	}
	printSyncResult(out, cmd.ErrOrStderr(), env.rel(result.Path), result)

	if !updateIgnore {
		return result, nil
	}
	added, err := env.updater.EnsurePatterns(env.cfg.ManagedPatterns)
	if err != nil {
		return result, clierrors.IgnoreFileNotWritable(env.updater.Path(), err)
	}
	printAddedPatterns(out, added)
	return result, nil
}

func printSyncResult(out, errOut io.Writer, path string, result rules.SyncResult) {
	switch result.Action {
	case rules.ActionCreated:
		output.PrintSuccess(out, "Created", path)
	case rules.ActionHealed:
		output.PrintSuccess(out, "Restored default rules in blank", path)
	case rules.ActionRefreshed:
		output.PrintSuccess(out, "Refreshed default rules in", path)
	case rules.ActionRestored:
		output.PrintSuccess(out, "Replaced unreadable", path)
	case rules.ActionPreserved:
		if result.ReadError != nil {
			output.PrintWarning(errOut, fmt.Sprintf("%s is unreadable and was left untouched: %v", path, result.ReadError))
			return
		}
		output.PrintSkipped(out, fmt.Sprintf("Kept custom rules in %s", path))
	}
}

func printAddedPatterns(out io.Writer, added []ignore.ManagedPattern) {
	if len(added) == 0 {
		output.PrintSkipped(out, fmt.Sprintf("%s already lists the managed patterns", ignore.FileName))
		return
	}
	names := make([]string, 0, len(added))
	for _, p := range added {
		names = append(names, p.Pattern)
	}
	output.PrintSuccess(out, fmt.Sprintf("Added to %s:", ignore.FileName), strings.Join(names, ", "))
}
