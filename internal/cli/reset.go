package cli

import (
	"errors"

	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/ariel-frischer/rulesync/internal/rules"
	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard custom rules and restore the default template",
	Long: `Overwrite the instructions document with the default template.

This is the only command that discards custom content, so it asks for
confirmation when the document has been modified. Pass --yes, set
skip_confirmations, or set RULESYNC_YES=1 to skip the prompt. Without a
terminal and without confirmation the command refuses.`,
	Example: `  # Reset with a confirmation prompt
  rulesync reset

  # Reset without prompting
  rulesync reset --yes`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE:         runReset,
}

func init() {
	resetCmd.GroupID = GroupRules
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	status := env.store.Status()
	needsConfirm := status.Modified || status.State == rules.StateUnreadable
	if needsConfirm && !resetYes && !env.cfg.SkipConfirmations {
		if !isTerminalFunc() {
			return clierrors.ResetNotConfirmed()
		}
		if !promptYesNo(cmd, "Discard custom rules in "+env.rel(status.Path)+" and restore the default template?") {
			output.PrintSkipped(cmd.OutOrStdout(), "Reset cancelled")
			env.record("reset", "cancelled", nil)
			return nil
		}
	}

	if err := env.store.ResetToDefault(); err != nil {
		if !errors.Is(err, rules.ErrVerifyFailed) {
			err = clierrors.InstructionsNotWritable(env.store.Path(), err)
		}
		env.record("reset", "", err)
		return err
	}

	output.PrintSuccess(cmd.OutOrStdout(), "Restored default rules in", env.rel(env.store.Path()))
	env.record("reset", "reset", nil)
	return nil
}
