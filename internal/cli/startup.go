package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/ariel-frischer/rulesync/internal/progress"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var startupDelayFlag time.Duration

// detectTerminal is replaced in tests.
var detectTerminal = progress.DetectTerminalCapabilities

var startupCmd = &cobra.Command{
	Use:   "startup",
	Short: "Sync automatically when a workspace opens",
	Long: `Run the automatic sync meant for editor or shell startup hooks.

When auto_inject is on, waits startup_delay so the workspace can settle,
then runs sync. The first time rulesync runs on this machine a short
welcome message is shown. When auto_inject is off the command does nothing.`,
	Example: `  # From a shell hook or editor task
  rulesync startup

  # Skip the delay
  rulesync startup --delay 0s`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE:         runStartup,
}

func init() {
	startupCmd.GroupID = GroupAutomation
	startupCmd.Flags().DurationVar(&startupDelayFlag, "delay", 0, "Override startup_delay")
	rootCmd.AddCommand(startupCmd)
}

func runStartup(cmd *cobra.Command, args []string) error {
	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	showWelcome(cmd.OutOrStdout(), env)

	if !env.cfg.AutoInject {
		env.log.Info("auto inject disabled, nothing to do")
		return nil
	}

	delay := env.cfg.StartupDelay
	if cmd.Flags().Changed("delay") {
		delay = startupDelayFlag
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := progress.Wait(ctx, delay, cmd.ErrOrStderr(), "Waiting for workspace to settle...", detectTerminal()); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	result, err := syncWorkspace(cmd, env, env.cfg.UpdateGitignore)
	env.record("startup", string(result.Action), err)
	return err
}

// showWelcome prints the one-time welcome message.
func showWelcome(out io.Writer, env *runtimeEnv) {
	if env.recorder == nil {
		return
	}
	first, err := env.recorder.ClaimWelcome()
	if err != nil || !first {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(out, bold("Welcome to rulesync!"))
	fmt.Fprintf(out, "Your assistant's rules live in %s.\n", env.rel(env.store.Path()))
	fmt.Fprintln(out, "Edit them with 'rulesync edit'; sync never overwrites your changes.")
	output.PrintSkipped(out, "Run 'rulesync --help' for all commands.")
	fmt.Fprintln(out)
}
