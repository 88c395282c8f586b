package cli

import (
	"fmt"
	"os"
	"os/exec"

	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the instructions document in your editor",
	Long: `Open the instructions document in $VISUAL or $EDITOR.

A missing or blank document is materialized from the default template first,
so the editor always opens real content. The editor command may include
arguments (e.g. EDITOR="code --wait").`,
	Example: `  # Edit with the configured editor
  rulesync edit

  # Edit with a one-off editor
  EDITOR="code --wait" rulesync edit`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE:         runEdit,
}

func init() {
	editCmd.GroupID = GroupRules
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	path := env.store.Path()
	argv, err := editorCommand(path)
	if err != nil {
		return err
	}

	if _, err := env.store.Read(); err != nil {
		if !isFallback(err) {
			return err
		}
		output.PrintWarning(cmd.ErrOrStderr(), err.Error())
	}

	editor := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
	editor.Stdin = cmd.InOrStdin()
	editor.Stdout = cmd.OutOrStdout()
	editor.Stderr = cmd.ErrOrStderr()
	env.log.Debug("launching editor", "argv", argv)
	if err := editor.Run(); err != nil {
		err = clierrors.WrapWithMessage(err, clierrors.Runtime,
			fmt.Sprintf("editor %q failed", argv[0]),
			"Check the EDITOR environment variable",
			"Or open the file directly: "+path,
		)
		env.record("edit", "", err)
		return err
	}
	env.record("edit", "edited", nil)
	return nil
}

// editorCommand builds the editor argv for path from $VISUAL, then $EDITOR.
func editorCommand(path string) ([]string, error) {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		parts, err := shlex.Split(value)
		if err != nil {
			return nil, clierrors.NewConfigError(
				fmt.Sprintf("cannot parse $%s: %v", name, err),
				"Quote arguments with spaces, e.g. EDITOR=\"code --wait\"",
			)
		}
		if len(parts) == 0 {
			continue
		}
		return append(parts, path), nil
	}
	return nil, clierrors.EditorNotConfigured(path)
}
