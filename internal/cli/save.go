package cli

import (
	"io"
	"os"

	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/spf13/cobra"
)

var saveAndSync bool

var saveCmd = &cobra.Command{
	Use:   "save [file|-]",
	Short: "Replace the instructions document with new content",
	Long: `Replace the instructions document with the content of a file, or of
stdin when the argument is '-' or omitted. The text is written verbatim.

With --sync the document is synced right after saving and the managed
patterns are added to .gitignore (when update_gitignore is on).`,
	Example: `  # Save rules from a file
  rulesync save my-rules.md

  # Save rules from stdin
  cat my-rules.md | rulesync save -

  # Save and inject in one step
  rulesync save my-rules.md --sync`,
	Args:         argsWithUsage(cobra.MaximumNArgs(1)),
	SilenceUsage: true,
	RunE:         runSave,
}

func init() {
	saveCmd.GroupID = GroupRules
	saveCmd.Flags().BoolVar(&saveAndSync, "sync", false, "Run sync after saving")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	text, err := readSaveInput(cmd, args)
	if err != nil {
		return err
	}

	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.store.Save(text); err != nil {
		err = clierrors.InstructionsNotWritable(env.store.Path(), err)
		env.record("save", "", err)
		return err
	}
	output.PrintSuccess(cmd.OutOrStdout(), "Saved rules to", env.rel(env.store.Path()))

	if !saveAndSync {
		env.record("save", "saved", nil)
		return nil
	}
	result, err := syncWorkspace(cmd, env, env.cfg.UpdateGitignore)
	env.record("save", string(result.Action), err)
	return err
}

// readSaveInput reads the new document from the file argument or stdin.
func readSaveInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", clierrors.FileNotReadable(args[0], err)
		}
		return string(data), nil
	}

	if len(args) == 0 && isTerminalFunc() {
		return "", clierrors.NewArgumentErrorWithUsage(
			"no input: pass a file or pipe content on stdin",
			cmd.UseLine(),
			"Example: rulesync save my-rules.md",
		)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", clierrors.FileNotReadable("stdin", err)
	}
	return string(data), nil
}
