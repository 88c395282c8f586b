package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show the state of the instructions document and .gitignore (st)",
	Long: `Show the state of the instructions document and .gitignore without
changing anything: whether the document is custom or default, whether sync
would write it, which managed patterns are present and whether git ignores
the document.`,
	Example: `  # Human-readable status
  rulesync status

  # Machine-readable status
  rulesync status --output json`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE:         runStatus,
}

func init() {
	statusCmd.GroupID = GroupGettingStarted
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "text", "Output format: text, yaml, json")
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the status command's output model.
type statusReport struct {
	Workspace  string            `json:"workspace" yaml:"workspace"`
	Document   documentReport    `json:"document" yaml:"document"`
	IgnoreFile ignoreFileReport  `json:"ignore_file" yaml:"ignore_file"`
	LastAction *lastActionReport `json:"last_action,omitempty" yaml:"last_action,omitempty"`
}

type documentReport struct {
	Path            string `json:"path" yaml:"path"`
	State           string `json:"state" yaml:"state"`
	Modified        bool   `json:"modified" yaml:"modified"`
	ShouldOverwrite bool   `json:"should_overwrite" yaml:"should_overwrite"`
	Size            int    `json:"size" yaml:"size"`
	GitIgnored      bool   `json:"git_ignored" yaml:"git_ignored"`
	ReadError       string `json:"read_error,omitempty" yaml:"read_error,omitempty"`
}

type ignoreFileReport struct {
	Path     string          `json:"path" yaml:"path"`
	Patterns []patternReport `json:"patterns" yaml:"patterns"`
}

type patternReport struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Present bool   `json:"present" yaml:"present"`
}

type lastActionReport struct {
	Command string    `json:"command" yaml:"command"`
	Action  string    `json:"action" yaml:"action"`
	At      time.Time `json:"at" yaml:"at"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	switch statusOutput {
	case "text", "yaml", "json":
	default:
		return clierrors.NewArgumentErrorWithUsage(
			fmt.Sprintf("unknown output format %q", statusOutput),
			cmd.UseLine(),
			"Valid formats: text, yaml, json",
		)
	}

	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	report, err := buildStatusReport(env)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch statusOutput {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		fmt.Fprint(out, string(data))
	default:
		printStatusText(out, report)
	}
	return nil
}

func buildStatusReport(env *runtimeEnv) (*statusReport, error) {
	st := env.store.Status()
	docRel := env.rel(st.Path)

	report := &statusReport{
		Workspace: env.root,
		Document: documentReport{
			Path:            docRel,
			State:           st.State.String(),
			Modified:        st.Modified,
			ShouldOverwrite: st.ShouldOverwrite,
			Size:            st.Size,
		},
		IgnoreFile: ignoreFileReport{Path: env.rel(env.updater.Path())},
	}
	if st.ReadError != nil {
		report.Document.ReadError = st.ReadError.Error()
	}

	present, err := env.updater.Present(env.cfg.ManagedPatterns)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", ignore.FileName, err)
	}
	for _, p := range env.cfg.ManagedPatterns {
		report.IgnoreFile.Patterns = append(report.IgnoreFile.Patterns, patternReport{
			Pattern: p.Pattern,
			Present: present[p.Pattern],
		})
	}

	matcher, err := ignore.LoadMatcher(env.root)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", ignore.FileName, err)
	}
	report.Document.GitIgnored = matcher.Ignored(filepath.ToSlash(docRel), false)

	if env.recorder != nil {
		if s, err := env.recorder.Load(); err != nil {
			env.log.Warn("reading state file failed", "error", err)
		} else if last, ok := s.Last(env.root); ok {
			report.LastAction = &lastActionReport{Command: last.Command, Action: last.Action, At: last.UpdatedAt}
		}
	}
	return report, nil
}

func printStatusText(out io.Writer, r *statusReport) {
	output.PrintSection(out, "Workspace")
	output.PrintField(out, "Root", r.Workspace)
	if r.LastAction != nil {
		action := r.LastAction.Command
		if r.LastAction.Action != "" {
			action += " (" + r.LastAction.Action + ")"
		}
		output.PrintField(out, "Last action", action+" at "+r.LastAction.At.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out)

	output.PrintSection(out, "Instructions")
	output.PrintField(out, "Path", r.Document.Path)
	output.PrintField(out, "State", r.Document.State)
	output.PrintField(out, "Modified", output.YesNo(r.Document.Modified))
	output.PrintField(out, "Sync would write", output.YesNo(r.Document.ShouldOverwrite))
	output.PrintField(out, "Ignored by git", output.YesNo(r.Document.GitIgnored))
	if r.Document.ReadError != "" {
		output.PrintField(out, "Read error", r.Document.ReadError)
	}
	fmt.Fprintln(out)

	output.PrintSection(out, "Ignore file")
	output.PrintField(out, "Path", r.IgnoreFile.Path)
	for _, p := range r.IgnoreFile.Patterns {
		fmt.Fprintf(out, "  %s %s\n", output.Check(p.Present), p.Pattern)
	}
}
