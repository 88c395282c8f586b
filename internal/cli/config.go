package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ariel-frischer/rulesync/internal/config"
	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rulesync configuration",
	Long: `Manage rulesync configuration settings.

Configuration is loaded with the following priority (highest to lowest):
  1. Explicit config file (--config)
  2. Environment variables (RULESYNC_*)
  3. Project config (<workspace>/.rulesync/config.yml)
  4. User config (~/.config/rulesync/config.yml)
  5. Built-in defaults`,
	Example: `  # Show the effective configuration
  rulesync config show

  # Keep custom rules when the document is unreadable
  rulesync config set on_read_error preserve --project

  # Create a commented user config
  rulesync config init`,
}

var configShowCmd = &cobra.Command{
	Use:          "show",
	Short:        "Show the effective configuration",
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("output")
		if format != "yaml" && format != "json" {
			return clierrors.NewArgumentErrorWithUsage(
				fmt.Sprintf("unknown output format %q", format),
				cmd.UseLine(),
				"Valid formats: yaml, json",
			)
		}

		cfg, err := loadConfigForCommand(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format == "json" {
			data, err := json.MarshalIndent(cfg.Values(), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		data, err := yaml.Marshal(cfg.Values())
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		fmt.Fprint(out, string(data))
		printSources(out, cfg.Sources)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:          "path",
	Short:        "Show where configuration files are read from",
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRootForConfig()
		if err != nil {
			return err
		}
		userPath, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("getting user config path: %w", err)
		}

		out := cmd.OutOrStdout()
		printConfigPath(out, "User", userPath)
		printConfigPath(out, "Project", config.ProjectConfigPath(root))
		if configFlag != "" {
			printConfigPath(out, "Explicit", config.ExpandHomePath(configFlag))
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:          "keys",
	Short:        "List known configuration keys",
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cyan := color.New(color.FgCyan).SprintFunc()
		dim := color.New(color.Faint).SprintFunc()
		for _, key := range config.SortedKeys() {
			schema := config.KnownKeys[key]
			kind := schema.Type.String()
			if len(schema.AllowedValues) > 0 {
				kind = strings.Join(schema.AllowedValues, "|")
			}
			fmt.Fprintf(out, "%s %s\n    %s\n", cyan(fmt.Sprintf("%-20s", key)), dim(kind), schema.Description)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:          "get <key>",
	Short:        "Print one effective configuration value",
	Args:         argsWithUsage(cobra.ExactArgs(1)),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.GetKeySchema(args[0]); err != nil {
			return clierrors.NewArgumentError(err.Error(), "List known keys with: rulesync config keys")
		}
		cfg, err := loadConfigForCommand(cmd)
		if err != nil {
			return err
		}
		value := cfg.Values()[args[0]]
		if list, ok := value.([]map[string]string); ok {
			data, err := yaml.Marshal(list)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", args[0], err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one value to the user or project config file",
	Example: `  # Write to the user config
  rulesync config set startup_delay 5s

  # Write to the project config
  rulesync config set update_gitignore false --project`,
	Args:         argsWithUsage(cobra.ExactArgs(2)),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkScopeFlags(cmd); err != nil {
			return err
		}
		project, _ := cmd.Flags().GetBool("project")
		path, scope, err := configTarget(project)
		if err != nil {
			return err
		}

		if err := config.SetConfigValue(path, args[0], args[1]); err != nil {
			return clierrors.NewArgumentError(err.Error(), "List known keys with: rulesync config keys")
		}
		parsed, _ := config.ValidateValue(args[0], args[1])
		output.PrintSuccess(cmd.OutOrStdout(),
			fmt.Sprintf("Set %s = %v in %s config", args[0], parsed.Parsed, scope), "("+path+")")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create a commented config file with all defaults",
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkScopeFlags(cmd); err != nil {
			return err
		}
		project, _ := cmd.Flags().GetBool("project")
		force, _ := cmd.Flags().GetBool("force")
		path, scope, err := configTarget(project)
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !force {
			output.PrintSkipped(cmd.OutOrStdout(), fmt.Sprintf("%s config already exists at %s (use --force to overwrite)", scope, path))
			return nil
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Created %s config", scope), path)
		return nil
	},
}

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert a legacy JSON config to YAML",
	Long: `Convert the legacy config.json to config.yml. The JSON file is renamed to
config.json.bak after a successful migration. An existing YAML file is never
overwritten.`,
	Example: `  # Preview the user config migration
  rulesync config migrate --user --dry-run`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkScopeFlags(cmd); err != nil {
			return err
		}
		project, _ := cmd.Flags().GetBool("project")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		var result *config.MigrationResult
		var err error
		if project {
			root, rootErr := resolveRootForConfig()
			if rootErr != nil {
				return rootErr
			}
			result, err = config.MigrateProjectConfig(root, dryRun)
		} else {
			result, err = config.MigrateUserConfig(dryRun)
		}
		if err != nil {
			return clierrors.ConfigParseError(err)
		}

		if !result.Success {
			output.PrintSkipped(cmd.OutOrStdout(), result.Message)
			return nil
		}
		if err := config.RemoveLegacyConfig(result.SourcePath, dryRun); err != nil {
			return err
		}
		output.PrintSuccess(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	configCmd.GroupID = GroupConfiguration

	configShowCmd.Flags().StringP("output", "o", "yaml", "Output format: yaml, json")

	for _, c := range []*cobra.Command{configSetCmd, configInitCmd, configMigrateCmd} {
		c.Flags().Bool("user", false, "Use the user config (default)")
		c.Flags().Bool("project", false, "Use the project config of the workspace")
	}
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config file")
	configMigrateCmd.Flags().Bool("dry-run", false, "Show what would be migrated without writing")

	configCmd.AddCommand(configShowCmd, configPathCmd, configKeysCmd, configGetCmd, configSetCmd, configInitCmd, configMigrateCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfigForCommand loads the effective configuration of the workspace.
func loadConfigForCommand(cmd *cobra.Command) (*config.Configuration, error) {
	root, err := resolveRootForConfig()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		WorkspaceRoot: root,
		ConfigPath:    configFlag,
		WarningWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, clierrors.ConfigParseError(err)
	}
	applyLogFlags(cmd, cfg)
	return cfg, nil
}

func checkScopeFlags(cmd *cobra.Command) error {
	if cmd.Flags().Changed("user") && cmd.Flags().Changed("project") {
		return clierrors.InvalidFlagCombination("--user and --project", "choose one config file")
	}
	return nil
}

// configTarget returns the config file for the selected scope.
func configTarget(project bool) (path, scope string, err error) {
	if project {
		root, err := resolveRootForConfig()
		if err != nil {
			return "", "", err
		}
		return config.ProjectConfigPath(root), "project", nil
	}
	path, err = config.UserConfigPath()
	if err != nil {
		return "", "", fmt.Errorf("getting user config path: %w", err)
	}
	return path, "user", nil
}

func printConfigPath(out io.Writer, label, path string) {
	state := "not found"
	if _, err := os.Stat(path); err == nil {
		state = "exists"
	}
	output.PrintField(out, label, fmt.Sprintf("%s (%s)", path, state))
}

func printSources(out io.Writer, sources []config.SourceFile) {
	if len(sources) == 0 {
		fmt.Fprintln(out, "# sources: defaults only")
		return
	}
	fmt.Fprintln(out, "# sources (lowest priority first):")
	for _, src := range sources {
		fmt.Fprintf(out, "#   %s: %s\n", src.Source, src.Path)
	}
}
