package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/rulesync/internal/config"
	clierrors "github.com/ariel-frischer/rulesync/internal/errors"
	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/logging"
	"github.com/ariel-frischer/rulesync/internal/rules"
	"github.com/ariel-frischer/rulesync/internal/state"
	"github.com/ariel-frischer/rulesync/internal/workspace"
	"github.com/spf13/cobra"
)

// runtimeEnv is everything a workspace command needs: the resolved root,
// the effective configuration, the logger and the two file components.
type runtimeEnv struct {
	root     string
	cfg      *config.Configuration
	log      *logging.Logger
	store    *rules.Store
	updater  *ignore.Updater
	recorder *state.Recorder
}

// newRuntimeEnv loads configuration in two passes. The first pass (user
// config, env, --config) settles the logger and the configured workspace;
// the second adds the project config of the resolved workspace.
func newRuntimeEnv(cmd *cobra.Command) (*runtimeEnv, error) {
	base, err := config.LoadWithOptions(config.LoadOptions{
		ConfigPath:   configFlag,
		SkipWarnings: true,
	})
	if err != nil {
		return nil, clierrors.ConfigParseError(err)
	}
	applyLogFlags(cmd, base)

	logger, err := logging.New(logging.Options{
		Level:   base.LogLevel,
		Writer:  cmd.ErrOrStderr(),
		File:    base.LogFile,
		Journal: base.LogJournal,
	})
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration,
			"failed to set up logging",
			"Check --log-level and --log-file",
		)
	}
	workspace.SetDebugLogger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...), "component", "workspace")
	})
	defer workspace.SetDebugLogger(nil)

	root, err := resolveRoot(base.Workspace)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		WorkspaceRoot: root,
		ConfigPath:    configFlag,
		WarningWriter: cmd.ErrOrStderr(),
	})
	if err != nil {
		_ = logger.Close()
		return nil, clierrors.ConfigParseError(err)
	}
	applyLogFlags(cmd, cfg)
	if level, err := logging.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	env, err := buildEnv(root, cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	logger.Debug("workspace resolved", "root", root, "document", env.store.Path(), "sources", len(cfg.Sources))
	return env, nil
}

// buildEnv creates the components for root from cfg.
func buildEnv(root string, cfg *config.Configuration, logger *logging.Logger) (*runtimeEnv, error) {
	policy, err := cfg.ReadErrorPolicy()
	if err != nil {
		return nil, clierrors.InvalidReadErrorPolicy(cfg.OnReadError)
	}

	store, err := rules.NewStore(root,
		rules.WithName(cfg.InstructionsName),
		rules.WithReadErrorPolicy(policy),
		rules.WithLogger(logger.Logger),
	)
	if err != nil {
		return nil, err
	}
	updater, err := ignore.NewUpdater(root, ignore.WithLogger(logger.Logger))
	if err != nil {
		return nil, err
	}

	env := &runtimeEnv{root: root, cfg: cfg, log: logger, store: store, updater: updater}
	if path, err := state.DefaultPath(); err != nil {
		logger.Warn("state file unavailable", "error", err)
	} else {
		env.recorder = state.NewRecorder(path, logger.Logger)
	}
	return env, nil
}

// applyLogFlags lets --log-level and --log-file override the config.
func applyLogFlags(cmd *cobra.Command, cfg *config.Configuration) {
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = logFileFlag
	}
}

// resolveRoot resolves the workspace from --workspace, then configured,
// then detection from the current directory.
func resolveRoot(configured string) (string, error) {
	explicit := workspaceFlag
	if explicit == "" {
		explicit = configured
	}
	root, err := workspace.Resolve(explicit)
	if err != nil {
		cliErr := clierrors.NoWorkspace(explicit)
		cliErr.Cause = err
		return "", cliErr
	}
	return root, nil
}

// resolveRootForConfig resolves the workspace without loading config files,
// so config commands keep working when a config file is broken.
func resolveRootForConfig() (string, error) {
	return resolveRoot(os.Getenv(config.EnvPrefix + "WORKSPACE"))
}

// Close releases the logger.
func (e *runtimeEnv) Close() {
	if err := e.log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log file: %v\n", err)
	}
}

// rel renders path relative to the workspace root for display.
func (e *runtimeEnv) rel(path string) string {
	if r, err := filepath.Rel(e.root, path); err == nil {
		return r
	}
	return path
}

// record stores the outcome of command in the state file. Failures are
// logged and never fail the command.
func (e *runtimeEnv) record(command, action string, cmdErr error) {
	if e.recorder == nil {
		return
	}
	_ = e.recorder.Record(e.root, command, action, cmdErr)
}

// isFallback reports whether err is a recoverable read fallback.
func isFallback(err error) bool {
	return errors.Is(err, rules.ErrFallback)
}
