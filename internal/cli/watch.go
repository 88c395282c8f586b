package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/ariel-frischer/rulesync/internal/output"
	"github.com/ariel-frischer/rulesync/internal/watch"
	"github.com/spf13/cobra"
)

var watchDebounce = watch.DefaultDebounce

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the instructions document and .gitignore healed",
	Long: `Watch the instructions document and .gitignore and heal them as they
change: a deleted or blanked document is restored from the default template
and removed managed patterns are added back (when update_gitignore is on).
Custom content is never overwritten. Stops on Ctrl+C or SIGTERM.`,
	Example: `  # Watch the current workspace
  rulesync watch`,
	Args:         argsWithUsage(cobra.NoArgs),
	SilenceUsage: true,
	RunE:         runWatch,
}

func init() {
	watchCmd.GroupID = GroupAutomation
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Wait this long for changes to settle")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := &lockedWriter{w: cmd.OutOrStdout()}
	errOut := &lockedWriter{w: cmd.ErrOrStderr()}
	opts := []watch.Option{
		watch.WithDebounce(watchDebounce),
		watch.WithLogger(env.log.Logger),
		watch.WithNotify(func(ev watch.Event) { printWatchEvent(out, errOut, env, ev) }),
	}
	if env.cfg.UpdateGitignore {
		opts = append(opts, watch.WithIgnore(env.updater, env.cfg.ManagedPatterns))
	}

	w, err := watch.New(env.store, opts...)
	if err != nil {
		return err
	}

	announced := make(chan struct{})
	go func() {
		defer close(announced)
		select {
		case <-w.Ready():
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", env.root)
		case <-ctx.Done():
		}
	}()

	err = w.Run(ctx)
	stop()
	<-announced
	env.record("watch", "stopped", err)
	return err
}

func printWatchEvent(out, errOut io.Writer, env *runtimeEnv, ev watch.Event) {
	if ev.Err != nil {
		output.PrintWarning(errOut, fmt.Sprintf("%s: %v", ev.Kind, ev.Err))
		return
	}
	switch ev.Kind {
	case watch.KindDocument:
		if ev.Sync.Wrote() {
			printSyncResult(out, errOut, env.rel(ev.Sync.Path), ev.Sync)
		}
	case watch.KindIgnore:
		if len(ev.Added) > 0 {
			printAddedPatterns(out, ev.Added)
		}
	}
}

// lockedWriter serializes writes from the watcher loops.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
