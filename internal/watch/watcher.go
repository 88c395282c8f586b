// Package watch keeps a workspace healed while rulesync runs in the
// foreground. It restores a deleted or blanked instructions document and
// re-adds managed .gitignore patterns when the ignore file is edited.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/ariel-frischer/rulesync/internal/ignore"
	"github.com/ariel-frischer/rulesync/internal/rules"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is how long the watcher waits for a burst of events to settle.
const DefaultDebounce = 200 * time.Millisecond

// Document is the part of rules.Store the watcher needs.
type Document interface {
	Path() string
	Dir() string
	Status() rules.Status
	Sync() (rules.SyncResult, error)
}

// IgnoreFile is the part of ignore.Updater the watcher needs.
type IgnoreFile interface {
	Path() string
	EnsurePatterns(patterns []ignore.ManagedPattern) ([]ignore.ManagedPattern, error)
}

// EventKind identifies which loop produced an Event.
type EventKind string

const (
	KindDocument EventKind = "document"
	KindIgnore   EventKind = "ignore"
)

// Event reports one healing action.
type Event struct {
	Kind  EventKind
	Sync  rules.SyncResult
	Added []ignore.ManagedPattern
	Err   error
}

// Watcher runs the document loop and, when configured, the ignore loop.
type Watcher struct {
	doc      Document
	ignore   IgnoreFile
	patterns []ignore.ManagedPattern
	debounce time.Duration
	logger   *slog.Logger
	notify   func(Event)
	ready    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithIgnore enables the ignore loop for the given patterns.
func WithIgnore(f IgnoreFile, patterns []ignore.ManagedPattern) Option {
	return func(w *Watcher) {
		w.ignore = f
		w.patterns = patterns
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithNotify registers a callback invoked after every healing action.
// It is called from the loop goroutines.
func WithNotify(fn func(Event)) Option {
	return func(w *Watcher) {
		w.notify = fn
	}
}

// New creates a Watcher for doc.
func New(doc Document, opts ...Option) (*Watcher, error) {
	if doc == nil {
		return nil, errors.New("watch: nil document")
	}
	w := &Watcher{
		doc:      doc,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "watch")
	return w, nil
}

// Ready is closed once every loop has registered its watches.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run heals once, then watches until ctx is cancelled. Cancellation is not
// an error.
func (w *Watcher) Run(ctx context.Context) error {
	w.healDocument()
	if w.ignore != nil {
		w.healIgnore()
	}

	loops := []func(context.Context, func()) error{w.documentLoop}
	if w.ignore != nil {
		loops = append(loops, w.ignoreLoop)
	}

	var started sync.WaitGroup
	started.Add(len(loops))
	go func() {
		started.Wait()
		close(w.ready)
	}()

	g, gctx := errgroup.WithContext(ctx)
	for _, loop := range loops {
		markReady := sync.OnceFunc(started.Done)
		g.Go(func() error {
			defer markReady()
			return loop(gctx, markReady)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// documentLoop watches the instructions directory and its parent, so that
// removing the whole directory is noticed too.
func (w *Watcher) documentLoop(ctx context.Context, ready func()) error {
	dir := filepath.Clean(w.doc.Dir())
	path := filepath.Clean(w.doc.Path())
	parent := filepath.Dir(dir)

	return w.loop(ctx, ready, []string{parent, dir}, func(name string) bool {
		return name == path || name == dir
	}, func(fw *fsnotify.Watcher) {
		w.healDocument()
		// The directory may have been recreated; re-adding is a no-op otherwise.
		if err := fw.Add(dir); err != nil {
			w.logger.Debug("re-adding instructions directory watch failed", "dir", dir, "error", err)
		}
	})
}

// ignoreLoop watches the workspace root for changes to the ignore file.
func (w *Watcher) ignoreLoop(ctx context.Context, ready func()) error {
	path := filepath.Clean(w.ignore.Path())
	root := filepath.Dir(path)

	return w.loop(ctx, ready, []string{root}, func(name string) bool {
		return name == path
	}, func(*fsnotify.Watcher) {
		w.healIgnore()
	})
}

// loop is the shared fsnotify select loop with debouncing.
func (w *Watcher) loop(ctx context.Context, ready func(), dirs []string, relevant func(string) bool, fire func(*fsnotify.Watcher)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	ready()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if relevant(filepath.Clean(event.Name)) {
				w.logger.Debug("file event", "name", event.Name, "op", event.Op.String())
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		case <-timer.C:
			fire(fw)
		}
	}
}

// healDocument syncs only when the document needs restoring. A document
// already equal to the default is left alone so our own write does not
// trigger another round.
func (w *Watcher) healDocument() {
	status := w.doc.Status()
	if !status.ShouldOverwrite || status.State == rules.StateDefault {
		return
	}
	result, err := w.doc.Sync()
	if err != nil {
		w.logger.Error("restoring instructions failed", "path", w.doc.Path(), "error", err)
	} else if result.Wrote() {
		w.logger.Info("instructions restored", "path", result.Path, "action", string(result.Action))
	}
	w.emit(Event{Kind: KindDocument, Sync: result, Err: err})
}

func (w *Watcher) healIgnore() {
	added, err := w.ignore.EnsurePatterns(w.patterns)
	if err != nil {
		w.logger.Error("updating ignore file failed", "path", w.ignore.Path(), "error", err)
	}
	if err == nil && len(added) == 0 {
		return
	}
	w.emit(Event{Kind: KindIgnore, Added: added, Err: err})
}

func (w *Watcher) emit(ev Event) {
	if w.notify != nil {
		w.notify(ev)
	}
}
