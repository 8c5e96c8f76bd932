// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs feature discovery when classpath inputs change.
//
// It monitors a workspace for files matching glob patterns (jars, class
// files, sources, classpath descriptors, manifests) and invokes a callback
// after a debounce period. Events within the debounce window are coalesced so
// the callback fires once with the full set of changed paths, and a callback
// never overlaps a previous one still in progress.
package watch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// A build writes many class files in a burst; wait this long after the last
// event before rescanning.
const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are excluded on top of Config.Ignore.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.svn/**",
	"**/.idea/**",
	"**/.gradle/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

var (
	// ErrInvalidConfig is the sentinel behind configuration errors.
	ErrInvalidConfig = errors.New("invalid watch config")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")
)

type (
	// Config configures a Watcher.
	Config struct {
		// Patterns select the files that trigger a rescan ("**/*.jar").
		// Empty means every file that is not ignored.
		Patterns []string
		Ignore   []string
		// Debounce defaults to 500ms.
		Debounce time.Duration

		// ClearScreen clears the terminal on Stdout before each callback.
		ClearScreen bool

		// BaseDir is the workspace directory to watch. Empty means the
		// current working directory.
		BaseDir string

		// OnChange receives the sorted, slash-separated paths relative to
		// BaseDir that changed during the debounce window.
		OnChange func(ctx context.Context, changed []string) error

		Stdout io.Writer
		Logger *log.Logger
	}

	// Watcher fires a debounced callback when matching files change. Run
	// must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		stdout   io.Writer
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
		runs     atomic.Int64
	}
)

// Validate checks the glob patterns and the base directory.
func (c Config) Validate() error {
	var errs []error
	if c.BaseDir != "" && strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, fmt.Errorf("base dir %q: must not be whitespace-only", c.BaseDir))
	}
	if err := validatePatterns(c.Patterns, "watch"); err != nil {
		errs = append(errs, err)
	}
	if err := validatePatterns(c.Ignore, "ignore"); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// New registers every non-ignored directory under BaseDir. Invalid patterns
// fail here rather than silently never matching.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := filepath.Abs(cmp.Or(cfg.BaseDir, "."))
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		stdout:   cfg.Stdout,
		logger:   cfg.Logger,
		debounce: cfg.Debounce,
		baseDir:  base,
	}
	if w.stdout == nil {
		w.stdout = os.Stdout
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}

	if w.fsw, err = fsnotify.NewWatcher(); err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := w.watchTree(base); err != nil {
		_ = w.fsw.Close()
		return nil, err
	}
	return w, nil
}

// Runs returns how many times the callback has been invoked.
func (w *Watcher) Runs() int64 { return w.runs.Load() }

// Run processes events until ctx is cancelled, which returns nil. Fatal
// watcher errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := &batch{pending: make(map[string]struct{})}
	b.fire = func() { w.flush(ctx, b) }
	defer func() {
		b.stop()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("watch: close fsnotify", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if rel, ok := w.relevant(evt); ok {
				b.add(rel, w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// relevant returns the slash-separated path of evt relative to the base
// directory when it should trigger a rescan. Created directories are added to
// the watch even if their names match no pattern.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.baseDir, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return "", false
	}
	if evt.Has(fsnotify.Create) {
		if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
			if err := w.watchTree(evt.Name); err != nil {
				w.logger.Warn("watch: add new directory", "path", evt.Name, "error", err)
			}
		}
	}
	if len(w.cfg.Patterns) > 0 && !matchAny(w.cfg.Patterns, rel) {
		return "", false
	}
	return rel, true
}

// flush runs the callback with the pending paths. When the previous callback
// is still running the batch is re-armed so no path is lost.
func (w *Watcher) flush(ctx context.Context, b *batch) {
	if ctx.Err() != nil {
		return
	}
	if !b.running.CompareAndSwap(false, true) {
		w.logger.Info("watch: skipping rescan (previous run still in progress)")
		b.rearm(w.debounce)
		return
	}
	defer b.running.Store(false)

	changed := b.drain()
	if len(changed) == 0 {
		return
	}
	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, "\033[2J\033[H")
	}
	w.runs.Add(1)
	w.logger.Debug("watch: change detected", "files", len(changed))
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.logger.Error("watch: rescan failed", "error", err)
	}
}

// watchTree adds root and every non-ignored directory below it. Unreadable
// subtrees are logged and skipped.
func (w *Watcher) watchTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		switch {
		case err != nil:
			w.logger.Warn("watch: skipping inaccessible path", "path", path, "error", err)
			return nil
		case !d.IsDir():
			return nil
		}
		if rel, relErr := filepath.Rel(w.baseDir, path); relErr == nil {
			rel = filepath.ToSlash(rel)
			if w.ignored(rel) || w.ignored(rel+"/") {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

func (w *Watcher) ignored(rel string) bool { return matchAny(w.ignores, rel) }

// batch coalesces changed paths until the debounce timer fires.
type batch struct {
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	fire    func()
	running atomic.Bool
}

func (b *batch) add(rel string, debounce time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[rel] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(debounce, b.fire)
		return
	}
	b.timer.Reset(debounce)
}

func (b *batch) rearm(debounce time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Reset(debounce)
	}
}

// drain returns the pending paths sorted and empties the set.
func (b *batch) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := slices.Sorted(maps.Keys(b.pending))
	clear(b.pending)
	return changed
}

func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

func matchAny(patterns []string, rel string) bool {
	rel = filepath.ToSlash(rel)
	return slices.ContainsFunc(patterns, func(pat string) bool {
		ok, err := doublestar.Match(pat, rel)
		return err == nil && ok
	})
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string { return slices.Clone(defaultIgnores) }

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if strings.TrimSpace(pat) == "" || !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
