// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

const callbackTimeout = 5 * time.Second

// lockedBuffer is a bytes.Buffer safe for the watcher's timer goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// harness runs a Watcher over a temp workspace and records every callback.
type harness struct {
	t       *testing.T
	dir     string
	w       *Watcher
	batches chan []string
	stdout  *lockedBuffer
	logs    *lockedBuffer
	cancel  context.CancelFunc
	errCh   chan error
}

// startWatcher fills in BaseDir, Stdout, Logger and (unless set) OnChange,
// then runs the watcher until the test ends.
func startWatcher(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		t:       t,
		dir:     t.TempDir(),
		batches: make(chan []string, 16),
		stdout:  &lockedBuffer{},
		logs:    &lockedBuffer{},
		errCh:   make(chan error, 1),
	}
	cfg.BaseDir = h.dir
	cfg.Stdout = h.stdout
	cfg.Logger = log.New(h.logs)
	if cfg.Debounce == 0 {
		cfg.Debounce = 50 * time.Millisecond
	}
	if cfg.OnChange == nil {
		cfg.OnChange = func(_ context.Context, changed []string) error {
			h.batches <- changed
			return nil
		}
	}

	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.w = w

	ctx, cancel := context.WithCancel(t.Context())
	h.cancel = cancel
	go func() { h.errCh <- w.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

func (h *harness) write(rel string, data string) {
	h.t.Helper()
	path := filepath.Join(h.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		h.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		h.t.Fatalf("write %s: %v", rel, err)
	}
}

func (h *harness) next() []string {
	h.t.Helper()
	select {
	case changed := <-h.batches:
		return changed
	case <-time.After(callbackTimeout):
		h.t.Fatal("timed out waiting for callback")
		return nil
	}
}

// stop cancels the watcher and requires a clean return.
func (h *harness) stop() {
	h.t.Helper()
	h.cancel()
	select {
	case err := <-h.errCh:
		if err != nil {
			h.t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(callbackTimeout):
		h.t.Fatal("Run() did not return after cancellation")
	}
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	t.Parallel()

	h := startWatcher(t, Config{Debounce: 150 * time.Millisecond})
	for _, name := range []string{"a.class", "b.class", "c.class"} {
		h.write(name, "data")
		time.Sleep(10 * time.Millisecond)
	}

	got := h.next()
	for _, want := range []string{"a.class", "b.class", "c.class"} {
		if !slices.Contains(got, want) {
			t.Errorf("changed = %v, missing %q", got, want)
		}
	}
	if !slices.IsSorted(got) {
		t.Errorf("changed = %v, want sorted", got)
	}

	time.Sleep(250 * time.Millisecond)
	h.stop()
	if n := h.w.Runs(); n != 1 {
		t.Errorf("Runs() = %d, want 1 debounced callback", n)
	}
}

func TestWatcher_Filters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		skipped string
		matched string
	}{
		{"ignore pattern", Config{Ignore: []string{"**/*.log"}}, "debug.log", "Index.tml"},
		{"watch patterns", Config{Patterns: []string{"**/*.jar", "**/*.class"}}, "notes.txt", "shop.jar"},
		{"default ignores", Config{}, "Index.java.swp", "Index.java"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := startWatcher(t, tt.cfg)
			h.write(tt.skipped, "x")
			time.Sleep(200 * time.Millisecond)
			h.write(tt.matched, "x")

			got := h.next()
			if slices.Contains(got, tt.skipped) {
				t.Errorf("changed = %v, %q should be filtered", got, tt.skipped)
			}
			if !slices.Contains(got, tt.matched) {
				t.Errorf("changed = %v, want %q", got, tt.matched)
			}
			h.stop()
		})
	}
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	h := startWatcher(t, Config{Patterns: []string{"**/*.class"}})
	if err := os.MkdirAll(filepath.Join(h.dir, "bin", "com", "example"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	h.write("bin/com/example/Index.class", "cafe")

	for {
		got := h.next()
		if slices.Contains(got, "bin/com/example/Index.class") {
			break
		}
	}
	h.stop()
}

func TestWatcher_CancelReturnsNil(t *testing.T) {
	t.Parallel()

	h := startWatcher(t, Config{})
	time.Sleep(50 * time.Millisecond)
	h.stop()
}

func TestWatcher_SkipsWhileBusy(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		active int
		peak   int
	)
	firstDone := make(chan struct{})
	var once sync.Once

	h := startWatcher(t, Config{
		OnChange: func(context.Context, []string) error {
			mu.Lock()
			active++
			peak = max(peak, active)
			mu.Unlock()

			time.Sleep(300 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			once.Do(func() { close(firstDone) })
			return nil
		},
	})

	h.write("first.jar", "1")
	time.Sleep(100 * time.Millisecond)
	h.write("second.jar", "2")

	select {
	case <-firstDone:
	case <-time.After(callbackTimeout):
		t.Fatal("timed out waiting for first callback")
	}
	time.Sleep(500 * time.Millisecond)
	h.stop()

	mu.Lock()
	defer mu.Unlock()
	if peak != 1 {
		t.Errorf("callbacks overlapped: peak concurrency %d", peak)
	}
	// The skipped fire re-arms the timer, so second.jar still gets a rescan.
	if h.w.Runs() == 2 && !strings.Contains(h.logs.String(), "skipping rescan") {
		t.Logf("second rescan ran without a skip; the first callback finished first")
	}
	if h.w.Runs() < 1 || h.w.Runs() > 2 {
		t.Errorf("Runs() = %d, want 1 or 2", h.w.Runs())
	}
}

func TestWatcher_ClearScreen(t *testing.T) {
	t.Parallel()

	h := startWatcher(t, Config{ClearScreen: true})
	h.write("Layout.java", "x")
	h.next()
	h.stop()

	if out := h.stdout.String(); !strings.Contains(out, "\033[2J\033[H") {
		t.Errorf("stdout = %q, want the clear sequence", out)
	}
}

func TestWatcher_CallbackErrorIsLogged(t *testing.T) {
	t.Parallel()

	called := make(chan struct{})
	var once sync.Once
	h := startWatcher(t, Config{
		OnChange: func(context.Context, []string) error {
			once.Do(func() { close(called) })
			return errors.New("registry invalid")
		},
	})
	if h.w.Runs() != 0 {
		t.Fatalf("Runs() before any event = %d", h.w.Runs())
	}

	h.write("Index.class", "\xca\xfe")
	select {
	case <-called:
	case <-time.After(callbackTimeout):
		t.Fatal("timed out waiting for callback")
	}

	// The error is logged after the callback returns, on the timer goroutine.
	deadline := time.Now().Add(callbackTimeout)
	for !strings.Contains(h.logs.String(), "rescan failed") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	h.stop()

	if h.w.Runs() < 1 {
		t.Errorf("Runs() = %d, want >= 1", h.w.Runs())
	}
	if logs := h.logs.String(); !strings.Contains(logs, "rescan failed") || !strings.Contains(logs, "registry invalid") {
		t.Errorf("logs = %q", logs)
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	h := startWatcher(t, Config{})
	time.Sleep(50 * time.Millisecond)

	if err := h.w.Run(t.Context()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() = %v, want ErrAlreadyRunning", err)
	}
	h.stop()
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"[invalid"}})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("New() error = %v, want ErrInvalidConfig", err)
	}
	if !strings.Contains(err.Error(), "invalid watch pattern") {
		t.Errorf("error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"valid patterns", Config{Patterns: []string{"**/*.jar"}, Ignore: []string{"**/build/**"}}, false},
		{"invalid watch pattern", Config{Patterns: []string{"[invalid"}}, true},
		{"invalid ignore pattern", Config{Ignore: []string{"{a,b"}}, true},
		{"blank pattern", Config{Patterns: []string{"  "}}, true},
		{"whitespace base dir", Config{BaseDir: "   "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = false for %v", err)
			}
		})
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		ignored bool
	}{
		{".git/config", true},
		{".git/objects/ab/cd1234", true},
		{"node_modules/express/index.js", true},
		{".idea/workspace.xml", true},
		{"app/.gradle/8.5/checksums.bin", true},
		{"Index.java.swp", true},
		{"Index.java.swo", true},
		{"backup~", true},
		{"sub/.DS_Store", true},
		{"src/main/resources/com/example/shop/pages/Index.tml", false},
		{"lib/tapestry-core.jar", false},
		{".classpath", false},
		{".gitignore", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := matchAny(DefaultIgnores(), tt.path); got != tt.ignored {
				t.Errorf("ignored(%q) = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}

	got := DefaultIgnores()
	got[0] = "mutated"
	if defaultIgnores[0] == "mutated" {
		t.Error("DefaultIgnores() exposed the package slice")
	}
}
