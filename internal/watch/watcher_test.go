// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/odooup/odooup/internal/testutil"
)

func startWatcher(t *testing.T, cfg Config) (cancel func(), errCh <-chan error) {
	t.Helper()
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancelFn := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- w.Run(ctx) }()
	// fsnotify registration happens in New; give the event loop a moment.
	time.Sleep(20 * time.Millisecond)
	return cancelFn, ch
}

func TestWatcher_DebouncesManifestChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(dir, "vendor", "oca", "web_a"), 0o755)
	testutil.MustMkdirAll(t, filepath.Join(dir, "vendor", "oca", "web_b"), 0o755)

	var (
		mu    sync.Mutex
		calls [][]string
	)
	done := make(chan struct{}, 1)

	cancel, errCh := startWatcher(t, Config{
		BaseDir:  dir,
		Patterns: ManifestPatterns([]string{"__manifest__.cue"}),
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			calls = append(calls, changed)
			mu.Unlock()
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	defer cancel()

	for _, rel := range []string{"vendor/oca/web_a/__manifest__.cue", "vendor/oca/web_b/__manifest__.cue", "vendor/oca/README.md"} {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(rel)), []byte("depends: []\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	// Let any stray second callback surface before asserting.
	time.Sleep(250 * time.Millisecond)

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("callback ran %d times, want 1: %v", len(calls), calls)
	}
	want := []string{"vendor/oca/web_a/__manifest__.cue", "vendor/oca/web_b/__manifest__.cue"}
	if !slices.Equal(calls[0], want) {
		t.Errorf("changed = %v, want %v", calls[0], want)
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)

	if err := w.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrAlreadyRunning", err)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Run: %v", err)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid watch pattern")
	}
	if _, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{""}}); err == nil {
		t.Error("expected error for empty ignore pattern")
	}
}

func TestMatching(t *testing.T) {
	t.Parallel()

	w := &Watcher{
		cfg:     Config{Patterns: ManifestPatterns([]string{"__manifest__.cue", "__manifest__.toml"})},
		ignores: append(DefaultIgnores(), "vendor/skip/**"),
	}

	tests := []struct {
		rel     string
		matches bool
		ignored bool
	}{
		{rel: "vendor/oca/web/__manifest__.cue", matches: true},
		{rel: "custom/sale/__manifest__.toml", matches: true},
		{rel: "custom/sale/models.py", matches: false},
		{rel: ".git/modules/x/__manifest__.cue", matches: true, ignored: true},
		{rel: "custom/sale/__pycache__/a.pyc", ignored: true},
		{rel: "vendor/skip/a/__manifest__.cue", matches: true, ignored: true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			t.Parallel()
			if got := w.matchesPatterns(tt.rel); got != tt.matches {
				t.Errorf("matchesPatterns(%q) = %v, want %v", tt.rel, got, tt.matches)
			}
			if got := w.isIgnored(tt.rel); got != tt.ignored {
				t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.ignored)
			}
		})
	}
}
