// SPDX-License-Identifier: MPL-2.0

package whitelist

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/odooup/odooup/internal/checkout"
	"github.com/odooup/odooup/internal/testutil"
)

func newFileStore(t *testing.T) (*FileStore, *checkout.FakeBackend) {
	t.Helper()
	root := t.TempDir()
	backend := checkout.NewFakeBackend(root)
	return NewFileStore(root, backend, nil), backend
}

func TestFileStore_Lifecycle(t *testing.T) {
	t.Parallel()

	s, backend := newFileStore(t)
	const ns = "vendor/oca/web"

	exists, err := s.Exists(ns)
	if err != nil || exists {
		t.Fatalf("Exists = %v, %v; want false, nil", exists, err)
	}
	if _, err := s.Read(ns); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Read error = %v, want ErrNotInitialized", err)
	}
	if _, err := s.AppendMissing(ns, NewSet("x")); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("AppendMissing error = %v, want ErrNotInitialized", err)
	}

	if err := s.EnsureInitialized(ns); err != nil {
		t.Fatalf("EnsureInitialized: %v", err)
	}
	if err := s.EnsureInitialized(ns); err != nil {
		t.Fatalf("second EnsureInitialized: %v", err)
	}
	if backend.Enables() != 1 {
		t.Errorf("sparse checkout enabled %d times, want 1", backend.Enables())
	}
	wantLink := filepath.Join(s.Root(), ".git", "info", "sparse-checkout")
	if got := backend.Symlinks()[wantLink]; got != FilePath(s.Root(), ns) {
		t.Errorf("sparse-checkout link target = %q, want %q", got, FilePath(s.Root(), ns))
	}

	added, err := s.AppendMissing(ns, NewSet("web_responsive", SetupExclusion))
	if err != nil {
		t.Fatalf("AppendMissing: %v", err)
	}
	if want := []string{SetupExclusion, "web_responsive"}; !slices.Equal(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}

	added, err = s.AppendMissing(ns, NewSet("web_responsive", "web_widget", SetupExclusion))
	if err != nil {
		t.Fatalf("AppendMissing: %v", err)
	}
	if want := []string{"web_widget"}; !slices.Equal(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}

	got := testutil.MustReadFile(t, FilePath(s.Root(), ns))
	if want := "!setup/**\nweb_responsive\nweb_widget\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestFileStore_EnableSkippedWhenAlreadyEnabled(t *testing.T) {
	t.Parallel()

	s, backend := newFileStore(t)
	_ = backend.EnableSparseCheckout(s.Root())

	for _, ns := range []string{"a/x", "a/y"} {
		if err := s.EnsureInitialized(ns); err != nil {
			t.Fatalf("EnsureInitialized(%s): %v", ns, err)
		}
	}
	if backend.Enables() != 1 {
		t.Errorf("Enables() = %d, want 1", backend.Enables())
	}
}

func TestFileStore_AppendWithoutTrailingNewline(t *testing.T) {
	t.Parallel()

	s, _ := newFileStore(t)
	const ns = "custom"
	testutil.MustWriteFile(t, FilePath(s.Root(), ns), "kept")

	if _, err := s.AppendMissing(ns, NewSet("kept", "new")); err != nil {
		t.Fatalf("AppendMissing: %v", err)
	}
	if got := testutil.MustReadFile(t, FilePath(s.Root(), ns)); got != "kept\nnew\n" {
		t.Errorf("file = %q, want %q", got, "kept\nnew\n")
	}
}

func TestFileStore_NoWriteWhenNothingMissing(t *testing.T) {
	t.Parallel()

	s, _ := newFileStore(t)
	const ns = "custom"
	file := FilePath(s.Root(), ns)
	testutil.MustWriteFile(t, file, "a\nb\n")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(file, past, past); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	added, err := s.AppendMissing(ns, NewSet("b", "a"))
	if err != nil || added != nil {
		t.Fatalf("AppendMissing = %v, %v; want nil, nil", added, err)
	}
	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Errorf("file modified: mtime %v, want %v", info.ModTime(), past)
	}
}

func TestCollect(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	m.Seed("b", "mod_b")
	m.Seed("a", "mod_a")

	got, err := Collect(m, []string{"a", "missing", "b"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "b" || !got[1].Entries.Has("mod_b") {
		t.Errorf("Collect = %+v", got)
	}
}

func TestFilesAndReadFiles(t *testing.T) {
	t.Parallel()

	s, _ := newFileStore(t)
	testutil.MustWriteFile(t, FilePath(s.Root(), "vendor/oca/web"), "!setup/**\nweb_responsive\n")
	testutil.MustWriteFile(t, FilePath(s.Root(), "custom"), "my_web\n")

	files, err := s.Files([]string{"vendor/oca/web", "missing", "custom"})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{FilePath(s.Root(), "vendor/oca/web"), FilePath(s.Root(), "custom")}
	if !slices.Equal(files, want) {
		t.Fatalf("Files = %v, want %v", files, want)
	}

	got, err := ReadFiles(s.Root(), files)
	if err != nil {
		t.Fatalf("ReadFiles: %v", err)
	}
	if len(got) != 2 || got[0].Name != "vendor/oca/web" || got[1].Name != "custom" {
		t.Fatalf("ReadFiles = %+v", got)
	}
	if !got[0].Entries.Has("web_responsive") || !got[1].Entries.Has("my_web") {
		t.Errorf("ReadFiles entries = %+v", got)
	}

	outside := filepath.Join(t.TempDir(), ".custom")
	testutil.MustWriteFile(t, outside, "x\n")
	if _, err := ReadFiles(s.Root(), []string{outside}); !errors.Is(err, ErrNotWhitelistFile) {
		t.Errorf("ReadFiles outside root error = %v, want ErrNotWhitelistFile", err)
	}
}
