// SPDX-License-Identifier: MPL-2.0

package ignorefrag

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/odooup/odooup/internal/testutil"
	"github.com/odooup/odooup/internal/whitelist"
)

func TestRegenerate_ReplacesStaleFragment(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFile)
	testutil.MustWriteFile(t, path, "keep-me\n"+DefaultMarker+"\nold-stale-fragment\n")

	namespaces := []whitelist.Namespace{
		{Name: "vendor/acme", Entries: whitelist.NewSet("mod_a", whitelist.SetupExclusion)},
	}
	changed, err := Regenerate(path, DefaultMarker, namespaces)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if !changed {
		t.Error("Regenerate reported no change")
	}

	want := "keep-me\n" + DefaultMarker + "\nvendor/acme/**\n!vendor/acme/mod_a\n"
	if got := testutil.MustReadFile(t, path); got != want {
		t.Errorf("content = %q, want %q", got, want)
	}

	changed, err = Regenerate(path, DefaultMarker, namespaces)
	if err != nil {
		t.Fatalf("second Regenerate: %v", err)
	}
	if changed {
		t.Error("second Regenerate should be a no-op")
	}
	if got := testutil.MustReadFile(t, path); got != want {
		t.Errorf("second run content = %q, want %q", got, want)
	}
}

func TestRegenerate_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Regenerate(filepath.Join(t.TempDir(), "nope"), "", nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}

func TestRegenerate_KeepsPermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFile)
	testutil.MustWriteFile(t, path, "x\n")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	if _, err := Regenerate(path, DefaultMarker, nil); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFragment(t *testing.T) {
	t.Parallel()

	got := Fragment([]whitelist.Namespace{
		{Name: "vendor/oca/web", Entries: whitelist.NewSet("web_responsive", "!static/**", whitelist.SetupExclusion, "!setup")},
		{Name: "custom", Entries: whitelist.NewSet("b", "a")},
	})
	want := "custom/**\n!custom/a\n!custom/b\n" +
		"vendor/oca/web/**\n!vendor/oca/web/web_responsive\nvendor/oca/web/static/**\n"
	if got != want {
		t.Errorf("Fragment = %q, want %q", got, want)
	}
}

func TestFragment_SetupExclusion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		want    string
	}{
		{pattern: "!setup", want: ""},
		{pattern: "!setup/**", want: ""},
		{pattern: "!setup/odoo_addon/**", want: ""},
		{pattern: "!setup_tools/**", want: "custom/setup_tools/**\n"},
		{pattern: "!static/setup/**", want: "custom/static/setup/**\n"},
		{pattern: "!tests/!setup", want: "custom/tests/!setup\n"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			got := Fragment([]whitelist.Namespace{{Name: "custom", Entries: whitelist.NewSet(tt.pattern)}})
			if want := "custom/**\n" + tt.want; got != want {
				t.Errorf("Fragment = %q, want %q", got, want)
			}
		})
	}
}

func TestSplice(t *testing.T) {
	t.Parallel()

	const marker = "# MARK"
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "empty file", content: "", want: "# MARK\nFRAG\n"},
		{name: "no marker", content: "a\nb", want: "a\nb\n# MARK\nFRAG\n"},
		{name: "marker without newline", content: "a\n# MARK", want: "a\n# MARK\nFRAG\n"},
		{name: "marker inside line", content: "x\n## MARK here\nstale\n", want: "x\n## MARK here\nFRAG\n"},
		{name: "first marker wins", content: "# MARK\nold\n# MARK\n", want: "# MARK\nFRAG\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := string(Splice([]byte(tt.content), marker, "FRAG\n")); got != tt.want {
				t.Errorf("Splice = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_DoesNotWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFile)
	testutil.MustWriteFile(t, path, "keep\n")

	updated, changed, err := Render(path, "", []whitelist.Namespace{{Name: "custom", Entries: whitelist.NewSet("a")}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !changed {
		t.Error("Render reported no change")
	}
	if want := "keep\n" + DefaultMarker + "\ncustom/**\n!custom/a\n"; string(updated) != want {
		t.Errorf("updated = %q, want %q", updated, want)
	}
	if got := testutil.MustReadFile(t, path); got != "keep\n" {
		t.Errorf("file modified: %q", got)
	}
}
