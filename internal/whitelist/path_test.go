// SPDX-License-Identifier: MPL-2.0

package whitelist

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFilePath(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/repo")
	tests := []struct {
		ns   string
		want string
	}{
		{ns: "vendor/oca/web", want: "/repo/vendor/oca/.web"},
		{ns: "custom", want: "/repo/.custom"},
		{ns: "vendor/odoo/addons/", want: "/repo/vendor/odoo/.addons"},
	}

	for _, tt := range tests {
		t.Run(tt.ns, func(t *testing.T) {
			t.Parallel()
			if got := FilePath(root, tt.ns); got != filepath.FromSlash(tt.want) {
				t.Errorf("FilePath(%q) = %q, want %q", tt.ns, got, tt.want)
			}
		})
	}
}

func TestNamespaceFromPath(t *testing.T) {
	t.Parallel()

	root := filepath.FromSlash("/repo")
	for _, ns := range []string{"vendor/oca/web", "custom", "a/b/c/d"} {
		got, err := NamespaceFromPath(root, FilePath(root, ns))
		if err != nil {
			t.Fatalf("NamespaceFromPath(%q): %v", ns, err)
		}
		if got != ns {
			t.Errorf("round trip of %q = %q", ns, got)
		}
	}

	for _, bad := range []string{"/repo/vendor/web", "/repo/vendor/.", "/other/.web", "/repo/..hidden"} {
		if _, err := NamespaceFromPath(root, filepath.FromSlash(bad)); !errors.Is(err, ErrNotWhitelistFile) {
			t.Errorf("NamespaceFromPath(%q) error = %v, want ErrNotWhitelistFile", bad, err)
		}
	}
}
