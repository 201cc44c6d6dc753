// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/odooup/odooup/internal/cueutil"
	"github.com/odooup/odooup/internal/diagnostic"
	"github.com/odooup/odooup/internal/platform"
)

var (
	//go:embed manifest_schema.cue
	manifestSchema string

	// DefaultManifestNames are the manifest file names recognized by Load.
	// Odoo's own __manifest__.py is not evaluated: a module is only seen once
	// its manifest has been converted to CUE or TOML next to it.
	DefaultManifestNames = []string{"__manifest__.cue", "__manifest__.toml"}

	// ErrUnsupportedManifest is returned for manifest files with an unknown
	// extension, __manifest__.py included.
	ErrUnsupportedManifest = errors.New("unsupported manifest format")
)

type (
	// LoadOptions configures Load.
	LoadOptions struct {
		// ManifestNames overrides DefaultManifestNames.
		ManifestNames []string
		// Logger receives debug output; nil disables logging.
		Logger *log.Logger
	}

	// manifest is the decoded subset of a module manifest.
	manifest struct {
		Name        string   `json:"name,omitempty" toml:"name"`
		Version     string   `json:"version,omitempty" toml:"version"`
		Depends     []string `json:"depends" toml:"depends"`
		AutoInstall bool     `json:"auto_install" toml:"auto_install"`
		Installable *bool    `json:"installable" toml:"installable"`
	}
)

// Load scans root for module manifests and builds the module graph.
//
// A module is the directory holding a manifest; its name is the directory's
// base name and its namespace the parent directory relative to root. Hidden
// directories are never scanned. Manifests that cannot be decoded, that are
// marked non-installable, or that redefine an existing module are skipped with
// a diagnostic. A dependency cycle fails the load.
func Load(ctx context.Context, root string, opts LoadOptions) (*Graph, []diagnostic.Diagnostic, error) {
	names := opts.ManifestNames
	if len(names) == 0 {
		names = DefaultManifestNames
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	paths, err := findManifests(root, names)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("found manifests", "root", root, "count", len(paths))

	b := NewBuilder()
	var diags []diagnostic.Diagnostic
	for _, rel := range paths {
		select {
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("load module graph canceled: %w", ctx.Err())
		default:
		}

		moduleDir := path.Dir(rel)
		namespace := path.Dir(moduleDir)
		if moduleDir == "." || namespace == "." {
			diags = append(diags, diagnostic.New(diagnostic.SeverityWarning, diagnostic.CodeManifestSkipped,
				"manifest %s is not inside a namespace directory", rel).WithPath(rel))
			continue
		}

		full := filepath.Join(root, filepath.FromSlash(rel))
		m, err := readManifest(full)
		if err != nil {
			d := diagnostic.New(diagnostic.SeverityWarning, diagnostic.CodeManifestSkipped,
				"skipping manifest: %v", err).WithPath(rel)
			d.Cause = err
			diags = append(diags, d)
			continue
		}

		name := path.Base(moduleDir)
		if m.Installable != nil && !*m.Installable {
			diags = append(diags, diagnostic.New(diagnostic.SeverityDebug, diagnostic.CodeNotInstallable,
				"module %q is not installable", name).WithModule(name).WithPath(rel))
			continue
		}

		if platform.IsWindowsReservedName(name) {
			diags = append(diags, diagnostic.New(diagnostic.SeverityWarning, diagnostic.CodeReservedName,
				"module %q cannot be checked out on Windows", name).WithModule(name).WithPath(rel))
		}

		added := b.Add(Known{
			Name:         name,
			Namespace:    namespace,
			Depends:      m.Depends,
			AutoInstall:  m.AutoInstall,
			ManifestPath: full,
		})
		if !added {
			first := b.known[name]
			diags = append(diags, diagnostic.New(diagnostic.SeverityWarning, diagnostic.CodeDuplicateModule,
				"module %q is already defined by %s", name, first.ManifestPath).WithModule(name).WithPath(rel))
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, diags, err
	}
	return g, diags, nil
}

// findManifests returns slash-separated manifest paths relative to root, sorted.
func findManifests(root string, names []string) ([]string, error) {
	pattern := "**/" + names[0]
	if len(names) > 1 {
		pattern = "**/{" + strings.Join(names, ",") + "}"
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s for manifests: %w", root, err)
	}

	out := matches[:0]
	for _, m := range matches {
		if !isHidden(m) {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out, nil
}

func isHidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	switch filepath.Ext(path) {
	case ".cue":
		return cueutil.Decode[manifest](manifestSchema, data, "#Manifest", cueutil.WithFilename(path))
	case ".toml":
		if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
			return nil, err
		}
		var m manifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for i, dep := range m.Depends {
			if dep == "" {
				return nil, fmt.Errorf("%s: depends[%d]: empty module name", path, i)
			}
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("%s: %w (only .cue and .toml manifests are read)", path, ErrUnsupportedManifest)
	}
}
