// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/odooup/odooup/internal/checkout"
	"github.com/odooup/odooup/internal/diagnostic"
	"github.com/odooup/odooup/internal/ignorefrag"
	"github.com/odooup/odooup/internal/modgraph"
	"github.com/odooup/odooup/internal/reconcile"
	"github.com/odooup/odooup/internal/resolve"
	"github.com/odooup/odooup/internal/whitelist"
)

// ErrNotARepository is the sentinel wrapped by NotARepositoryError.
var ErrNotARepository = errors.New("not inside a git repository")

type (
	// NotARepositoryError reports a root outside any git work tree.
	NotARepositoryError struct {
		Root string
	}

	// IgnoreFileError reports an ignore file that cannot be read or rewritten.
	IgnoreFileError struct {
		Path  string
		Cause error
	}

	// Options configures a run. Zero values fall back to the package defaults.
	Options struct {
		// Root is the repository root holding the namespaces.
		Root string
		// ManifestNames selects the manifest files to load.
		ManifestNames []string

		// SkipNative excludes namespaces matching NativePrefix.
		SkipNative   bool
		NativePrefix string
		Match        resolve.MatchMode

		ChainThreshold   int
		MaxPasses        int
		UnmanagedPresent bool

		// IgnoreFile is the ignore file to regenerate, relative to Root unless absolute.
		IgnoreFile   string
		IgnoreMarker string

		// DryRun records writes in memory instead of touching any file.
		DryRun bool
	}

	// Outcome is the result of a whitelist run.
	Outcome struct {
		Resolution *resolve.Result
		Report     *reconcile.Report
		// IgnoreFile is the resolved path of the regenerated ignore file.
		IgnoreFile string
		// IgnoreChanged reports whether the ignore file was (or would be) rewritten.
		IgnoreChanged bool
		// Created lists namespaces whose whitelist a dry run would create.
		Created []string
		// Pending lists entries a dry run would append, per namespace.
		Pending     map[string][]string
		Diagnostics []diagnostic.Diagnostic
	}

	// Runner executes runs against a checkout backend.
	Runner struct {
		backend checkout.Backend
		logger  *log.Logger
	}
)

func (e *NotARepositoryError) Error() string {
	return fmt.Sprintf("%s is not inside a git repository", e.Root)
}

// Unwrap returns ErrNotARepository for errors.Is() compatibility.
func (e *NotARepositoryError) Unwrap() error { return ErrNotARepository }

func (e *IgnoreFileError) Error() string {
	return fmt.Sprintf("ignore file %s: %v", e.Path, e.Cause)
}

func (e *IgnoreFileError) Unwrap() error { return e.Cause }

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(backend checkout.Backend, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{backend: backend, logger: logger}
}

// Whitelist resolves target and brings the whitelists and the ignore file in
// line with it. Every validation error is returned before the first write.
// The returned Outcome carries the diagnostics gathered so far even on error.
func (r *Runner) Whitelist(ctx context.Context, target string, opts Options) (*Outcome, error) {
	out := &Outcome{}

	g, diags, err := r.load(ctx, opts)
	out.Diagnostics = append(out.Diagnostics, diags...)
	if err != nil {
		return out, err
	}

	res, err := resolve.Resolve(g, target, resolve.Options{
		ExcludePrefix:  excludePrefix(opts),
		Match:          opts.Match,
		ChainThreshold: opts.ChainThreshold,
	})
	if err != nil {
		return out, err
	}
	out.Resolution = res

	if res.LongestPath != nil {
		d := diagnostic.New(diagnostic.SeverityWarning, diagnostic.CodeLongChain,
			"dependency chain of %d modules below %s", len(res.LongestPath), target).WithModule(target)
		d.Chain = res.LongestPath
		out.Diagnostics = append(out.Diagnostics, d)
	}
	if err := res.Err(); err != nil {
		for _, m := range res.Missing {
			out.Diagnostics = append(out.Diagnostics, diagnostic.New(diagnostic.SeverityError, diagnostic.CodeMissingDependency,
				"%s requires %q, which is defined nowhere", target, m).WithModule(m))
		}
		return out, err
	}
	if _, err := os.Stat(opts.IgnorePath()); err != nil {
		return out, &IgnoreFileError{Path: opts.IgnorePath(), Cause: err}
	}

	var store whitelist.Store = whitelist.NewFileStore(opts.Root, r.backend, r.logger)
	var overlay *whitelist.Overlay
	if opts.DryRun {
		overlay = whitelist.NewOverlay(store)
		store = overlay
	}

	engine := reconcile.New(store, reconcile.Options{
		ExcludePrefix:    excludePrefix(opts),
		Match:            opts.Match,
		MaxPasses:        opts.MaxPasses,
		UnmanagedPresent: opts.UnmanagedPresent,
	}, r.logger)
	report, err := engine.Reconcile(ctx, g, res.PerNamespace)
	out.Report = report
	if err != nil {
		return out, err
	}

	out.IgnoreFile = opts.IgnorePath()
	out.IgnoreChanged, err = r.regenerate(g, store, opts)
	if err != nil {
		return out, err
	}

	if overlay != nil {
		out.Created = overlay.Created()
		out.Pending = overlay.Pending()
	}
	out.Diagnostics = append(out.Diagnostics, modgraph.CheckGraph(g, opts.Root)...)
	return out, nil
}

// Check loads the graph and reports whole-graph diagnostics without writing.
func (r *Runner) Check(ctx context.Context, opts Options) ([]diagnostic.Diagnostic, error) {
	g, diags, err := r.load(ctx, opts)
	if err != nil {
		return diags, err
	}
	return append(diags, modgraph.CheckGraph(g, opts.Root)...), nil
}

// Ignore regenerates the ignore file from the whitelist files on disk.
func (r *Runner) Ignore(ctx context.Context, opts Options) (bool, error) {
	g, _, err := r.load(ctx, opts)
	if err != nil {
		return false, err
	}
	files, err := whitelist.NewFileStore(opts.Root, r.backend, r.logger).Files(g.Namespaces())
	if err != nil {
		return false, err
	}
	r.logger.Debug("whitelist files", "count", len(files))
	namespaces, err := whitelist.ReadFiles(opts.Root, files)
	if err != nil {
		return false, err
	}
	return r.render(namespaces, opts)
}

func (r *Runner) load(ctx context.Context, opts Options) (*modgraph.Graph, []diagnostic.Diagnostic, error) {
	inside, err := r.backend.IsInsideRepository(opts.Root)
	if err != nil {
		return nil, nil, err
	}
	if !inside {
		return nil, nil, &NotARepositoryError{Root: opts.Root}
	}

	g, diags, err := modgraph.Load(ctx, opts.Root, modgraph.LoadOptions{
		ManifestNames: opts.ManifestNames,
		Logger:        r.logger,
	})
	if err != nil {
		return nil, diags, fmt.Errorf("load modules under %s: %w", opts.Root, err)
	}
	r.logger.Debug("loaded module graph", "modules", len(g.Modules()), "namespaces", len(g.Namespaces()))
	return g, diags, nil
}

// regenerate renders the ignore fragment from every persisted whitelist of
// the graph's namespaces. Dry runs never write.
func (r *Runner) regenerate(g *modgraph.Graph, store whitelist.Store, opts Options) (bool, error) {
	namespaces, err := whitelist.Collect(store, g.Namespaces())
	if err != nil {
		return false, err
	}
	return r.render(namespaces, opts)
}

func (r *Runner) render(namespaces []whitelist.Namespace, opts Options) (bool, error) {
	path := opts.IgnorePath()
	if opts.DryRun {
		_, changed, err := ignorefrag.Render(path, opts.IgnoreMarker, namespaces)
		if err != nil {
			return false, &IgnoreFileError{Path: path, Cause: err}
		}
		return changed, nil
	}
	changed, err := ignorefrag.Regenerate(path, opts.IgnoreMarker, namespaces)
	if err != nil {
		return false, &IgnoreFileError{Path: path, Cause: err}
	}
	if changed {
		r.logger.Info("regenerated ignore file", "file", path, "namespaces", len(namespaces))
	}
	return changed, nil
}

func excludePrefix(opts Options) string {
	if !opts.SkipNative {
		return ""
	}
	return opts.NativePrefix
}

// IgnorePath returns the ignore file path, resolved against Root.
func (opts Options) IgnorePath() string {
	name := opts.IgnoreFile
	if name == "" {
		name = ignorefrag.DefaultFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(opts.Root, name)
}
