// SPDX-License-Identifier: MPL-2.0

// Package reconcile brings the namespace whitelists in line with a resolved
// closure and then propagates auto-install modules to a fixed point.
//
// Reconciliation only ever appends entries. It never rolls back: a run that
// fails halfway leaves every written entry in place and the next run
// completes the work.
package reconcile

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/odooup/odooup/internal/modgraph"
	"github.com/odooup/odooup/internal/resolve"
	"github.com/odooup/odooup/internal/whitelist"
)

type (
	// Options configures an Engine.
	Options struct {
		// ExcludePrefix keeps auto-install modules of matching namespaces out.
		ExcludePrefix string
		// Match selects how ExcludePrefix is compared.
		Match resolve.MatchMode
		// MaxPasses caps the fixed-point passes; zero means until stable.
		MaxPasses int
		// UnmanagedPresent treats modules of namespaces without a whitelist as
		// present, since such namespaces are checked out in full.
		UnmanagedPresent bool
	}

	// Engine reconciles whitelists held by a Store.
	Engine struct {
		store  whitelist.Store
		opts   Options
		logger *log.Logger
	}

	// Report summarizes the entries a Reconcile call appended.
	Report struct {
		// Seeded maps each namespace to the entries appended while seeding.
		Seeded map[string][]string
		// AutoInstalled lists the auto-install modules appended, in order.
		AutoInstalled []string
		// Passes is the number of fixed-point passes run.
		Passes int
		// Converged is false when MaxPasses stopped a pass that still made changes.
		Converged bool
	}
)

// New creates an Engine writing to store. A nil logger disables logging.
func New(store whitelist.Store, opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{store: store, opts: opts, logger: logger}
}

// Changed reports whether anything was appended.
func (r *Report) Changed() bool {
	return len(r.Seeded) > 0 || len(r.AutoInstalled) > 0
}

// Reconcile seeds every namespace of perNamespace, then adds auto-install
// modules until a full pass changes nothing.
func (e *Engine) Reconcile(ctx context.Context, g *modgraph.Graph, perNamespace map[string]whitelist.Set) (*Report, error) {
	report := &Report{Seeded: make(map[string][]string)}

	if err := e.seed(ctx, perNamespace, report); err != nil {
		return report, err
	}

	present, err := e.whitelisted(g)
	if err != nil {
		return report, err
	}

	if err := e.propagate(ctx, g, present, report); err != nil {
		return report, err
	}
	return report, nil
}

func (e *Engine) seed(ctx context.Context, perNamespace map[string]whitelist.Set, report *Report) error {
	namespaces := make([]string, 0, len(perNamespace))
	for ns := range perNamespace {
		namespaces = append(namespaces, ns)
	}
	slices.Sort(namespaces)

	for _, ns := range namespaces {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reconcile canceled: %w", err)
		}
		if err := e.store.EnsureInitialized(ns); err != nil {
			return fmt.Errorf("initialize whitelist of %s: %w", ns, err)
		}
		required := perNamespace[ns].Union(whitelist.NewSet(whitelist.SetupExclusion))
		added, err := e.store.AppendMissing(ns, required)
		if err != nil {
			return fmt.Errorf("seed whitelist of %s: %w", ns, err)
		}
		if len(added) > 0 {
			report.Seeded[ns] = added
			e.logger.Info("whitelisted", "namespace", ns, "entries", added)
		}
	}
	return nil
}

// whitelisted returns the union of every persisted whitelist of the graph's
// namespaces, plus the modules of unmanaged namespaces when configured.
func (e *Engine) whitelisted(g *modgraph.Graph) (whitelist.Set, error) {
	present := whitelist.NewSet()
	for _, ns := range g.Namespaces() {
		exists, err := e.store.Exists(ns)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		set, err := e.store.Read(ns)
		if err != nil {
			return nil, err
		}
		present = present.Union(set)
	}

	if e.opts.UnmanagedPresent {
		for _, k := range g.KnownModules() {
			exists, err := e.store.Exists(k.Namespace)
			if err != nil {
				return nil, err
			}
			if !exists {
				present.Add(k.Name)
			}
		}
	}
	return present, nil
}

func (e *Engine) propagate(ctx context.Context, g *modgraph.Graph, present whitelist.Set, report *Report) error {
	candidates := g.AutoInstall()
	for {
		if e.opts.MaxPasses > 0 && report.Passes >= e.opts.MaxPasses {
			e.logger.Warn("auto-install propagation stopped before converging", "passes", report.Passes)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reconcile canceled: %w", err)
		}

		report.Passes++
		changed := false
		for _, m := range candidates {
			added, err := e.tryAutoInstall(m, present)
			if err != nil {
				return err
			}
			if added {
				changed = true
				present.Add(m.Name)
				report.AutoInstalled = append(report.AutoInstalled, m.Name)
				e.logger.Info("auto-installed", "module", m.Name, "namespace", m.Namespace)
			}
		}
		if !changed {
			report.Converged = true
			return nil
		}
	}
}

func (e *Engine) tryAutoInstall(m *modgraph.Known, present whitelist.Set) (bool, error) {
	for _, dep := range m.Depends {
		if !present.Has(dep) {
			return false, nil
		}
	}
	if e.opts.ExcludePrefix != "" && resolve.Matches(m.Namespace, e.opts.ExcludePrefix, e.opts.Match) {
		return false, nil
	}

	exists, err := e.store.Exists(m.Namespace)
	if err != nil || !exists {
		return false, err
	}
	current, err := e.store.Read(m.Namespace)
	if err != nil {
		return false, err
	}
	if current.Has(m.Name) {
		return false, nil
	}

	if _, err := e.store.AppendMissing(m.Namespace, whitelist.NewSet(m.Name)); err != nil {
		return false, fmt.Errorf("auto-install %s: %w", m.Name, err)
	}
	return true, nil
}
