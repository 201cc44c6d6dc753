// SPDX-License-Identifier: MPL-2.0

// Package resolve computes the transitive dependency closure of a target
// module and groups it into the per-namespace whitelist requirements.
package resolve

import (
	"path"
	"slices"
	"strings"

	"github.com/odooup/odooup/internal/modgraph"
	"github.com/odooup/odooup/internal/whitelist"
)

const (
	// DefaultChainThreshold is the longest acceptable dependency chain, in edges.
	DefaultChainThreshold = 5

	// MatchSegment matches the exclusion prefix on whole path segments.
	MatchSegment MatchMode = "segment"
	// MatchSubstring matches when the prefix occurs anywhere in the namespace.
	MatchSubstring MatchMode = "substring"
)

type (
	// MatchMode selects how ExcludePrefix is compared to namespaces.
	MatchMode string

	// Options configures Resolve.
	Options struct {
		// ExcludePrefix drops closure members in matching namespaces. Empty disables exclusion.
		ExcludePrefix string
		// Match selects the comparison; the zero value is MatchSegment.
		Match MatchMode
		// ChainThreshold overrides DefaultChainThreshold when positive.
		ChainThreshold int
	}

	// Result is the resolution of one target.
	Result struct {
		Target string
		// Closure is every module the target transitively requires, sorted.
		Closure []string
		// PerNamespace maps each namespace to the modules it must whitelist.
		PerNamespace map[string]whitelist.Set
		// Missing lists the closure members that no manifest defines, sorted.
		Missing []string
		// LongestPath is set when the closure's longest chain exceeds the threshold.
		LongestPath []string
	}
)

// Resolve validates target and computes its closure. Missing dependencies do
// not fail the call; check Result.Err before mutating anything.
func Resolve(g *modgraph.Graph, target string, opts Options) (*Result, error) {
	node, ok := g.Node(target)
	if !ok {
		return nil, &UnknownTargetError{Target: target}
	}
	known, ok := node.(*modgraph.Known)
	if !ok {
		return nil, &UndefinedTargetError{Target: target}
	}
	if opts.ExcludePrefix != "" && Matches(known.Namespace, opts.ExcludePrefix, opts.Match) {
		return nil, &NativeModuleExcludedError{Target: target, Namespace: known.Namespace, Prefix: opts.ExcludePrefix}
	}

	res := &Result{
		Target:       target,
		Closure:      g.Ancestors(target),
		PerNamespace: map[string]whitelist.Set{known.Namespace: whitelist.NewSet(target)},
	}

	for _, id := range res.Closure {
		n, _ := g.Node(id)
		switch m := n.(type) {
		case modgraph.Unknown:
			res.Missing = append(res.Missing, m.Name)
		case *modgraph.Known:
			if opts.ExcludePrefix != "" && Matches(m.Namespace, opts.ExcludePrefix, opts.Match) {
				continue
			}
			set, ok := res.PerNamespace[m.Namespace]
			if !ok {
				set = whitelist.NewSet()
				res.PerNamespace[m.Namespace] = set
			}
			set.Add(m.Name)
		}
	}

	threshold := opts.ChainThreshold
	if threshold <= 0 {
		threshold = DefaultChainThreshold
	}
	if chain := g.LongestPath(res.Closure); len(chain)-1 > threshold {
		res.LongestPath = chain
	}
	return res, nil
}

// Err returns a *MissingDependencyError when the closure has undefined modules.
func (r *Result) Err() error {
	if len(r.Missing) == 0 {
		return nil
	}
	return &MissingDependencyError{Target: r.Target, Missing: slices.Clone(r.Missing)}
}

// Namespaces returns the namespaces of PerNamespace, sorted.
func (r *Result) Namespaces() []string {
	out := make([]string, 0, len(r.PerNamespace))
	for ns := range r.PerNamespace {
		out = append(out, ns)
	}
	slices.Sort(out)
	return out
}

// Matches reports whether namespace falls under prefix.
//
// MatchSegment requires the prefix to cover whole leading path segments, so
// "vendor/odoo" matches "vendor/odoo/addons" but not "vendor/odoo_ext".
// MatchSubstring matches wherever the prefix occurs.
func Matches(namespace, prefix string, mode MatchMode) bool {
	if mode == MatchSubstring {
		return strings.Contains(namespace, prefix)
	}
	ns := path.Clean(namespace)
	p := strings.TrimSuffix(path.Clean(prefix), "/")
	return ns == p || strings.HasPrefix(ns, p+"/")
}
