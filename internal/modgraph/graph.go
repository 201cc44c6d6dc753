// SPDX-License-Identifier: MPL-2.0

// Package modgraph models the module dependency graph of a repository and
// builds it from the manifests found on disk.
//
// Every graph node is a Node: a *Known module carrying its namespace, declared
// dependencies and auto-install flag, or an Unknown module that some manifest
// depends on but no manifest defines. Edges run from a dependency to the module
// that requires it, so Ancestors(m) is everything m transitively requires.
package modgraph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/odooup/odooup/internal/dag"
	"github.com/odooup/odooup/internal/diagnostic"
)

// Graph is a read-only module dependency graph. Build one with a Builder or Load.
type Graph struct {
	dag   *dag.Graph
	known map[string]*Known
}

// Builder accumulates module definitions into a Graph.
type Builder struct {
	dag   *dag.Graph
	known map[string]*Known
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		dag:   dag.New(),
		known: make(map[string]*Known),
	}
}

// Add defines a module. It returns false, leaving the graph unchanged, when a
// module with the same name is already defined.
func (b *Builder) Add(m Known) bool {
	if _, exists := b.known[m.Name]; exists {
		return false
	}
	mod := m
	mod.Depends = slices.Clone(m.Depends)
	b.known[mod.Name] = &mod
	b.dag.AddNode(mod.Name)
	for _, dep := range mod.Depends {
		b.dag.AddEdge(dep, mod.Name)
	}
	return true
}

// Build validates acyclicity and returns the finished graph. The Builder must
// not be used afterwards.
func (b *Builder) Build() (*Graph, error) {
	if _, err := b.dag.TopologicalSort(); err != nil {
		return nil, fmt.Errorf("invalid module graph: %w", err)
	}
	return &Graph{dag: b.dag, known: b.known}, nil
}

// Has reports whether id is a node of the graph, known or not.
func (g *Graph) Has(id string) bool {
	return g.dag.Has(id)
}

// Node returns the node for id.
func (g *Graph) Node(id string) (Node, bool) {
	if !g.dag.Has(id) {
		return nil, false
	}
	if k, ok := g.known[id]; ok {
		return k, true
	}
	return Unknown{Name: id}, true
}

// Known returns the defined module for id, if any.
func (g *Graph) Known(id string) (*Known, bool) {
	k, ok := g.known[id]
	return k, ok
}

// Modules returns every node identifier, sorted.
func (g *Graph) Modules() []string {
	ids := g.dag.Nodes()
	slices.Sort(ids)
	return ids
}

// KnownModules returns every defined module, sorted by name.
func (g *Graph) KnownModules() []*Known {
	out := make([]*Known, 0, len(g.known))
	for _, k := range g.known {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b *Known) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// AutoInstall returns the defined modules flagged auto-install, sorted by name.
func (g *Graph) AutoInstall() []*Known {
	var out []*Known
	for _, k := range g.KnownModules() {
		if k.AutoInstall {
			out = append(out, k)
		}
	}
	return out
}

// Unknowns returns the identifiers of every referenced but undefined module, sorted.
func (g *Graph) Unknowns() []string {
	var out []string
	for _, id := range g.Modules() {
		if _, ok := g.known[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Namespaces returns the distinct namespaces of all defined modules, sorted.
func (g *Graph) Namespaces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range g.known {
		if !seen[k.Namespace] {
			seen[k.Namespace] = true
			out = append(out, k.Namespace)
		}
	}
	slices.Sort(out)
	return out
}

// Ancestors returns everything id transitively depends on, sorted.
func (g *Graph) Ancestors(id string) []string {
	out := g.dag.Ancestors(id)
	slices.Sort(out)
	return out
}

// LongestPath returns the longest dependency chain within ids, ordered from
// the deepest dependency to the most dependent module.
func (g *Graph) LongestPath(ids []string) []string {
	path, err := g.dag.LongestPath(ids)
	if err != nil {
		// Build rejects cyclic graphs, so every subgraph is acyclic.
		return nil
	}
	return path
}

// CheckGraph reports every module referenced anywhere in the graph but found
// nowhere under root. It covers the whole graph, not a single closure.
func CheckGraph(g *Graph, root string) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, id := range g.Unknowns() {
		diags = append(diags, diagnostic.New(diagnostic.SeverityInfo, diagnostic.CodeDependencyNotFound,
			"the dependency %q was found nowhere under %s", id, root).WithModule(id))
	}
	return diags
}
