// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations over string-keyed
// nodes: topological sorting with cycle detection, ancestor traversal, and
// longest-path search over induced subgraphs. It backs the module dependency
// graph, where an edge from A to B means "B depends on A".
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the nodes that form the cycle (not necessarily all of them,
		// but enough to identify the problem).
		Cycle []string
	}

	// Graph is a directed graph keyed by strings.
	// An edge from A to B means A must come before B.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// reverse maps each node to its incoming neighbors (nodes it depends on).
		reverse map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		reverse:   make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must come before "to".
// Both nodes are implicitly added if they don't exist. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	for _, existing := range g.adjacency[from] {
		if existing == to {
			return
		}
	}
	g.adjacency[from] = append(g.adjacency[from], to)
	g.reverse[to] = append(g.reverse[to], from)
}

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	return g.nodeSet[name]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Ancestors returns every node that has a path to name, excluding name itself.
// The result follows breadth-first discovery order. Unknown names yield nil.
func (g *Graph) Ancestors(name string) []string {
	if !g.nodeSet[name] {
		return nil
	}

	seen := map[string]bool{name: true}
	queue := []string{name}
	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, pred := range g.reverse[node] {
			if seen[pred] {
				continue
			}
			seen[pred] = true
			result = append(result, pred)
			queue = append(queue, pred)
		}
	}
	return result
}

// TopologicalSort returns a valid execution order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph) TopologicalSort() ([]string, error) {
	return g.sortSubset(nil)
}

// LongestPath returns the longest path (by edge count) in the subgraph induced
// by subset. Ties resolve to the path ending earliest in topological order.
// Nodes outside the graph are ignored.
// The graph must be acyclic; a CycleError is returned otherwise.
func (g *Graph) LongestPath(subset []string) ([]string, error) {
	include := make(map[string]bool, len(subset))
	for _, n := range subset {
		if g.nodeSet[n] {
			include[n] = true
		}
	}
	if len(include) == 0 {
		return nil, nil
	}

	order, err := g.sortSubset(include)
	if err != nil {
		return nil, err
	}

	dist := make(map[string]int, len(order))
	prev := make(map[string]string, len(order))
	for _, node := range order {
		for _, pred := range g.reverse[node] {
			if !include[pred] {
				continue
			}
			if d := dist[pred] + 1; d > dist[node] {
				dist[node] = d
				prev[node] = pred
			}
		}
	}

	end := order[0]
	for _, node := range order {
		if dist[node] > dist[end] {
			end = node
		}
	}

	path := []string{end}
	for {
		p, ok := prev[path[len(path)-1]]
		if !ok {
			break
		}
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// sortSubset runs Kahn's algorithm over the nodes in include (all nodes when
// include is nil), considering only edges between included nodes.
func (g *Graph) sortSubset(include map[string]bool) ([]string, error) {
	in := func(n string) bool { return include == nil || include[n] }

	var members []string
	for _, node := range g.nodes {
		if in(node) {
			members = append(members, node)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}

	// Compute in-degrees.
	inDegree := make(map[string]int, len(members))
	for _, node := range members {
		inDegree[node] = 0
	}
	for _, node := range members {
		for _, neighbor := range g.adjacency[node] {
			if in(neighbor) {
				inDegree[neighbor]++
			}
		}
	}

	// Seed the queue with nodes that have no incoming edges, in insertion order.
	queue := make([]string, 0)
	for _, node := range members {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			if !in(neighbor) {
				continue
			}
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(members) {
		// Remaining nodes with non-zero in-degree form the cycle.
		var cycleNodes []string
		for _, node := range members {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}
