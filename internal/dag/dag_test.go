// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	g := New()
	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := New()
	// base -> web -> sale (base is required first)
	g.AddEdge("base", "web")
	g.AddEdge("web", "sale")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"base", "web", "sale"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		edges    [][2]string
		minNodes int
	}{
		{name: "self loop", edges: [][2]string{{"A", "A"}}, minNodes: 1},
		{name: "two nodes", edges: [][2]string{{"A", "B"}, {"B", "A"}}, minNodes: 2},
		{name: "three nodes", edges: [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}}, minNodes: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := New()
			for _, e := range tt.edges {
				g.AddEdge(e[0], e[1])
			}

			_, err := g.TopologicalSort()
			var cycleErr *CycleError
			if !errors.As(err, &cycleErr) {
				t.Fatalf("expected *CycleError, got %T: %v", err, err)
			}
			if len(cycleErr.Cycle) < tt.minNodes {
				t.Errorf("expected at least %d nodes in cycle, got %v", tt.minNodes, cycleErr.Cycle)
			}
		})
	}
}

func TestAddEdge_DuplicateIgnored(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("A", "B")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"A", "B"}) {
		t.Errorf("expected [A, B], got %v", order)
	}
	if got := g.Ancestors("B"); !slices.Equal(got, []string{"A"}) {
		t.Errorf("expected ancestors [A], got %v", got)
	}
}

func TestAncestors(t *testing.T) {
	t.Parallel()
	g := New()
	// Diamond: base -> {web, mail} -> sale, plus an unrelated node.
	g.AddEdge("base", "web")
	g.AddEdge("base", "mail")
	g.AddEdge("web", "sale")
	g.AddEdge("mail", "sale")
	g.AddEdge("sale", "sale_stock")
	g.AddNode("unrelated")

	got := g.Ancestors("sale")
	slices.Sort(got)
	if want := []string{"base", "mail", "web"}; !slices.Equal(got, want) {
		t.Errorf("Ancestors(sale) = %v, want %v", got, want)
	}

	if got := g.Ancestors("base"); len(got) != 0 {
		t.Errorf("Ancestors(base) = %v, want empty", got)
	}
	if got := g.Ancestors("missing"); got != nil {
		t.Errorf("Ancestors(missing) = %v, want nil", got)
	}
	if !g.Has("unrelated") || g.Has("missing") {
		t.Error("Has reports wrong membership")
	}
}

func TestLongestPath(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "d")
	g.AddEdge("a", "d")
	g.AddEdge("x", "d")
	g.AddEdge("d", "target")

	t.Run("whole subset", func(t *testing.T) {
		t.Parallel()
		path, err := g.LongestPath([]string{"a", "b", "c", "d", "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := []string{"a", "b", "c", "d"}; !slices.Equal(path, want) {
			t.Errorf("LongestPath = %v, want %v", path, want)
		}
	})

	t.Run("edges outside subset are ignored", func(t *testing.T) {
		t.Parallel()
		path, err := g.LongestPath([]string{"a", "c", "d"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := []string{"c", "d"}; !slices.Equal(path, want) {
			t.Errorf("LongestPath = %v, want %v", path, want)
		}
	})

	t.Run("single node", func(t *testing.T) {
		t.Parallel()
		path, err := g.LongestPath([]string{"x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(path, []string{"x"}) {
			t.Errorf("LongestPath = %v, want [x]", path)
		}
	})

	t.Run("empty subset", func(t *testing.T) {
		t.Parallel()
		path, err := g.LongestPath([]string{"nope"})
		if err != nil || path != nil {
			t.Errorf("LongestPath = %v, %v; want nil, nil", path, err)
		}
	})
}

func TestCycleError_Message(t *testing.T) {
	t.Parallel()
	err := &CycleError{Cycle: []string{"A", "B", "C"}}
	expected := "dependency cycle detected: A -> B -> C"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}
