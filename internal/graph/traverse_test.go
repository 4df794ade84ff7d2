package graph

import (
	"context"
	"testing"
)

func TestCallers_ReverseBFS(t *testing.T) {
	g := NewGraph()
	g.AddEdge("foo", "bar", 1.0, "call")
	g.AddEdge("baz", "bar", 1.0, "call")

	callers, err := g.Callers(context.Background(), "bar", TraversalOptions{MaxDepth: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(callers) != 2 {
		t.Fatalf("expected 2 callers of bar, got %d: %+v", len(callers), callers)
	}
}

func TestCallers_FiltersNonCallEdges(t *testing.T) {
	// Inbound edges of other kinds (containment, references,
	// implementations) must not surface as callers.
	g := NewGraph()
	g.AddEdge("caller", "target", 1.0, "call")
	g.AddEdge("OwningClass", "target", 1.0, "contains")
	g.AddEdge("referrer", "target", 0.8, "reference")
	g.AddEdge("Impl", "target", 0.7, "implements")

	callers, err := g.Callers(context.Background(), "target", TraversalOptions{MaxDepth: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(callers) != 1 || callers[0].NodeID != "caller" {
		t.Fatalf("expected only the call-edge caller, got %+v", callers)
	}
}

func TestCallers_RemovedAfterEdgeGone(t *testing.T) {
	// Rebuilding the graph without foo's
	// edge must not surface foo as a caller of bar.
	g := NewGraph()
	g.AddEdge("baz", "bar", 1.0, "call")

	callers, err := g.Callers(context.Background(), "bar", TraversalOptions{MaxDepth: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range callers {
		if c.NodeID == "foo" {
			t.Errorf("deleted caller foo should not appear")
		}
	}
}

func TestDependencies_CycleSafe_TerminatesWithinBound(t *testing.T) {
	// A -> B -> A via imports must terminate, visiting at most
	// the node count regardless of requested depth.
	g := NewGraph()
	g.AddEdge("A", "B", 1.0, "import")
	g.AddEdge("B", "A", 1.0, "import")

	deps, err := g.Dependencies(context.Background(), "A", TraversalOptions{MaxDepth: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) > g.NumNodes() {
		t.Fatalf("visited more nodes (%d) than exist in the graph (%d)", len(deps), g.NumNodes())
	}
}

func TestFindPath_ShortestSequence(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B", 1.0, "call")
	g.AddEdge("B", "C", 1.0, "call")
	g.AddEdge("A", "C", 1.0, "call")

	path, err := g.FindPath(context.Background(), "A", "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 2 || path[0] != "A" || path[1] != "C" {
		t.Fatalf("expected direct shortest path [A C], got %v", path)
	}
}

func TestFindPath_UnreachableReturnsNil(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B", 1.0, "call")
	g.AddNode("Z")

	path, err := g.FindPath(context.Background(), "A", "Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != nil {
		t.Fatalf("expected nil path for unreachable target, got %v", path)
	}
}
