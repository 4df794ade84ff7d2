package graph

import "testing"

func TestStronglyConnectedComponents_ImportCycle(t *testing.T) {
	// Files A -> B -> A via imports.
	g := NewGraph()
	g.AddEdge("A", "B", 1.0, "import")
	g.AddEdge("B", "A", 1.0, "import")
	g.AddNode("C") // unrelated, acyclic

	sccs := g.StronglyConnectedComponents()
	if len(sccs) != 1 {
		t.Fatalf("expected exactly one SCC, got %d: %+v", len(sccs), sccs)
	}

	members := map[string]bool{}
	for _, id := range sccs[0] {
		members[id] = true
	}
	if !members["A"] || !members["B"] {
		t.Errorf("expected SCC {A, B}, got %v", sccs[0])
	}
	if members["C"] {
		t.Errorf("unrelated node C should not appear in any SCC")
	}
}

func TestStronglyConnectedComponents_NoSingletons(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B", 1.0, "import")
	g.AddEdge("B", "C", 1.0, "import")

	sccs := g.StronglyConnectedComponents()
	if len(sccs) != 0 {
		t.Errorf("acyclic chain should report no SCCs of size >= 2, got %+v", sccs)
	}
}
