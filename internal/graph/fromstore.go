package graph

import (
	"github.com/suatkocar/codegraph/internal/storage"
)

// EdgeWeights maps each relationship kind to its propagation weight in
// PageRank-style scoring. Traversal ignores weights; only ranking uses
// them.
type EdgeWeights struct {
	Call       float64
	Import     float64
	Extends    float64
	Implements float64
	Reference  float64
	Contains   float64
	Tests      float64
}

// DefaultEdgeWeights returns the weights used when configuration doesn't
// override them: calls dominate, structural containment barely counts.
func DefaultEdgeWeights() EdgeWeights {
	return EdgeWeights{
		Call:       1.0,
		Import:     0.3,
		Extends:    0.7,
		Implements: 0.7,
		Reference:  0.8,
		Contains:   0.4,
		Tests:      0.5,
	}
}

// BuildFromStore constructs a Graph from the store's nodes/edges tables —
// adjacency rows in, sparse adjacency lists out, never an in-memory
// owning pointer graph. Only resolved edges (TargetNodeID set) contribute;
// unresolved refs are diagnostics, never graph edges.
func BuildFromStore(repo *storage.GraphRepository, weights EdgeWeights) (*Graph, error) {
	g := NewGraph()

	nodes, err := repo.AllNodes()
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		g.AddNode(n.ID)
	}

	edges, err := repo.AllEdges()
	if err != nil {
		return nil, err
	}

	var out []Edge
	for _, e := range edges {
		if e.TargetNodeID == "" {
			continue
		}
		weight, kind := weightAndKind(e.Kind, weights)
		out = append(out, Edge{From: e.SourceNodeID, To: e.TargetNodeID, Weight: weight, Kind: kind})
	}
	g.AddEdges(out)

	return g, nil
}

// BuildImportGraph constructs a Graph over the imports subgraph only, the
// input shape circular-imports detection wants.
func BuildImportGraph(repo *storage.GraphRepository, weights EdgeWeights) (*Graph, error) {
	g := NewGraph()

	edges, err := repo.EdgesByKind(storage.EdgeImports)
	if err != nil {
		return nil, err
	}
	for _, e := range edges {
		if e.TargetNodeID == "" {
			continue
		}
		g.AddEdge(e.SourceNodeID, e.TargetNodeID, weights.Import, "import")
	}
	return g, nil
}

func weightAndKind(kind storage.EdgeKind, weights EdgeWeights) (float64, string) {
	switch kind {
	case storage.EdgeCalls:
		return weights.Call, "call"
	case storage.EdgeImports:
		return weights.Import, "import"
	case storage.EdgeExtends:
		return weights.Extends, "extends"
	case storage.EdgeImplements:
		return weights.Implements, "implements"
	case storage.EdgeReferences:
		return weights.Reference, "reference"
	case storage.EdgeContains:
		return weights.Contains, "contains"
	case storage.EdgeTests:
		return weights.Tests, "tests"
	default:
		return weights.Reference, "reference"
	}
}
