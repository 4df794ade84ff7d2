package query

import (
	"context"
	"sort"

	cerrors "github.com/suatkocar/codegraph/internal/errors"
	"github.com/suatkocar/codegraph/internal/graph"
)

// GraphNode is one traversal hit hydrated with node details.
type GraphNode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualifiedName"`
	Kind          string `json:"kind"`
	FilePath      string `json:"filePath"`
	Line          int    `json:"line"`
	Depth         int    `json:"depth"`
}

// Callers returns the reverse call-graph closure of symbol, bounded by
// depth (0 means the graph's node count).
func (e *Engine) Callers(ctx context.Context, symbol string, depth int) ([]GraphNode, error) {
	return e.walk(ctx, symbol, depth, func(g *graph.Graph, id string, opts graph.TraversalOptions) ([]graph.TraversalNode, error) {
		return g.Callers(ctx, id, opts)
	})
}

// Callees returns the forward call-graph closure of symbol, bounded by
// depth.
func (e *Engine) Callees(ctx context.Context, symbol string, depth int) ([]GraphNode, error) {
	return e.walk(ctx, symbol, depth, func(g *graph.Graph, id string, opts graph.TraversalOptions) ([]graph.TraversalNode, error) {
		return g.Callees(ctx, id, opts)
	})
}

// Dependencies returns the forward closure over calls and imports.
func (e *Engine) Dependencies(ctx context.Context, symbol string, depth int) ([]GraphNode, error) {
	return e.walk(ctx, symbol, depth, func(g *graph.Graph, id string, opts graph.TraversalOptions) ([]graph.TraversalNode, error) {
		return g.Dependencies(ctx, id, opts)
	})
}

func (e *Engine) walk(
	ctx context.Context,
	symbol string,
	depth int,
	op func(*graph.Graph, string, graph.TraversalOptions) ([]graph.TraversalNode, error),
) ([]GraphNode, error) {
	node, err := e.LookupSymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}

	g, err := graph.BuildFromStore(e.repo, e.opts.EdgeWeights)
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "build graph", err)
	}

	reached, err := op(g, node.ID, graph.TraversalOptions{MaxDepth: depth})
	if err != nil {
		return nil, err
	}
	return e.hydrate(reached)
}

// hydrate joins traversal hits back to node rows, ordered by depth then
// id for deterministic output.
func (e *Engine) hydrate(reached []graph.TraversalNode) ([]GraphNode, error) {
	sort.Slice(reached, func(i, j int) bool {
		if reached[i].Depth != reached[j].Depth {
			return reached[i].Depth < reached[j].Depth
		}
		return reached[i].NodeID < reached[j].NodeID
	})

	out := make([]GraphNode, 0, len(reached))
	for _, r := range reached {
		n, err := e.repo.NodeByID(r.NodeID)
		if err != nil {
			return nil, cerrors.NewEngineError(cerrors.StoreError, "hydrate node", err)
		}
		if n == nil {
			continue
		}
		out = append(out, GraphNode{
			ID:            n.ID,
			Name:          n.Name,
			QualifiedName: n.QualifiedName,
			Kind:          string(n.Kind),
			FilePath:      n.FilePath,
			Line:          n.StartLine,
			Depth:         r.Depth,
		})
	}
	return out, nil
}

// FindPath returns the shortest edge sequence between two symbols as
// hydrated nodes including both endpoints, or empty when unreachable.
func (e *Engine) FindPath(ctx context.Context, from, to string) ([]GraphNode, error) {
	src, err := e.LookupSymbol(ctx, from)
	if err != nil {
		return nil, err
	}
	dst, err := e.LookupSymbol(ctx, to)
	if err != nil {
		return nil, err
	}

	g, err := graph.BuildFromStore(e.repo, e.opts.EdgeWeights)
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "build graph", err)
	}

	path, err := g.FindPath(ctx, src.ID, dst.ID)
	if err != nil {
		return nil, err
	}

	var reached []graph.TraversalNode
	for i, id := range path {
		reached = append(reached, graph.TraversalNode{NodeID: id, Depth: i})
	}
	return e.hydrate(reached)
}

// ImportCycle is one strongly connected component of the imports
// subgraph, reported as file paths.
type ImportCycle struct {
	Files []string `json:"files"`
}

// CircularImports runs Tarjan over the imports subgraph and returns
// components of size >= 2, each sorted, the list sorted by first member.
func (e *Engine) CircularImports(ctx context.Context) ([]ImportCycle, error) {
	g, err := graph.BuildImportGraph(e.repo, e.opts.EdgeWeights)
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "build import graph", err)
	}

	var cycles []ImportCycle
	for _, scc := range g.StronglyConnectedComponents() {
		files := make([]string, 0, len(scc))
		seen := map[string]bool{}
		for _, id := range scc {
			n, err := e.repo.NodeByID(id)
			if err != nil {
				return nil, cerrors.NewEngineError(cerrors.StoreError, "hydrate cycle member", err)
			}
			path := id
			if n != nil {
				path = n.FilePath
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
		if len(files) < 2 {
			continue
		}
		sort.Strings(files)
		cycles = append(cycles, ImportCycle{Files: files})
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Files[0] < cycles[j].Files[0] })
	return cycles, nil
}

// RankedSymbol is one PageRank entry.
type RankedSymbol struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	QualifiedName string  `json:"qualifiedName"`
	FilePath      string  `json:"filePath"`
	Score         float64 `json:"score"`
}

// PageRank returns the top-limit symbols by global PageRank over the
// graph of every resolved edge kind, each weighted by the engine's
// EdgeWeights; the walk is not restricted to calls and imports.
func (e *Engine) PageRank(ctx context.Context, limit int) ([]RankedSymbol, error) {
	if limit <= 0 {
		limit = 20
	}
	ranks, err := e.pageRanks(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RankedSymbol, 0, len(ranks))
	for id, score := range ranks {
		out = append(out, RankedSymbol{ID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}

	for i := range out {
		n, err := e.repo.NodeByID(out[i].ID)
		if err != nil {
			return nil, cerrors.NewEngineError(cerrors.StoreError, "hydrate ranked symbol", err)
		}
		if n != nil {
			out[i].Name = n.Name
			out[i].QualifiedName = n.QualifiedName
			out[i].FilePath = n.FilePath
		}
	}
	return out, nil
}
