package graph

import "context"

// TraversalOptions bounds a BFS-style walk.
type TraversalOptions struct {
	// MaxDepth bounds the number of edge hops explored. Zero means unbounded
	// except for the implicit bound of the graph's node count.
	MaxDepth int
}

// TraversalNode is one node reached during a bounded traversal.
type TraversalNode struct {
	NodeID string
	Depth  int
}

// Callers returns the reverse BFS closure along call edges from symbol,
// bounded by opts.MaxDepth. The seed symbol itself is not included.
func (g *Graph) Callers(ctx context.Context, symbol string, opts TraversalOptions) ([]TraversalNode, error) {
	return g.boundedWalk(ctx, symbol, opts, g.inEdges, true, "call")
}

// Callees returns the forward BFS closure along call edges from symbol,
// bounded by opts.MaxDepth. The seed symbol itself is not included.
func (g *Graph) Callees(ctx context.Context, symbol string, opts TraversalOptions) ([]TraversalNode, error) {
	return g.boundedWalk(ctx, symbol, opts, g.outEdges, false, "call")
}

// Dependencies returns the forward BFS closure over call and import edges
// from target, bounded by opts.MaxDepth.
func (g *Graph) Dependencies(ctx context.Context, target string, opts TraversalOptions) ([]TraversalNode, error) {
	return g.boundedWalk(ctx, target, opts, g.outEdges, false, "call", "import")
}

// boundedWalk performs a cycle-safe BFS over adjacency, optionally filtered
// to a set of edge kinds, terminating when opts.MaxDepth is reached or the
// frontier is exhausted. It always terminates: each node is visited once.
// reverse marks adjacency as the inEdges lists, where each entry points at
// the real edge's source; edgeKinds is keyed source→target, so the kind
// lookup flips with the direction.
func (g *Graph) boundedWalk(ctx context.Context, seed string, opts TraversalOptions, adjacency [][]edgeEntry, reverse bool, kinds ...string) ([]TraversalNode, error) {
	startIdx, ok := g.nodeIdx[seed]
	if !ok {
		return nil, nil
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = g.numNodes
	}

	visited := make(map[int]bool, g.numNodes)
	visited[startIdx] = true

	type frontierEntry struct {
		idx   int
		depth int
	}
	frontier := []frontierEntry{{idx: startIdx, depth: 0}}
	var out []TraversalNode

	for len(frontier) > 0 {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		next := frontier[0]
		frontier = frontier[1:]

		if next.depth >= maxDepth {
			continue
		}

		for _, e := range adjacency[next.idx] {
			if visited[e.target] {
				continue
			}
			if len(kinds) > 0 {
				from, to := next.idx, e.target
				if reverse {
					from, to = e.target, next.idx
				}
				kind := g.edgeKinds[g.nodes[from]][g.nodes[to]]
				if kind != "" && !kindIn(kind, kinds) {
					continue
				}
			}
			visited[e.target] = true
			node := TraversalNode{NodeID: g.nodes[e.target], Depth: next.depth + 1}
			out = append(out, node)
			frontier = append(frontier, frontierEntry{idx: e.target, depth: next.depth + 1})
		}
	}

	return out, nil
}

func kindIn(kind string, kinds []string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// FindPath returns the shortest edge sequence from a to b as a slice of node
// ids including both endpoints, or nil if b is unreachable from a.
func (g *Graph) FindPath(ctx context.Context, a, b string) ([]string, error) {
	startIdx, ok := g.nodeIdx[a]
	if !ok {
		return nil, nil
	}
	endIdx, ok := g.nodeIdx[b]
	if !ok {
		return nil, nil
	}
	if startIdx == endIdx {
		return []string{a}, nil
	}

	prev := make(map[int]int, g.numNodes)
	visited := make(map[int]bool, g.numNodes)
	visited[startIdx] = true
	queue := []int{startIdx}

	found := false
	for len(queue) > 0 && !found {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.outEdges[cur] {
			if visited[e.target] {
				continue
			}
			visited[e.target] = true
			prev[e.target] = cur
			if e.target == endIdx {
				found = true
				break
			}
			queue = append(queue, e.target)
		}
	}

	if !visited[endIdx] {
		return nil, nil
	}

	// Walk prev[] back from endIdx to startIdx.
	path := []int{endIdx}
	cur := endIdx
	for cur != startIdx {
		p, ok := prev[cur]
		if !ok {
			return nil, nil
		}
		path = append(path, p)
		cur = p
	}

	ids := make([]string, len(path))
	for i, idx := range path {
		ids[len(path)-1-i] = g.nodes[idx]
	}
	return ids, nil
}
