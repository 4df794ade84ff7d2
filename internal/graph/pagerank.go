package graph

import "context"

// PageRankScores runs the global power method over the graph: uniform
// teleport across all nodes, damping and convergence per opts (defaults
// 0.85, tolerance 1e-6, 100 iterations). Returns every node's score, the
// iteration count, and whether the run converged before the cap. Unlike
// PPR, there are no seeds: this is the whole-graph importance signal used
// for ranking tie-breaks and hub detection.
func (g *Graph) PageRankScores(ctx context.Context, opts PPROptions) (map[string]float64, int, bool, error) {
	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = 0.85
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}

	out := make(map[string]float64, g.numNodes)
	if g.numNodes == 0 {
		return out, 0, true, nil
	}

	uniform := 1.0 / float64(g.numNodes)
	scores := make([]float64, g.numNodes)
	for i := range scores {
		scores[i] = uniform
	}

	outDegree := make([]float64, g.numNodes)
	for i, edges := range g.outEdges {
		for _, e := range edges {
			outDegree[i] += e.weight
		}
	}

	newScores := make([]float64, g.numNodes)
	var iterations int
	var converged bool

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, iterations, false, err
		}
		iterations = iter + 1

		// Dangling nodes redistribute their mass uniformly so the vector
		// stays a probability distribution.
		var danglingMass float64
		for i := range newScores {
			newScores[i] = 0
		}
		for i, edges := range g.outEdges {
			if len(edges) == 0 || outDegree[i] == 0 {
				danglingMass += scores[i]
				continue
			}
			contrib := scores[i] / outDegree[i]
			for _, e := range edges {
				newScores[e.target] += contrib * e.weight
			}
		}

		maxDiff := 0.0
		base := (1-opts.Damping)*uniform + opts.Damping*danglingMass*uniform
		for i := range newScores {
			newScores[i] = opts.Damping*newScores[i] + base
			if diff := abs(newScores[i] - scores[i]); diff > maxDiff {
				maxDiff = diff
			}
		}

		scores, newScores = newScores, scores
		if maxDiff < opts.Tolerance {
			converged = true
			break
		}
	}

	for i, s := range scores {
		out[g.nodes[i]] = s
	}
	return out, iterations, converged, nil
}
