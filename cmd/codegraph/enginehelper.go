package main

import (
	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/graph"
	"github.com/suatkocar/codegraph/internal/impact"
	"github.com/suatkocar/codegraph/internal/logging"
	"github.com/suatkocar/codegraph/internal/query"
	"github.com/suatkocar/codegraph/internal/storage"
)

// openEngine opens the store and builds the query engine from
// configuration; the caller owns closing the returned DB.
func openEngine(root string, cfg *config.Config, logger *logging.Logger) (*storage.DB, *query.Engine, error) {
	db, err := storage.Open(root, logger)
	if err != nil {
		return nil, nil, err
	}
	engine := query.NewEngine(db, nil, engineOptions(cfg), logger)
	return db, engine, nil
}

// engineOptions maps configuration onto the engine's tunables.
func engineOptions(cfg *config.Config) query.Options {
	opts := query.DefaultOptions()
	if cfg.Search.SemanticTopK > 0 {
		opts.SemanticTopK = cfg.Search.SemanticTopK
	}
	if cfg.Impact.HighThreshold > 0 {
		opts.ImpactThresholds = impact.Thresholds{
			High:   cfg.Impact.HighThreshold,
			Medium: cfg.Impact.MediumThreshold,
		}
	}
	opts.EdgeWeights = graph.DefaultEdgeWeights()
	opts.PageRank = graph.PPROptions{
		Damping:       cfg.PageRank.Damping,
		MaxIterations: cfg.PageRank.MaxIterations,
	}
	opts.Contexts = cfg.Contexts
	return opts
}
