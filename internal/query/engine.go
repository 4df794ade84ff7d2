// Package query is the retrieval engine: keyword search over the FTS
// index, semantic kNN over cached embeddings, reciprocal-rank fusion of
// the two, and the graph-backed operations (call graph, impact, dead
// code) the tool surface exposes. Everything here reads the store; the
// indexing pipeline is the only writer.
package query

import (
	"context"

	"github.com/suatkocar/codegraph/internal/embedding"
	cerrors "github.com/suatkocar/codegraph/internal/errors"
	"github.com/suatkocar/codegraph/internal/graph"
	"github.com/suatkocar/codegraph/internal/impact"
	"github.com/suatkocar/codegraph/internal/logging"
	"github.com/suatkocar/codegraph/internal/paths"
	"github.com/suatkocar/codegraph/internal/storage"
)

// Options are the engine's tunables, resolved from configuration once at
// startup and passed in as a value.
type Options struct {
	// SemanticTopK caps the semantic result list (default 50).
	SemanticTopK int
	// ImpactThresholds are the risk cut-offs for impact analysis.
	ImpactThresholds impact.Thresholds
	// EdgeWeights feed PageRank-style scoring.
	EdgeWeights graph.EdgeWeights
	// PageRank overrides the power-method constants; zero values keep
	// the defaults (damping 0.85, 100 iterations, tolerance 1e-6).
	PageRank graph.PPROptions
	// DeadCodeExcludes are user glob patterns never reported as dead.
	DeadCodeExcludes []string
	// Contexts annotates search results whose file path falls under a
	// configured directory prefix, joined at query time rather than baked
	// into the index.
	Contexts map[string]string
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		SemanticTopK:     embedding.DefaultTopK,
		ImpactThresholds: impact.DefaultThresholds(),
		EdgeWeights:      graph.DefaultEdgeWeights(),
	}
}

// Engine coordinates retrieval and graph operations over one project's
// store. Safe for concurrent use: every operation is a read.
type Engine struct {
	db     *storage.DB
	repo   *storage.GraphRepository
	fts    *storage.FTSManager
	embeds *embedding.Cache
	opts   Options
	logger *logging.Logger
}

// NewEngine creates an engine over db. embeds may be a cache with no
// embedder configured; retrieval then runs keyword-only.
func NewEngine(db *storage.DB, embeds *embedding.Cache, opts Options, logger *logging.Logger) *Engine {
	if opts.SemanticTopK <= 0 {
		opts.SemanticTopK = embedding.DefaultTopK
	}
	if opts.EdgeWeights == (graph.EdgeWeights{}) {
		opts.EdgeWeights = graph.DefaultEdgeWeights()
	}
	repo := storage.NewGraphRepository(db)
	if embeds == nil {
		embeds = embedding.NewCache(nil, repo)
	}
	return &Engine{
		db:     db,
		repo:   repo,
		fts:    storage.NewFTSManager(db.Conn()),
		embeds: embeds,
		opts:   opts,
		logger: logger,
	}
}

// Repo exposes the graph repository for collaborators (context assembler,
// tool layer) that need raw node access.
func (e *Engine) Repo() *storage.GraphRepository {
	return e.repo
}

// SemanticEnabled reports whether hybrid retrieval has a vector side.
func (e *Engine) SemanticEnabled() bool {
	return e.embeds.Enabled()
}

// LookupSymbol resolves a user-supplied symbol reference: a node id
// first, then an exact qualified name, then a unique short name. Callers
// get NotFound when nothing matches and InvalidInput when a bare name is
// ambiguous.
func (e *Engine) LookupSymbol(ctx context.Context, ref string) (*storage.Node, error) {
	if ref == "" {
		return nil, cerrors.NewEngineError(cerrors.InvalidInput, "empty symbol reference", nil)
	}

	if n, err := e.repo.NodeByID(ref); err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "lookup by id", err)
	} else if n != nil {
		return n, nil
	}

	nodes, err := e.repo.AllNodes()
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "load nodes", err)
	}

	var qualified, short []storage.Node
	for _, n := range nodes {
		if n.QualifiedName == ref {
			qualified = append(qualified, n)
		} else if n.Name == ref {
			short = append(short, n)
		}
	}
	candidates := qualified
	if len(candidates) == 0 {
		candidates = short
	}

	switch len(candidates) {
	case 0:
		return nil, cerrors.NewEngineError(cerrors.NotFound, "symbol "+ref+" not found", nil)
	case 1:
		n := candidates[0]
		return &n, nil
	default:
		return nil, cerrors.NewEngineError(cerrors.InvalidInput,
			"symbol "+ref+" is ambiguous; use a qualified name or node id", nil)
	}
}

// FileSymbols lists every node in path, ordered by start line. The path
// is normalized first and rejected if it escapes the indexed root.
func (e *Engine) FileSymbols(ctx context.Context, path string) ([]storage.Node, error) {
	if !paths.WithinRoot(path) {
		return nil, cerrors.NewEngineError(cerrors.InvalidInput, "path escapes the indexed root: "+path, nil)
	}
	nodes, err := e.repo.NodesByFile(paths.Normalize(path))
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "load file symbols", err)
	}
	return nodes, nil
}
