package query

import (
	"context"
	"sort"
	"strings"

	"github.com/suatkocar/codegraph/internal/embedding"
	cerrors "github.com/suatkocar/codegraph/internal/errors"
	"github.com/suatkocar/codegraph/internal/expand"
	"github.com/suatkocar/codegraph/internal/graph"
	"github.com/suatkocar/codegraph/internal/storage"
)

// SearchResult is one hit with full origin provenance: where it ranked in
// each primitive list and the fused score, so callers can reason about
// why it appeared.
type SearchResult struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	QualifiedName string  `json:"qualifiedName"`
	Kind          string  `json:"kind"`
	FilePath      string  `json:"filePath"`
	Signature     string  `json:"signature,omitempty"`
	Documentation string  `json:"documentation,omitempty"`
	Language      string  `json:"language,omitempty"`
	MatchType     string  `json:"matchType,omitempty"`
	KeywordRank   int     `json:"keywordRank,omitempty"`  // 1-based; 0 = absent from keyword list
	SemanticRank  int     `json:"semanticRank,omitempty"` // 1-based; 0 = absent from semantic list
	FusedScore    float64 `json:"fusedScore,omitempty"`
	Similarity    float64 `json:"similarity,omitempty"`

	// Context is the configured directory annotation for the hit's path,
	// when one applies.
	Context string `json:"context,omitempty"`
}

// annotate joins the configured directory contexts onto a result; the
// longest matching prefix wins.
func (e *Engine) annotate(r *SearchResult) {
	best := -1
	for prefix, note := range e.opts.Contexts {
		if strings.HasPrefix(r.FilePath, prefix) && len(prefix) > best {
			best = len(prefix)
			r.Context = note
		}
	}
}

// Search is the fast mode: the keyword ladder only, no expansion, no
// semantic pass, no fusion. Contract is a handful of milliseconds on a
// warm index.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, cerrors.NewEngineError(cerrors.InvalidInput, "empty search query", nil)
	}
	hits, err := e.fts.Search(ctx, query, limit)
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "keyword search", err)
	}
	out := make([]SearchResult, len(hits))
	for i, h := range hits {
		out[i] = fromFTSHit(h, i+1)
		e.annotate(&out[i])
	}
	return out, nil
}

// SearchHybrid runs the full retrieval stack: expanded keyword search,
// semantic kNN when the capability is present, and reciprocal-rank fusion
// with PageRank tie-breaks. With no embedder configured it degrades to
// the expanded keyword ranking without error.
func (e *Engine) SearchHybrid(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, cerrors.NewEngineError(cerrors.InvalidInput, "empty search query", nil)
	}
	if limit <= 0 {
		limit = 20
	}

	keyword, err := e.keywordExpanded(ctx, query, limit*2)
	if err != nil {
		return nil, err
	}

	semantic, sims, err := e.semanticKNN(ctx, query)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]storage.FTSSearchResult, len(keyword))
	keywordIDs := make([]string, len(keyword))
	for i, h := range keyword {
		keywordIDs[i] = h.ID
		byID[h.ID] = h
	}

	lists := []RankedList{{Name: "keyword", IDs: keywordIDs}}
	if len(semantic) > 0 {
		lists = append(lists, RankedList{Name: "semantic", IDs: semantic})
	}

	ranks, err := e.pageRanks(ctx)
	if err != nil {
		return nil, err
	}

	fused := FuseRRF(lists, ranks)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	out := make([]SearchResult, 0, len(fused))
	for _, f := range fused {
		var r SearchResult
		if hit, ok := byID[f.ID]; ok {
			r = fromFTSHit(hit, 0)
		} else if n, err := e.repo.NodeByID(f.ID); err == nil && n != nil {
			// Semantic-only hit: hydrate from the node row.
			r = SearchResult{
				ID: n.ID, Name: n.Name, QualifiedName: n.QualifiedName,
				Kind: string(n.Kind), FilePath: n.FilePath,
				Signature: n.Signature, Documentation: n.Documentation,
				Language: n.Language, MatchType: "semantic",
			}
		} else {
			continue
		}
		r.KeywordRank = f.Origin["keyword"]
		r.SemanticRank = f.Origin["semantic"]
		r.FusedScore = f.FusedScore
		r.Similarity = sims[f.ID]
		e.annotate(&r)
		out = append(out, r)
	}
	return out, nil
}

// keywordExpanded merges the per-term keyword ladders for every expanded
// term into one deterministic ranking: a document's score is its best
// boost-weighted reciprocal rank across terms.
func (e *Engine) keywordExpanded(ctx context.Context, query string, limit int) ([]storage.FTSSearchResult, error) {
	terms := expand.Expand(query)
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		hit   storage.FTSSearchResult
		score float64
	}
	best := make(map[string]scored)

	for _, term := range terms {
		hits, err := e.fts.Search(ctx, term.Text, limit)
		if err != nil {
			return nil, cerrors.NewEngineError(cerrors.StoreError, "keyword search", err)
		}
		for rank, h := range hits {
			score := term.Boost / float64(rank+1)
			if prev, ok := best[h.ID]; !ok || score > prev.score {
				best[h.ID] = scored{hit: h, score: score}
			}
		}
	}

	out := make([]scored, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].hit.ID < out[j].hit.ID
	})
	if len(out) > limit {
		out = out[:limit]
	}

	hits := make([]storage.FTSSearchResult, len(out))
	for i, s := range out {
		hits[i] = s.hit
	}
	return hits, nil
}

// semanticKNN embeds the query and scans cached vectors. Returns ranked
// node ids plus each hit's similarity. Absent capability returns empty
// without error.
func (e *Engine) semanticKNN(ctx context.Context, query string) ([]string, map[string]float64, error) {
	sims := map[string]float64{}
	if !e.embeds.Enabled() {
		return nil, sims, nil
	}

	queryVec, err := e.embeds.EmbedQuery(ctx, query)
	if err != nil {
		// Embedder failures degrade to keyword-only rather than failing
		// the search.
		if e.logger != nil {
			e.logger.Warn("query embedding failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, sims, nil
	}

	nodes, err := e.repo.AllNodes()
	if err != nil {
		return nil, nil, cerrors.NewEngineError(cerrors.StoreError, "load nodes for knn", err)
	}
	vectors, err := embedding.VectorsByFingerprint(e.repo)
	if err != nil {
		return nil, nil, cerrors.NewEngineError(cerrors.StoreError, "load embeddings", err)
	}

	hits := embedding.SearchKNN(queryVec, nodes, vectors, e.opts.SemanticTopK)
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.NodeID
		sims[h.NodeID] = h.Similarity
	}
	return ids, sims, nil
}

// pageRanks computes the global PageRank map used for fusion tie-breaks.
func (e *Engine) pageRanks(ctx context.Context) (map[string]float64, error) {
	g, err := graph.BuildFromStore(e.repo, e.opts.EdgeWeights)
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "build graph", err)
	}
	ranks, _, _, err := g.PageRankScores(ctx, e.opts.PageRank)
	if err != nil {
		return nil, err
	}
	return ranks, nil
}

func fromFTSHit(h storage.FTSSearchResult, keywordRank int) SearchResult {
	return SearchResult{
		ID:            h.ID,
		Name:          h.Name,
		QualifiedName: h.QualifiedName,
		Kind:          h.Kind,
		FilePath:      h.FilePath,
		Signature:     h.Signature,
		Documentation: h.Documentation,
		Language:      h.Language,
		MatchType:     h.MatchType,
		KeywordRank:   keywordRank,
	}
}
