// Package contextpack assembles token-budgeted context for a downstream
// consumer: a four-tier selection (full source, neighbor signatures,
// tests and siblings, directory background) over the retrieval engine's
// ranked candidates, with adaptive budget redistribution.
package contextpack

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cerrors "github.com/suatkocar/codegraph/internal/errors"
	"github.com/suatkocar/codegraph/internal/query"
	"github.com/suatkocar/codegraph/internal/storage"
)

// Builder gathers the four tiers' raw material from the engine and the
// working tree, then hands it to Assemble.
type Builder struct {
	engine   *query.Engine
	repoRoot string

	// MaxCandidates caps how many retrieval hits feed Core.
	MaxCandidates int
}

// NewBuilder creates a builder rooted at repoRoot.
func NewBuilder(engine *query.Engine, repoRoot string) *Builder {
	return &Builder{engine: engine, repoRoot: repoRoot, MaxCandidates: 10}
}

// Build runs retrieval for queryText and assembles a context within
// budget tokens. Given the same query, index state, and budget, the
// output bytes are identical.
func (b *Builder) Build(ctx context.Context, queryText string, budget int) (*Result, error) {
	if budget <= 0 {
		return nil, cerrors.NewEngineError(cerrors.InvalidInput, "budget must be positive", nil)
	}

	hits, err := b.engine.SearchHybrid(ctx, queryText, b.MaxCandidates)
	if err != nil {
		return nil, err
	}

	in := Input{}
	repo := b.engine.Repo()

	coreIDs := make([]string, 0, len(hits))
	coreFiles := map[string]bool{}
	for _, h := range hits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node, err := repo.NodeByID(h.ID)
		if err != nil || node == nil {
			continue
		}
		body := b.nodeSource(node)
		if body == "" {
			body = node.Signature
		}
		in.Candidates = append(in.Candidates, Candidate{
			NodeID:    node.ID,
			FilePath:  node.FilePath,
			Body:      body,
			Signature: node.Signature,
		})
		coreIDs = append(coreIDs, node.ID)
		coreFiles[node.FilePath] = true
	}

	in.Near = b.gatherNear(ctx, coreIDs)
	in.Extended = b.gatherExtended(ctx, coreIDs, coreFiles)
	in.Background = b.directoryListing()

	res := Assemble(in, budget)
	return &res, nil
}

// nodeSource reads the node's defining line range from its file.
func (b *Builder) nodeSource(n *storage.Node) string {
	content, err := os.ReadFile(filepath.Join(b.repoRoot, n.FilePath))
	if err != nil {
		return ""
	}
	lines := strings.Split(string(content), "\n")
	if n.StartLine < 1 || n.StartLine > len(lines) {
		return ""
	}
	end := n.EndLine
	if end < n.StartLine || end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[n.StartLine-1:end], "\n")
}

// gatherNear collects signatures of direct callers and callees of the
// Core candidates, deduplicated, in deterministic order.
func (b *Builder) gatherNear(ctx context.Context, coreIDs []string) []CallerCallee {
	repo := b.engine.Repo()
	seen := map[string]bool{}
	for _, id := range coreIDs {
		seen[id] = true
	}

	var out []CallerCallee
	for _, id := range coreIDs {
		for _, op := range []func(context.Context, string, int) ([]query.GraphNode, error){
			b.engine.Callers, b.engine.Callees,
		} {
			neighbors, err := op(ctx, id, 1)
			if err != nil {
				continue
			}
			for _, n := range neighbors {
				if seen[n.ID] {
					continue
				}
				seen[n.ID] = true
				node, err := repo.NodeByID(n.ID)
				if err != nil || node == nil || node.Signature == "" {
					continue
				}
				out = append(out, CallerCallee{NodeID: node.ID, Signature: node.Signature})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// gatherExtended collects tests referencing the Core candidates plus
// sibling declarations from the same files.
func (b *Builder) gatherExtended(ctx context.Context, coreIDs []string, coreFiles map[string]bool) []ExtendedItem {
	repo := b.engine.Repo()
	seen := map[string]bool{}
	for _, id := range coreIDs {
		seen[id] = true
	}

	var out []ExtendedItem

	// Tests: any test-tagged caller of a core candidate.
	for _, id := range coreIDs {
		callers, err := b.engine.Callers(ctx, id, 1)
		if err != nil {
			continue
		}
		for _, c := range callers {
			if seen[c.ID] {
				continue
			}
			node, err := repo.NodeByID(c.ID)
			if err != nil || node == nil || !node.IsTest {
				continue
			}
			seen[c.ID] = true
			text := node.Signature
			if body := b.nodeSource(node); body != "" {
				text = body
			}
			out = append(out, ExtendedItem{NodeID: node.ID, Text: text})
		}
	}

	// Siblings: other declarations from the Core files, signatures only.
	files := make([]string, 0, len(coreFiles))
	for f := range coreFiles {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		nodes, err := repo.NodesByFile(f)
		if err != nil {
			continue
		}
		for _, n := range nodes {
			if seen[n.ID] || n.Signature == "" || n.Kind == storage.KindModule {
				continue
			}
			seen[n.ID] = true
			out = append(out, ExtendedItem{NodeID: n.ID, Text: n.Signature})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// directoryListing renders a compact tree of the indexed files, one path
// per line, sorted — the Background tier's raw text.
func (b *Builder) directoryListing() string {
	rows, err := b.engine.Repo().AllNodes()
	if err != nil {
		return ""
	}
	set := map[string]bool{}
	for _, n := range rows {
		set[n.FilePath] = true
	}
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return strings.Join(paths, "\n")
}
