// Package pipeline wires the indexing control flow:
// walk, hash-gate, extract, store, resolve. It is the orchestrator that
// exercises the walker, hasher, symbols, resolver, and storage packages
// together over one project tree.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/suatkocar/codegraph/internal/embedding"
	cerrors "github.com/suatkocar/codegraph/internal/errors"
	"github.com/suatkocar/codegraph/internal/hasher"
	"github.com/suatkocar/codegraph/internal/logging"
	"github.com/suatkocar/codegraph/internal/resolver"
	"github.com/suatkocar/codegraph/internal/storage"
	"github.com/suatkocar/codegraph/internal/symbols"
	"github.com/suatkocar/codegraph/internal/walker"
)

// Options configures one indexing run.
type Options struct {
	RepoRoot string
	Walker   walker.Options
	Resolver resolver.Config
	// MaxWorkers bounds parser-pool concurrency; 0 uses walker.MaxWorkers().
	MaxWorkers int
	// Embeddings is the optional dense-vector stage. Nil (or a cache with
	// no embedder) skips embedding entirely; retrieval then runs
	// keyword-only.
	Embeddings *embedding.Cache
	// EmbedWorkers bounds the embedding pool; small by design to cap
	// memory (default 2).
	EmbedWorkers int
}

// Stats summarizes one Run, the basis for the tool surface's indexing
// status report.
type Stats struct {
	FilesWalked      int
	FilesUnchanged   int
	FilesUnsupported int
	FilesIndexed     int
	FilesDeleted     int
	ParseErrors      int
	StoreErrors      int
	EdgesResolved    int
	EdgesUnresolved  int
	VectorsComputed  int
	VectorsSkipped   int
}

// fileResult is what one parse worker hands the store writer: a ready
// FileBatch plus the resolver inputs that only apply after every batch in
// the pass has been committed.
type fileResult struct {
	batch   storage.FileBatch
	scope   resolver.FileScope
	pending []resolver.PendingEdge
}

// Run executes one indexing pass: every changed file (by content hash) is
// re-extracted and its nodes and containment edges replace the prior ones
// for that file; once every file in the walk has been applied, a single
// repo-wide resolution pass binds pending call/import edges against the
// now-complete node index, and retries any refs left unresolved from a
// prior run. Run is safe to
// call repeatedly over an unchanged tree: no file is re-parsed, but the
// outstanding unresolved refs are still cleared and re-resolved, and the
// deleted-file prune and the embedding stage still run.
//
// Parse workers each own a parser instance (parsers are not safe to
// share) and feed the single store writer through a bounded channel, so a
// slow writer applies backpressure rather than accumulating batches in
// memory.
func Run(ctx context.Context, repo *storage.GraphRepository, opts Options, log *logging.Logger) (Stats, error) {
	var stats Stats

	files, err := walker.Walk(opts.RepoRoot, opts.Walker)
	if err != nil {
		return stats, cerrors.NewEngineError(cerrors.StoreError, "walk repository", err)
	}
	stats.FilesWalked = len(files)

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = walker.MaxWorkers()
	}

	fileCh := make(chan walker.File)
	resultCh := make(chan fileResult, workers)

	var mu sync.Mutex // guards stats, scopes, pending

	scopes := make(map[string]resolver.FileScope)
	var pending []resolver.PendingEdge

	var workerWG sync.WaitGroup
	for w := 0; w < workers; w++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			extractor := symbols.NewExtractor()
			for f := range fileCh {
				if ctx.Err() != nil {
					return
				}
				extractOneFile(ctx, repo, extractor, opts.RepoRoot, f, log, &stats, &mu, resultCh)
			}
		}()
	}

	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		for r := range resultCh {
			if err := repo.ApplyFileBatch(r.batch); err != nil {
				mu.Lock()
				stats.StoreErrors++
				mu.Unlock()
				if log != nil {
					log.Error("store batch failed", map[string]interface{}{"path": r.batch.File.Path, "error": err.Error()})
				}
				continue
			}
			mu.Lock()
			stats.FilesIndexed++
			scopes[r.batch.File.Path] = r.scope
			pending = append(pending, r.pending...)
			mu.Unlock()
		}
	}()

feed:
	for _, f := range files {
		select {
		case fileCh <- f:
		case <-ctx.Done():
			break feed
		}
	}
	close(fileCh)
	workerWG.Wait()
	close(resultCh)
	writerWG.Wait()

	if ctx.Err() != nil {
		return stats, ctx.Err()
	}

	// Prune files that vanished from the tree since the last pass: each
	// deletion cascades to the file's nodes, their edges on either
	// endpoint, their unresolved refs, and their search rows.
	walked := make(map[string]bool, len(files))
	for _, f := range files {
		walked[f.Path] = true
	}
	stored, err := repo.AllFilePaths()
	if err != nil {
		return stats, cerrors.NewEngineError(cerrors.StoreError, "list indexed files", err)
	}
	for _, path := range stored {
		if walked[path] {
			continue
		}
		if err := repo.DeleteFile(path); err != nil {
			return stats, cerrors.NewEngineError(cerrors.StoreError, "prune deleted file "+path, err)
		}
		stats.FilesDeleted++
	}

	// Bring forward refs left unresolved by an earlier run before folding
	// in this run's new pending edges, so both get a shot at the same
	// up-to-date index. Carried rows are deleted up front; resolveAndPersist
	// re-inserts fresh rows for whichever are still unresolved afterward.
	carried, err := repo.AllUnresolvedRefs()
	if err != nil {
		return stats, cerrors.NewEngineError(cerrors.StoreError, "load outstanding unresolved refs", err)
	}
	if len(carried) > 0 {
		ids := make([]int64, len(carried))
		for i, u := range carried {
			ids[i] = u.ID
		}
		if err := repo.DeleteUnresolvedRefs(ids); err != nil {
			return stats, cerrors.NewEngineError(cerrors.StoreError, "clear outstanding unresolved refs", err)
		}
	}

	carriedScope := make(map[string]string, len(carried))
	for _, u := range carried {
		pending = append(pending, resolver.PendingEdge{
			SourceNodeID: u.SourceNodeID,
			TargetText:   u.TextualTarget,
			Kind:         u.Kind,
		})
		carriedScope[u.SourceNodeID] = u.ScopeContext
	}

	if len(pending) > 0 {
		if err := resolveAndPersist(repo, opts.Resolver, scopes, carriedScope, pending, &stats); err != nil {
			return stats, err
		}
	}

	if err := embedPass(ctx, repo, opts, &stats, log); err != nil {
		return stats, err
	}

	return stats, nil
}

// embedPass is the pipeline's final stage: compute vectors for nodes that
// don't have one yet, deduplicated by content fingerprint. Failures skip
// the affected node's vector rather than failing the pass (embedding is
// best-effort recall, never correctness).
func embedPass(ctx context.Context, repo *storage.GraphRepository, opts Options, stats *Stats, log *logging.Logger) error {
	cache := opts.Embeddings
	if cache == nil || !cache.Enabled() {
		return nil
	}

	nodes, err := repo.AllNodes()
	if err != nil {
		return cerrors.NewEngineError(cerrors.StoreError, "load nodes for embedding", err)
	}

	// One entry per fingerprint: the Node-to-vector join is many-to-one.
	texts := make(map[string]string, len(nodes))
	var order []string
	for _, n := range nodes {
		if _, seen := texts[n.Fingerprint]; seen {
			continue
		}
		texts[n.Fingerprint] = embedding.NodeText(n)
		order = append(order, n.Fingerprint)
	}

	workers := opts.EmbedWorkers
	if workers <= 0 {
		workers = 2
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	fpCh := make(chan string)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fp := range fpCh {
				if ctx.Err() != nil {
					return
				}
				if _, _, err := cache.Get(ctx, fp, texts[fp]); err != nil {
					mu.Lock()
					stats.VectorsSkipped++
					mu.Unlock()
					if log != nil {
						log.Warn("embedding failed", map[string]interface{}{"fingerprint": fp, "error": err.Error()})
					}
					continue
				}
				mu.Lock()
				stats.VectorsComputed++
				mu.Unlock()
			}
		}()
	}

	for _, fp := range order {
		select {
		case fpCh <- fp:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(fpCh)
	wg.Wait()

	return ctx.Err()
}

// extractOneFile runs the per-file half of a pass on a worker goroutine:
// hash gate, grammar selection, extraction. Results go to the writer via
// resultCh; only counters are touched directly. The hash gate is the sole
// thing keeping a no-change pass at milliseconds — when it hits, the
// parser is never invoked.
func extractOneFile(
	ctx context.Context,
	repo *storage.GraphRepository,
	extractor *symbols.Extractor,
	repoRoot string,
	f walker.File,
	log *logging.Logger,
	stats *Stats,
	mu *sync.Mutex,
	resultCh chan<- fileResult,
) {
	lang, ok := symbols.LanguageFromExtension(strings.ToLower(filepath.Ext(f.Path)))
	if !ok {
		mu.Lock()
		stats.FilesUnsupported++
		mu.Unlock()
		return
	}

	content, err := os.ReadFile(filepath.Join(repoRoot, f.Path))
	if err != nil {
		return
	}
	contentHash := hasher.HashBytes(content)

	if prior, ok, err := repo.GetFileHash(f.Path); err == nil && ok && prior == contentHash {
		mu.Lock()
		stats.FilesUnchanged++
		mu.Unlock()
		return
	}

	graph, err := extractor.ExtractGraph(ctx, f.Path, content, lang)
	if err != nil {
		mu.Lock()
		stats.ParseErrors++
		mu.Unlock()
		if log != nil {
			log.Warn("parse failed", map[string]interface{}{"path": f.Path, "error": err.Error()})
		}
		// Parse errors are local to the file: record the failure summary so
		// the file is not retried until its content changes.
		result := fileResult{batch: storage.FileBatch{
			File: storage.FileRecordRow{
				Path:              f.Path,
				ContentHash:       contentHash,
				Language:          string(lang),
				ParseErrorSummary: err.Error(),
			},
		}}
		select {
		case resultCh <- result:
		case <-ctx.Done():
		}
		return
	}

	for i := range graph.Nodes {
		graph.Nodes[i].IsTest = f.IsTest
	}

	result := fileResult{
		batch: storage.FileBatch{
			File: storage.FileRecordRow{
				Path:        f.Path,
				ContentHash: contentHash,
				Language:    string(lang),
				SymbolCount: len(graph.Nodes),
			},
			Nodes: graph.Nodes,
			Edges: graph.ContainsEdges,
		},
		scope:   graph.Scope,
		pending: graph.Pending,
	}
	select {
	case resultCh <- result:
	case <-ctx.Done():
	}
}

// resolveAndPersist builds a fresh resolver.Index over every node currently
// in the store, resolves pending against it, and persists the outcome.
func resolveAndPersist(
	repo *storage.GraphRepository,
	cfg resolver.Config,
	scopes map[string]resolver.FileScope,
	carriedScope map[string]string,
	pending []resolver.PendingEdge,
	stats *Stats,
) error {
	nodes, err := repo.AllNodes()
	if err != nil {
		return cerrors.NewEngineError(cerrors.StoreError, "load nodes for resolution", err)
	}

	sourceFile := make(map[string]string, len(nodes))
	for _, n := range nodes {
		sourceFile[n.ID] = n.FilePath
	}

	scopeOf := func(sourceNodeID string) string {
		if f, ok := sourceFile[sourceNodeID]; ok {
			return f
		}
		return carriedScope[sourceNodeID]
	}

	idx := resolver.NewIndex(nodes, scopes)
	res := resolver.New(cfg, idx)
	resolutions := res.ResolveAll(pending, scopeOf)

	var edges []storage.Edge
	var unresolved []storage.UnresolvedRefRow
	for _, r := range resolutions {
		switch {
		case r.Edge != nil:
			edges = append(edges, *r.Edge)
			stats.EdgesResolved++
		case r.Unresolved != nil:
			unresolved = append(unresolved, *r.Unresolved)
			stats.EdgesUnresolved++
		}
	}

	if err := repo.ApplyResolutions(edges, unresolved); err != nil {
		return cerrors.NewEngineError(cerrors.StoreError, "persist resolutions", err)
	}
	return nil
}
