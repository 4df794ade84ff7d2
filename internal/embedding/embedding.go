// Package embedding provides the optional dense-vector capability over
// node text. When no Embedder is configured, downstream
// retrieval runs in keyword-only mode with a recall loss but no correctness
// loss — nothing in this package is required for the core engine to work.
package embedding

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/singleflight"

	"github.com/suatkocar/codegraph/internal/storage"
)

// Dimension is the fixed size of every embedding vector this build
// produces. It is a build-time constant, not a runtime configuration knob,
// so cached vectors never need a dimension migration.
const Dimension = 768

// Embedder turns node text (signature + doc + name) into a
// fixed-dimension dense vector. Implementations are CPU-bound and are
// called from a small, bounded worker pool to cap memory.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NodeText assembles the text an Embedder sees for a node: name, then
// signature, then documentation.
func NodeText(n storage.Node) string {
	text := n.Name
	if n.Signature != "" {
		text += " " + n.Signature
	}
	if n.Documentation != "" {
		text += " " + n.Documentation
	}
	return text
}

// Cache deduplicates embedding computation by content fingerprint and
// persists results through a GraphRepository. Concurrent requests for
// the same missing fingerprint share one computation (single-flight).
type Cache struct {
	embedder Embedder
	store    *storage.GraphRepository
	group    singleflight.Group
}

// NewCache creates a Cache. embedder may be nil, in which case Get always
// reports the capability as absent rather than erroring.
func NewCache(embedder Embedder, store *storage.GraphRepository) *Cache {
	return &Cache{embedder: embedder, store: store}
}

// Enabled reports whether an Embedder is configured. Callers use this to
// decide whether to run hybrid (keyword+semantic) or keyword-only
// retrieval.
func (c *Cache) Enabled() bool {
	return c.embedder != nil
}

// Get returns the vector for fingerprint/text, computing and caching it on
// a miss. If no Embedder is configured it returns (nil, false, nil): this
// is the "capability absent" case, not an error.
func (c *Cache) Get(ctx context.Context, fingerprint, text string) ([]float32, bool, error) {
	if c.embedder == nil {
		return nil, false, nil
	}

	if cached, err := c.store.GetEmbedding(fingerprint); err != nil {
		return nil, false, fmt.Errorf("read embedding cache for %s: %w", fingerprint, err)
	} else if cached != nil {
		return cached.Vector, true, nil
	}

	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		vec, embedErr := c.embedder.Embed(ctx, text)
		if embedErr != nil {
			return nil, embedErr
		}
		if putErr := c.store.PutEmbedding(fingerprint, vec); putErr != nil {
			return nil, putErr
		}
		return vec, nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("embed %s: %w", fingerprint, err)
	}
	return v.([]float32), true, nil
}

// EmbedQuery embeds ad-hoc query text directly, bypassing the
// fingerprint cache: queries aren't content-addressed and rarely repeat
// byte-for-byte. Returns an error if no Embedder is configured; callers
// check Enabled first.
func (c *Cache) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if c.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	return c.embedder.Embed(ctx, text)
}

// CosineSimilarity returns the cosine similarity of a and b, or 0 if
// either is empty or they differ in length. Used by the vector
// sidecar's brute-force kNN scan, bounded by top-K.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
