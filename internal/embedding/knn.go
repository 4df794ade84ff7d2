package embedding

import (
	"sort"

	"github.com/suatkocar/codegraph/internal/storage"
)

// Hit is one kNN search result: a node id and its cosine similarity to the
// query vector.
type Hit struct {
	NodeID     string
	Similarity float64
}

// DefaultTopK is the default result-set cap for semantic search.
const DefaultTopK = 50

// SearchKNN scores every node with a cached embedding against query by
// cosine similarity and returns the top K, descending. Nodes whose
// similarity is zero or negative are left out. The Node↔vector
// join is many-to-one through the content fingerprint: a node without a
// cached vector is simply absent from results, never an error.
func SearchKNN(query []float32, nodes []storage.Node, vectorsByFingerprint map[string][]float32, topK int) []Hit {
	if topK <= 0 {
		topK = DefaultTopK
	}

	hits := make([]Hit, 0, len(nodes))
	for _, n := range nodes {
		vec, ok := vectorsByFingerprint[n.Fingerprint]
		if !ok {
			continue
		}
		sim := CosineSimilarity(query, vec)
		if sim <= 0 {
			continue
		}
		hits = append(hits, Hit{NodeID: n.ID, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].NodeID < hits[j].NodeID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// VectorsByFingerprint loads every cached embedding keyed by fingerprint,
// the shape SearchKNN expects.
func VectorsByFingerprint(repo *storage.GraphRepository) (map[string][]float32, error) {
	entries, err := repo.AllEmbeddings()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]float32, len(entries))
	for _, e := range entries {
		out[e.Fingerprint] = e.Vector
	}
	return out, nil
}
