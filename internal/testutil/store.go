// Package testutil holds shared helpers for package tests: a throwaway
// graph store rooted in t.TempDir and terse constructors for seeding
// nodes and edges with known shapes.
package testutil

import (
	"io"
	"testing"

	"github.com/suatkocar/codegraph/internal/logging"
	"github.com/suatkocar/codegraph/internal/storage"
)

// QuietLogger returns a logger that swallows everything below error and
// writes the rest nowhere, keeping test output clean.
func QuietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

// OpenStore opens a fresh store under t.TempDir and closes it when the
// test finishes.
func OpenStore(t *testing.T) (*storage.DB, *storage.GraphRepository) {
	t.Helper()
	db, err := storage.Open(t.TempDir(), QuietLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, storage.NewGraphRepository(db)
}

// Node builds a minimal node; the id doubles as the fingerprint.
func Node(id, filePath string, kind storage.NodeKind, name string) storage.Node {
	return storage.Node{
		ID:            id,
		FilePath:      filePath,
		Kind:          kind,
		Name:          name,
		QualifiedName: name,
		StartLine:     1,
		EndLine:       2,
		Language:      "go",
		Fingerprint:   id,
	}
}

// SeedFile commits one file's nodes (and optional same-file edges) as an
// indexing pass would.
func SeedFile(t *testing.T, repo *storage.GraphRepository, path string, nodes []storage.Node, edges []storage.Edge) {
	t.Helper()
	err := repo.ApplyFileBatch(storage.FileBatch{
		File: storage.FileRecordRow{
			Path:        path,
			ContentHash: "hash-" + path,
			Language:    "go",
			SymbolCount: len(nodes),
		},
		Nodes: nodes,
		Edges: edges,
	})
	if err != nil {
		t.Fatalf("seed file %s: %v", path, err)
	}
}

// SeedEdges commits resolved edges after their endpoint files exist, the
// way the resolver's post-pass does.
func SeedEdges(t *testing.T, repo *storage.GraphRepository, edges []storage.Edge) {
	t.Helper()
	if err := repo.ApplyResolutions(edges, nil); err != nil {
		t.Fatalf("seed edges: %v", err)
	}
}

// Edge builds a resolved edge.
func Edge(from, to string, kind storage.EdgeKind) storage.Edge {
	return storage.Edge{SourceNodeID: from, TargetNodeID: to, Kind: kind}
}
