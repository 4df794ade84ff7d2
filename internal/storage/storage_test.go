package storage

import (
	"context"
	"io"
	"testing"

	"github.com/suatkocar/codegraph/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func openTestDB(t *testing.T) (*DB, *GraphRepository) {
	t.Helper()
	db, err := Open(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, NewGraphRepository(db)
}

func testNode(id, file, name string) Node {
	return Node{
		ID:            id,
		FilePath:      file,
		Kind:          KindFunction,
		Name:          name,
		QualifiedName: name,
		StartLine:     1,
		EndLine:       3,
		Language:      "go",
		Fingerprint:   id,
	}
}

func seed(t *testing.T, repo *GraphRepository, file string, nodes ...Node) {
	t.Helper()
	err := repo.ApplyFileBatch(FileBatch{
		File:  FileRecordRow{Path: file, ContentHash: "h-" + file, Language: "go", SymbolCount: len(nodes)},
		Nodes: nodes,
	})
	if err != nil {
		t.Fatalf("ApplyFileBatch(%s): %v", file, err)
	}
}

func TestOpenMigratesAndReopens(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, testLogger())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	version, err := db.schemaVersion()
	if err != nil || version != currentSchemaVersion {
		t.Fatalf("schema version = %d (err %v), want %d", version, err, currentSchemaVersion)
	}
	db.Close()

	// Reopen: migration must be a no-op, not a failure or re-run.
	db2, err := Open(dir, testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()
	version, err = db2.schemaVersion()
	if err != nil || version != currentSchemaVersion {
		t.Fatalf("schema version after reopen = %d (err %v)", version, err)
	}
}

func TestFileBatchReplacesPriorContent(t *testing.T) {
	_, repo := openTestDB(t)

	seed(t, repo, "a.go", testNode("n1", "a.go", "old"))
	seed(t, repo, "a.go", testNode("n2", "a.go", "new"))

	nodes, err := repo.NodesByFile("a.go")
	if err != nil {
		t.Fatalf("NodesByFile: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "n2" {
		t.Fatalf("expected only the re-extracted node, got %+v", nodes)
	}
}

func TestCascadeDelete(t *testing.T) {
	db, repo := openTestDB(t)

	seed(t, repo, "a.go", testNode("n-a", "a.go", "alpha"))
	seed(t, repo, "b.go", testNode("n-b", "b.go", "beta"))
	if err := repo.ApplyResolutions([]Edge{
		{SourceNodeID: "n-a", TargetNodeID: "n-b", Kind: EdgeCalls},
	}, nil); err != nil {
		t.Fatalf("ApplyResolutions: %v", err)
	}

	if err := repo.DeleteFile("a.go"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	// Exactly a.go's node goes; b.go's remains.
	if n, err := repo.NodeByID("n-a"); err != nil || n != nil {
		t.Errorf("n-a should be gone, got %+v (err %v)", n, err)
	}
	if n, err := repo.NodeByID("n-b"); err != nil || n == nil {
		t.Errorf("n-b should remain (err %v)", err)
	}

	// No live edge may keep a missing endpoint.
	edges, err := repo.AllEdges()
	if err != nil {
		t.Fatalf("AllEdges: %v", err)
	}
	for _, e := range edges {
		if e.SourceNodeID == "n-a" || e.TargetNodeID == "n-a" {
			t.Errorf("dangling edge survived cascade: %+v", e)
		}
	}

	// The search index loses the deleted file's rows in the same breath.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM symbols_fts_content WHERE file_path = 'a.go'`).Scan(&count); err != nil {
		t.Fatalf("count fts rows: %v", err)
	}
	if count != 0 {
		t.Errorf("%d stale search rows for deleted file", count)
	}
}

func TestSearchIndexConsistentWithNodes(t *testing.T) {
	db, repo := openTestDB(t)

	n := testNode("n1", "a.go", "first")
	err := repo.ApplyFileBatch(FileBatch{
		File:  FileRecordRow{Path: "a.go", ContentHash: "h1", Language: "go", SymbolCount: 1},
		Nodes: []Node{n},
	})
	if err != nil {
		t.Fatalf("ApplyFileBatch: %v", err)
	}

	// Re-index the file under a new symbol; the old name must vanish from
	// search within the same write.
	n2 := testNode("n2", "a.go", "second")
	err = repo.ApplyFileBatch(FileBatch{
		File:  FileRecordRow{Path: "a.go", ContentHash: "h2", Language: "go", SymbolCount: 1},
		Nodes: []Node{n2},
	})
	if err != nil {
		t.Fatalf("ApplyFileBatch: %v", err)
	}

	fts := NewFTSManager(db.Conn())
	if hits, _ := fts.Search(context.Background(), "first", 10); len(hits) != 0 {
		t.Errorf("stale symbol still searchable: %+v", hits)
	}
	if hits, _ := fts.Search(context.Background(), "second", 10); len(hits) != 1 {
		t.Errorf("fresh symbol not searchable: %+v", hits)
	}
}

func TestBatchFailureRollsBack(t *testing.T) {
	_, repo := openTestDB(t)

	seed(t, repo, "a.go", testNode("n1", "a.go", "keep"))

	// A batch with a duplicate node id fails its INSERT; nothing from the
	// batch may stick, and the prior state must survive.
	err := repo.ApplyFileBatch(FileBatch{
		File: FileRecordRow{Path: "a.go", ContentHash: "h2", Language: "go", SymbolCount: 2},
		Nodes: []Node{
			testNode("dup", "a.go", "one"),
			testNode("dup", "a.go", "two"),
		},
	})
	if err == nil {
		t.Fatal("expected batch failure on duplicate node id")
	}

	nodes, err := repo.NodesByFile("a.go")
	if err != nil {
		t.Fatalf("NodesByFile: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != "n1" {
		t.Fatalf("prior state not preserved after failed batch: %+v", nodes)
	}
	if hash, ok, _ := repo.GetFileHash("a.go"); !ok || hash != "h-a.go" {
		t.Errorf("file hash changed despite rollback: %q", hash)
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	_, repo := openTestDB(t)

	vec := []float32{0.25, -1.5, 3.0}
	if err := repo.PutEmbedding("fp1", vec); err != nil {
		t.Fatalf("PutEmbedding: %v", err)
	}
	entry, err := repo.GetEmbedding("fp1")
	if err != nil || entry == nil {
		t.Fatalf("GetEmbedding: %+v, %v", entry, err)
	}
	if entry.Dim != 3 || len(entry.Vector) != 3 {
		t.Fatalf("dims wrong: %+v", entry)
	}
	for i := range vec {
		if entry.Vector[i] != vec[i] {
			t.Errorf("vector[%d] = %v, want %v", i, entry.Vector[i], vec[i])
		}
	}

	if entry, err := repo.GetEmbedding("missing"); err != nil || entry != nil {
		t.Errorf("missing fingerprint should be (nil, nil), got %+v, %v", entry, err)
	}
}

func TestUnresolvedRefLifecycle(t *testing.T) {
	_, repo := openTestDB(t)

	seed(t, repo, "a.go", testNode("n-a", "a.go", "alpha"))
	if err := repo.ApplyResolutions(nil, []UnresolvedRefRow{
		{SourceNodeID: "n-a", TextualTarget: "ghost", Kind: EdgeCalls, ScopeContext: "a.go"},
	}); err != nil {
		t.Fatalf("ApplyResolutions: %v", err)
	}

	refs, err := repo.AllUnresolvedRefs()
	if err != nil || len(refs) != 1 {
		t.Fatalf("AllUnresolvedRefs: %+v, %v", refs, err)
	}

	// Deleting the source's file must take the diagnostic row with it.
	if err := repo.DeleteFile("a.go"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	refs, err = repo.AllUnresolvedRefs()
	if err != nil {
		t.Fatalf("AllUnresolvedRefs: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("unresolved ref points at deleted node: %+v", refs)
	}
}
