package query

import (
	"context"
	"strings"
	"testing"

	"github.com/suatkocar/codegraph/internal/embedding"
	"github.com/suatkocar/codegraph/internal/storage"
	"github.com/suatkocar/codegraph/internal/testutil"
)

// fakeEmbedder maps text substrings to fixed vectors, giving tests full
// control over semantic ranking.
type fakeEmbedder struct {
	bySubstring []struct {
		substr string
		vec    []float32
	}
	fallback []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	for _, entry := range f.bySubstring {
		if strings.Contains(text, entry.substr) {
			return entry.vec, nil
		}
	}
	return f.fallback, nil
}

func newSearchFixture(t *testing.T) (*Engine, *storage.GraphRepository) {
	t.Helper()
	db, repo := testutil.OpenStore(t)

	auth := testutil.Node("n-auth", "auth.go", storage.KindFunction, "authenticateUser")
	auth.QualifiedName = "authenticateUser"
	auth.Documentation = "user login authentication"

	signIn := testutil.Node("n-signin", "session.go", storage.KindFunction, "signIn")
	signIn.Documentation = "start a session"

	validate := testutil.Node("n-validate", "input.go", storage.KindFunction, "validateUserInput")

	testutil.SeedFile(t, repo, "auth.go", []storage.Node{auth}, nil)
	testutil.SeedFile(t, repo, "session.go", []storage.Node{signIn}, nil)
	testutil.SeedFile(t, repo, "input.go", []storage.Node{validate}, nil)

	// Cached vectors: signIn closest to the query direction,
	// authenticateUser second, validateUserInput orthogonal.
	if err := repo.PutEmbedding("n-signin", []float32{1, 0}); err != nil {
		t.Fatal(err)
	}
	if err := repo.PutEmbedding("n-auth", []float32{0.9, 0.436}); err != nil {
		t.Fatal(err)
	}
	if err := repo.PutEmbedding("n-validate", []float32{0, 1}); err != nil {
		t.Fatal(err)
	}

	embedder := &fakeEmbedder{fallback: []float32{0, 1}}
	embedder.bySubstring = append(embedder.bySubstring, struct {
		substr string
		vec    []float32
	}{"user login", []float32{1, 0}})

	cache := embedding.NewCache(embedder, repo)
	engine := NewEngine(db, cache, DefaultOptions(), testutil.QuietLogger())
	return engine, repo
}

func TestSearch_FastKeywordOnly(t *testing.T) {
	engine, _ := newSearchFixture(t)

	results, err := engine.Search(context.Background(), "signIn", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].ID != "n-signin" {
		t.Fatalf("fast search missed signIn: %+v", results)
	}
	if results[0].SemanticRank != 0 || results[0].FusedScore != 0 {
		t.Error("fast mode must not carry semantic or fusion provenance")
	}
}

func TestSearchHybrid_FusionOrdering(t *testing.T) {
	engine, _ := newSearchFixture(t)

	results, err := engine.SearchHybrid(context.Background(), "user login", 5)
	if err != nil {
		t.Fatalf("SearchHybrid: %v", err)
	}

	pos := map[string]int{}
	for i, r := range results {
		pos[r.ID] = i + 1
	}

	// Both hybrid hits must appear in the top 5.
	if _, ok := pos["n-auth"]; !ok {
		t.Fatalf("authenticateUser missing from top results: %+v", results)
	}
	if _, ok := pos["n-signin"]; !ok {
		t.Fatalf("signIn missing from top results: %+v", results)
	}

	// A document present in both lists must outrank the keyword-only one.
	if p, ok := pos["n-validate"]; ok {
		if pos["n-auth"] > p || pos["n-signin"] > p {
			t.Errorf("dual-list documents must outrank keyword-only validateUserInput: %v", pos)
		}
	}

	// Provenance: dual hits carry both ranks.
	for _, r := range results {
		if r.ID == "n-signin" && r.SemanticRank != 1 {
			t.Errorf("signIn semantic rank = %d, want 1", r.SemanticRank)
		}
		if r.ID == "n-auth" && (r.SemanticRank == 0 || r.KeywordRank == 0) {
			t.Errorf("authenticateUser should appear in both lists: %+v", r)
		}
	}
}

func TestSearchHybrid_Deterministic(t *testing.T) {
	engine, _ := newSearchFixture(t)

	first, err := engine.SearchHybrid(context.Background(), "user login", 5)
	if err != nil {
		t.Fatalf("SearchHybrid: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := engine.SearchHybrid(context.Background(), "user login", 5)
		if err != nil {
			t.Fatalf("SearchHybrid: %v", err)
		}
		if len(again) != len(first) {
			t.Fatal("hybrid result count unstable")
		}
		for j := range again {
			if again[j].ID != first[j].ID {
				t.Fatalf("hybrid order unstable at %d: %s vs %s", j, again[j].ID, first[j].ID)
			}
		}
	}
}

func TestSearchHybrid_KeywordOnlyWithoutEmbedder(t *testing.T) {
	db, repo := testutil.OpenStore(t)
	n := testutil.Node("n-f", "f.go", storage.KindFunction, "formatOutput")
	testutil.SeedFile(t, repo, "f.go", []storage.Node{n}, nil)

	engine := NewEngine(db, nil, DefaultOptions(), testutil.QuietLogger())
	if engine.SemanticEnabled() {
		t.Fatal("no embedder configured, semantic must report disabled")
	}

	results, err := engine.SearchHybrid(context.Background(), "formatOutput", 5)
	if err != nil {
		t.Fatalf("SearchHybrid without embedder: %v", err)
	}
	if len(results) != 1 || results[0].SemanticRank != 0 {
		t.Fatalf("keyword-only degradation wrong: %+v", results)
	}
}

func TestLookupSymbol(t *testing.T) {
	engine, repo := newSearchFixture(t)

	// Two files with the same short name force ambiguity.
	dupA := testutil.Node("n-dup-a", "p1.go", storage.KindFunction, "run")
	dupA.QualifiedName = "P1.run"
	dupB := testutil.Node("n-dup-b", "p2.go", storage.KindFunction, "run")
	dupB.QualifiedName = "P2.run"
	testutil.SeedFile(t, repo, "p1.go", []storage.Node{dupA}, nil)
	testutil.SeedFile(t, repo, "p2.go", []storage.Node{dupB}, nil)

	if n, err := engine.LookupSymbol(context.Background(), "n-auth"); err != nil || n.ID != "n-auth" {
		t.Errorf("lookup by id failed: %+v, %v", n, err)
	}
	if n, err := engine.LookupSymbol(context.Background(), "P1.run"); err != nil || n.ID != "n-dup-a" {
		t.Errorf("lookup by qualified name failed: %+v, %v", n, err)
	}
	if n, err := engine.LookupSymbol(context.Background(), "signIn"); err != nil || n.ID != "n-signin" {
		t.Errorf("lookup by unique short name failed: %+v, %v", n, err)
	}
	if _, err := engine.LookupSymbol(context.Background(), "run"); err == nil {
		t.Error("ambiguous short name should error")
	}
	if _, err := engine.LookupSymbol(context.Background(), "nothere"); err == nil {
		t.Error("unknown symbol should error")
	}
}

func TestIndexStatus(t *testing.T) {
	engine, repo := newSearchFixture(t)

	testutil.SeedEdges(t, repo, []storage.Edge{
		testutil.Edge("n-auth", "n-signin", storage.EdgeCalls),
	})

	status, err := engine.IndexStatus(context.Background())
	if err != nil {
		t.Fatalf("IndexStatus: %v", err)
	}
	if status.Files != 3 || status.Nodes != 3 {
		t.Errorf("counts wrong: %+v", status)
	}
	if status.Edges != 1 {
		t.Errorf("edge count = %d, want 1", status.Edges)
	}
	if !status.SemanticEnabled || status.CachedVectors != 3 {
		t.Errorf("semantic status wrong: %+v", status)
	}
}
