package query

import (
	"context"
	"testing"

	"github.com/suatkocar/codegraph/internal/storage"
	"github.com/suatkocar/codegraph/internal/testutil"
)

func newGraphFixture(t *testing.T) *Engine {
	t.Helper()
	db, repo := testutil.OpenStore(t)

	// foo -> bar -> baz call chain; modA <-> modB import cycle.
	foo := testutil.Node("n-foo", "a.go", storage.KindFunction, "foo")
	bar := testutil.Node("n-bar", "b.go", storage.KindFunction, "bar")
	baz := testutil.Node("n-baz", "c.go", storage.KindFunction, "baz")
	modA := testutil.Node("m-a", "a.go", storage.KindModule, "a.go")
	modB := testutil.Node("m-b", "b.go", storage.KindModule, "b.go")

	testutil.SeedFile(t, repo, "a.go", []storage.Node{foo, modA}, nil)
	testutil.SeedFile(t, repo, "b.go", []storage.Node{bar, modB}, nil)
	testutil.SeedFile(t, repo, "c.go", []storage.Node{baz}, nil)

	testutil.SeedEdges(t, repo, []storage.Edge{
		testutil.Edge("n-foo", "n-bar", storage.EdgeCalls),
		testutil.Edge("n-bar", "n-baz", storage.EdgeCalls),
		testutil.Edge("m-a", "m-b", storage.EdgeImports),
		testutil.Edge("m-b", "m-a", storage.EdgeImports),
	})

	return NewEngine(db, nil, DefaultOptions(), testutil.QuietLogger())
}

func TestCallersAndCallees(t *testing.T) {
	engine := newGraphFixture(t)
	ctx := context.Background()

	callers, err := engine.Callers(ctx, "baz", 5)
	if err != nil {
		t.Fatalf("Callers: %v", err)
	}
	got := map[string]int{}
	for _, c := range callers {
		got[c.Name] = c.Depth
	}
	if got["bar"] != 1 || got["foo"] != 2 {
		t.Errorf("callers of baz wrong: %v", got)
	}

	// Depth bound cuts the transitive tail.
	callers, err = engine.Callers(ctx, "baz", 1)
	if err != nil {
		t.Fatalf("Callers depth 1: %v", err)
	}
	if len(callers) != 1 || callers[0].Name != "bar" {
		t.Errorf("depth-1 callers wrong: %+v", callers)
	}

	callees, err := engine.Callees(ctx, "foo", 5)
	if err != nil {
		t.Fatalf("Callees: %v", err)
	}
	if len(callees) != 2 {
		t.Errorf("callees of foo wrong: %+v", callees)
	}
}

func TestFindPath(t *testing.T) {
	engine := newGraphFixture(t)

	path, err := engine.FindPath(context.Background(), "foo", "baz")
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if len(path) != 3 || path[0].Name != "foo" || path[2].Name != "baz" {
		t.Fatalf("path wrong: %+v", path)
	}

	// Unreachable: reversed direction.
	path, err = engine.FindPath(context.Background(), "baz", "foo")
	if err != nil {
		t.Fatalf("FindPath reverse: %v", err)
	}
	if len(path) != 0 {
		t.Errorf("expected empty path for unreachable pair, got %+v", path)
	}
}

func TestCircularImports(t *testing.T) {
	engine := newGraphFixture(t)

	cycles, err := engine.CircularImports(context.Background())
	if err != nil {
		t.Fatalf("CircularImports: %v", err)
	}
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %+v", cycles)
	}
	if len(cycles[0].Files) != 2 || cycles[0].Files[0] != "a.go" || cycles[0].Files[1] != "b.go" {
		t.Errorf("cycle members wrong: %+v", cycles[0])
	}
}

func TestDependenciesCycleSafe(t *testing.T) {
	engine := newGraphFixture(t)

	// The a<->b import cycle must terminate and visit each node once.
	deps, err := engine.Dependencies(context.Background(), "m-a", 10)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	seen := map[string]bool{}
	for _, d := range deps {
		if seen[d.ID] {
			t.Errorf("node %s visited twice", d.ID)
		}
		seen[d.ID] = true
	}
}

func TestPageRankRanking(t *testing.T) {
	engine := newGraphFixture(t)

	ranked, err := engine.PageRank(context.Background(), 10)
	if err != nil {
		t.Fatalf("PageRank: %v", err)
	}
	if len(ranked) == 0 {
		t.Fatal("no ranked symbols")
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("ranking not descending at %d", i)
		}
	}
}

func TestImpactThroughEngine(t *testing.T) {
	engine := newGraphFixture(t)

	report, err := engine.Impact(context.Background(), "baz")
	if err != nil {
		t.Fatalf("Impact: %v", err)
	}
	if report.DirectCount != 1 || report.TransitiveCount != 2 {
		t.Errorf("impact counts wrong: %+v", report)
	}
}

func TestDeadCodeThroughEngine(t *testing.T) {
	engine := newGraphFixture(t)

	report, err := engine.DeadCode(context.Background(), nil, 0, false)
	if err != nil {
		t.Fatalf("DeadCode: %v", err)
	}
	for _, item := range report.Items {
		if item.Name == "bar" || item.Name == "baz" {
			t.Errorf("called symbol %s reported dead", item.Name)
		}
	}
	// foo has no inbound edges and is unexported.
	var foundFoo bool
	for _, item := range report.Items {
		if item.Name == "foo" {
			foundFoo = true
		}
	}
	if !foundFoo {
		t.Error("foo should be reported dead")
	}
}
