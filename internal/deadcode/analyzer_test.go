package deadcode

import (
	"context"
	"testing"

	"github.com/suatkocar/codegraph/internal/storage"
	"github.com/suatkocar/codegraph/internal/testutil"
)

func TestFind_ExportedAndPrivate(t *testing.T) {
	// A file with an exported symbol and a private
	// never-referenced symbol lists only the private one.
	_, repo := testutil.OpenStore(t)

	exported := testutil.Node("n-exported", "lib.go", storage.KindFunction, "Public")
	exported.Exported = true
	private := testutil.Node("n-private", "lib.go", storage.KindFunction, "helper")

	testutil.SeedFile(t, repo, "lib.go", []storage.Node{exported, private}, nil)

	a := NewAnalyzer(repo, nil, nil)
	report, err := a.Find(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(report.Items) != 1 {
		t.Fatalf("expected exactly 1 dead symbol, got %+v", report.Items)
	}
	item := report.Items[0]
	if item.Name != "helper" || item.Category != CategoryZeroRefs {
		t.Errorf("unexpected item %+v", item)
	}
	if report.Summary.Excluded == 0 {
		t.Error("exported symbol should count as excluded")
	}
}

func TestFind_Categories(t *testing.T) {
	_, repo := testutil.OpenStore(t)

	recursive := testutil.Node("n-rec", "a.go", storage.KindFunction, "loopy")
	testOnly := testutil.Node("n-testonly", "a.go", storage.KindFunction, "fixtureHelper")
	live := testutil.Node("n-live", "a.go", storage.KindFunction, "used")
	caller := testutil.Node("n-caller", "a.go", storage.KindFunction, "caller")
	testutil.SeedFile(t, repo, "a.go", []storage.Node{recursive, testOnly, live, caller}, nil)

	tester := testutil.Node("n-tester", "a_test.go", storage.KindFunction, "checkFixture")
	tester.IsTest = true
	testutil.SeedFile(t, repo, "a_test.go", []storage.Node{tester}, nil)

	testutil.SeedEdges(t, repo, []storage.Edge{
		testutil.Edge("n-rec", "n-rec", storage.EdgeCalls),
		testutil.Edge("n-tester", "n-testonly", storage.EdgeCalls),
		testutil.Edge("n-caller", "n-live", storage.EdgeCalls),
	})

	a := NewAnalyzer(repo, nil, nil)

	// Default run: a tests edge counts as a live reference, so the
	// test-only symbol stays out of the report.
	report, err := a.Find(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	for _, item := range report.Items {
		if item.Name == "fixtureHelper" {
			t.Error("test-only symbol reported dead without IncludeTestOnly")
		}
	}

	report, err = a.Find(context.Background(), Options{IncludeTestOnly: true})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	got := map[string]Category{}
	for _, item := range report.Items {
		got[item.Name] = item.Category
	}
	if got["loopy"] != CategorySelfOnly {
		t.Errorf("loopy category = %q, want self_only", got["loopy"])
	}
	if got["fixtureHelper"] != CategoryTestOnly {
		t.Errorf("fixtureHelper category = %q, want test_only", got["fixtureHelper"])
	}
	if _, present := got["used"]; present {
		t.Error("called symbol reported dead")
	}
	if _, present := got["caller"]; !present {
		t.Error("caller has no inbound edges and should itself be dead")
	}
}

func TestFind_EntryPointsAndTestArtifacts(t *testing.T) {
	_, repo := testutil.OpenStore(t)

	mainFn := testutil.Node("n-main", "main.go", storage.KindFunction, "main")
	testFn := testutil.Node("n-test", "x_test.go", storage.KindFunction, "TestThing")
	testFn.IsTest = true
	testutil.SeedFile(t, repo, "main.go", []storage.Node{mainFn}, nil)
	testutil.SeedFile(t, repo, "x_test.go", []storage.Node{testFn}, nil)

	a := NewAnalyzer(repo, nil, nil)
	report, err := a.Find(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(report.Items) != 0 {
		t.Errorf("entry points and test artifacts reported dead: %+v", report.Items)
	}
}

func TestFind_ScopeAndDeterminism(t *testing.T) {
	_, repo := testutil.OpenStore(t)

	a1 := testutil.Node("n-a1", "pkg/a/a.go", storage.KindFunction, "one")
	b1 := testutil.Node("n-b1", "pkg/b/b.go", storage.KindFunction, "two")
	testutil.SeedFile(t, repo, "pkg/a/a.go", []storage.Node{a1}, nil)
	testutil.SeedFile(t, repo, "pkg/b/b.go", []storage.Node{b1}, nil)

	a := NewAnalyzer(repo, nil, nil)

	scoped, err := a.Find(context.Background(), Options{Scope: []string{"pkg/a/"}})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(scoped.Items) != 1 || scoped.Items[0].Name != "one" {
		t.Errorf("scope not honoured: %+v", scoped.Items)
	}

	first, err := a.Find(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	second, err := a.Find(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(first.Items) != len(second.Items) {
		t.Fatal("repeated analysis over stable graph differs")
	}
	for i := range first.Items {
		if first.Items[i].NodeID != second.Items[i].NodeID {
			t.Errorf("item order unstable at %d: %s vs %s", i, first.Items[i].NodeID, second.Items[i].NodeID)
		}
	}
}
