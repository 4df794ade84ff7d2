package resolver

import (
	"testing"

	"github.com/suatkocar/codegraph/internal/storage"
)

func node(id, file, name, qualified string) storage.Node {
	return storage.Node{ID: id, FilePath: file, Name: name, QualifiedName: qualified}
}

func TestResolveLocal(t *testing.T) {
	idx := NewIndex([]storage.Node{
		node("n-bar", "a.go", "bar", "bar"),
		node("n-other", "b.go", "bar", "bar"),
	}, map[string]FileScope{"a.go": {Path: "a.go"}})

	r := New(Config{}, idx)
	out := r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-src", TargetText: "bar()", Kind: storage.EdgeCalls},
	}, func(string) string { return "a.go" })

	if out[0].Edge == nil || out[0].Edge.TargetNodeID != "n-bar" {
		t.Fatalf("local resolution failed: %+v", out[0])
	}
}

func TestResolveImportScope(t *testing.T) {
	idx := NewIndex([]storage.Node{
		node("n-login", "lib/auth.py", "login", "lib.auth.login"),
	}, map[string]FileScope{
		"app.py": {
			Path:    "app.py",
			Imports: []ImportDecl{{ImportPath: "lib.auth"}},
		},
	})

	r := New(Config{}, idx)
	out := r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-main", TargetText: "auth.login", Kind: storage.EdgeCalls},
	}, func(string) string { return "app.py" })

	if out[0].Edge == nil || out[0].Edge.TargetNodeID != "n-login" {
		t.Fatalf("import-scope resolution failed: %+v", out[0])
	}
}

func TestResolveImportScope_Alias(t *testing.T) {
	idx := NewIndex([]storage.Node{
		node("n-fmt", "util/format.go", "Render", "util.format.Render"),
	}, map[string]FileScope{
		"main.go": {
			Path:    "main.go",
			Imports: []ImportDecl{{ImportPath: "util.format", Alias: "fmtutil"}},
		},
	})

	r := New(Config{}, idx)
	out := r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-main", TargetText: "fmtutil.Render", Kind: storage.EdgeCalls},
	}, func(string) string { return "main.go" })

	if out[0].Edge == nil || out[0].Edge.TargetNodeID != "n-fmt" {
		t.Fatalf("aliased import resolution failed: %+v", out[0])
	}
}

func TestResolvePathAlias(t *testing.T) {
	idx := NewIndex([]storage.Node{
		node("n-login", "src/lib/auth.ts", "login", "src.lib.auth.login"),
	}, map[string]FileScope{})

	r := New(Config{PathAliases: map[string]string{"@/": "src/"}}, idx)
	out := r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-page", TargetText: "@/lib/auth.login", Kind: storage.EdgeCalls},
	}, func(string) string { return "pages/index.ts" })

	if out[0].Edge == nil || out[0].Edge.TargetNodeID != "n-login" {
		t.Fatalf("path-alias resolution failed: %+v", out[0])
	}
}

func TestUnresolvedFallsThrough(t *testing.T) {
	idx := NewIndex(nil, map[string]FileScope{})
	r := New(Config{}, idx)

	out := r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-src", TargetText: "ghostFunction", Kind: storage.EdgeCalls},
	}, func(string) string { return "a.go" })

	if out[0].Edge != nil || out[0].Unresolved == nil {
		t.Fatalf("expected UnresolvedRef: %+v", out[0])
	}
	u := out[0].Unresolved
	if u.TextualTarget != "ghostFunction" || u.Kind != storage.EdgeCalls || u.ScopeContext != "a.go" {
		t.Errorf("unresolved ref lost context: %+v", u)
	}
}

func TestRouteResolution(t *testing.T) {
	idx := NewIndex([]storage.Node{
		node("n-handler", "controllers/users.py", "get_id", "UsersController.users_id"),
	}, map[string]FileScope{})

	// Disabled framework list: step 4 never fires.
	r := New(Config{}, idx)
	out := r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-router", TargetText: "GET:/users/:id", Kind: storage.EdgeReferences},
	}, func(string) string { return "routes.py" })
	if out[0].Edge != nil {
		t.Fatal("route resolver fired with no frameworks enabled")
	}

	r = New(Config{RouteFrameworks: []string{"fastapi"}}, idx)
	out = r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-router", TargetText: "GET:/users/:id", Kind: storage.EdgeReferences},
	}, func(string) string { return "routes.py" })
	if out[0].Edge == nil || out[0].Edge.TargetNodeID != "n-handler" {
		t.Fatalf("route resolution failed: %+v", out[0])
	}
}

func TestResolutionOrderPrefersLocal(t *testing.T) {
	// A name resolvable both locally and via imports binds locally
	// (step 1 before step 3).
	idx := NewIndex([]storage.Node{
		node("n-local", "a.go", "helper", "helper"),
		node("n-imported", "lib/util.go", "helper", "lib.util.helper"),
	}, map[string]FileScope{
		"a.go": {Path: "a.go", Imports: []ImportDecl{{ImportPath: "lib.util"}}},
	})

	r := New(Config{}, idx)
	out := r.ResolveAll([]PendingEdge{
		{SourceNodeID: "n-src", TargetText: "helper", Kind: storage.EdgeCalls},
	}, func(string) string { return "a.go" })

	if out[0].Edge == nil || out[0].Edge.TargetNodeID != "n-local" {
		t.Fatalf("local should win over import scope: %+v", out[0])
	}
}
