//go:build cgo

package symbols

import (
	"context"
	"testing"

	"github.com/suatkocar/codegraph/internal/storage"
)

func TestExtractGraph_Go(t *testing.T) {
	source := []byte(`package main

import (
	"fmt"
	util "example.com/app/utils"
)

func main() {
	greet()
	util.Format("x")
}

func greet() {
	fmt.Println("hi")
}
`)

	e := NewExtractor()
	g, err := e.ExtractGraph(context.Background(), "main.go", source, LangGo)
	if err != nil {
		t.Fatalf("ExtractGraph: %v", err)
	}

	var module *storage.Node
	names := map[string]bool{}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		names[n.Name] = true
		if n.Kind == storage.KindModule {
			module = n
		}
	}
	if !names["main"] || !names["greet"] {
		t.Fatalf("missing declarations, nodes: %+v", g.Nodes)
	}
	if module == nil {
		t.Fatal("no module node synthesized")
	}

	if len(g.Scope.Imports) != 2 {
		t.Fatalf("expected 2 imports in scope, got %+v", g.Scope.Imports)
	}
	if g.Scope.Imports[1].Alias != "util" {
		t.Errorf("aliased import not captured: %+v", g.Scope.Imports[1])
	}

	var calls, imports int
	var greetCallSource string
	for _, p := range g.Pending {
		switch p.Kind {
		case storage.EdgeCalls:
			calls++
			if p.TargetText == "greet" {
				greetCallSource = p.SourceNodeID
			}
		case storage.EdgeImports:
			imports++
			if p.SourceNodeID != module.ID {
				t.Errorf("import edge source = %s, want module node", p.SourceNodeID)
			}
		}
	}
	if calls < 3 { // greet(), util.Format(), fmt.Println()
		t.Errorf("expected at least 3 call candidates, got %d", calls)
	}
	if imports != 2 {
		t.Errorf("expected 2 import candidates, got %d", imports)
	}

	// The greet() call site is inside main, so its source must be main's
	// node, not the module fallback.
	var mainID string
	for _, n := range g.Nodes {
		if n.Name == "main" && n.Kind == storage.KindFunction {
			mainID = n.ID
		}
	}
	if greetCallSource != mainID {
		t.Errorf("greet() call attributed to %s, want main (%s)", greetCallSource, mainID)
	}
}

func TestExtractGraph_Containment(t *testing.T) {
	source := []byte(`class Repo {
  find(id) { return this.rows[id]; }
  save(row) { this.rows.push(row); }
}
`)

	e := NewExtractor()
	g, err := e.ExtractGraph(context.Background(), "repo.js", source, LangJavaScript)
	if err != nil {
		t.Fatalf("ExtractGraph: %v", err)
	}

	var classID string
	methods := map[string]string{}
	for _, n := range g.Nodes {
		switch n.Kind {
		case storage.KindClass:
			classID = n.ID
		case storage.KindMethod:
			methods[n.Name] = n.ID
			if n.QualifiedName != "Repo."+n.Name {
				t.Errorf("method %s qualified name = %q", n.Name, n.QualifiedName)
			}
		}
	}
	if classID == "" || len(methods) != 2 {
		t.Fatalf("expected class + 2 methods, got %+v", g.Nodes)
	}

	contains := map[string]bool{}
	for _, e := range g.ContainsEdges {
		if e.Kind != storage.EdgeContains || e.SourceNodeID != classID {
			t.Errorf("unexpected containment edge %+v", e)
		}
		contains[e.TargetNodeID] = true
	}
	for name, id := range methods {
		if !contains[id] {
			t.Errorf("no contains edge for method %s", name)
		}
	}
}

func TestExtractGraph_Heritage(t *testing.T) {
	source := []byte(`class Base {}
class Child extends Base {
  run() {}
}
`)

	e := NewExtractor()
	g, err := e.ExtractGraph(context.Background(), "heritage.js", source, LangJavaScript)
	if err != nil {
		t.Fatalf("ExtractGraph: %v", err)
	}

	var found bool
	for _, p := range g.Pending {
		if p.Kind == storage.EdgeExtends && p.TargetText == "Base" {
			found = true
		}
	}
	if !found {
		t.Errorf("no extends candidate for Base, pending: %+v", g.Pending)
	}
}

func TestExtractGraph_Deterministic(t *testing.T) {
	source := []byte(`package p

func A() { B() }
func B() {}
`)

	e := NewExtractor()
	g1, err := e.ExtractGraph(context.Background(), "p.go", source, LangGo)
	if err != nil {
		t.Fatalf("ExtractGraph: %v", err)
	}
	g2, err := e.ExtractGraph(context.Background(), "p.go", source, LangGo)
	if err != nil {
		t.Fatalf("ExtractGraph: %v", err)
	}

	if len(g1.Nodes) != len(g2.Nodes) {
		t.Fatalf("node count differs across parses of unchanged bytes")
	}
	for i := range g1.Nodes {
		if g1.Nodes[i].ID != g2.Nodes[i].ID || g1.Nodes[i].QualifiedName != g2.Nodes[i].QualifiedName {
			t.Errorf("node %d differs: %+v vs %+v", i, g1.Nodes[i], g2.Nodes[i])
		}
	}
}
