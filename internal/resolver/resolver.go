// Package resolver binds the textual call/reference targets the parser
// pool emits into real node ids, in a fixed five-step order: local
// scope, path aliases, import scope, framework route resolvers, and
// finally an UnresolvedRef when nothing binds.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/suatkocar/codegraph/internal/storage"
)

// Config carries the resolver's tunables: path-alias rewrites and the
// framework route conventions it recognizes.
type Config struct {
	// PathAliases maps an import prefix to a filesystem prefix relative to
	// the project root, e.g. "@/" -> "./src/".
	PathAliases map[string]string
	// RouteFrameworks enables framework-specific route resolvers by name
	// (e.g. "express", "fastapi"). Empty means none are consulted.
	RouteFrameworks []string
}

// PendingEdge is one textual call/reference awaiting resolution: the
// extractor knows the source node and the text it saw, but not yet the
// target node id.
type PendingEdge struct {
	SourceNodeID string
	TargetText   string // e.g. "bar", "pkg.Foo", "@/lib/auth.login"
	Kind         storage.EdgeKind
	CallSiteLine int
	CallSiteByte int
}

// FileScope is everything the resolver needs about the file a PendingEdge's
// source node lives in: its own nodes (for local resolution) and its
// imports (for import-scope resolution).
type FileScope struct {
	Path    string
	Imports []ImportDecl
}

// ImportDecl is one import statement, already extracted by the parser pool.
type ImportDecl struct {
	// ImportPath is the textual module/path being imported, e.g. "./utils"
	// or "@/lib/auth" or "github.com/foo/bar".
	ImportPath string
	// Alias is the local binding name, if the import renames its target
	// (empty means the last path segment is the binding name).
	Alias string
}

// Index is the in-memory lookup the resolver consults: node id by
// qualified name and by (file, short name), and file scope by path. It is
// built once per resolution batch from rows already committed to the
// store, so resolution never depends on extraction order within the batch.
type Index struct {
	byQualifiedName map[string]string // qualified name -> node id
	byFileAndName   map[string]string // "file\x00name" -> node id
	scopes          map[string]FileScope
}

// NewIndex builds a resolution Index from the store's current nodes.
func NewIndex(nodes []storage.Node, scopes map[string]FileScope) *Index {
	idx := &Index{
		byQualifiedName: make(map[string]string, len(nodes)),
		byFileAndName:   make(map[string]string, len(nodes)),
		scopes:          scopes,
	}
	for _, n := range nodes {
		insertPreferring(idx.byQualifiedName, n.QualifiedName, n.ID)
		insertPreferring(idx.byFileAndName, n.FilePath+"\x00"+n.Name, n.ID)
	}
	return idx
}

// insertPreferring keeps the lexicographically smallest id on key
// collisions, so the index is deterministic regardless of node order.
func insertPreferring(m map[string]string, key, id string) {
	if existing, ok := m[key]; ok && existing <= id {
		return
	}
	m[key] = id
}

// Resolution is the outcome of resolving one PendingEdge: either Edge is
// populated (TargetNodeID set) or Unresolved is, never both.
type Resolution struct {
	Edge       *storage.Edge
	Unresolved *storage.UnresolvedRefRow
}

// Resolver applies the five-step resolution order to a batch of pending
// edges produced by one indexing pass.
type Resolver struct {
	cfg   Config
	idx   *Index
	route *routeResolver
}

// New creates a Resolver over idx using cfg's alias table and route
// conventions.
func New(cfg Config, idx *Index) *Resolver {
	return &Resolver{cfg: cfg, idx: idx, route: newRouteResolver(cfg.RouteFrameworks)}
}

// ResolveAll resolves every pending edge, returning one Resolution per
// input in the same order. This is a one-shot batch operation, not a
// fixed-point iteration: a reference that cannot yet bind (because its
// target hasn't been extracted in this pass) becomes an UnresolvedRef, to
// be re-attempted on the next indexing run.
func (r *Resolver) ResolveAll(pending []PendingEdge, scopeOf func(sourceNodeID string) string) []Resolution {
	out := make([]Resolution, 0, len(pending))
	for _, p := range pending {
		out = append(out, r.resolveOne(p, scopeOf(p.SourceNodeID)))
	}
	return out
}

func (r *Resolver) resolveOne(p PendingEdge, filePath string) Resolution {
	if targetID, ok := r.resolveLocal(p, filePath); ok {
		return resolved(p, targetID)
	}
	if targetID, ok := r.resolveAlias(p, filePath); ok {
		return resolved(p, targetID)
	}
	if targetID, ok := r.resolveImportScope(p, filePath); ok {
		return resolved(p, targetID)
	}
	if targetID, ok := r.route.resolve(p, filePath, r.idx); ok {
		return resolved(p, targetID)
	}
	return unresolved(p, filePath)
}

// resolveLocal tries to bind TargetText against a node defined in the
// same file by short name, then against an exact qualified-name match
// anywhere in the repo. The latter covers same-package cross-file calls
// (Go and friends), where the caller's file carries no import statement
// naming the target.
func (r *Resolver) resolveLocal(p PendingEdge, filePath string) (string, bool) {
	name := lastSegment(p.TargetText)
	if id, ok := r.idx.byFileAndName[filePath+"\x00"+name]; ok {
		return id, ok
	}
	target := strings.TrimSuffix(p.TargetText, "()")
	id, ok := r.idx.byQualifiedName[target]
	return id, ok
}

// resolveAlias rewrites a path-alias-prefixed target (e.g. "@/lib/auth.login")
// to a project-relative path and resolves the qualified name under it.
func (r *Resolver) resolveAlias(p PendingEdge, filePath string) (string, bool) {
	for prefix, replacement := range r.cfg.PathAliases {
		if !strings.HasPrefix(p.TargetText, prefix) {
			continue
		}
		rewritten := replacement + strings.TrimPrefix(p.TargetText, prefix)
		// Try the dotted form as-is first ("src/lib/auth.login" naming a
		// member), then with a trailing file extension stripped
		// ("src/lib/auth.ts" naming the module).
		for _, qualified := range []string{dottedQualified(rewritten), normalizeQualified(rewritten)} {
			if id, ok := r.idx.byQualifiedName[qualified]; ok {
				return id, true
			}
		}
	}
	return "", false
}

// dottedQualified renders a rewritten alias path as a qualified name
// without treating the final dotted segment as a file extension.
func dottedQualified(s string) string {
	s = strings.TrimSuffix(s, "()")
	s = filepath.ToSlash(s)
	s = strings.Trim(s, "./")
	return strings.ReplaceAll(s, "/", ".")
}

// resolveImportScope follows the imports lexically visible in the caller's
// file, rewriting a local binding name to the imported module's qualified
// symbol and looking that up.
func (r *Resolver) resolveImportScope(p PendingEdge, filePath string) (string, bool) {
	scope, ok := r.idx.scopes[filePath]
	if !ok {
		return "", false
	}

	target := p.TargetText
	dot := strings.IndexByte(target, '.')
	binding := target
	member := ""
	if dot >= 0 {
		binding = target[:dot]
		member = target[dot+1:]
	}

	for _, imp := range scope.Imports {
		localName := imp.Alias
		if localName == "" {
			localName = lastSegment(imp.ImportPath)
		}
		if localName != binding {
			continue
		}

		qualified := imp.ImportPath
		if member != "" {
			qualified = qualified + "." + member
		}
		// Dotted member form first ("lib.auth.login"), then with a trailing
		// file extension stripped.
		for _, q := range []string{dottedQualified(qualified), normalizeQualified(qualified)} {
			if id, ok := r.idx.byQualifiedName[q]; ok {
				return id, true
			}
		}
		// Also try matching by short name within the imported file, for
		// grammars that don't qualify module-level symbols by path.
		if id, ok := r.idx.byFileAndName[imp.ImportPath+"\x00"+member]; member != "" && ok {
			return id, true
		}
	}
	return "", false
}

func resolved(p PendingEdge, targetID string) Resolution {
	return Resolution{Edge: &storage.Edge{
		SourceNodeID: p.SourceNodeID,
		TargetNodeID: targetID,
		Kind:         p.Kind,
		CallSiteLine: p.CallSiteLine,
		CallSiteByte: p.CallSiteByte,
	}}
}

func unresolved(p PendingEdge, filePath string) Resolution {
	return Resolution{Unresolved: &storage.UnresolvedRefRow{
		SourceNodeID:  p.SourceNodeID,
		TextualTarget: p.TargetText,
		Kind:          p.Kind,
		ScopeContext:  filePath,
	}}
}

func lastSegment(s string) string {
	s = strings.TrimSuffix(s, "()")
	if i := strings.LastIndexAny(s, "./\\"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func normalizeQualified(s string) string {
	s = strings.TrimSuffix(s, "()")
	s = filepath.ToSlash(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))
	s = strings.Trim(s, "./")
	return strings.ReplaceAll(s, "/", ".")
}
