//go:build cgo

package symbols

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/suatkocar/codegraph/internal/identity"
	"github.com/suatkocar/codegraph/internal/resolver"
	"github.com/suatkocar/codegraph/internal/storage"
)

// Graph is one file's extraction result, shaped for the store and the
// resolver: Nodes are ready to persist as-is,
// ContainsEdges are already resolved (both ends come from the same pass),
// and Pending holds the textual call/import/inheritance targets the
// resolver binds against the whole-repo Index.
type Graph struct {
	Nodes         []storage.Node
	ContainsEdges []storage.Edge
	Pending       []resolver.PendingEdge
	Scope         resolver.FileScope
}

// ExtractGraph parses source once and produces every node and edge
// candidate the file contributes: declarations (via the same walk as
// ExtractSource), a synthesized module node standing in for the file
// itself (the source/target of import edges and top-level calls), class
// to method containment edges, extends/implements candidates from
// inheritance clauses, and pending call/import edges for the resolver.
func (e *Extractor) ExtractGraph(ctx context.Context, path string, source []byte, lang Language) (*Graph, error) {
	root, err := e.parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	rules := rulesFor(lang)
	moduleNode := moduleNodeFor(path, lang)
	g := &Graph{Scope: resolver.FileScope{Path: path}}

	type spanned struct {
		node storage.Node
		from int
		to   int
	}
	var decls []spanned

	for _, fn := range findNodes(root, rules.functions) {
		sym := e.extractFunction(fn, source, lang, path, "")
		if sym == nil {
			continue
		}
		n := ToNode(*sym, path, lang)
		decls = append(decls, spanned{n, sym.StartByte, sym.EndByte})
	}

	for _, cls := range findNodes(root, rules.classes) {
		clsSym := e.extractClass(cls, source, lang, path)
		if clsSym == nil {
			continue
		}
		clsNode := ToNode(*clsSym, path, lang)
		decls = append(decls, spanned{clsNode, clsSym.StartByte, clsSym.EndByte})

		for _, m := range findNodes(cls, rules.methods) {
			msym := e.extractFunction(m, source, lang, path, clsSym.Name)
			if msym == nil {
				continue
			}
			mNode := ToNode(*msym, path, lang)
			decls = append(decls, spanned{mNode, msym.StartByte, msym.EndByte})
			g.ContainsEdges = append(g.ContainsEdges, storage.Edge{
				SourceNodeID: clsNode.ID,
				TargetNodeID: mNode.ID,
				Kind:         storage.EdgeContains,
			})
		}

		for _, h := range heritageRefs(cls, source, lang) {
			g.Pending = append(g.Pending, resolver.PendingEdge{
				SourceNodeID: clsNode.ID,
				TargetText:   h.target,
				Kind:         h.kind,
				CallSiteLine: clsSym.Line,
			})
		}
	}

	for _, d := range decls {
		g.Nodes = append(g.Nodes, d.node)
	}
	g.Nodes = append(g.Nodes, moduleNode)

	// Innermost enclosing declaration wins; top-level code falls back to
	// the module node.
	enclosing := func(pos int) string {
		best := -1
		bestID := moduleNode.ID
		for _, d := range decls {
			if pos < d.from || pos >= d.to {
				continue
			}
			width := d.to - d.from
			if best == -1 || width < best {
				best = width
				bestID = d.node.ID
			}
		}
		return bestID
	}

	for _, call := range findNodes(root, rules.calls) {
		target := calleeText(call, source, lang)
		if target == "" {
			continue
		}
		g.Pending = append(g.Pending, resolver.PendingEdge{
			SourceNodeID: enclosing(int(call.StartByte())),
			TargetText:   target,
			Kind:         storage.EdgeCalls,
			CallSiteLine: int(call.StartPoint().Row) + 1,
			CallSiteByte: int(call.StartByte()),
		})
	}

	for _, imp := range findNodes(root, rules.imports) {
		importPath, alias, ok := importRef(imp, source, lang)
		if !ok {
			continue
		}
		g.Scope.Imports = append(g.Scope.Imports, resolver.ImportDecl{ImportPath: importPath, Alias: alias})
		g.Pending = append(g.Pending, resolver.PendingEdge{
			SourceNodeID: moduleNode.ID,
			TargetText:   importPath,
			Kind:         storage.EdgeImports,
			CallSiteLine: int(imp.StartPoint().Row) + 1,
			CallSiteByte: int(imp.StartByte()),
		})
	}

	return g, nil
}

// ToNode converts one extracted Symbol into its persisted Node form.
// QualifiedName follows containment (Container + "." + Name) so the
// resolver's by-qualified-name index can bind method calls resolved via
// import scope.
func ToNode(sym Symbol, path string, lang Language) storage.Node {
	qualified := sym.Name
	if sym.Container != "" {
		qualified = sym.Container + "." + sym.Name
	}

	fp := identity.Fingerprint(identity.SymbolIdentity{
		Container: sym.Container,
		Name:      sym.Name,
		Kind:      sym.Kind,
		Signature: identity.NormalizeSignature(sym.Signature),
	})

	return storage.Node{
		ID:            "sym:" + fp,
		FilePath:      path,
		Kind:          nodeKindFor(sym.Kind),
		Name:          sym.Name,
		QualifiedName: qualified,
		StartLine:     sym.Line,
		EndLine:       sym.EndLine,
		StartByte:     sym.StartByte,
		EndByte:       sym.EndByte,
		Signature:     sym.Signature,
		Documentation: sym.Doc,
		Language:      string(lang),
		Exported:      isExportedName(sym.Name, lang),
		Fingerprint:   fp,
	}
}

// moduleNodeFor synthesizes the node that stands in for a whole file: the
// source of its import edges and the fallback caller for top-level code
// that isn't inside any extracted function.
func moduleNodeFor(path string, lang Language) storage.Node {
	fp := identity.Fingerprint(identity.SymbolIdentity{
		Name: path,
		Kind: string(storage.KindModule),
	})
	return storage.Node{
		ID:            "mod:" + fp,
		FilePath:      path,
		Kind:          storage.KindModule,
		Name:          path,
		QualifiedName: path,
		Language:      string(lang),
		Fingerprint:   fp,
	}
}

func nodeKindFor(kind string) storage.NodeKind {
	switch kind {
	case "function":
		return storage.KindFunction
	case "method":
		return storage.KindMethod
	case "class":
		return storage.KindClass
	case "struct":
		return storage.KindStruct
	case "interface":
		return storage.KindInterface
	case "type-alias":
		return storage.KindTypeAlias
	case "enum":
		return storage.KindEnum
	default:
		return storage.KindOther
	}
}

func isExportedName(name string, lang Language) bool {
	if name == "" {
		return false
	}
	if lang == LangGo {
		r := []rune(name)[0]
		return r >= 'A' && r <= 'Z'
	}
	return !strings.HasPrefix(name, "_")
}

// heritageRef is one inheritance clause occurrence: the textual supertype
// and whether it reads as extends or implements in the grammar.
type heritageRef struct {
	target string
	kind   storage.EdgeKind
}

// heritageRefs extracts extends/implements candidates from a class-like
// node's inheritance clauses. Go has no declared inheritance (interface
// satisfaction is structural) and is absent here.
func heritageRefs(cls *sitter.Node, source []byte, lang Language) []heritageRef {
	text := func(n *sitter.Node) string {
		return string(source[n.StartByte():n.EndByte()])
	}

	var out []heritageRef
	switch lang {
	case LangJavaScript, LangTypeScript, LangTSX:
		for i := 0; i < int(cls.ChildCount()); i++ {
			child := cls.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "class_heritage":
				for j := 0; j < int(child.ChildCount()); j++ {
					clause := child.Child(j)
					if clause == nil {
						continue
					}
					switch clause.Type() {
					case "extends_clause":
						out = append(out, identifierRefs(clause, source, storage.EdgeExtends)...)
					case "implements_clause":
						out = append(out, identifierRefs(clause, source, storage.EdgeImplements)...)
					}
				}
			case "extends_type_clause": // TS interface extends
				out = append(out, identifierRefs(child, source, storage.EdgeExtends)...)
			}
		}

	case LangJava:
		if sup := cls.ChildByFieldName("superclass"); sup != nil {
			out = append(out, identifierRefs(sup, source, storage.EdgeExtends)...)
		}
		if ifaces := cls.ChildByFieldName("interfaces"); ifaces != nil {
			out = append(out, identifierRefs(ifaces, source, storage.EdgeImplements)...)
		}

	case LangPython:
		if supers := cls.ChildByFieldName("superclasses"); supers != nil {
			for i := 0; i < int(supers.NamedChildCount()); i++ {
				base := supers.NamedChild(i)
				if base == nil {
					continue
				}
				switch base.Type() {
				case "identifier", "attribute":
					out = append(out, heritageRef{target: text(base), kind: storage.EdgeExtends})
				}
			}
		}

	case LangRust:
		if cls.Type() == "impl_item" {
			if trait := cls.ChildByFieldName("trait"); trait != nil {
				out = append(out, heritageRef{target: text(trait), kind: storage.EdgeImplements})
			}
		}
	}
	return out
}

// identifierRefs collects the type identifiers inside an inheritance
// clause node, one heritageRef per supertype named.
func identifierRefs(clause *sitter.Node, source []byte, kind storage.EdgeKind) []heritageRef {
	var out []heritageRef
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "identifier", "type_identifier", "scoped_type_identifier", "scoped_identifier", "generic_type":
			if n.Type() == "generic_type" {
				// Name is the first child; type arguments are noise here.
				walk(n.Child(0))
				return
			}
			out = append(out, heritageRef{
				target: string(source[n.StartByte():n.EndByte()]),
				kind:   kind,
			})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(clause)
	return out
}

// calleeText extracts the textual callee of a call node, e.g. "foo",
// "pkg.Foo", or "obj.bar". It is a best-effort rendering, not a resolved
// reference; the resolver binds it against the repo-wide Index.
func calleeText(node *sitter.Node, source []byte, lang Language) string {
	if lang == LangJava {
		name := node.ChildByFieldName("name")
		if name == nil {
			return ""
		}
		obj := node.ChildByFieldName("object")
		if obj != nil {
			return string(source[obj.StartByte():obj.EndByte()]) + "." + string(source[name.StartByte():name.EndByte()])
		}
		return string(source[name.StartByte():name.EndByte()])
	}

	fn := node.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	return string(source[fn.StartByte():fn.EndByte()])
}

// importRef extracts the imported path and, if present, its local alias
// from one import/use node. ok is false when the shape wasn't recognized
// (e.g. a wildcard import with no single path to bind).
func importRef(node *sitter.Node, source []byte, lang Language) (path, alias string, ok bool) {
	text := func(n *sitter.Node) string {
		if n == nil {
			return ""
		}
		return strings.Trim(string(source[n.StartByte():n.EndByte()]), `"'`)
	}

	switch lang {
	case LangGo:
		p := node.ChildByFieldName("path")
		if p == nil {
			return "", "", false
		}
		return text(p), text(node.ChildByFieldName("name")), true

	case LangJavaScript, LangTypeScript, LangTSX:
		src := node.ChildByFieldName("source")
		if src == nil {
			return "", "", false
		}
		return text(src), "", true

	case LangPython:
		if node.Type() == "import_from_statement" {
			mod := node.ChildByFieldName("module_name")
			if mod == nil {
				return "", "", false
			}
			return text(mod), "", true
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && (child.Type() == "dotted_name" || child.Type() == "aliased_import") {
				return text(child), "", true
			}
		}
		return "", "", false

	case LangRust:
		arg := node.ChildByFieldName("argument")
		if arg == nil {
			return "", "", false
		}
		return text(arg), "", true

	case LangJava:
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "scoped_identifier" {
				return text(child), "", true
			}
		}
		return "", "", false

	case LangKotlin:
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "identifier" {
				return text(child), "", true
			}
		}
		return "", "", false

	default:
		return "", "", false
	}
}
