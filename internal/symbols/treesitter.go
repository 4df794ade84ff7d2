//go:build cgo

// Package symbols is the parser pool's extraction layer: tree-sitter
// grammars in, Nodes and edge candidates out. Each supported grammar is
// described by a small rule table (declaration node types, call node
// types, import node types) so new languages slot in without touching the
// walk itself.
package symbols

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Symbol is one extracted declaration before it becomes a storage.Node.
type Symbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"` // function, method, class, struct, interface, type-alias, enum
	Path      string `json:"path"`
	Line      int    `json:"line"`
	EndLine   int    `json:"endLine"`
	StartByte int    `json:"startByte"`
	EndByte   int    `json:"endByte"`
	Container string `json:"container"` // enclosing class/type for methods
	Signature string `json:"signature"`
	Doc       string `json:"doc,omitempty"`
}

// grammarRules describes where declarations, calls, and imports live in
// one grammar's tree. One shared extraction schema across grammars:
// every language is a rule row, not a bespoke walker.
type grammarRules struct {
	functions []string // top-level function/method declarations
	classes   []string // class/struct/interface/enum declarations
	methods   []string // declarations nested inside a class body
	calls     []string // call-expression node types
	imports   []string // import/use declaration node types
}

var ruleTable = map[Language]grammarRules{
	LangGo: {
		functions: []string{"function_declaration", "method_declaration"},
		classes:   []string{"type_declaration"},
		calls:     []string{"call_expression"},
		imports:   []string{"import_spec"},
	},
	LangJavaScript: {
		functions: []string{"function_declaration", "generator_function_declaration"},
		classes:   []string{"class_declaration"},
		methods:   []string{"method_definition"},
		calls:     []string{"call_expression"},
		imports:   []string{"import_statement"},
	},
	LangTypeScript: {
		functions: []string{"function_declaration", "generator_function_declaration"},
		classes:   []string{"class_declaration", "interface_declaration", "enum_declaration"},
		methods:   []string{"method_definition", "method_signature"},
		calls:     []string{"call_expression"},
		imports:   []string{"import_statement"},
	},
	LangTSX: {
		functions: []string{"function_declaration", "generator_function_declaration"},
		classes:   []string{"class_declaration", "interface_declaration", "enum_declaration"},
		methods:   []string{"method_definition", "method_signature"},
		calls:     []string{"call_expression"},
		imports:   []string{"import_statement"},
	},
	LangPython: {
		functions: []string{"function_definition"},
		classes:   []string{"class_definition"},
		methods:   []string{"function_definition"},
		calls:     []string{"call"},
		imports:   []string{"import_statement", "import_from_statement"},
	},
	LangRust: {
		functions: []string{"function_item"},
		classes:   []string{"struct_item", "enum_item", "trait_item", "impl_item"},
		methods:   []string{"function_item"},
		calls:     []string{"call_expression"},
		imports:   []string{"use_declaration"},
	},
	LangJava: {
		classes: []string{"class_declaration", "interface_declaration", "enum_declaration"},
		methods: []string{"method_declaration", "constructor_declaration"},
		calls:   []string{"method_invocation"},
		imports: []string{"import_declaration"},
	},
	LangKotlin: {
		functions: []string{"function_declaration"},
		classes:   []string{"class_declaration", "object_declaration"},
		methods:   []string{"function_declaration"},
		calls:     []string{"call_expression"},
		imports:   []string{"import_header"},
	},
}

func rulesFor(lang Language) grammarRules {
	return ruleTable[lang]
}

// Extractor turns source bytes into Symbols. Each Extractor owns one
// Parser; create one per worker goroutine.
type Extractor struct {
	parser *Parser
}

// NewExtractor creates an extractor with its own parser instance.
func NewExtractor() *Extractor {
	return &Extractor{parser: NewParser()}
}

// ExtractFile reads path and extracts its symbols. Unsupported extensions
// yield an empty result, not an error.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Symbol, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lang, ok := LanguageFromExtension(strings.ToLower(filepath.Ext(path)))
	if !ok {
		return nil, nil
	}
	return e.ExtractSource(ctx, path, source, lang)
}

// ExtractSource extracts every declaration from source: top-level
// functions, classes/types, and the methods inside them.
func (e *Extractor) ExtractSource(ctx context.Context, path string, source []byte, lang Language) ([]Symbol, error) {
	root, err := e.parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}

	rules := rulesFor(lang)
	var symbols []Symbol

	for _, fn := range findNodes(root, rules.functions) {
		if sym := e.extractFunction(fn, source, lang, path, ""); sym != nil {
			symbols = append(symbols, *sym)
		}
	}

	for _, cls := range findNodes(root, rules.classes) {
		sym := e.extractClass(cls, source, lang, path)
		if sym == nil {
			continue
		}
		symbols = append(symbols, *sym)
		for _, m := range findNodes(cls, rules.methods) {
			if msym := e.extractFunction(m, source, lang, path, sym.Name); msym != nil {
				symbols = append(symbols, *msym)
			}
		}
	}

	return symbols, nil
}

func (e *Extractor) extractFunction(node *sitter.Node, source []byte, lang Language, path, container string) *Symbol {
	name := declarationName(node, source, lang)
	if name == "" || name == "<unknown>" {
		return nil
	}

	kind := "function"
	if container != "" || node.Type() == "method_declaration" || node.Type() == "method_definition" {
		kind = "method"
	}

	return &Symbol{
		Name:      name,
		Kind:      kind,
		Path:      path,
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Container: container,
		Signature: firstLineSignature(node, source, 200),
		Doc:       docComment(node, source, lang),
	}
}

func (e *Extractor) extractClass(node *sitter.Node, source []byte, lang Language, path string) *Symbol {
	name := typeName(node, source, lang)
	if name == "" {
		return nil
	}

	return &Symbol{
		Name:      name,
		Kind:      typeKind(node, lang),
		Path:      path,
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Signature: firstLineSignature(node, source, 120),
		Doc:       docComment(node, source, lang),
	}
}

// declarationName finds the identifier naming a function/method node.
func declarationName(node *sitter.Node, source []byte, lang Language) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return string(source[name.StartByte():name.EndByte()])
	}

	// Grammars without a name field (Kotlin, some Go shapes) expose the
	// identifier as a plain child.
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier", "simple_identifier", "field_identifier":
			return string(source[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

// typeName finds the identifier naming a class/type node. Go wraps the
// name one level down in a type_spec; Rust impl blocks name the type they
// extend rather than carrying a name of their own.
func typeName(node *sitter.Node, source []byte, lang Language) string {
	switch lang {
	case LangGo:
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "type_spec" {
				if name := child.ChildByFieldName("name"); name != nil {
					return string(source[name.StartByte():name.EndByte()])
				}
			}
		}
		return ""
	case LangRust:
		if node.Type() == "impl_item" {
			if t := node.ChildByFieldName("type"); t != nil {
				return string(source[t.StartByte():t.EndByte()])
			}
		}
	}

	return declarationName(node, source, lang)
}

// typeKind maps a class-like node to the data model's kind vocabulary.
func typeKind(node *sitter.Node, lang Language) string {
	switch node.Type() {
	case "interface_declaration", "trait_item":
		return "interface"
	case "enum_declaration", "enum_item":
		return "enum"
	case "struct_item":
		return "struct"
	case "type_declaration": // Go: inspect the declared underlying type
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil || child.Type() != "type_spec" {
				continue
			}
			if t := child.ChildByFieldName("type"); t != nil {
				switch t.Type() {
				case "struct_type":
					return "struct"
				case "interface_type":
					return "interface"
				}
			}
			return "type-alias"
		}
		return "type-alias"
	}
	return "class"
}

// firstLineSignature renders a declaration's signature: everything up to
// the first newline, opening brace, or limit bytes.
func firstLineSignature(node *sitter.Node, source []byte, limit int) string {
	text := source[node.StartByte():node.EndByte()]
	for i, b := range text {
		if b == '\n' || b == '{' {
			return strings.TrimSpace(string(text[:i]))
		}
	}
	if len(text) <= limit {
		return strings.TrimSpace(string(text))
	}
	return strings.TrimSpace(string(text[:limit])) + "..."
}

var commentNodeTypes = map[string]bool{
	"comment":           true,
	"line_comment":      true,
	"block_comment":     true,
	"multiline_comment": true,
}

// docComment collects the comment block immediately preceding a
// declaration (no blank line between), or a Python docstring. Marker
// characters are stripped; interior blank comment lines are kept.
func docComment(node *sitter.Node, source []byte, lang Language) string {
	if lang == LangPython {
		if doc := pythonDocstring(node, source); doc != "" {
			return doc
		}
	}

	var lines []string
	expectRow := int(node.StartPoint().Row) - 1
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if !commentNodeTypes[prev.Type()] {
			break
		}
		if int(prev.EndPoint().Row) < expectRow {
			break // blank line between comment and declaration
		}
		text := string(source[prev.StartByte():prev.EndByte()])
		lines = append([]string{stripCommentMarkers(text)}, lines...)
		expectRow = int(prev.StartPoint().Row) - 1
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// pythonDocstring returns the string literal opening a def/class body.
func pythonDocstring(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str == nil || str.Type() != "string" {
		return ""
	}
	text := string(source[str.StartByte():str.EndByte()])
	text = strings.Trim(text, `"'`)
	return strings.TrimSpace(text)
}

func stripCommentMarkers(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		var out []string
		for _, line := range strings.Split(text, "\n") {
			out = append(out, strings.TrimLeft(strings.TrimSpace(line), "* "))
		}
		return strings.TrimSpace(strings.Join(out, "\n"))
	case strings.HasPrefix(text, "///"):
		return strings.TrimSpace(strings.TrimPrefix(text, "///"))
	case strings.HasPrefix(text, "//"):
		return strings.TrimSpace(strings.TrimPrefix(text, "//"))
	case strings.HasPrefix(text, "#"):
		return strings.TrimSpace(strings.TrimPrefix(text, "#"))
	}
	return text
}

// findNodes collects every node of the given types in depth-first order.
func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	if len(types) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	var result []*sitter.Node
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if wanted[node.Type()] {
			result = append(result, node)
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return result
}
