//go:build cgo

package symbols

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser owns one tree-sitter parser instance. Parsers are not safe to
// share across goroutines; the pipeline binds one Parser per worker and
// reuses it across files.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser for use by a single worker.
func NewParser() *Parser {
	return &Parser{parser: sitter.NewParser()}
}

// Parse parses source with the grammar for lang and returns the tree root.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Node, error) {
	grammar, err := grammarFor(lang)
	if err != nil {
		return nil, err
	}
	p.parser.SetLanguage(grammar)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lang, err)
	}
	return tree.RootNode(), nil
}

func grammarFor(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("no grammar for language %q", lang)
	}
}

// IsAvailable reports whether tree-sitter extraction was compiled in.
func IsAvailable() bool {
	return true
}
