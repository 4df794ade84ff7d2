//go:build !cgo

// Package symbols is the parser pool's extraction layer. This stub covers
// non-cgo builds, where no tree-sitter grammars are compiled in: indexing
// walks and hashes files but extracts nothing, and every query runs over
// an empty graph.
package symbols

import (
	"context"

	"github.com/suatkocar/codegraph/internal/resolver"
	"github.com/suatkocar/codegraph/internal/storage"
)

// Symbol is one extracted declaration before it becomes a storage.Node.
type Symbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Line      int    `json:"line"`
	EndLine   int    `json:"endLine"`
	StartByte int    `json:"startByte"`
	EndByte   int    `json:"endByte"`
	Container string `json:"container"`
	Signature string `json:"signature"`
	Doc       string `json:"doc,omitempty"`
}

// Graph is one file's extraction result. See graphbridge.go for the cgo
// build's real implementation; this stub always returns an empty Graph.
type Graph struct {
	Nodes         []storage.Node
	ContainsEdges []storage.Edge
	Pending       []resolver.PendingEdge
	Scope         resolver.FileScope
}

// Parser owns one tree-sitter parser instance. Unavailable without cgo.
type Parser struct{}

// NewParser creates a parser for use by a single worker.
func NewParser() *Parser {
	return &Parser{}
}

// Extractor extracts symbols from source files. Without cgo it extracts
// nothing.
type Extractor struct{}

// NewExtractor creates a symbol extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFile extracts all symbols from a single file.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]Symbol, error) {
	return nil, nil
}

// ExtractSource extracts symbols from source bytes.
func (e *Extractor) ExtractSource(ctx context.Context, path string, source []byte, lang Language) ([]Symbol, error) {
	return nil, nil
}

// ExtractGraph extracts nodes and edge candidates from source bytes.
func (e *Extractor) ExtractGraph(ctx context.Context, path string, source []byte, lang Language) (*Graph, error) {
	return &Graph{Scope: resolver.FileScope{Path: path}}, nil
}

// IsAvailable reports whether tree-sitter extraction was compiled in.
func IsAvailable() bool {
	return false
}
