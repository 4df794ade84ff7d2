// Package export serializes the symbol graph to the SCIP wire format for
// editors and tooling that already consume SCIP indexes. Export-only:
// nothing here is ever read back as an indexing input, so the pipeline
// never grows a dependency on an external indexer.
package export

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"github.com/suatkocar/codegraph/internal/logging"
	"github.com/suatkocar/codegraph/internal/storage"
)

// Exporter converts the store's nodes and edges into a SCIP index.
type Exporter struct {
	repo    *storage.GraphRepository
	logger  *logging.Logger
	version string
}

// NewExporter creates an exporter over repo. version stamps the
// tool-info block.
func NewExporter(repo *storage.GraphRepository, logger *logging.Logger, version string) *Exporter {
	return &Exporter{repo: repo, logger: logger, version: version}
}

// Build assembles the SCIP index: one document per indexed file, a
// definition occurrence per node, and call/extends/implements edges as
// symbol relationships.
func (e *Exporter) Build(ctx context.Context, projectRoot string) (*scippb.Index, error) {
	nodes, err := e.repo.AllNodes()
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	edges, err := e.repo.AllEdges()
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	symbolOf := make(map[string]string, len(nodes))
	for _, n := range nodes {
		symbolOf[n.ID] = scipSymbol(n)
	}

	relationships := make(map[string][]*scippb.Relationship)
	for _, edge := range edges {
		if edge.TargetNodeID == "" {
			continue
		}
		target, ok := symbolOf[edge.TargetNodeID]
		if !ok {
			continue
		}
		rel := &scippb.Relationship{Symbol: target}
		switch edge.Kind {
		case storage.EdgeCalls, storage.EdgeReferences:
			rel.IsReference = true
		case storage.EdgeExtends, storage.EdgeImplements:
			rel.IsImplementation = true
		default:
			continue
		}
		relationships[edge.SourceNodeID] = append(relationships[edge.SourceNodeID], rel)
	}

	byFile := make(map[string][]storage.Node)
	for _, n := range nodes {
		byFile[n.FilePath] = append(byFile[n.FilePath], n)
	}
	files := make([]string, 0, len(byFile))
	for f := range byFile {
		files = append(files, f)
	}
	sort.Strings(files)

	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			ToolInfo: &scippb.ToolInfo{
				Name:    "codegraph",
				Version: e.version,
			},
			ProjectRoot:          "file://" + projectRoot,
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileNodes := byFile[file]
		sort.Slice(fileNodes, func(i, j int) bool {
			if fileNodes[i].StartLine != fileNodes[j].StartLine {
				return fileNodes[i].StartLine < fileNodes[j].StartLine
			}
			return fileNodes[i].ID < fileNodes[j].ID
		})

		doc := &scippb.Document{
			RelativePath: file,
			Language:     fileNodes[0].Language,
		}
		for _, n := range fileNodes {
			sym := symbolOf[n.ID]
			info := &scippb.SymbolInformation{
				Symbol:        sym,
				Relationships: relationships[n.ID],
			}
			if n.Documentation != "" {
				info.Documentation = []string{n.Documentation}
			}
			doc.Symbols = append(doc.Symbols, info)
			doc.Occurrences = append(doc.Occurrences, &scippb.Occurrence{
				// SCIP ranges are 0-based [startLine, startChar, endLine, endChar].
				Range:       []int32{int32(n.StartLine - 1), 0, int32(n.EndLine - 1), 0},
				Symbol:      sym,
				SymbolRoles: int32(scippb.SymbolRole_Definition),
			})
		}
		index.Documents = append(index.Documents, doc)
	}

	if e.logger != nil {
		e.logger.Info("scip export assembled", map[string]interface{}{
			"documents": len(index.Documents),
			"symbols":   len(nodes),
		})
	}
	return index, nil
}

// WriteFile marshals the index to path in SCIP's protobuf encoding.
func (e *Exporter) WriteFile(index *scippb.Index, path string) error {
	data, err := proto.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode scip index: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// scipSymbol renders a node id in SCIP symbol syntax:
// scheme manager package version descriptor. Local descriptors follow
// the path/qualified-name shape other SCIP emitters use.
func scipSymbol(n storage.Node) string {
	descriptor := strings.ReplaceAll(n.QualifiedName, " ", "_")
	suffix := "."
	switch n.Kind {
	case storage.KindFunction, storage.KindMethod:
		suffix = "()."
	case storage.KindClass, storage.KindStruct, storage.KindInterface, storage.KindEnum:
		suffix = "#"
	}
	return fmt.Sprintf("codegraph . . . %s/%s%s", n.FilePath, descriptor, suffix)
}
