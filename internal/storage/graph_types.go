package storage

import "time"

// NodeKind enumerates the kinds a Node can take. Unrecognised kinds from a
// grammar extractor are normalised to KindOther rather than rejected.
type NodeKind string

const (
	KindFunction   NodeKind = "function"
	KindMethod     NodeKind = "method"
	KindClass      NodeKind = "class"
	KindStruct     NodeKind = "struct"
	KindInterface  NodeKind = "interface"
	KindTypeAlias  NodeKind = "type-alias"
	KindEnum       NodeKind = "enum"
	KindVariable   NodeKind = "variable"
	KindConstant   NodeKind = "constant"
	KindModule     NodeKind = "module"
	KindImport     NodeKind = "import"
	KindOther      NodeKind = "other"
)

// EdgeKind enumerates the relationship types a directed Edge can carry.
type EdgeKind string

const (
	EdgeCalls        EdgeKind = "calls"
	EdgeImports      EdgeKind = "imports"
	EdgeExtends      EdgeKind = "extends"
	EdgeImplements   EdgeKind = "implements"
	EdgeReferences   EdgeKind = "references"
	EdgeContains     EdgeKind = "contains"
	EdgeDefinesInFile EdgeKind = "defines-in-file"
	EdgeTests        EdgeKind = "tests"
)

// Node is a named, typed entity discovered in one file.
type Node struct {
	ID            string
	FilePath      string
	Kind          NodeKind
	Name          string
	QualifiedName string
	StartLine     int
	EndLine       int
	StartByte     int
	EndByte       int
	Signature     string
	Documentation string
	Language      string
	Exported      bool
	IsTest        bool
	Fingerprint   string
}

// Edge is a directed, typed relationship between two nodes. TargetNodeID is
// empty when the edge is unresolved; the unresolved state is recorded
// separately as an UnresolvedRef rather than a dangling edge row.
type Edge struct {
	ID           int64
	SourceNodeID string
	TargetNodeID string
	Kind         EdgeKind
	CallSiteLine int
	CallSiteByte int
}

// FileRecordRow is the persisted record of one indexed file.
type FileRecordRow struct {
	Path              string
	ContentHash       string
	Language          string
	SymbolCount       int
	ParseErrorSummary string
	LastIndexedAt     time.Time
}

// UnresolvedRefRow is a reference the resolver could not bind to a node.
// Kind is preserved from the PendingEdge that produced it so a later
// re-attempt pass can still tell a dangling call from a dangling import.
type UnresolvedRefRow struct {
	ID            int64
	SourceNodeID  string
	TextualTarget string
	Kind          EdgeKind
	ScopeContext  string
	CreatedAt     time.Time
}

// EmbeddingCacheEntry maps a content fingerprint to its dense vector.
type EmbeddingCacheEntry struct {
	Fingerprint string
	Dim         int
	Vector      []float32
	CreatedAt   time.Time
}
