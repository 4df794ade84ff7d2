// Package deadcode finds symbols nothing reaches: nodes of callable or
// type kinds with no inbound calls, references, or tests edges, after
// exclusions for exported symbols, entry points, and test artifacts.
// It is a pure reader over the graph store; output is stable while the
// graph is stable.
package deadcode

// Category classifies why a symbol is considered dead.
type Category string

const (
	// CategoryZeroRefs means no inbound edge of any counted kind exists.
	CategoryZeroRefs Category = "zero_refs"

	// CategorySelfOnly means the only inbound edges are self-loops
	// (recursive but never called from outside).
	CategorySelfOnly Category = "self_only"

	// CategoryTestOnly means every non-self inbound edge originates in a
	// test artifact: the symbol is exercised, but nothing ships it.
	// Reported only when Options.IncludeTestOnly is set; by default a
	// tests edge counts as a live reference.
	CategoryTestOnly Category = "test_only"
)

// Item is one dead symbol.
type Item struct {
	NodeID        string   `json:"nodeId"`
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualifiedName"`
	Kind          string   `json:"kind"`
	FilePath      string   `json:"filePath"`
	Line          int      `json:"line"`
	EndLine       int      `json:"endLine,omitempty"`
	Category      Category `json:"category"`
	Reason        string   `json:"reason"`

	// Confidence reflects how unambiguous the verdict is: zero inbound
	// edges score higher than test-only usage.
	Confidence float64 `json:"confidence"`

	InboundCount int `json:"inboundCount"`
	TestInbound  int `json:"testInbound,omitempty"`
	SelfInbound  int `json:"selfInbound,omitempty"`
}

// Summary aggregates one analysis run.
type Summary struct {
	Analyzed   int              `json:"analyzed"`
	Excluded   int              `json:"excluded"`
	Found      int              `json:"found"`
	ByCategory map[Category]int `json:"byCategory"`
}

// Report is the full result of Analyzer.Find.
type Report struct {
	Items   []Item  `json:"items"`
	Summary Summary `json:"summary"`
}
