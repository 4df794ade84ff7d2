package deadcode

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/suatkocar/codegraph/internal/storage"
)

// candidateKinds are the node kinds dead-code analysis considers. Value
// and type-alias declarations are skipped: their "use" is frequently
// implicit (serialization, reflection) and verdicts would be noise.
var candidateKinds = map[storage.NodeKind]bool{
	storage.KindFunction: true,
	storage.KindMethod:   true,
	storage.KindClass:    true,
	storage.KindStruct:   true,
}

// inboundKinds are the edge kinds that count as "something reaches this
// symbol".
var inboundKinds = map[storage.EdgeKind]bool{
	storage.EdgeCalls:      true,
	storage.EdgeReferences: true,
	storage.EdgeTests:      true,
	storage.EdgeExtends:    true,
	storage.EdgeImplements: true,
}

// Options scopes one analysis run.
type Options struct {
	// Scope limits analysis to paths under any of these prefixes.
	Scope []string
	// MinConfidence drops items below the threshold. Zero keeps all.
	MinConfidence float64
	// Limit caps the number of items returned; 0 means no cap.
	Limit int
	// IncludeTestOnly also reports symbols whose only inbound edges come
	// from test artifacts. Off by default: a tests edge keeps a symbol
	// alive, it just means nothing ships it.
	IncludeTestOnly bool
}

// Analyzer runs dead-code analysis over the graph store.
type Analyzer struct {
	repo   *storage.GraphRepository
	rules  *ExclusionRules
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer. excludePatterns are user-supplied
// globs added on top of the built-in exclusions.
func NewAnalyzer(repo *storage.GraphRepository, logger *slog.Logger, excludePatterns []string) *Analyzer {
	return &Analyzer{
		repo:   repo,
		rules:  NewExclusionRules(excludePatterns),
		logger: logger,
	}
}

// Find returns every dead symbol in scope, ordered by confidence
// descending then node id for deterministic output.
func (a *Analyzer) Find(ctx context.Context, opts Options) (*Report, error) {
	nodes, err := a.repo.AllNodes()
	if err != nil {
		return nil, err
	}
	edges, err := a.repo.AllEdges()
	if err != nil {
		return nil, err
	}

	isTestNode := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.IsTest {
			isTestNode[n.ID] = true
		}
	}

	type inbound struct {
		total int
		self  int
		test  int
	}
	in := make(map[string]inbound)
	for _, e := range edges {
		if e.TargetNodeID == "" || !inboundKinds[e.Kind] {
			continue
		}
		agg := in[e.TargetNodeID]
		agg.total++
		if e.SourceNodeID == e.TargetNodeID {
			agg.self++
		} else if isTestNode[e.SourceNodeID] {
			agg.test++
		}
		in[e.TargetNodeID] = agg
	}

	report := &Report{Summary: Summary{ByCategory: make(map[Category]int)}}

	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !candidateKinds[n.Kind] || !inScope(n.FilePath, opts.Scope) {
			continue
		}
		report.Summary.Analyzed++

		if reason := a.rules.ShouldExclude(n.Name, string(n.Kind), n.FilePath, n.Exported, n.IsTest); reason != "" {
			report.Summary.Excluded++
			continue
		}

		agg := in[n.ID]
		item, dead := classify(n, agg.total, agg.self, agg.test)
		if !dead || item.Confidence < opts.MinConfidence {
			continue
		}
		if item.Category == CategoryTestOnly && !opts.IncludeTestOnly {
			continue
		}
		report.Items = append(report.Items, item)
		report.Summary.ByCategory[item.Category]++
	}

	sort.Slice(report.Items, func(i, j int) bool {
		if report.Items[i].Confidence != report.Items[j].Confidence {
			return report.Items[i].Confidence > report.Items[j].Confidence
		}
		return report.Items[i].NodeID < report.Items[j].NodeID
	})
	if opts.Limit > 0 && len(report.Items) > opts.Limit {
		report.Items = report.Items[:opts.Limit]
	}
	report.Summary.Found = len(report.Items)

	if a.logger != nil {
		a.logger.Debug("dead-code analysis complete",
			"analyzed", report.Summary.Analyzed,
			"excluded", report.Summary.Excluded,
			"found", report.Summary.Found)
	}
	return report, nil
}

func classify(n storage.Node, total, self, test int) (Item, bool) {
	item := Item{
		NodeID:        n.ID,
		Name:          n.Name,
		QualifiedName: n.QualifiedName,
		Kind:          string(n.Kind),
		FilePath:      n.FilePath,
		Line:          n.StartLine,
		EndLine:       n.EndLine,
		InboundCount:  total,
		SelfInbound:   self,
		TestInbound:   test,
	}

	switch {
	case total == 0:
		item.Category = CategoryZeroRefs
		item.Reason = "no inbound calls, references, or tests"
		item.Confidence = 0.95
	case total == self:
		item.Category = CategorySelfOnly
		item.Reason = "only self-references (recursive, never called from outside)"
		item.Confidence = 0.85
	case total == self+test:
		item.Category = CategoryTestOnly
		item.Reason = "referenced only from test artifacts"
		item.Confidence = 0.7
	default:
		return Item{}, false
	}
	return item, true
}

func inScope(path string, scope []string) bool {
	if len(scope) == 0 {
		return true
	}
	for _, prefix := range scope {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
