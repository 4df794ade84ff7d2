package impact

import (
	"context"
	"fmt"
	"sort"

	cerrors "github.com/suatkocar/codegraph/internal/errors"
	"github.com/suatkocar/codegraph/internal/storage"
)

// impactEdgeKinds are the relationship types that propagate change: a
// caller breaks when its callee's contract changes, an importer when its
// import moves.
var impactEdgeKinds = map[storage.EdgeKind]bool{
	storage.EdgeCalls:   true,
	storage.EdgeImports: true,
}

// Analyzer computes blast radii over the graph store.
type Analyzer struct {
	repo       *storage.GraphRepository
	thresholds Thresholds
}

// NewAnalyzer creates an analyzer with the given risk thresholds.
func NewAnalyzer(repo *storage.GraphRepository, thresholds Thresholds) *Analyzer {
	if thresholds.High <= 0 {
		thresholds = DefaultThresholds()
	}
	return &Analyzer{repo: repo, thresholds: thresholds}
}

// Analyze walks the reverse closure of targetID over calls and imports.
// The walk is unbounded in depth but cycle-safe: each node is visited at
// most once, so it terminates within |V| steps. Cancellation is checked
// per frontier batch.
func (a *Analyzer) Analyze(ctx context.Context, targetID string) (*Report, error) {
	target, err := a.repo.NodeByID(targetID)
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "load impact target", err)
	}
	if target == nil {
		return nil, cerrors.NewEngineError(cerrors.NotFound, fmt.Sprintf("symbol %q not found", targetID), nil)
	}

	nodes, err := a.repo.AllNodes()
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "load nodes", err)
	}
	edges, err := a.repo.AllEdges()
	if err != nil {
		return nil, cerrors.NewEngineError(cerrors.StoreError, "load edges", err)
	}

	byID := make(map[string]storage.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	reverse := make(map[string][]string)
	for _, e := range edges {
		if e.TargetNodeID == "" || !impactEdgeKinds[e.Kind] {
			continue
		}
		reverse[e.TargetNodeID] = append(reverse[e.TargetNodeID], e.SourceNodeID)
	}

	distance := map[string]int{targetID: 0}
	frontier := []string{targetID}
	for depth := 1; len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var next []string
		for _, id := range frontier {
			for _, dependent := range reverse[id] {
				if _, seen := distance[dependent]; seen {
					continue
				}
				distance[dependent] = depth
				next = append(next, dependent)
			}
		}
		frontier = next
	}

	report := &Report{
		TargetID:   targetID,
		TargetName: target.QualifiedName,
	}
	files := map[string]bool{}
	for id, d := range distance {
		if d == 0 {
			continue
		}
		n := byID[id]
		report.Affected = append(report.Affected, Item{
			NodeID:        id,
			Name:          n.Name,
			QualifiedName: n.QualifiedName,
			Kind:          string(n.Kind),
			FilePath:      n.FilePath,
			Line:          n.StartLine,
			Distance:      d,
		})
		files[n.FilePath] = true
		if d == 1 {
			report.DirectCount++
		}
		report.TransitiveCount++
	}
	report.AffectedFiles = len(files)
	report.Risk = a.riskFor(report.TransitiveCount)

	sort.Slice(report.Affected, func(i, j int) bool {
		if report.Affected[i].Distance != report.Affected[j].Distance {
			return report.Affected[i].Distance < report.Affected[j].Distance
		}
		return report.Affected[i].NodeID < report.Affected[j].NodeID
	})

	return report, nil
}

func (a *Analyzer) riskFor(transitive int) RiskLevel {
	switch {
	case transitive >= a.thresholds.High:
		return RiskHigh
	case transitive >= a.thresholds.Medium:
		return RiskMedium
	default:
		return RiskLow
	}
}
