package query

import (
	"context"

	"github.com/suatkocar/codegraph/internal/impact"
)

// Impact computes the blast radius of changing symbol: direct and
// transitive dependent counts, affected files, and a categorical risk
// level from the configured thresholds.
func (e *Engine) Impact(ctx context.Context, symbol string) (*impact.Report, error) {
	node, err := e.LookupSymbol(ctx, symbol)
	if err != nil {
		return nil, err
	}
	analyzer := impact.NewAnalyzer(e.repo, e.opts.ImpactThresholds)
	return analyzer.Analyze(ctx, node.ID)
}
