package query

import (
	"context"

	"github.com/suatkocar/codegraph/internal/deadcode"
)

// DeadCode finds unreferenced symbols, honouring the configured exclusion
// patterns. scope limits analysis to path prefixes; limit caps output;
// includeTestOnly also reports symbols reached only from test artifacts.
func (e *Engine) DeadCode(ctx context.Context, scope []string, limit int, includeTestOnly bool) (*deadcode.Report, error) {
	analyzer := deadcode.NewAnalyzer(e.repo, nil, e.opts.DeadCodeExcludes)
	return analyzer.Find(ctx, deadcode.Options{Scope: scope, Limit: limit, IncludeTestOnly: includeTestOnly})
}
