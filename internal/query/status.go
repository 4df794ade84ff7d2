package query

import (
	"context"

	cerrors "github.com/suatkocar/codegraph/internal/errors"
)

// Status is the index health report: sizes, the unresolved-ref count
// (the resolver's health metric), and whether the semantic capability is
// live.
type Status struct {
	Files           int  `json:"files"`
	Nodes           int  `json:"nodes"`
	Edges           int  `json:"edges"`
	UnresolvedRefs  int  `json:"unresolvedRefs"`
	CachedVectors   int  `json:"cachedVectors"`
	SemanticEnabled bool `json:"semanticEnabled"`
	ParseErrors     int  `json:"parseErrors"`
}

// IndexStatus reports the store's current shape.
func (e *Engine) IndexStatus(ctx context.Context) (*Status, error) {
	s := &Status{SemanticEnabled: e.embeds.Enabled()}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM file_hashes`, &s.Files},
		{`SELECT COUNT(*) FROM nodes`, &s.Nodes},
		{`SELECT COUNT(*) FROM edges`, &s.Edges},
		{`SELECT COUNT(*) FROM unresolved_refs`, &s.UnresolvedRefs},
		{`SELECT COUNT(*) FROM embedding_cache`, &s.CachedVectors},
		{`SELECT COUNT(*) FROM file_hashes WHERE parse_error_summary IS NOT NULL`, &s.ParseErrors},
	}
	for _, c := range counts {
		if err := e.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, cerrors.NewEngineError(cerrors.StoreError, "read index status", err)
		}
	}
	return s, nil
}
