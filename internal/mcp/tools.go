package mcp

import (
	"context"
	"fmt"

	"github.com/suatkocar/codegraph/internal/contextpack"
	"github.com/suatkocar/codegraph/internal/query"
)

// Category partitions the tool surface for enable/disable and
// priority-drop decisions.
type Category string

const (
	CategoryRepository Category = "Repository"
	CategorySearch     Category = "Search"
	CategoryCallGraph  Category = "CallGraph"
	CategoryAnalysis   Category = "Analysis"
	CategorySecurity   Category = "Security"
	CategoryGit        Category = "Git"
	CategoryContext    Category = "Context"
)

// Tool is one named synchronous operation: the polymorphic value the
// server iterates, never a switch over names.
type Tool struct {
	Name        string
	Description string
	Category    Category
	// Priority orders drop decisions under performance.max_tool_count;
	// higher survives longer.
	Priority    int
	InputSchema map[string]interface{}
	Invoke      func(ctx context.Context, params map[string]interface{}) (interface{}, error)
}

// Definition is the wire shape of one tool in tools/list.
type Definition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// buildRegistry assembles every tool over the engine and assembler. The
// config layer filters this list; nothing here consults configuration.
func buildRegistry(engine *query.Engine, builder *contextpack.Builder) []Tool {
	objSchema := func(props map[string]interface{}, required ...string) map[string]interface{} {
		s := map[string]interface{}{"type": "object", "properties": props}
		if len(required) > 0 {
			s["required"] = required
		}
		return s
	}
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	num := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "integer", "description": desc}
	}

	return []Tool{
		{
			Name:        "index_status",
			Description: "Report index health: file, node, edge, unresolved-ref, and cached-vector counts.",
			Category:    CategoryRepository,
			Priority:    90,
			InputSchema: objSchema(map[string]interface{}{}),
			Invoke: func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
				return engine.IndexStatus(ctx)
			},
		},
		{
			Name:        "file_symbols",
			Description: "List every symbol declared in one file, ordered by line.",
			Category:    CategoryRepository,
			Priority:    70,
			InputSchema: objSchema(map[string]interface{}{"path": str("repo-relative file path")}, "path"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				path, err := stringParam(params, "path", true)
				if err != nil {
					return nil, err
				}
				return engine.FileSymbols(ctx, path)
			},
		},
		{
			Name:        "search",
			Description: "Fast keyword search over symbol names, signatures, docs, and paths. No semantic pass.",
			Category:    CategorySearch,
			Priority:    100,
			InputSchema: objSchema(map[string]interface{}{
				"query": str("search text"),
				"limit": num("maximum results (default 20)"),
			}, "query"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				q, err := stringParam(params, "query", true)
				if err != nil {
					return nil, err
				}
				return engine.Search(ctx, q, intParam(params, "limit", 20))
			},
		},
		{
			Name:        "search_hybrid",
			Description: "Hybrid retrieval: expanded keyword search fused with semantic similarity via reciprocal-rank fusion.",
			Category:    CategorySearch,
			Priority:    95,
			InputSchema: objSchema(map[string]interface{}{
				"query": str("natural-language or identifier query"),
				"limit": num("maximum results (default 20)"),
			}, "query"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				q, err := stringParam(params, "query", true)
				if err != nil {
					return nil, err
				}
				return engine.SearchHybrid(ctx, q, intParam(params, "limit", 20))
			},
		},
		{
			Name:        "callers",
			Description: "Reverse call-graph walk: who calls this symbol, to a bounded depth.",
			Category:    CategoryCallGraph,
			Priority:    85,
			InputSchema: objSchema(map[string]interface{}{
				"symbol": str("symbol id, qualified name, or unique short name"),
				"depth":  num("maximum hops (default 3)"),
			}, "symbol"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				sym, err := stringParam(params, "symbol", true)
				if err != nil {
					return nil, err
				}
				return engine.Callers(ctx, sym, intParam(params, "depth", 3))
			},
		},
		{
			Name:        "callees",
			Description: "Forward call-graph walk: what this symbol calls, to a bounded depth.",
			Category:    CategoryCallGraph,
			Priority:    84,
			InputSchema: objSchema(map[string]interface{}{
				"symbol": str("symbol id, qualified name, or unique short name"),
				"depth":  num("maximum hops (default 3)"),
			}, "symbol"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				sym, err := stringParam(params, "symbol", true)
				if err != nil {
					return nil, err
				}
				return engine.Callees(ctx, sym, intParam(params, "depth", 3))
			},
		},
		{
			Name:        "dependencies",
			Description: "Forward closure over calls and imports: everything a symbol depends on.",
			Category:    CategoryCallGraph,
			Priority:    75,
			InputSchema: objSchema(map[string]interface{}{
				"symbol": str("symbol id, qualified name, or unique short name"),
				"depth":  num("maximum hops (default 3)"),
			}, "symbol"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				sym, err := stringParam(params, "symbol", true)
				if err != nil {
					return nil, err
				}
				return engine.Dependencies(ctx, sym, intParam(params, "depth", 3))
			},
		},
		{
			Name:        "find_path",
			Description: "Shortest edge sequence between two symbols; empty when unreachable.",
			Category:    CategoryCallGraph,
			Priority:    60,
			InputSchema: objSchema(map[string]interface{}{
				"from": str("source symbol"),
				"to":   str("target symbol"),
			}, "from", "to"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				from, err := stringParam(params, "from", true)
				if err != nil {
					return nil, err
				}
				to, err := stringParam(params, "to", true)
				if err != nil {
					return nil, err
				}
				return engine.FindPath(ctx, from, to)
			},
		},
		{
			Name:        "circular_imports",
			Description: "Strongly connected components of the imports graph: files that import each other.",
			Category:    CategoryCallGraph,
			Priority:    55,
			InputSchema: objSchema(map[string]interface{}{}),
			Invoke: func(ctx context.Context, _ map[string]interface{}) (interface{}, error) {
				return engine.CircularImports(ctx)
			},
		},
		{
			Name:        "pagerank",
			Description: "Most central symbols by PageRank over the call and import graph.",
			Category:    CategoryCallGraph,
			Priority:    50,
			InputSchema: objSchema(map[string]interface{}{
				"limit": num("maximum results (default 20)"),
			}),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				return engine.PageRank(ctx, intParam(params, "limit", 20))
			},
		},
		{
			Name:        "impact",
			Description: "Blast radius of changing a symbol: direct and transitive dependents, affected files, risk level.",
			Category:    CategoryAnalysis,
			Priority:    80,
			InputSchema: objSchema(map[string]interface{}{
				"symbol": str("symbol id, qualified name, or unique short name"),
			}, "symbol"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				sym, err := stringParam(params, "symbol", true)
				if err != nil {
					return nil, err
				}
				return engine.Impact(ctx, sym)
			},
		},
		{
			Name:        "dead_code",
			Description: "Unreferenced private symbols, with exclusions for entry points and test artifacts.",
			Category:    CategoryAnalysis,
			Priority:    65,
			InputSchema: objSchema(map[string]interface{}{
				"scope": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "path prefixes to limit analysis to",
				},
				"limit": num("maximum results (default 100)"),
				"include_test_only": map[string]interface{}{
					"type":        "boolean",
					"description": "also report symbols referenced only from tests",
				},
			}),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				return engine.DeadCode(ctx, stringSliceParam(params, "scope"),
					intParam(params, "limit", 100), boolParam(params, "include_test_only"))
			},
		},
		{
			Name:        "assemble_context",
			Description: "Token-budgeted context for a query: full source of top hits, neighbor signatures, tests and siblings, directory background.",
			Category:    CategoryContext,
			Priority:    88,
			InputSchema: objSchema(map[string]interface{}{
				"query":  str("what the downstream consumer is working on"),
				"budget": num("token budget (default 4000)"),
			}, "query"),
			Invoke: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				q, err := stringParam(params, "query", true)
				if err != nil {
					return nil, err
				}
				return builder.Build(ctx, q, intParam(params, "budget", 4000))
			},
		},
	}
}

// Param helpers. Tool inputs arrive as generic JSON; these validate at
// the boundary so Invoke bodies stay clean.

func stringParam(params map[string]interface{}, key string, required bool) (string, error) {
	v, ok := params[key]
	if !ok {
		if required {
			return "", &RPCError{Code: InvalidParams, Message: fmt.Sprintf("missing required parameter %q", key)}
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &RPCError{Code: InvalidParams, Message: fmt.Sprintf("parameter %q must be a string", key)}
	}
	return s, nil
}

func intParam(params map[string]interface{}, key string, def int) int {
	v, ok := params[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

func boolParam(params map[string]interface{}, key string) bool {
	v, ok := params[key].(bool)
	return ok && v
}

func stringSliceParam(params map[string]interface{}, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
