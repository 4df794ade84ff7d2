package resolver

import (
	"regexp"
	"strings"

	"github.com/suatkocar/codegraph/internal/storage"
)

// routeResolver consults framework-specific route conventions (step 4 of
// the resolution order): a web-framework route decorator/macro or a
// controller naming convention can make "GET /users/:id" resolve to a
// handler function even though nothing textually imports it.
type routeResolver struct {
	frameworks map[string]bool
}

func newRouteResolver(enabled []string) *routeResolver {
	m := make(map[string]bool, len(enabled))
	for _, f := range enabled {
		m[strings.ToLower(f)] = true
	}
	return &routeResolver{frameworks: m}
}

// routeDecoratorPattern matches route-style target texts that start with
// an HTTP verb or "route" followed by ':' or '(', e.g. `GET:/users/:id` or
// `route("/users/<id>")`.
var routeDecoratorPattern = regexp.MustCompile(`(?i)^(get|post|put|patch|delete|route)[:(]`)

// resolve tries to bind a textual route reference (the resolver sees it as
// an ordinary PendingEdge with a path-like TargetText such as
// "route:/users/:id") to a handler node whose qualified name encodes the
// same route path as a controller-convention suffix.
func (r *routeResolver) resolve(p PendingEdge, filePath string, idx *Index) (string, bool) {
	if len(r.frameworks) == 0 {
		return "", false
	}
	if !routeDecoratorPattern.MatchString(p.TargetText) {
		return "", false
	}

	routePath := normalizeRoutePath(p.TargetText)
	bestQualified := ""
	bestID := ""
	for qualified, id := range idx.byQualifiedName {
		if !strings.Contains(strings.ToLower(qualified), routePath) {
			continue
		}
		// First match by map order would be nondeterministic; keep the
		// lexicographically smallest qualified name.
		if bestQualified == "" || qualified < bestQualified {
			bestQualified = qualified
			bestID = id
		}
	}
	return bestID, bestID != ""
}

// normalizeRoutePath strips the verb prefix and path-parameter punctuation
// so "GET:/users/:id" and "route(\"/users/<id>\")" both become "users_id",
// which matches a handler qualified e.g. as "UsersController.users_id".
func normalizeRoutePath(s string) string {
	s = strings.ToLower(s)
	if i := strings.IndexAny(s, ":("); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Trim(s, `"'() `)
	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	s = strings.ReplaceAll(s, "/", "_")
	return strings.Trim(s, "_")
}

// RouteEdgeKind is the edge kind used for framework-route-resolved edges,
// kept distinct from an ordinary call so impact analysis can discount the
// lower-confidence route-convention match if needed.
const RouteEdgeKind = storage.EdgeReferences
