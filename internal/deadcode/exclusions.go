package deadcode

import (
	"path/filepath"
	"strings"
)

// ExclusionRules decides which symbols never count as dead even with zero
// inbound edges: exported API, entry points, framework-invoked methods,
// generated files, and anything matching user-supplied patterns.
type ExclusionRules struct {
	patterns []string
}

// NewExclusionRules creates exclusion rules with the given glob patterns,
// matched against both file paths and symbol names.
func NewExclusionRules(patterns []string) *ExclusionRules {
	return &ExclusionRules{patterns: patterns}
}

// entryPointNames are invoked by a runtime or test harness rather than by
// in-repo code, across the supported languages.
var entryPointNames = map[string]bool{
	"main":     true,
	"init":     true,
	"__init__": true,
	"__main__": true,
	"setUp":    true,
	"tearDown": true,
}

// ShouldExclude returns the exclusion reason, or "" when the symbol is a
// legitimate dead-code candidate.
func (r *ExclusionRules) ShouldExclude(name, kind, filePath string, exported, isTest bool) string {
	if exported {
		return "exported symbol"
	}
	if isTest {
		return "test artifact"
	}
	if entryPointNames[name] {
		return "entry point"
	}
	if strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") ||
		strings.HasPrefix(name, "Example") || strings.HasPrefix(name, "Fuzz") ||
		strings.HasPrefix(name, "test_") {
		return "test harness naming convention"
	}
	if kind == "method" && commonInterfaceMethods[name] {
		return "common interface implementation"
	}
	if isGeneratedFile(filePath) {
		return "generated file"
	}
	for _, pattern := range r.patterns {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return "exclusion pattern: " + pattern
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return "exclusion pattern: " + pattern
		}
	}
	return ""
}

// commonInterfaceMethods are invoked through an interface value, which a
// textual call graph cannot see; reporting them would be noise.
var commonInterfaceMethods = map[string]bool{
	"String": true, "Error": true,
	"Read": true, "Write": true, "Close": true, "Seek": true,
	"Len": true, "Less": true, "Swap": true,
	"MarshalJSON": true, "UnmarshalJSON": true,
	"MarshalText": true, "UnmarshalText": true,
	"Scan": true, "Value": true,
	"ServeHTTP": true, "Set": true,
}

func isGeneratedFile(path string) bool {
	lower := strings.ToLower(path)
	for _, pattern := range []string{
		"_generated.", "_gen.", ".pb.", "_string.go", "zz_generated",
		"mock_", "mocks/", "generated/", "bindata.go",
	} {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
