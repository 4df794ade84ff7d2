package mcp

import (
	"sort"

	"github.com/suatkocar/codegraph/internal/config"
)

// Preset names. A preset is a filter over the registry's categories,
// not a separate tool list.
const (
	PresetMinimal         = "minimal"
	PresetBalanced        = "balanced"
	PresetFull            = "full"
	PresetSecurityFocused = "security-focused"
)

// presetCategories maps each preset to the categories it exposes.
var presetCategories = map[string]map[Category]bool{
	PresetMinimal: {
		CategorySearch:     true,
		CategoryRepository: true,
	},
	PresetBalanced: {
		CategorySearch:     true,
		CategoryRepository: true,
		CategoryCallGraph:  true,
		CategoryAnalysis:   true,
		CategoryContext:    true,
	},
	PresetFull: {
		CategorySearch:     true,
		CategoryRepository: true,
		CategoryCallGraph:  true,
		CategoryAnalysis:   true,
		CategoryContext:    true,
		CategorySecurity:   true,
		CategoryGit:        true,
	},
	PresetSecurityFocused: {
		CategorySearch:     true,
		CategoryRepository: true,
		CategoryAnalysis:   true,
		CategorySecurity:   true,
	},
}

// FilterTools applies the configuration to the full registry: preset
// category filter, per-category toggles, per-tool overrides, then the
// max_tool_count priority drop. Output order is priority descending then
// name, so the exposed list is deterministic.
func FilterTools(tools []Tool, cfg *config.Config) []Tool {
	preset := cfg.Preset
	if preset == "" {
		preset = PresetBalanced
	}
	allowed, ok := presetCategories[preset]
	if !ok {
		allowed = presetCategories[PresetBalanced]
	}

	var out []Tool
	for _, t := range tools {
		if !allowed[t.Category] {
			// A per-tool override can still force-enable a tool whose
			// category the preset hides.
			if o, found := cfg.Tools.Overrides[t.Name]; !found || o.Enabled == nil || !*o.Enabled {
				continue
			}
		}
		if !cfg.ToolEnabled(t.Name, string(t.Category)) {
			continue
		}
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Name < out[j].Name
	})

	if max := cfg.Performance.MaxToolCount; max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Definitions renders the wire shape for tools/list.
func Definitions(tools []Tool) []Definition {
	defs := make([]Definition, len(tools))
	for i, t := range tools {
		defs[i] = Definition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}
	}
	return defs
}
