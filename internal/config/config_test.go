package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Preset != "balanced" {
		t.Errorf("Preset = %q, want balanced", cfg.Preset)
	}
	if cfg.Impact.HighThreshold != 20 || cfg.Impact.MediumThreshold != 5 {
		t.Errorf("impact thresholds = %+v", cfg.Impact)
	}
	if cfg.PageRank.Damping != 0.85 || cfg.PageRank.MaxIterations != 100 {
		t.Errorf("pagerank constants = %+v", cfg.PageRank)
	}
	if cfg.Search.SemanticTopK != 50 {
		t.Errorf("semanticTopK = %d, want 50", cfg.Search.SemanticTopK)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadConfig_ProjectFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	project := []byte(`{
		"preset": "full",
		"impact": {"highThreshold": 50, "mediumThreshold": 10},
		"contexts": {"internal/auth": "authentication and sessions"}
	}`)
	if err := os.WriteFile(filepath.Join(stateDir, "config.json"), project, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Preset != "full" {
		t.Errorf("Preset = %q, want full", cfg.Preset)
	}
	if cfg.Impact.HighThreshold != 50 || cfg.Impact.MediumThreshold != 10 {
		t.Errorf("impact thresholds not overridden: %+v", cfg.Impact)
	}
	if cfg.Contexts["internal/auth"] != "authentication and sessions" {
		t.Errorf("contexts not loaded: %+v", cfg.Contexts)
	}
	// Keys the file omits keep defaults.
	if cfg.Search.SemanticTopK != 50 {
		t.Errorf("unset key lost its default: %+v", cfg.Search)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, "config.json"), []byte(`{"preset": "minimal"}`), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CODEGRAPH_PRESET", "security-focused")
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Preset != "security-focused" {
		t.Errorf("env should outrank project file: got %q", cfg.Preset)
	}
}

func TestLoadConfig_TOMLProjectFile(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	project := []byte("preset = \"minimal\"\n\n[performance]\nmaxToolCount = 12\n")
	if err := os.WriteFile(filepath.Join(stateDir, "config.toml"), project, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Preset != "minimal" || cfg.Performance.MaxToolCount != 12 {
		t.Errorf("toml project file not applied: %+v", cfg)
	}
}

func TestToolEnabled(t *testing.T) {
	on, off := true, false
	cfg := DefaultConfig()
	cfg.Tools.Categories["Git"] = ToolToggle{Enabled: &off}
	cfg.Tools.Overrides["git_blame"] = ToolToggle{Enabled: &on}

	if cfg.ToolEnabled("search", "Search") != true {
		t.Error("untouched tool should default to enabled")
	}
	if cfg.ToolEnabled("git_log", "Git") != false {
		t.Error("category disable should apply")
	}
	if cfg.ToolEnabled("git_blame", "Git") != true {
		t.Error("per-tool override should beat category disable")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preset = "bogus"
	if cfg.Validate() == nil {
		t.Error("unknown preset should fail validation")
	}

	cfg = DefaultConfig()
	cfg.Impact.MediumThreshold = 100
	if cfg.Validate() == nil {
		t.Error("inverted impact thresholds should fail validation")
	}

	cfg = DefaultConfig()
	cfg.PageRank.Damping = 1.5
	if cfg.Validate() == nil {
		t.Error("out-of-range damping should fail validation")
	}
}
