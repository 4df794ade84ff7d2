// Package config loads the engine's layered configuration: explicit
// flags outrank environment variables, which outrank the per-project
// file, which outranks the per-user file, which outranks defaults.
// Configuration is a value constructed once at startup and passed
// explicitly; nothing here is mutable global state.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config is the complete engine configuration.
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	// Preset selects which tool categories the server exposes:
	// minimal, balanced, full, or security-focused.
	Preset string `json:"preset" mapstructure:"preset"`

	Tools       ToolsConfig       `json:"tools" mapstructure:"tools"`
	Performance PerformanceConfig `json:"performance" mapstructure:"performance"`
	Indexing    IndexingConfig    `json:"indexing" mapstructure:"indexing"`
	Resolver    ResolverConfig    `json:"resolver" mapstructure:"resolver"`
	Search      SearchConfig      `json:"search" mapstructure:"search"`
	Impact      ImpactConfig      `json:"impact" mapstructure:"impact"`
	PageRank    PageRankConfig    `json:"pagerank" mapstructure:"pagerank"`
	Logging     LoggingConfig     `json:"logging" mapstructure:"logging"`
	Auth        AuthConfig        `json:"auth" mapstructure:"auth"`

	// Contexts are directory annotations joined into search results at
	// query time: path prefix to free-text description.
	Contexts map[string]string `json:"contexts" mapstructure:"contexts"`
}

// ToolsConfig is the per-category / per-tool enable surface.
type ToolsConfig struct {
	Categories map[string]ToolToggle `json:"categories" mapstructure:"categories"`
	Overrides  map[string]ToolToggle `json:"overrides" mapstructure:"overrides"`
}

// ToolToggle is one on/off switch. A pointer distinguishes "unset" from
// "explicitly false" after the layered merge.
type ToolToggle struct {
	Enabled *bool `json:"enabled" mapstructure:"enabled"`
}

// PerformanceConfig holds the tool-surface and worker sizing knobs.
type PerformanceConfig struct {
	// MaxToolCount is a hard cap on exposed tools; lowest-priority tools
	// drop first when exceeded.
	MaxToolCount int `json:"maxToolCount" mapstructure:"maxToolCount"`
	// ExcludeTests skips test-tagged paths during indexing.
	ExcludeTests bool `json:"excludeTests" mapstructure:"excludeTests"`
	// MaxWorkers bounds parser-pool parallelism; 0 means CPU count.
	MaxWorkers int `json:"maxWorkers" mapstructure:"maxWorkers"`
}

// IndexingConfig shapes the walker.
type IndexingConfig struct {
	// Ignore adds gitignore-style patterns on top of .gitignore itself.
	Ignore []string `json:"ignore" mapstructure:"ignore"`
	// MaxFileSizeBytes skips files larger than this (binary blobs,
	// generated bundles). 0 means the walker default.
	MaxFileSizeBytes int64 `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// ResolverConfig carries the path-alias rewrite table and the framework
// route conventions the resolver consults.
type ResolverConfig struct {
	PathAliases     map[string]string `json:"pathAliases" mapstructure:"pathAliases"`
	RouteFrameworks []string          `json:"routeFrameworks" mapstructure:"routeFrameworks"`
}

// SearchConfig tunes retrieval.
type SearchConfig struct {
	// SemanticTopK caps the semantic kNN list (default 50).
	SemanticTopK int `json:"semanticTopK" mapstructure:"semanticTopK"`
	// DefaultLimit is the result cap when a caller passes none.
	DefaultLimit int `json:"defaultLimit" mapstructure:"defaultLimit"`
}

// ImpactConfig holds the risk cut-offs: transitive closures at or above
// HighThreshold are high risk, at or above MediumThreshold medium.
type ImpactConfig struct {
	HighThreshold   int `json:"highThreshold" mapstructure:"highThreshold"`
	MediumThreshold int `json:"mediumThreshold" mapstructure:"mediumThreshold"`
}

// PageRankConfig exposes the power-method constants.
type PageRankConfig struct {
	Damping       float64 `json:"damping" mapstructure:"damping"`
	MaxIterations int     `json:"maxIterations" mapstructure:"maxIterations"`
}

// LoggingConfig selects the CLI logger's format and level.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// AuthConfig is the optional bearer-token gate on the tool-call server.
// TokenHash is a bcrypt hash; the plaintext never touches disk.
type AuthConfig struct {
	TokenHash string `json:"tokenHash" mapstructure:"tokenHash"`
}

// DefaultConfig returns the defaults every layer overrides.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Preset:   "balanced",
		Tools: ToolsConfig{
			Categories: map[string]ToolToggle{},
			Overrides:  map[string]ToolToggle{},
		},
		Performance: PerformanceConfig{
			MaxToolCount: 40,
		},
		Indexing: IndexingConfig{
			Ignore: []string{"node_modules", "vendor", "dist", "build", "__pycache__"},
		},
		Resolver: ResolverConfig{
			PathAliases: map[string]string{
				"@/": "./src/",
				"~/": "./",
			},
		},
		Search: SearchConfig{
			SemanticTopK: 50,
			DefaultLimit: 20,
		},
		Impact: ImpactConfig{
			HighThreshold:   20,
			MediumThreshold: 5,
		},
		PageRank: PageRankConfig{
			Damping:       0.85,
			MaxIterations: 100,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
		Contexts: map[string]string{},
	}
}

// LoadConfig merges configuration from layered sources in priority
// order: explicit flags (applied by the CLI layer onto the returned
// Config after this call) > environment variables (CODEGRAPH_ prefix) > per-project
// config file (.codegraph/config.{json,toml,yaml}) > per-user config file
// ($XDG_CONFIG_HOME/codegraph/config.toml) > defaults.
func LoadConfig(repoRoot string) (*Config, error) {
	cfg := DefaultConfig()

	// Per-user config file layer: lowest-priority non-default override,
	// decoded directly with BurntSushi/toml rather than through viper.
	if userCfg, ok := loadUserConfig(); ok {
		cfg = userCfg
	}

	v := viper.New()
	v.SetEnvPrefix("CODEGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Per-project config file layer: viper auto-detects config.json,
	// config.toml, or config.yaml under .codegraph/ (pelletier/go-toml and
	// gopkg.in/yaml.v3 are the decoders viper delegates to for the latter
	// two formats).
	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(repoRoot, StateDirName))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No project file: still apply env overrides onto the user/default
		// config below.
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Environment variable layer: re-unmarshal so AutomaticEnv values
	// (which outrank file values at Get-time) are reflected even when no
	// project config file exists, or when only some keys are overridden.
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if cfg.RepoRoot == "" || cfg.RepoRoot == "." {
		cfg.RepoRoot = repoRoot
	}
	return cfg, nil
}

// StateDirName mirrors the store's on-disk directory so config loading
// doesn't import storage.
const StateDirName = ".codegraph"

// loadUserConfig reads a per-user defaults file at
// $XDG_CONFIG_HOME/codegraph/config.toml (falling back to
// ~/.config/codegraph/config.toml), decoding onto a copy of DefaultConfig
// so keys the user omits keep their default values.
func loadUserConfig() (*Config, bool) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, false
		}
		dir = filepath.Join(home, ".config")
	}
	path := filepath.Join(dir, "codegraph", "config.toml")

	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, false
	}
	return cfg, true
}

// Save writes the configuration to .codegraph/config.json.
func (c *Config) Save(repoRoot string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(repoRoot, StateDirName, "config.json"), data, 0644)
}

// ToolEnabled resolves the layered enable state for one tool in one
// category: a per-tool override wins, then its category's toggle, then
// true.
func (c *Config) ToolEnabled(tool, category string) bool {
	if t, ok := c.Tools.Overrides[tool]; ok && t.Enabled != nil {
		return *t.Enabled
	}
	if t, ok := c.Tools.Categories[category]; ok && t.Enabled != nil {
		return *t.Enabled
	}
	return true
}

// Validate rejects configurations the engine cannot honour.
func (c *Config) Validate() error {
	switch c.Preset {
	case "", "minimal", "balanced", "full", "security-focused":
	default:
		return &ConfigError{Field: "preset", Message: "unknown preset " + c.Preset}
	}
	if c.Impact.MediumThreshold > c.Impact.HighThreshold {
		return &ConfigError{Field: "impact", Message: "mediumThreshold exceeds highThreshold"}
	}
	if c.PageRank.Damping < 0 || c.PageRank.Damping >= 1 {
		return &ConfigError{Field: "pagerank.damping", Message: "must be in [0, 1)"}
	}
	return nil
}

// ConfigError is a field-scoped validation failure.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
