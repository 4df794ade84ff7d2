package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/logging"
	"github.com/suatkocar/codegraph/internal/version"
)

var (
	flagRepoRoot  string
	flagLogFormat string
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "codegraph",
	Short: "Local code-intelligence engine over a persistent symbol graph",
	Long: `codegraph indexes a source tree into a persistent semantic graph of
symbols and references, then answers keyword, semantic, call-graph,
impact, and context-assembly queries fast enough to sit on an editor's
critical path.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("codegraph version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&flagRepoRoot, "repo", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: human or json")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// repoRoot resolves the project root: the --repo flag, else the working
// directory.
func repoRoot() (string, error) {
	if flagRepoRoot != "" {
		abs, err := filepath.Abs(flagRepoRoot)
		if err != nil {
			return "", fmt.Errorf("resolve --repo: %w", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return wd, nil
}

// loadConfig layers configuration, with the logging flags (the explicit
// flag layer) applied last.
func loadConfig(root string) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load failed (%v), using defaults\n", err)
		cfg = config.DefaultConfig()
		cfg.RepoRoot = root
	}
	if flagLogFormat != "" {
		cfg.Logging.Format = flagLogFormat
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	return cfg
}

// newLogger builds the CLI logger from resolved configuration.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	level := logging.InfoLevel
	switch cfg.Logging.Level {
	case "debug":
		level = logging.DebugLevel
	case "warn":
		level = logging.WarnLevel
	case "error":
		level = logging.ErrorLevel
	}
	return logging.NewLogger(logging.Config{Format: format, Level: level, Output: os.Stderr})
}

// requireProject fails unless init has been run for root.
func requireProject(root string) error {
	stateDir := filepath.Join(root, config.StateDirName)
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		return fmt.Errorf("not a codegraph project; run 'codegraph init' first")
	}
	return nil
}
