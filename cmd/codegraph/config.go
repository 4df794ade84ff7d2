package main

import (
	"encoding/json"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v3"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration after all layers merge",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := repoRoot()
		if err != nil {
			return err
		}
		cfg := loadConfig(root)
		if err := cfg.Validate(); err != nil {
			return err
		}

		switch configFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		case "toml":
			return toml.NewEncoder(os.Stdout).Encode(cfg)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			defer enc.Close()
			return enc.Encode(cfg)
		default:
			return fmt.Errorf("unknown format %q (json, toml, yaml)", configFormat)
		}
	},
}

func init() {
	configCmd.Flags().StringVar(&configFormat, "format", "json", "Output format: json, toml, or yaml")
	rootCmd.AddCommand(configCmd)
}
