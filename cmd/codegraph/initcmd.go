package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/storage"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize this directory as a codegraph project",
	Long: `Creates the .codegraph state directory, opens (and migrates) the
store, and writes a default config.json you can edit. Run 'codegraph
index' afterwards to build the graph.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}

	stateDir := filepath.Join(root, config.StateDirName)
	fresh := false
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		fresh = true
	}

	cfg := loadConfig(root)
	logger := newLogger(cfg)

	db, err := storage.Open(root, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if fresh {
		if err := cfg.Save(root); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		fmt.Printf("Initialized codegraph project in %s\n", stateDir)
	} else {
		fmt.Printf("Project already initialized in %s (schema checked)\n", stateDir)
	}
	fmt.Println("Next: codegraph index")
	return nil
}
