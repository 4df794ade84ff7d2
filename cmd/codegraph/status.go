package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/index"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Index health: sizes, unresolved refs, last run",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	if err := requireProject(root); err != nil {
		return err
	}
	cfg := loadConfig(root)
	db, engine, err := openEngine(root, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := engine.IndexStatus(context.Background())
	if err != nil {
		return err
	}
	runState, _ := index.LoadRunState(filepath.Join(root, config.StateDirName))

	if statusJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"index":   status,
			"lastRun": runState,
		})
	}

	fmt.Printf("Files indexed:    %d\n", status.Files)
	fmt.Printf("Symbols:          %d\n", status.Nodes)
	fmt.Printf("Edges:            %d\n", status.Edges)
	fmt.Printf("Unresolved refs:  %d\n", status.UnresolvedRefs)
	fmt.Printf("Parse errors:     %d\n", status.ParseErrors)
	fmt.Printf("Cached vectors:   %d (semantic %s)\n", status.CachedVectors, onOff(status.SemanticEnabled))
	if runState != nil {
		fmt.Printf("Last indexed:     %s ago (%s, run %s)\n",
			runState.Age().Round(time.Second), runState.Duration, runState.RunID)
	} else {
		fmt.Println("Last indexed:     never")
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
