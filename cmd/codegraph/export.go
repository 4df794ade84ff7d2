package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/export"
	"github.com/suatkocar/codegraph/internal/storage"
	"github.com/suatkocar/codegraph/internal/version"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Serialize the symbol graph as a SCIP index",
	Long: `Writes the graph in the SCIP protobuf format for editors and tools
that consume SCIP indexes. Export-only: codegraph never reads SCIP back
in.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (default .codegraph/index.scip)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	if err := requireProject(root); err != nil {
		return err
	}
	cfg := loadConfig(root)
	logger := newLogger(cfg)

	db, err := storage.Open(root, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	exporter := export.NewExporter(storage.NewGraphRepository(db), logger, version.Version)
	idx, err := exporter.Build(context.Background(), root)
	if err != nil {
		return err
	}

	out := exportOutput
	if out == "" {
		out = filepath.Join(root, config.StateDirName, "index.scip")
	}
	if err := exporter.WriteFile(idx, out); err != nil {
		return err
	}
	fmt.Printf("Wrote %d documents to %s\n", len(idx.Documents), out)
	return nil
}
