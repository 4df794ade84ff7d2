package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/query"
)

var (
	searchHybrid bool
	searchLimit  int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search symbols by keyword, or hybrid keyword+semantic",
	Long: `Fast mode (default) runs the keyword ladder only. --hybrid adds
query expansion, semantic similarity when embeddings exist, and
reciprocal-rank fusion of the two lists.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchHybrid, "hybrid", false, "Hybrid keyword+semantic retrieval")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Emit JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	queryText := strings.Join(args, " ")
	ctx := context.Background()

	var results []query.SearchResult
	if searchHybrid {
		results, err = engine.SearchHybrid(ctx, queryText, searchLimit)
	} else {
		results, err = engine.Search(ctx, queryText, searchLimit)
	}
	if err != nil {
		return err
	}

	if searchJSON {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		line := fmt.Sprintf("%2d. %-40s %-10s %s", i+1, r.QualifiedName, r.Kind, r.FilePath)
		if r.Context != "" {
			line += "  [" + r.Context + "]"
		}
		fmt.Println(line)
	}
	return nil
}
