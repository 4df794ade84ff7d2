package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/contextpack"
)

var (
	contextBudget int
	contextJSON   bool
)

var contextCmd = &cobra.Command{
	Use:   "context <query>",
	Short: "Assemble token-budgeted context for a query",
	Long: `Runs hybrid retrieval and fills four tiers within the budget: full
source of the top candidates, signatures of their direct callers and
callees, tests and sibling declarations, and a compact directory
listing. Unused tier budget is donated down the line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runContext,
}

func init() {
	contextCmd.Flags().IntVar(&contextBudget, "budget", 4000, "Token budget")
	contextCmd.Flags().BoolVar(&contextJSON, "json", false, "Emit JSON")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
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

	builder := contextpack.NewBuilder(engine, root)
	result, err := builder.Build(context.Background(), strings.Join(args, " "), contextBudget)
	if err != nil {
		return err
	}

	if contextJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	for _, section := range result.Sections {
		fmt.Printf("--- %s", section.Tier)
		if section.NodeID != "" {
			fmt.Printf(" (%s)", section.NodeID)
		}
		fmt.Printf(" [%d tokens] ---\n%s\n", section.Tokens, section.Text)
	}
	fmt.Printf("\nTotal: %d tokens of %d budget", result.TotalTokens, contextBudget)
	if result.Redistributed {
		fmt.Printf(" (tier budgets redistributed)")
	}
	fmt.Println()
	return nil
}
