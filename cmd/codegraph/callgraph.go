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
	cgDepth int
	cgJSON  bool
	cgLimit int
)

var callersCmd = &cobra.Command{
	Use:   "callers <symbol>",
	Short: "Who calls this symbol (reverse call graph)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(args[0], func(ctx context.Context, e *query.Engine) ([]query.GraphNode, error) {
			return e.Callers(ctx, args[0], cgDepth)
		})
	},
}

var calleesCmd = &cobra.Command{
	Use:   "callees <symbol>",
	Short: "What this symbol calls (forward call graph)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(args[0], func(ctx context.Context, e *query.Engine) ([]query.GraphNode, error) {
			return e.Callees(ctx, args[0], cgDepth)
		})
	},
}

var dependenciesCmd = &cobra.Command{
	Use:   "dependencies <symbol>",
	Short: "Everything a symbol depends on, over calls and imports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(args[0], func(ctx context.Context, e *query.Engine) ([]query.GraphNode, error) {
			return e.Dependencies(ctx, args[0], cgDepth)
		})
	},
}

var findPathCmd = &cobra.Command{
	Use:   "find-path <from> <to>",
	Short: "Shortest edge sequence between two symbols",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(args[0], func(ctx context.Context, e *query.Engine) ([]query.GraphNode, error) {
			return e.FindPath(ctx, args[0], args[1])
		})
	},
}

var circularImportsCmd = &cobra.Command{
	Use:   "circular-imports",
	Short: "Files that import each other (strongly connected components)",
	RunE:  runCircularImports,
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Most central symbols by PageRank",
	RunE:  runRank,
}

func init() {
	for _, c := range []*cobra.Command{callersCmd, calleesCmd, dependenciesCmd, findPathCmd} {
		c.Flags().IntVar(&cgDepth, "depth", 3, "Maximum traversal depth")
		c.Flags().BoolVar(&cgJSON, "json", false, "Emit JSON")
		rootCmd.AddCommand(c)
	}
	circularImportsCmd.Flags().BoolVar(&cgJSON, "json", false, "Emit JSON")
	rankCmd.Flags().IntVar(&cgLimit, "limit", 20, "Maximum results")
	rankCmd.Flags().BoolVar(&cgJSON, "json", false, "Emit JSON")
	rootCmd.AddCommand(circularImportsCmd)
	rootCmd.AddCommand(rankCmd)
}

func runWalk(symbol string, op func(context.Context, *query.Engine) ([]query.GraphNode, error)) error {
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

	nodes, err := op(context.Background(), engine)
	if err != nil {
		return err
	}

	if cgJSON {
		return json.NewEncoder(os.Stdout).Encode(nodes)
	}
	if len(nodes) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, n := range nodes {
		fmt.Printf("%s%-40s %s:%d\n", strings.Repeat("  ", n.Depth), n.QualifiedName, n.FilePath, n.Line)
	}
	return nil
}

func runCircularImports(cmd *cobra.Command, args []string) error {
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

	cycles, err := engine.CircularImports(context.Background())
	if err != nil {
		return err
	}
	if cgJSON {
		return json.NewEncoder(os.Stdout).Encode(cycles)
	}
	if len(cycles) == 0 {
		fmt.Println("No import cycles.")
		return nil
	}
	for i, c := range cycles {
		fmt.Printf("Cycle %d: %s\n", i+1, strings.Join(c.Files, " -> "))
	}
	return nil
}

func runRank(cmd *cobra.Command, args []string) error {
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

	ranked, err := engine.PageRank(context.Background(), cgLimit)
	if err != nil {
		return err
	}
	if cgJSON {
		return json.NewEncoder(os.Stdout).Encode(ranked)
	}
	for i, r := range ranked {
		fmt.Printf("%2d. %-40s %.6f  %s\n", i+1, r.QualifiedName, r.Score, r.FilePath)
	}
	return nil
}
