package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	analysisJSON     bool
	deadCodeScope    []string
	deadCodeLimit    int
	deadCodeTestOnly bool
)

var impactCmd = &cobra.Command{
	Use:   "impact <symbol>",
	Short: "Blast radius of changing a symbol",
	Long: `Walks the transitive reverse closure over calls and imports and
reports direct and transitive dependent counts, affected files, and a
categorical risk level from the configured thresholds.`,
	Args: cobra.ExactArgs(1),
	RunE: runImpact,
}

var deadCodeCmd = &cobra.Command{
	Use:   "dead-code",
	Short: "Unreferenced private symbols",
	RunE:  runDeadCode,
}

func init() {
	impactCmd.Flags().BoolVar(&analysisJSON, "json", false, "Emit JSON")
	deadCodeCmd.Flags().BoolVar(&analysisJSON, "json", false, "Emit JSON")
	deadCodeCmd.Flags().StringSliceVar(&deadCodeScope, "scope", nil, "Limit analysis to these path prefixes")
	deadCodeCmd.Flags().IntVar(&deadCodeLimit, "limit", 100, "Maximum results")
	deadCodeCmd.Flags().BoolVar(&deadCodeTestOnly, "include-test-only", false, "Also report symbols referenced only from tests")
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(deadCodeCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
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

	report, err := engine.Impact(context.Background(), args[0])
	if err != nil {
		return err
	}
	if analysisJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("Impact of %s: risk %s\n", report.TargetName, report.Risk)
	fmt.Printf("  direct dependents:     %d\n", report.DirectCount)
	fmt.Printf("  transitive dependents: %d\n", report.TransitiveCount)
	fmt.Printf("  affected files:        %d\n", report.AffectedFiles)
	for _, item := range report.Affected {
		fmt.Printf("  [%d] %-40s %s:%d\n", item.Distance, item.QualifiedName, item.FilePath, item.Line)
	}
	return nil
}

func runDeadCode(cmd *cobra.Command, args []string) error {
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

	report, err := engine.DeadCode(context.Background(), deadCodeScope, deadCodeLimit, deadCodeTestOnly)
	if err != nil {
		return err
	}
	if analysisJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	if len(report.Items) == 0 {
		fmt.Printf("No dead code found (%d symbols analyzed, %d excluded).\n",
			report.Summary.Analyzed, report.Summary.Excluded)
		return nil
	}
	for _, item := range report.Items {
		fmt.Printf("%-40s %-10s %.2f  %s:%d  (%s)\n",
			item.QualifiedName, item.Kind, item.Confidence, item.FilePath, item.Line, item.Reason)
	}
	fmt.Printf("%d dead symbols out of %d analyzed.\n", report.Summary.Found, report.Summary.Analyzed)
	return nil
}
