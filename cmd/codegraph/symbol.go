package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var symbolJSON bool

var symbolCmd = &cobra.Command{
	Use:   "symbol <ref>",
	Short: "Show one symbol by id, qualified name, or unique short name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbol,
}

var fileSymbolsCmd = &cobra.Command{
	Use:   "file-symbols <path>",
	Short: "List every symbol declared in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFileSymbols,
}

func init() {
	symbolCmd.Flags().BoolVar(&symbolJSON, "json", false, "Emit JSON")
	fileSymbolsCmd.Flags().BoolVar(&symbolJSON, "json", false, "Emit JSON")
	rootCmd.AddCommand(symbolCmd)
	rootCmd.AddCommand(fileSymbolsCmd)
}

func runSymbol(cmd *cobra.Command, args []string) error {
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

	node, err := engine.LookupSymbol(context.Background(), args[0])
	if err != nil {
		return err
	}

	if symbolJSON {
		return json.NewEncoder(os.Stdout).Encode(node)
	}
	fmt.Printf("%s (%s)\n", node.QualifiedName, node.Kind)
	fmt.Printf("  %s:%d-%d\n", node.FilePath, node.StartLine, node.EndLine)
	if node.Signature != "" {
		fmt.Printf("  %s\n", node.Signature)
	}
	if node.Documentation != "" {
		fmt.Printf("  %s\n", node.Documentation)
	}
	return nil
}

func runFileSymbols(cmd *cobra.Command, args []string) error {
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

	nodes, err := engine.FileSymbols(context.Background(), args[0])
	if err != nil {
		return err
	}

	if symbolJSON {
		return json.NewEncoder(os.Stdout).Encode(nodes)
	}
	if len(nodes) == 0 {
		fmt.Println("No symbols (file not indexed, or declares nothing).")
		return nil
	}
	for _, n := range nodes {
		fmt.Printf("%5d  %-10s %s\n", n.StartLine, n.Kind, n.QualifiedName)
	}
	return nil
}
