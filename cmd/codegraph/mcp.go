package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/contextpack"
	"github.com/suatkocar/codegraph/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tool-call surface over stdio",
	Long: `Runs the MCP server on stdin/stdout. The exposed tool set is the
configured preset filtered by the tools.* and performance.max_tool_count
options.`,
	RunE: runMCP,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the current configuration exposes",
	RunE:  runTools,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a bearer token for the tool-call server",
	Long: `Prints a fresh token once and stores only its bcrypt hash in the
project config. Clients pass the token as authToken in initialize.`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(tokenCmd)
}

func newMCPServer(stdin io.Reader, stdout io.Writer) (*mcp.Server, func(), error) {
	root, err := repoRoot()
	if err != nil {
		return nil, nil, err
	}
	if err := requireProject(root); err != nil {
		return nil, nil, err
	}
	cfg := loadConfig(root)

	db, engine, err := openEngine(root, cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, err
	}

	builder := contextpack.NewBuilder(engine, root)
	// Protocol traffic owns stdout; diagnostics go to stderr as structured
	// logs.
	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	server := mcp.NewServer(engine, builder, cfg, slogger, stdin, stdout)
	return server, func() { db.Close() }, nil
}

func runMCP(cmd *cobra.Command, args []string) error {
	server, cleanup, err := newMCPServer(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runTools(cmd *cobra.Command, args []string) error {
	server, cleanup, err := newMCPServer(os.Stdin, io.Discard)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, t := range server.Tools() {
		fmt.Printf("%-18s %-12s p%-3d %s\n", t.Name, t.Category, t.Priority, t.Description)
	}
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	if err := requireProject(root); err != nil {
		return err
	}
	cfg := loadConfig(root)

	token, hash, err := mcp.GenerateToken()
	if err != nil {
		return err
	}
	cfg.Auth.TokenHash = hash
	if err := cfg.Save(root); err != nil {
		return fmt.Errorf("store token hash: %w", err)
	}

	fmt.Println("Token (shown once, store it safely):")
	fmt.Println(token)
	return nil
}
