package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/suatkocar/codegraph/internal/config"
	"github.com/suatkocar/codegraph/internal/index"
	"github.com/suatkocar/codegraph/internal/pipeline"
	"github.com/suatkocar/codegraph/internal/resolver"
	"github.com/suatkocar/codegraph/internal/storage"
	"github.com/suatkocar/codegraph/internal/version"
	"github.com/suatkocar/codegraph/internal/walker"
)

var (
	indexForce         bool
	indexDryRun        bool
	indexWatch         bool
	indexWatchInterval time.Duration
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the symbol graph for this project",
	Long: `Walks the project tree, hash-gates unchanged files, extracts symbols
and edges with the tree-sitter parser pool, and resolves references into
the local store.

Re-running index is incremental: a file whose content hash matches the
stored hash is skipped entirely. Use --force to re-extract everything.

Examples:
  codegraph index              # incremental index of the current project
  codegraph index --dry-run    # report what would be walked, write nothing
  codegraph index --force      # re-extract every file regardless of hash
  codegraph index --watch      # re-index on a polling interval`,
	RunE: runIndexCmd,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Re-extract every file, ignoring the content-hash gate")
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "Walk without writing to the store")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "Re-index on a polling interval after the initial pass")
	indexCmd.Flags().DurationVar(&indexWatchInterval, "watch-interval", 30*time.Second, "Watch mode polling interval")
	rootCmd.AddCommand(indexCmd)
}

func runIndexCmd(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	if err := requireProject(root); err != nil {
		return err
	}
	cfg := loadConfig(root)
	logger := newLogger(cfg)

	walkOpts := walker.Options{
		ExcludeTests:        cfg.Performance.ExcludeTests,
		ExtraIgnorePatterns: cfg.Indexing.Ignore,
	}

	if indexDryRun {
		files, err := walker.Walk(root, walkOpts)
		if err != nil {
			return err
		}
		tests := 0
		for _, f := range files {
			if f.IsTest {
				tests++
			}
		}
		fmt.Printf("Would consider %d files (%d test-tagged)\n", len(files), tests)
		return nil
	}

	stateDir := filepath.Join(root, config.StateDirName)
	lock, err := index.AcquireLock(stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	db, err := storage.Open(root, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	repo := storage.NewGraphRepository(db)

	if indexForce {
		// Clearing stored hashes voids the gate; every file re-extracts.
		if _, err := db.Exec(`UPDATE file_hashes SET content_hash = ''`); err != nil {
			return fmt.Errorf("reset hash gate: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		RepoRoot: root,
		Walker:   walkOpts,
		Resolver: resolver.Config{
			PathAliases:     cfg.Resolver.PathAliases,
			RouteFrameworks: cfg.Resolver.RouteFrameworks,
		},
		MaxWorkers: cfg.Performance.MaxWorkers,
	}

	runOnce := func() error {
		start := time.Now()
		stats, err := pipeline.Run(ctx, repo, opts, logger)
		if err != nil {
			return err
		}
		took := time.Since(start)

		rs := index.NewRunState(version.Version, stats.FilesWalked, stats.FilesIndexed, took)
		if err := rs.Save(stateDir); err != nil {
			logger.Warn("run state not saved", map[string]interface{}{"error": err.Error()})
		}

		fmt.Printf("Indexed %d/%d files (%d unchanged, %d unsupported) in %s\n",
			stats.FilesIndexed, stats.FilesWalked, stats.FilesUnchanged, stats.FilesUnsupported,
			took.Round(time.Millisecond))
		if stats.ParseErrors > 0 {
			fmt.Printf("  %d files had parse errors (recorded, non-fatal)\n", stats.ParseErrors)
		}
		fmt.Printf("  %d edges resolved, %d unresolved\n", stats.EdgesResolved, stats.EdgesUnresolved)
		return nil
	}

	if err := runOnce(); err != nil {
		return err
	}

	if !indexWatch {
		return nil
	}

	interval := indexWatchInterval
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}
	fmt.Printf("Watching for changes every %s (Ctrl-C to stop)\n", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := runOnce(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("watch pass failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
