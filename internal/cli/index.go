package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/indexer"
	"github.com/sourcelens/semindex/internal/orchestrator"
)

var (
	quietFlag bool
	forceFlag bool
	watchFlag bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the codebase for semantic search",
	Long: `index discovers, parses, and embeds the codebase rooted at
codebase.path, storing the resulting vectors in the configured
collection.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "reprocess every file regardless of content hash")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "watch for file changes and reindex incrementally after the initial pass")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\ninterrupted, cancelling indexing...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	orch, err := orchestrator.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}

	if !quietFlag {
		fmt.Println("Validating embedder and vector store...")
	}
	if err := orch.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize orchestrator: %w", err)
	}

	reporter := newProgressReporter(quietFlag)
	reporter.attach(orch.StatusManager())

	if err := orch.IndexAll(ctx, indexer.IndexAllOptions{Force: forceFlag}); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	state := orch.GetState()
	if !quietFlag {
		fmt.Printf("\nIndexing complete:\n")
		fmt.Printf("  Files:  %s\n", formatNumber(state.Stats.TotalFiles))
		fmt.Printf("  Blocks: %s\n", formatNumber(state.Stats.TotalBlocks))
		fmt.Printf("  Time:   %s\n", formatDuration(time.Duration(state.Stats.IndexingTimeMS)*time.Millisecond))
	} else {
		fmt.Printf("indexed %d files, %d blocks\n", state.Stats.TotalFiles, state.Stats.TotalBlocks)
	}

	if !watchFlag {
		return orch.Stop()
	}

	if !quietFlag {
		fmt.Println("Watching for changes (Ctrl+C to stop)...")
	}
	<-ctx.Done()
	return orch.Stop()
}
