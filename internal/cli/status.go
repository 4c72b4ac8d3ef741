package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/orchestrator"
)

var (
	statusJSON     bool
	statusDetailed bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the indexer's current state, progress, and statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().BoolVar(&statusDetailed, "detailed", false, "include the full error history")
}

func runStatus(cmd *cobra.Command, args []string) error {
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
	state := orch.GetState()

	errEntries := state.Errors
	if !statusDetailed && len(errEntries) > 10 {
		errEntries = errEntries[len(errEntries)-10:]
	}

	if statusJSON {
		jsonBytes, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Printf("Status:   %s\n", state.Progress.Status)
	fmt.Printf("Watching: %t\n", state.IsWatching)
	fmt.Printf("Branch:   %s\n", state.CurrentBranch)
	fmt.Printf("Queue:    %d\n", state.QueueSize)
	fmt.Println()
	fmt.Printf("Files:    %s\n", formatNumber(state.Stats.TotalFiles))
	fmt.Printf("Blocks:   %s\n", formatNumber(state.Stats.TotalBlocks))
	fmt.Printf("Vectors:  %s\n", formatNumber(state.Stats.TotalVectors))

	if len(state.Stats.Languages) > 0 {
		fmt.Println("\nLanguages:")
		for lang, count := range state.Stats.Languages {
			fmt.Printf("  %-16s %s\n", lang, formatNumber(count))
		}
	}
	if len(errEntries) > 0 {
		fmt.Println("\nRecent errors:")
		for _, e := range errEntries {
			fmt.Printf("  %s: %s\n", e.File, e.Err)
		}
	}
	return nil
}
