package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/indexer"
	"github.com/sourcelens/semindex/internal/mcp"
	"github.com/sourcelens/semindex/internal/orchestrator"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for semantic code search",
	Long: `mcp starts the Model Context Protocol server that exposes
codebase_search, indexing_status, reindex, configure_indexer,
clear_index, and validate_config over stdio.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	fmt.Fprintf(os.Stderr, "semindex MCP server\n")
	fmt.Fprintf(os.Stderr, "Codebase: %s\n", cfg.Codebase.Path)

	if err := orch.Initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		fmt.Fprintf(os.Stderr, "  tools requiring the embedder or vector store may fail until resolved\n")
	}
	if cfg.Indexing.AutoIndex {
		go func() {
			if err := orch.IndexAll(ctx, indexer.IndexAllOptions{}); err != nil {
				fmt.Fprintf(os.Stderr, "warning: initial index failed: %v\n", err)
			}
		}()
	}

	server := mcp.NewServer(orch, nil)
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
