// Package cli implements the semindex command-line surface: index,
// search, status, mcp, and validate. Grounded on the teacher's
// internal/cli/root.go cobra bootstrap.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "semindex",
	Short: "Semantic code search indexer",
	Long: `semindex indexes a codebase into a local vector store and serves
semantic search either over stdio (as an MCP tool) or directly from the
command line.`,
}

// Execute adds every subcommand and runs the root command. Called once
// from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
