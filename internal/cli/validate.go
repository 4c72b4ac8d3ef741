package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/orchestrator"
)

var validateComponent string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run health probes against the embedder and/or vector store",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateComponent, "component", orchestrator.ComponentAll, "one of qdrant, embedder, all")
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	if err := orch.ValidateComponent(cmd.Context(), validateComponent); err != nil {
		fmt.Printf("%s: unhealthy: %v\n", validateComponent, err)
		os.Exit(1)
	}
	fmt.Printf("%s: healthy\n", validateComponent)
	return nil
}
