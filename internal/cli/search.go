package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/orchestrator"
	"github.com/sourcelens/semindex/internal/search"
)

var (
	searchLimit     int
	searchThreshold float64
	searchFileTypes []string
	searchLanguages []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a semantic search against the indexed codebase",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 10, "maximum number of results")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0.7, "minimum similarity score")
	searchCmd.Flags().StringSliceVar(&searchFileTypes, "file-types", nil, "filter by file extension")
	searchCmd.Flags().StringSliceVar(&searchLanguages, "languages", nil, "filter by language tag")
}

func runSearch(cmd *cobra.Command, args []string) error {
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
	if err := orch.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize orchestrator: %w", err)
	}
	defer orch.Stop()

	ranked, err := orch.Search(cmd.Context(), search.Query{
		Text:           args[0],
		Limit:          searchLimit,
		ScoreThreshold: searchThreshold,
		FileTypes:      searchFileTypes,
		Languages:      searchLanguages,
		IncludeContext: true,
		ContextLines:   3,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(ranked) == 0 {
		fmt.Println("no results")
		return nil
	}

	fmt.Printf("%d result(s) for %q\n\n", len(ranked), args[0])
	for _, r := range ranked {
		fmt.Printf("%s:%d  score=%.3f  %s %s\n", r.File, r.Line, r.FinalScore, r.Type, r.Name)
		if r.Context != "" {
			fmt.Println(indent(r.Context, "  "))
		} else if r.Code != "" {
			fmt.Println(indent(r.Code, "  "))
		}
		fmt.Println()
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
