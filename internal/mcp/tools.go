package mcp

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sourcelens/semindex/internal/indexer"
	"github.com/sourcelens/semindex/internal/orchestrator"
	"github.com/sourcelens/semindex/internal/search"
	"github.com/sourcelens/semindex/internal/watcher"
)

// AddCodebaseSearchTool registers codebase_search (spec.md §6.1): ranked
// semantic search over the indexed codebase.
func AddCodebaseSearchTool(s *mcpserver.MCPServer, orch *orchestrator.Orchestrator) {
	tool := mcp.NewTool(
		"codebase_search",
		mcp.WithDescription("Search the indexed codebase using semantic search. Returns code chunks ranked by relevance."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language search query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		mcp.WithNumber("threshold", mcp.Description("Minimum similarity score (default 0.7)")),
		mcp.WithArray("file_types", mcp.Description("Filter by file extension, e.g. ['go', 'py']")),
		mcp.WithArray("paths", mcp.Description("Filter to specific files")),
		mcp.WithString("directory_prefix", mcp.Description("Filter to a directory prefix")),
		mcp.WithArray("languages", mcp.Description("Filter by language tag")),
		mcp.WithBoolean("include_context", mcp.Description("Include surrounding-line context (default true)")),
		mcp.WithNumber("context_lines", mcp.Description("Context lines around each hit (default 3)")),
	)
	s.AddTool(tool, createCodebaseSearchHandler(orch))
}

func createCodebaseSearchHandler(orch *orchestrator.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		query, err := parseStringArg(argsMap, "query", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		req := CodebaseSearchRequest{
			Query:           query,
			Limit:           parseIntArg(argsMap, "limit", 10),
			Threshold:       parseFloatArg(argsMap, "threshold", 0.7),
			FileTypes:       parseArrayArg(argsMap, "file_types"),
			Paths:           parseArrayArg(argsMap, "paths"),
			DirectoryPrefix: mustString(argsMap, "directory_prefix"),
			Languages:       parseArrayArg(argsMap, "languages"),
			IncludeContext:  parseBoolArg(argsMap, "include_context", true),
			ContextLines:    parseIntArg(argsMap, "context_lines", 3),
		}

		ranked, err := orch.Search(ctx, search.Query{
			Text:            req.Query,
			Limit:           req.Limit,
			ScoreThreshold:  req.Threshold,
			FileTypes:       req.FileTypes,
			Paths:           req.Paths,
			DirectoryPrefix: req.DirectoryPrefix,
			Languages:       req.Languages,
			IncludeContext:  req.IncludeContext,
			ContextLines:    req.ContextLines,
		})
		if err != nil {
			return nil, fmt.Errorf("codebase_search: %w", err)
		}

		results := make([]SearchResultView, 0, len(ranked))
		for _, r := range ranked {
			results = append(results, SearchResultView{
				File:           r.File,
				Line:           r.Line,
				EndLine:        r.EndLine,
				Score:          r.FinalScore,
				Type:           r.Type,
				Name:           r.Name,
				Language:       r.Language,
				Code:           r.Code,
				Context:        r.Context,
				RelatedSymbols: r.RelatedSymbols,
			})
		}

		return marshalToolResponse(&CodebaseSearchResponse{
			Query:   req.Query,
			Total:   len(results),
			Results: results,
		})
	}
}

func mustString(argsMap map[string]interface{}, key string) string {
	s, _ := parseStringArg(argsMap, key, false)
	return s
}

// AddIndexingStatusTool registers indexing_status (spec.md §6.1): state
// icon, progress, stats, languages, file types, recent errors, watching
// flag, queue size, current branch.
func AddIndexingStatusTool(s *mcpserver.MCPServer, orch *orchestrator.Orchestrator) {
	tool := mcp.NewTool(
		"indexing_status",
		mcp.WithDescription("Report the indexer's current state, progress, and statistics."),
		mcp.WithBoolean("detailed", mcp.Description("Include the full error history instead of just the last 10 (default false)")),
	)
	s.AddTool(tool, createIndexingStatusHandler(orch))
}

func createIndexingStatusHandler(orch *orchestrator.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}
		detailed := parseBoolArg(argsMap, "detailed", false)

		state := orch.GetState()
		errEntries := state.Errors
		if !detailed && len(errEntries) > 10 {
			errEntries = errEntries[len(errEntries)-10:]
		}

		return marshalToolResponse(&IndexingStatusResponse{
			StateIcon:     stateIcons[state.Progress.Status],
			State:         state.Progress.Status,
			Progress:      state.Progress,
			Stats:         state.Stats,
			Errors:        errEntries,
			Watching:      state.IsWatching,
			QueueSize:     state.QueueSize,
			CurrentBranch: state.CurrentBranch,
		})
	}
}

// AddReindexTool registers reindex (spec.md §6.1): full, incremental, or
// single-file reindexing.
func AddReindexTool(s *mcpserver.MCPServer, orch *orchestrator.Orchestrator) {
	tool := mcp.NewTool(
		"reindex",
		mcp.WithDescription("Trigger a reindex of the codebase: full, incremental, or a specific set of files."),
		mcp.WithString("mode", mcp.Description("One of full, incremental, file (default incremental)")),
		mcp.WithArray("paths", mcp.Description("Files to reindex when mode is 'file'")),
		mcp.WithBoolean("force", mcp.Description("Force reprocessing even when content hashes are unchanged (default false)")),
	)
	s.AddTool(tool, createReindexHandler(orch))
}

func createReindexHandler(orch *orchestrator.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		req := ReindexRequest{
			Mode:  parseStringArgOrDefault(argsMap, "mode", "incremental"),
			Paths: parseArrayArg(argsMap, "paths"),
			Force: parseBoolArg(argsMap, "force", false),
		}

		switch req.Mode {
		case "file":
			for _, p := range req.Paths {
				orch.HandleChange(indexer.ChangeEvent{File: p, Op: watcher.OpChange})
			}
		case "full", "incremental", "":
			if err := orch.IndexAll(ctx, indexer.IndexAllOptions{Force: req.Force || req.Mode == "full"}); err != nil {
				return nil, fmt.Errorf("reindex: %w", err)
			}
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown reindex mode %q", req.Mode)), nil
		}

		state := orch.GetState()
		return marshalToolResponse(&ReindexResponse{
			Mode:      req.Mode,
			FilesDone: state.Stats.TotalFiles,
			Status:    string(state.Progress.Status),
		})
	}
}

func parseStringArgOrDefault(argsMap map[string]interface{}, key, defaultVal string) string {
	s, err := parseStringArg(argsMap, key, false)
	if err != nil || s == "" {
		return defaultVal
	}
	return s
}

// AddConfigureIndexerTool registers configure_indexer (spec.md §6.1):
// validates the target provider/storage health, then atomically
// restarts the indexer with the merged configuration.
func AddConfigureIndexerTool(s *mcpserver.MCPServer, orch *orchestrator.Orchestrator) {
	tool := mcp.NewTool(
		"configure_indexer",
		mcp.WithDescription("Reconfigure the embedding provider, vector store, or indexing options. Validates health before applying."),
		mcp.WithString("provider", mcp.Description("Embedding provider: gemini, openai, ollama, openai-compatible")),
		mcp.WithObject("providerConfig", mcp.Description("Embedding provider settings: api_key, base_url, model, dimensions, chunk_size, chunk_overlap")),
		mcp.WithObject("qdrantConfig", mcp.Description("Vector store settings: url, api_key, collection_name, distance_metric")),
		mcp.WithObject("indexingConfig", mcp.Description("Indexing settings: languages, exclude, include, batch_size, concurrency, etc.")),
		mcp.WithBoolean("validate", mcp.Description("Accepted but not consulted: the new configuration is always validated and health-checked before applying")),
	)
	s.AddTool(tool, createConfigureIndexerHandler(orch))
}

func createConfigureIndexerHandler(orch *orchestrator.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		newCfg := orch.Config()

		if provider, err := parseStringArg(argsMap, "provider", false); err == nil && provider != "" {
			newCfg.Embedding.Provider = provider
		}
		if raw, ok := argsMap["providerConfig"].(map[string]interface{}); ok {
			if err := mapstructure.Decode(raw, &newCfg.Embedding); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("providerConfig: %v", err)), nil
			}
		}
		if raw, ok := argsMap["qdrantConfig"].(map[string]interface{}); ok {
			if err := mapstructure.Decode(raw, &newCfg.VectorStore); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("qdrantConfig: %v", err)), nil
			}
		}
		if raw, ok := argsMap["indexingConfig"].(map[string]interface{}); ok {
			if err := mapstructure.Decode(raw, &newCfg.Indexing); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("indexingConfig: %v", err)), nil
			}
		}

		if err := orch.Reconfigure(ctx, &newCfg); err != nil {
			return nil, fmt.Errorf("configure_indexer: %w", err)
		}

		return marshalToolResponse(&ConfigureIndexerResponse{
			Applied: true,
			Message: "indexer reconfigured and restarted",
		})
	}
}

// AddClearIndexTool registers clear_index (spec.md §6.1): deletes and
// recreates the collection, preserving vector size, and resets status.
func AddClearIndexTool(s *mcpserver.MCPServer, orch *orchestrator.Orchestrator) {
	tool := mcp.NewTool(
		"clear_index",
		mcp.WithDescription("Delete and recreate the vector collection. Requires explicit confirmation."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to proceed")),
		mcp.WithString("workspace", mcp.Description("Workspace identifier, for multi-workspace setups")),
	)
	s.AddTool(tool, createClearIndexHandler(orch))
}

func createClearIndexHandler(orch *orchestrator.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		if !parseBoolArg(argsMap, "confirm", false) {
			return mcp.NewToolResultError("confirm must be true to clear the index"), nil
		}

		if err := orch.ClearIndex(ctx); err != nil {
			return nil, fmt.Errorf("clear_index: %w", err)
		}

		return marshalToolResponse(&ClearIndexResponse{
			Cleared: true,
			Message: "collection cleared and recreated",
		})
	}
}

// AddValidateConfigTool registers validate_config (spec.md §6.1): runs
// health probes against the vector store and/or embedder.
func AddValidateConfigTool(s *mcpserver.MCPServer, orch *orchestrator.Orchestrator) {
	tool := mcp.NewTool(
		"validate_config",
		mcp.WithDescription("Run health probes against the configured embedder and/or vector store."),
		mcp.WithString("component", mcp.Description("One of qdrant, embedder, all (default all)")),
	)
	s.AddTool(tool, createValidateConfigHandler(orch))
}

func createValidateConfigHandler(orch *orchestrator.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}
		component := parseStringArgOrDefault(argsMap, "component", orchestrator.ComponentAll)

		err := orch.ValidateComponent(ctx, component)
		resp := &ValidateConfigResponse{Component: component, Healthy: err == nil}
		if err != nil {
			resp.Message = err.Error()
		} else {
			resp.Message = "healthy"
		}
		return marshalToolResponse(resp)
	}
}
