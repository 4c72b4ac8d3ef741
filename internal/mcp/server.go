// Package mcp implements the Tool Dispatcher (spec.md §4.20, §6.1): the
// six MCP tools (codebase_search, indexing_status, reindex,
// configure_indexer, clear_index, validate_config) that expose
// internal/orchestrator.Orchestrator over stdio. Grounded on the
// teacher's internal/mcp/server.go composition root and its
// AddCortexSearchTool/tool.go registration idiom.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sourcelens/semindex/internal/orchestrator"
)

// Server manages the MCP server lifecycle over the orchestrator.
type Server struct {
	orch   *orchestrator.Orchestrator
	logger *log.Logger
	mcp    *mcpserver.MCPServer
}

// NewServer registers every tool against orch and returns a Server ready
// for Serve.
func NewServer(orch *orchestrator.Orchestrator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(os.Stderr, "[mcp] ", log.LstdFlags)
	}

	mcpServer := mcpserver.NewMCPServer(
		"semindex-mcp",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	AddCodebaseSearchTool(mcpServer, orch)
	AddIndexingStatusTool(mcpServer, orch)
	AddReindexTool(mcpServer, orch)
	AddConfigureIndexerTool(mcpServer, orch)
	AddClearIndexTool(mcpServer, orch)
	AddValidateConfigTool(mcpServer, orch)

	return &Server{orch: orch, logger: logger, mcp: mcpServer}
}

// Serve starts the MCP server on stdio and blocks until a shutdown
// signal, a server error, or ctx cancellation.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("starting MCP server on stdio...")
		if err := mcpserver.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Printf("received shutdown signal, stopping gracefully...")
		cancel()
		return s.orch.Stop()
	case err := <-errCh:
		cancel()
		_ = s.orch.Stop()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the orchestrator's background collaborators.
func (s *Server) Close() error {
	return s.orch.Stop()
}
