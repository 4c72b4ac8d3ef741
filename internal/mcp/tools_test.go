package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/indexer"
	"github.com/sourcelens/semindex/internal/orchestrator"
)

func fakeOllamaServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/embed":
			var req struct {
				Input []string `json:"input"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			vectors := make([][]float32, len(req.Input))
			for i := range vectors {
				v := make([]float32, 8)
				v[0] = float32(i + 1)
				vectors[i] = v
			}
			require.NoError(t, json.NewEncoder(w).Encode(struct {
				Embeddings [][]float32 `json:"embeddings"`
			}{Embeddings: vectors}))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	srv := fakeOllamaServer(t)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Codebase.Path = t.TempDir()
	cfg.Embedding.Provider = "ollama"
	cfg.Embedding.BaseURL = srv.URL
	cfg.Embedding.Dimensions = 8
	cfg.VectorStore.CollectionName = "code"

	full := filepath.Join(cfg.Codebase.Path, "main.go")
	require.NoError(t, os.WriteFile(full, []byte("package main\n\nfunc Hello() string { return \"hi\" }\n"), 0o644))

	o, err := orchestrator.New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, o.Initialize(t.Context()))
	require.NoError(t, o.IndexAll(t.Context(), indexer.IndexAllOptions{}))
	return o
}

func callToolRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestCodebaseSearchHandler_RequiresQuery(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createCodebaseSearchHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestCodebaseSearchHandler_ReturnsResults(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createCodebaseSearchHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{"query": "Hello"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestIndexingStatusHandler_ReportsState(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createIndexingStatusHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestReindexHandler_FullMode(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createReindexHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{"mode": "full", "force": true}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestReindexHandler_RejectsUnknownMode(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createReindexHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{"mode": "bogus"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestClearIndexHandler_RequiresConfirm(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createClearIndexHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestClearIndexHandler_ClearsOnConfirm(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createClearIndexHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{"confirm": true}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestValidateConfigHandler_ProbesAllByDefault(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createValidateConfigHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestConfigureIndexerHandler_AppliesMergedConfig(t *testing.T) {
	o := newTestOrchestrator(t)
	handler := createConfigureIndexerHandler(o)

	result, err := handler(t.Context(), callToolRequest(map[string]interface{}{
		"qdrantConfig": map[string]interface{}{"collection_name": "renamed"},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "renamed", o.Config().VectorStore.CollectionName)
}
