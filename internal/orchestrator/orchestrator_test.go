package orchestrator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourcelens/semindex/internal/config"
	"github.com/sourcelens/semindex/internal/indexer"
	"github.com/sourcelens/semindex/internal/search"
)

// fakeOllamaServer serves just enough of the ollama embed/health API for
// the orchestrator to build and exercise a real HTTPProvider end to end.
func fakeOllamaServer(t *testing.T, dims int) *httptest.Server {
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
				v := make([]float32, dims)
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

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Codebase.Path = t.TempDir()
	cfg.Embedding.Provider = "ollama"
	cfg.Embedding.BaseURL = baseURL
	cfg.Embedding.Dimensions = 8
	cfg.VectorStore.CollectionName = "code"
	return cfg
}

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestNewBuildsOrchestratorWithValidConfig(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	o, err := New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)
	require.NotNil(t, o)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, "http://x")
	cfg.Embedding.Dimensions = -1

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestInitializeValidatesEmbedderHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o, err := New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)

	err = o.Initialize(t.Context())
	assert.Error(t, err)
}

func TestIndexAllIndexesFilesAndRebuildsGraph(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	writeSource(t, cfg.Codebase.Path, "main.go", "package main\n\nfunc Hello() string {\n\treturn Greeting()\n}\n\nfunc Greeting() string {\n\treturn \"hi\"\n}\n")

	o, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, o.Initialize(t.Context()))

	require.NoError(t, o.IndexAll(t.Context(), indexer.IndexAllOptions{}))

	state := o.GetState()
	assert.Greater(t, state.Stats.TotalVectors, 0)
	assert.True(t, o.graph != nil)

	results, err := o.Search(t.Context(), search.Query{Text: "Hello", Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	var hello search.Ranked
	for _, r := range results {
		if r.Name == "Hello" {
			hello = r
		}
	}
	require.Equal(t, "Hello", hello.Name)
	assert.Contains(t, hello.RelatedSymbols, "Greeting", "graph node keys must line up with the repo-relative file search results use")
}

func TestSearchPopulatesAndHitsCache(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	writeSource(t, cfg.Codebase.Path, "main.go", "package main\n\nfunc Hello() string { return \"hi\" }\n")

	o, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, o.Initialize(t.Context()))
	require.NoError(t, o.IndexAll(t.Context(), indexer.IndexAllOptions{}))

	q := search.Query{Text: "Hello", Limit: 5}

	_, err = o.Search(t.Context(), q)
	require.NoError(t, err)
	missesAfterFirst := o.cache.Stats().Misses

	_, err = o.Search(t.Context(), q)
	require.NoError(t, err)

	stats := o.cache.Stats()
	assert.Equal(t, missesAfterFirst, stats.Misses)
	assert.GreaterOrEqual(t, stats.Hits, int64(1))
}

func TestValidateComponentRejectsUnknownComponent(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	o, err := New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)

	err = o.ValidateComponent(t.Context(), "bogus")
	assert.Error(t, err)
}

func TestValidateComponentProbesEmbedderAndStore(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	o, err := New(testConfig(t, srv.URL), nil)
	require.NoError(t, err)

	assert.NoError(t, o.ValidateComponent(t.Context(), ComponentEmbedder))
	assert.NoError(t, o.ValidateComponent(t.Context(), ComponentVectorStore))
	assert.NoError(t, o.ValidateComponent(t.Context(), ComponentAll))
}

func TestReconfigureSwapsCollaboratorsAtomically(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	o, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, o.Initialize(t.Context()))

	newCfg := testConfig(t, srv.URL)
	newCfg.VectorStore.CollectionName = "other-collection"

	require.NoError(t, o.Reconfigure(t.Context(), newCfg))
	assert.Equal(t, "other-collection", o.cfg.VectorStore.CollectionName)
}

func TestClearIndexResetsCollectionAndCache(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	writeSource(t, cfg.Codebase.Path, "main.go", "package main\n\nfunc Hello() string { return \"hi\" }\n")

	o, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, o.Initialize(t.Context()))
	require.NoError(t, o.IndexAll(t.Context(), indexer.IndexAllOptions{}))

	require.NoError(t, o.ClearIndex(t.Context()))

	info, err := o.store.Info(t.Context(), cfg.VectorStore.CollectionName)
	require.NoError(t, err)
	assert.Equal(t, 0, info.PointsCount)
}
