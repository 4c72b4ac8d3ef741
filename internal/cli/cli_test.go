package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeOllamaServer serves just enough of the ollama embed/health API for
// an orchestrator built in these tests to run end to end.
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

// writeTestConfig writes a .semindex/config.yml under dir pointing the
// embedding provider at baseURL, the layout runIndex/runSearch/runStatus
// all discover via config.LoadConfigFromDir(os.Getwd()).
func writeTestConfig(t *testing.T, dir, baseURL string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".semindex"), 0o755))
	yml := "embedding:\n" +
		"  provider: ollama\n" +
		"  base_url: " + baseURL + "\n" +
		"  dimensions: 8\n" +
		"qdrant:\n" +
		"  collection_name: code\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".semindex", "config.yml"), []byte(yml), 0o644))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

// captureStdout runs fn with os.Stdout redirected into a buffer, the
// same technique the teacher's internal/cli tests use to assert on
// printed command output.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	runErr := fn()

	_ = w.Close()
	<-done
	os.Stdout = old

	return buf.String(), runErr
}
