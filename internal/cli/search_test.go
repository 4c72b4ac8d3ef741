package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSearchReturnsResults(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"),
		[]byte("package main\n\nfunc Hello() string { return \"hi\" }\n"), 0o644))
	chdir(t, dir)

	searchLimit = 5
	searchThreshold = 0
	searchFileTypes = nil
	searchLanguages = nil

	out, err := captureStdout(t, func() error {
		return runSearch(newTestCmd(), []string{"Hello"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "result(s) for \"Hello\"")
}

func TestRunSearchReportsNoResults(t *testing.T) {
	srv := fakeOllamaServer(t, 8)
	defer srv.Close()

	dir := t.TempDir()
	writeTestConfig(t, dir, srv.URL)
	chdir(t, dir)

	searchLimit = 5
	searchThreshold = 0.99
	searchFileTypes = nil
	searchLanguages = nil

	out, err := captureStdout(t, func() error {
		return runSearch(newTestCmd(), []string{"nothing indexed"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "no results")
}

func TestIndent(t *testing.T) {
	t.Parallel()
	got := indent("a\nb\n", "  ")
	assert.Equal(t, "  a\n  b", got)
}
